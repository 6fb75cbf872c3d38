package models

import "strings"

// RoomCodeLength is the number of characters in a room code.
const RoomCodeLength = 6

// RoomCode is a 6-character shared identifier used to pair two users.
type RoomCode string

// NormalizeRoomCode upper-cases s, strips everything outside A-Z and 0-9 and truncates the result to [RoomCodeLength].
func NormalizeRoomCode(s string) RoomCode {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if b.Len() == RoomCodeLength {
			break
		}
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return RoomCode(b.String())
}

// Complete reports whether the code has exactly [RoomCodeLength] characters.
func (c RoomCode) Complete() bool { return len(c) == RoomCodeLength }

func (c RoomCode) String() string { return string(c) }

// Room is a pairing slot owned by the current session.
type Room struct {
	Code             RoomCode `json:"room_code"`
	ExpiresInMinutes int      `json:"expires_in_minutes"`
}

// RoomCheck is the answer to a room code validity probe.
type RoomCheck struct {
	Valid bool   `json:"valid"`
	Host  string `json:"host"`
}

// Profile is the display identity of the logged in user.
type Profile struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}
