package models

import (
	"strings"
)

// Track is a liked song as reported in a comparison.
type Track struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	AlbumArt    string   `json:"album_art,omitempty"`
	PreviewURL  string   `json:"preview_url,omitempty"`
	ExternalURL string   `json:"external_url,omitempty"`
}

// ArtistNames joins the track's artists for display.
func (t Track) ArtistNames() string {
	return strings.Join(t.Artists, ", ")
}

// SearchText is the text a track is matched against when filtering results.
func (t Track) SearchText() string {
	return t.Name + " " + strings.Join(t.Artists, " ") + " " + t.Album
}

// Participant identifies one side of a comparison.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Stats summarizes a comparison.
type Stats struct {
	TotalA             int     `json:"total_a"`
	TotalB             int     `json:"total_b"`
	OnlyACount         int     `json:"only_a_count"`
	OnlyBCount         int     `json:"only_b_count"`
	CommonCount        int     `json:"common_count"`
	CompatibilityScore float64 `json:"compatibility_score"`
}

// Comparison is the overlap between two users' libraries, computed by the service.
//
// The pairing state machine treats it as opaque; only the formatter and TUI look inside.
type Comparison struct {
	UserA  Participant `json:"user_a"`
	UserB  Participant `json:"user_b"`
	OnlyA  []Track     `json:"only_a"`
	OnlyB  []Track     `json:"only_b"`
	Common []Track     `json:"common"`
	Stats  Stats       `json:"stats"`
}

// Set names one of the three track lists of a [Comparison].
type Set int

const (
	OnlyA Set = iota
	OnlyB
	Common
)

func (s Set) String() string {
	switch s {
	case OnlyA:
		return "only_a"
	case OnlyB:
		return "only_b"
	case Common:
		return "common"
	default:
		return ""
	}
}

// ParseSet maps a set name back to its [Set].
func ParseSet(s string) (Set, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "only_a", "a", "mine":
		return OnlyA, true
	case "only_b", "b", "theirs":
		return OnlyB, true
	case "common", "both":
		return Common, true
	default:
		return OnlyA, false
	}
}

// Tracks returns the track list for set.
func (c *Comparison) Tracks(set Set) []Track {
	switch set {
	case OnlyA:
		return c.OnlyA
	case OnlyB:
		return c.OnlyB
	case Common:
		return c.Common
	default:
		return nil
	}
}

// Label returns the display label for set, e.g. "Only Sam".
func (c *Comparison) Label(set Set) string {
	switch set {
	case OnlyA:
		return "Only you"
	case OnlyB:
		name := c.UserB.DisplayName
		if name == "" {
			name = "them"
		}
		return "Only " + name
	case Common:
		return "In common"
	default:
		return ""
	}
}
