package models

import (
	"encoding/json"
	"fmt"
	"time"
)

var _ Model = (*ComparisonRecord)(nil)

// ComparisonRecord is a finished [Comparison] persisted in local history.
type ComparisonRecord struct {
	id         string
	sequence   int
	roomCode   RoomCode
	comparison Comparison
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewComparisonRecord creates a record for a comparison made against the given room.
func NewComparisonRecord(sequence int, code RoomCode, c Comparison) *ComparisonRecord {
	now := time.Now().UTC()
	return &ComparisonRecord{
		sequence:   sequence,
		roomCode:   code,
		comparison: c,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (r *ComparisonRecord) ID() string             { return r.id }
func (r *ComparisonRecord) Sequence() int          { return r.sequence }
func (r *ComparisonRecord) RoomCode() RoomCode     { return r.roomCode }
func (r *ComparisonRecord) Comparison() Comparison { return r.comparison }
func (r *ComparisonRecord) CreatedAt() time.Time   { return r.createdAt }
func (r *ComparisonRecord) UpdatedAt() time.Time   { return r.updatedAt }
func (r *ComparisonRecord) DeletedAt() *time.Time  { return r.deletedAt }

func (r *ComparisonRecord) SetID(id string)           { r.id = id }
func (r *ComparisonRecord) SetSequence(seq int)       { r.sequence = seq }
func (r *ComparisonRecord) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *ComparisonRecord) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *ComparisonRecord) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// Validate requires an id, a complete room code and both participants.
func (r *ComparisonRecord) Validate() error {
	if r.id == "" {
		return fmt.Errorf("comparison record id is required")
	}
	if !r.roomCode.Complete() {
		return fmt.Errorf("comparison record room code %q is not %d characters", r.roomCode, RoomCodeLength)
	}
	if r.comparison.UserA.DisplayName == "" || r.comparison.UserB.DisplayName == "" {
		return fmt.Errorf("comparison record requires both participants")
	}
	return nil
}

// Payload encodes the full comparison for storage.
func (r *ComparisonRecord) Payload() (string, error) {
	data, err := json.Marshal(r.comparison)
	if err != nil {
		return "", fmt.Errorf("failed to encode comparison: %w", err)
	}
	return string(data), nil
}

// RestoreComparisonRecord rebuilds a record from its stored columns.
func RestoreComparisonRecord(id string, sequence int, code RoomCode, payload string, createdAt, updatedAt time.Time, deletedAt *time.Time) (*ComparisonRecord, error) {
	var c Comparison
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return nil, fmt.Errorf("failed to decode comparison payload: %w", err)
	}

	return &ComparisonRecord{
		id:         id,
		sequence:   sequence,
		roomCode:   code,
		comparison: c,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
		deletedAt:  deletedAt,
	}, nil
}
