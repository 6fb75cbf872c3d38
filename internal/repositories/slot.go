package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SlotRepository stores named plain-text values in the slots table.
type SlotRepository struct {
	db *sql.DB
}

// NewSlotRepository creates a new SlotRepository with the given database connection
func NewSlotRepository(db *sql.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// GetSlot returns the value stored under name. A missing slot is not an error.
func (r *SlotRepository) GetSlot(name string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM slots WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %s: %w", name, err)
	}
	return value, true, nil
}

// SetSlot writes value under name, replacing any previous value.
func (r *SlotRepository) SetSlot(name, value string) error {
	query := `
		INSERT INTO slots (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := r.db.Exec(query, name, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", name, err)
	}
	return nil
}

// DeleteSlot removes name. Deleting a missing slot succeeds.
func (r *SlotRepository) DeleteSlot(name string) error {
	if _, err := r.db.Exec(`DELETE FROM slots WHERE name = ?`, name); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", name, err)
	}
	return nil
}
