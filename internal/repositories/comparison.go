package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/vibesync/internal/models"
	"github.com/desertthunder/vibesync/internal/shared"
)

var _ models.Repository[*models.ComparisonRecord] = (*ComparisonRepository)(nil)

// ComparisonRepository implements models.Repository[*models.ComparisonRecord] for comparison history.
type ComparisonRepository struct {
	db *sql.DB
}

// NewComparisonRepository creates a new ComparisonRepository with the given database connection
func NewComparisonRepository(db *sql.DB) *ComparisonRepository {
	return &ComparisonRepository{db: db}
}

const comparisonColumns = `id, sequence, room_code, payload, created_at, updated_at, deleted_at`

// Create inserts a new [models.ComparisonRecord] with generated ID and sequence
func (r *ComparisonRepository) Create(record *models.ComparisonRecord) error {
	sequence, err := NextSequence(r.db, "comparisons")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	record.SetID(shared.GenerateID())
	record.SetSequence(sequence)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrValidationFailed, err)
	}

	payload, err := record.Payload()
	if err != nil {
		return err
	}

	c := record.Comparison()
	query := `
		INSERT INTO comparisons (id, sequence, room_code, user_a, user_b, total_a, total_b, common_count, compatibility, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		record.ID(),
		record.Sequence(),
		record.RoomCode().String(),
		c.UserA.DisplayName,
		c.UserB.DisplayName,
		c.Stats.TotalA,
		c.Stats.TotalB,
		c.Stats.CommonCount,
		c.Stats.CompatibilityScore,
		payload,
		record.CreatedAt(),
		record.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert comparison: %w", err)
	}

	return nil
}

// Record stores a finished comparison made in room code.
func (r *ComparisonRepository) Record(code models.RoomCode, c *models.Comparison) error {
	if c == nil {
		return fmt.Errorf("%w: nil comparison", shared.ErrInvalidArgument)
	}
	return r.Create(models.NewComparisonRecord(0, code, *c))
}

// Get retrieves a comparison by ID, excluding soft-deleted ones
func (r *ComparisonRepository) Get(id string) (*models.ComparisonRecord, error) {
	query := `SELECT ` + comparisonColumns + ` FROM comparisons WHERE id = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a comparison by its sequence number
func (r *ComparisonRepository) GetBySequence(sequence int) (*models.ComparisonRecord, error) {
	query := `SELECT ` + comparisonColumns + ` FROM comparisons WHERE sequence = ? AND deleted_at IS NULL`
	return r.scan(r.db.QueryRow(query, sequence))
}

// Delete soft-deletes a comparison by ID
func (r *ComparisonRepository) Delete(id string) error {
	now := time.Now().UTC()

	query := `
		UPDATE comparisons
		SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete comparison: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: comparison %s", shared.ErrRecordNotFound, id)
	}

	return nil
}

// List retrieves comparisons newest first, excluding soft-deleted ones.
//
// Supported criteria: "room_code" (string or [models.RoomCode]) and "limit" (int).
func (r *ComparisonRepository) List(criteria map[string]any) ([]*models.ComparisonRecord, error) {
	query := `SELECT ` + comparisonColumns + ` FROM comparisons WHERE deleted_at IS NULL`
	args := []any{}

	switch code := criteria["room_code"].(type) {
	case string:
		if code != "" {
			query += " AND room_code = ?"
			args = append(args, models.NormalizeRoomCode(code).String())
		}
	case models.RoomCode:
		if code != "" {
			query += " AND room_code = ?"
			args = append(args, code.String())
		}
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comparisons: %w", err)
	}
	defer rows.Close()

	var records []*models.ComparisonRecord
	for rows.Next() {
		record, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *ComparisonRepository) scan(row scanner) (*models.ComparisonRecord, error) {
	var (
		id        string
		sequence  int
		code      string
		payload   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &code, &payload, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: comparison", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan comparison: %w", err)
	}

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	return models.RestoreComparisonRecord(id, sequence, models.RoomCode(code), payload, createdAt, updatedAt, deleted)
}
