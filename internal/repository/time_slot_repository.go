package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sundar404/be-routine-api/internal/models"
)

// TimeSlotRepository manages the ordered period catalog.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository builds repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// ListOrdered returns the catalog sorted by sort_order. Slot indexes are
// positions in this ordering, never ids or array positions elsewhere.
func (r *TimeSlotRepository) ListOrdered(ctx context.Context) (models.TimeSlotCatalog, error) {
	const query = `SELECT id, label, start_time, end_time, sort_order, is_break, program_id, created_at, updated_at FROM time_slots ORDER BY sort_order ASC`
	var catalog models.TimeSlotCatalog
	if err := r.db.SelectContext(ctx, &catalog, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return catalog, nil
}

// FindByID loads one time slot definition.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlotDefinition, error) {
	const query = `SELECT id, label, start_time, end_time, sort_order, is_break, program_id, created_at, updated_at FROM time_slots WHERE id = $1`
	var def models.TimeSlotDefinition
	if err := r.db.GetContext(ctx, &def, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find time slot: %w", err)
	}
	return &def, nil
}

// Create inserts a new time slot definition.
func (r *TimeSlotRepository) Create(ctx context.Context, def *models.TimeSlotDefinition) error {
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now

	const query = `INSERT INTO time_slots (id, label, start_time, end_time, sort_order, is_break, program_id, created_at, updated_at) VALUES (:id, :label, :start_time, :end_time, :sort_order, :is_break, :program_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, def); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// Update modifies a time slot definition.
func (r *TimeSlotRepository) Update(ctx context.Context, def *models.TimeSlotDefinition) error {
	def.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots SET label = :label, start_time = :start_time, end_time = :end_time, sort_order = :sort_order, is_break = :is_break, program_id = :program_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, def); err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	return nil
}

// Delete removes a time slot definition.
func (r *TimeSlotRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM time_slots WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	return nil
}

// Reorder rewrites sort_order for the catalog in one transaction so the
// canonical ordering never goes through an inconsistent state.
func (r *TimeSlotRepository) Reorder(ctx context.Context, orderedIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	const query = `UPDATE time_slots SET sort_order = $2, updated_at = $3 WHERE id = $1`
	for order, id := range orderedIDs {
		if _, err := tx.ExecContext(ctx, query, id, order, now); err != nil {
			return fmt.Errorf("reorder time slot %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}
