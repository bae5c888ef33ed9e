package repository

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sundar404/be-routine-api/internal/models"
)

const routineSlotColumns = `id, academic_year_id, program_id, semester, section, day_index, slot_index, subject_id, teacher_ids, room_id, class_type, lab_group_id, span_id, span_position, is_spanned, recurrence_type, recurrence_pattern, is_active, created_at, updated_at`

// RoutineSlotRepository provides persistence for routine slots.
type RoutineSlotRepository struct {
	db *sqlx.DB
}

// NewRoutineSlotRepository creates a new routine slot repository.
func NewRoutineSlotRepository(db *sqlx.DB) *RoutineSlotRepository {
	return &RoutineSlotRepository{db: db}
}

func (r *RoutineSlotRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// WithDayLock runs fn inside a transaction that holds the advisory lock for
// one (academic year, day) scheduling scope. Concurrent proposals against
// the same scope serialize here, which keeps load-check-commit atomic.
func (r *RoutineSlotRepository) WithDayLock(ctx context.Context, academicYearID string, dayIndex int, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin routine transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, dayLockKey(academicYearID, dayIndex)); err != nil {
		return fmt.Errorf("acquire day lock: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit routine transaction: %w", err)
	}
	return nil
}

// dayLockKey derives a stable 64-bit advisory lock key for a scope.
func dayLockKey(academicYearID string, dayIndex int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s:%d", academicYearID, dayIndex)
	return int64(h.Sum64())
}

// ListActiveForDay loads every active slot of one teaching day across all
// programs, the candidate set for conflict evaluation.
func (r *RoutineSlotRepository) ListActiveForDay(ctx context.Context, exec sqlx.ExtContext, academicYearID string, dayIndex int) ([]models.RoutineSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM routine_slots WHERE academic_year_id = $1 AND day_index = $2 AND is_active = TRUE ORDER BY slot_index ASC`, routineSlotColumns)
	var slots []models.RoutineSlot
	if err := sqlx.SelectContext(ctx, r.exec(exec), &slots, query, academicYearID, dayIndex); err != nil {
		return nil, fmt.Errorf("list active slots for day: %w", err)
	}
	return slots, nil
}

// List returns routine slots narrowed by the filter.
func (r *RoutineSlotRepository) List(ctx context.Context, filter models.RoutineSlotFilter) ([]models.RoutineSlot, error) {
	base := `FROM routine_slots WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.Section != "" {
		conditions = append(conditions, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(teacher_ids)", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.DayIndex != nil {
		conditions = append(conditions, fmt.Sprintf("day_index = $%d", len(args)+1))
		args = append(args, *filter.DayIndex)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT %s %s ORDER BY day_index ASC, slot_index ASC", routineSlotColumns, base)
	var slots []models.RoutineSlot
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, fmt.Errorf("list routine slots: %w", err)
	}
	return slots, nil
}

// FindByID loads a routine slot by id.
func (r *RoutineSlotRepository) FindByID(ctx context.Context, id string) (*models.RoutineSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM routine_slots WHERE id = $1`, routineSlotColumns)
	var slot models.RoutineSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find routine slot: %w", err)
	}
	return &slot, nil
}

// InsertBatch stores planned slots. Span members always insert together in
// one call so a failed span never leaves partial members behind.
func (r *RoutineSlotRepository) InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.RoutineSlot) error {
	if len(slots) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO routine_slots (id, academic_year_id, program_id, semester, section, day_index, slot_index, subject_id, teacher_ids, room_id, class_type, lab_group_id, span_id, span_position, is_spanned, recurrence_type, recurrence_pattern, is_active, created_at, updated_at)
VALUES (:id, :academic_year_id, :program_id, :semester, :section, :day_index, :slot_index, :subject_id, :teacher_ids, :room_id, :class_type, :lab_group_id, :span_id, :span_position, :is_spanned, :recurrence_type, :recurrence_pattern, :is_active, :created_at, :updated_at)`

	for i := range slots {
		slot := &slots[i]
		if slot.ID == "" {
			slot.ID = uuid.NewString()
		}
		if slot.CreatedAt.IsZero() {
			slot.CreatedAt = now
		}
		slot.UpdatedAt = now
		if _, err := sqlx.NamedExecContext(ctx, target, query, slot); err != nil {
			return fmt.Errorf("insert routine slot: %w", err)
		}
	}
	return nil
}

// Deactivate soft-deletes one slot and returns the affected row count.
func (r *RoutineSlotRepository) Deactivate(ctx context.Context, exec sqlx.ExtContext, id string) (int64, error) {
	const query = `UPDATE routine_slots SET is_active = FALSE, updated_at = $2 WHERE id = $1 AND is_active = TRUE`
	res, err := r.exec(exec).ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("deactivate routine slot: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate routine slot: %w", err)
	}
	return affected, nil
}

// DeactivateBySpan soft-deletes every member of a span group in one
// statement. Repeating the clear is a no-op.
func (r *RoutineSlotRepository) DeactivateBySpan(ctx context.Context, exec sqlx.ExtContext, spanID string) (int64, error) {
	const query = `UPDATE routine_slots SET is_active = FALSE, updated_at = $2 WHERE span_id = $1 AND is_active = TRUE`
	res, err := r.exec(exec).ExecContext(ctx, query, spanID, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("deactivate span group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate span group: %w", err)
	}
	return affected, nil
}

// FindBySpan loads every member of a span group, active or not, ordered by
// span position.
func (r *RoutineSlotRepository) FindBySpan(ctx context.Context, spanID string) ([]models.RoutineSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM routine_slots WHERE span_id = $1 ORDER BY span_position ASC`, routineSlotColumns)
	var slots []models.RoutineSlot
	if err := r.db.SelectContext(ctx, &slots, query, spanID); err != nil {
		return nil, fmt.Errorf("find span group: %w", err)
	}
	return slots, nil
}

// ListActiveSpanned returns all active span members for an academic year,
// input for the span integrity reconciliation pass.
func (r *RoutineSlotRepository) ListActiveSpanned(ctx context.Context, academicYearID string) ([]models.RoutineSlot, error) {
	query := fmt.Sprintf(`SELECT %s FROM routine_slots WHERE academic_year_id = $1 AND is_active = TRUE AND span_id IS NOT NULL ORDER BY span_id ASC, span_position ASC`, routineSlotColumns)
	var slots []models.RoutineSlot
	if err := r.db.SelectContext(ctx, &slots, query, academicYearID); err != nil {
		return nil, fmt.Errorf("list active span members: %w", err)
	}
	return slots, nil
}
