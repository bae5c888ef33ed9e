package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundar404/be-routine-api/internal/models"
)

func routineSlotRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "academic_year_id", "program_id", "semester", "section", "day_index", "slot_index",
		"subject_id", "teacher_ids", "room_id", "class_type", "lab_group_id", "span_id",
		"span_position", "is_spanned", "recurrence_type", "recurrence_pattern", "is_active",
		"created_at", "updated_at",
	}).AddRow(
		"slot-1", "ay-1", "prog-1", 5, "A", 1, 3,
		"sub-1", []byte(`{teacher-1}`), "room-1", string(models.ClassTypeLecture), nil, nil,
		0, false, string(models.RecurrenceWeekly), "", true,
		now, now,
	)
}

func TestRoutineSlotRepositoryListActiveForDay(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoutineSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM routine_slots WHERE academic_year_id = $1 AND day_index = $2 AND is_active = TRUE ORDER BY slot_index ASC")).
		WithArgs("ay-1", 1).
		WillReturnRows(routineSlotRows())

	slots, err := repo.ListActiveForDay(context.Background(), nil, "ay-1", 1)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "slot-1", slots[0].ID)
	assert.Equal(t, []string{"teacher-1"}, []string(slots[0].TeacherIDs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineSlotRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoutineSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("$1 = ANY(teacher_ids)")).
		WithArgs("teacher-1").
		WillReturnRows(routineSlotRows())

	slots, err := repo.List(context.Background(), models.RoutineSlotFilter{TeacherID: "teacher-1"})
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineSlotRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoutineSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO routine_slots")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO routine_slots")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	spanID := "span-1"
	slots := []models.RoutineSlot{
		{AcademicYearID: "ay-1", ProgramID: "prog-1", Semester: 5, Section: "A", DayIndex: 1, SlotIndex: 2, SubjectID: "sub-1", TeacherIDs: pq.StringArray{"teacher-1"}, RoomID: "room-1", ClassType: models.ClassTypePractical, SpanID: &spanID, SpanPosition: 0, IsSpanned: true, RecurrenceType: models.RecurrenceWeekly, IsActive: true},
		{AcademicYearID: "ay-1", ProgramID: "prog-1", Semester: 5, Section: "A", DayIndex: 1, SlotIndex: 3, SubjectID: "sub-1", TeacherIDs: pq.StringArray{"teacher-1"}, RoomID: "room-1", ClassType: models.ClassTypePractical, SpanID: &spanID, SpanPosition: 1, IsSpanned: true, RecurrenceType: models.RecurrenceWeekly, IsActive: true},
	}

	require.NoError(t, repo.InsertBatch(context.Background(), nil, slots))
	assert.NotEmpty(t, slots[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutineSlotRepositoryDeactivateBySpan(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoutineSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE routine_slots SET is_active = FALSE, updated_at = $2 WHERE span_id = $1 AND is_active = TRUE")).
		WithArgs("span-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.DeactivateBySpan(context.Background(), nil, "span-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A repeated clear touches no rows but does not fail.
func TestRoutineSlotRepositoryDeactivateBySpanIdempotent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoutineSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE span_id = $1 AND is_active = TRUE")).
		WithArgs("span-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.DeactivateBySpan(context.Background(), nil, "span-1")
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDayLockKeyStable(t *testing.T) {
	assert.Equal(t, dayLockKey("ay-1", 1), dayLockKey("ay-1", 1))
	assert.NotEqual(t, dayLockKey("ay-1", 1), dayLockKey("ay-1", 2))
	assert.NotEqual(t, dayLockKey("ay-1", 1), dayLockKey("ay-2", 1))
}
