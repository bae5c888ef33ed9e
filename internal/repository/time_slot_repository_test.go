package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timeSlotRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "label", "start_time", "end_time", "sort_order", "is_break", "program_id", "created_at", "updated_at"}).
		AddRow("ts-1", "P1", "10:15", "11:05", 0, false, nil, now, now).
		AddRow("ts-2", "Break", "13:40", "14:30", 1, true, nil, now, now).
		AddRow("ts-3", "P2", "14:30", "15:20", 2, false, nil, now, now)
}

func TestTimeSlotRepositoryListOrdered(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, label, start_time, end_time, sort_order, is_break, program_id, created_at, updated_at FROM time_slots ORDER BY sort_order ASC")).
		WillReturnRows(timeSlotRows())

	catalog, err := repo.ListOrdered(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 3)
	assert.Equal(t, "P1", catalog[0].Label)
	assert.True(t, catalog[1].IsBreak)
	assert.Equal(t, 2, catalog.MaxIndex())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryReorderTransactional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE time_slots SET sort_order = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("ts-3", 0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE time_slots SET sort_order = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("ts-1", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Reorder(context.Background(), []string{"ts-3", "ts-1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryReorderRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE time_slots SET sort_order = \$2, updated_at = \$3 WHERE id = \$1`).
		WithArgs("ts-3", 0, sqlmock.AnyArg()).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Reorder(context.Background(), []string{"ts-3", "ts-1"})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
