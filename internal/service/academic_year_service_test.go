package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sundar404/be-routine-api/internal/models"
	appErrors "github.com/sundar404/be-routine-api/pkg/errors"
)

type mockAcademicYearRepo struct {
	years     map[string]*models.AcademicYear
	withSlots map[string]bool
	deleted   []string
}

func newMockAcademicYearRepo() *mockAcademicYearRepo {
	return &mockAcademicYearRepo{
		years:     map[string]*models.AcademicYear{},
		withSlots: map[string]bool{},
	}
}

func (m *mockAcademicYearRepo) List(ctx context.Context) ([]models.AcademicYear, error) {
	var out []models.AcademicYear
	for _, year := range m.years {
		out = append(out, *year)
	}
	return out, nil
}

func (m *mockAcademicYearRepo) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	if year, ok := m.years[id]; ok {
		cp := *year
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAcademicYearRepo) FindCurrent(ctx context.Context) (*models.AcademicYear, error) {
	for _, year := range m.years {
		if year.IsCurrent {
			cp := *year
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAcademicYearRepo) Create(ctx context.Context, year *models.AcademicYear) error {
	if year.ID == "" {
		year.ID = "ay-new"
	}
	cp := *year
	m.years[year.ID] = &cp
	return nil
}

func (m *mockAcademicYearRepo) Update(ctx context.Context, year *models.AcademicYear) error {
	cp := *year
	m.years[year.ID] = &cp
	return nil
}

func (m *mockAcademicYearRepo) SetCurrent(ctx context.Context, id string) error {
	if _, ok := m.years[id]; !ok {
		return sql.ErrNoRows
	}
	for _, year := range m.years {
		year.IsCurrent = year.ID == id
	}
	return nil
}

func (m *mockAcademicYearRepo) HasRoutineSlots(ctx context.Context, id string) (bool, error) {
	return m.withSlots[id], nil
}

func (m *mockAcademicYearRepo) Delete(ctx context.Context, id string) error {
	delete(m.years, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestAcademicYearServiceDelete(t *testing.T) {
	repo := newMockAcademicYearRepo()
	repo.years["ay-old"] = &models.AcademicYear{ID: "ay-old", Code: "2023-24"}
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "ay-old"))
	assert.Equal(t, []string{"ay-old"}, repo.deleted)

	_, err := svc.Get(context.Background(), "ay-old")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAcademicYearServiceDeleteCurrentRejected(t *testing.T) {
	repo := newMockAcademicYearRepo()
	repo.years["ay-1"] = &models.AcademicYear{ID: "ay-1", Code: "2025-26", IsCurrent: true}
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "ay-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestAcademicYearServiceDeleteWithRoutineHistoryRejected(t *testing.T) {
	repo := newMockAcademicYearRepo()
	repo.years["ay-1"] = &models.AcademicYear{ID: "ay-1", Code: "2024-25"}
	repo.withSlots["ay-1"] = true
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "ay-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestAcademicYearServiceDeleteNotFound(t *testing.T) {
	repo := newMockAcademicYearRepo()
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
