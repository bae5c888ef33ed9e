package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sundar404/be-routine-api/internal/models"
	appErrors "github.com/sundar404/be-routine-api/pkg/errors"
)

type stubExportSource struct {
	slots []models.RoutineSlot
}

func (s *stubExportSource) List(ctx context.Context, filter models.RoutineSlotFilter) ([]models.RoutineSlot, error) {
	return s.slots, nil
}

type stubSubjectFinder struct{ subjects map[string]*models.Subject }

func (s *stubSubjectFinder) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if subject, ok := s.subjects[id]; ok {
		return subject, nil
	}
	return nil, sql.ErrNoRows
}

type stubTeacherFinder struct{ teachers map[string]*models.Teacher }

func (s *stubTeacherFinder) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := s.teachers[id]; ok {
		return teacher, nil
	}
	return nil, sql.ErrNoRows
}

type stubRoomFinder struct{ rooms map[string]*models.Room }

func (s *stubRoomFinder) FindByID(ctx context.Context, id string) (*models.Room, error) {
	if room, ok := s.rooms[id]; ok {
		return room, nil
	}
	return nil, sql.ErrNoRows
}

func newExportService(slots []models.RoutineSlot) *ExportService {
	return NewExportService(
		&stubExportSource{slots: slots},
		&mockCatalogRepo{catalog: serviceCatalog()},
		&stubSubjectFinder{subjects: map[string]*models.Subject{
			"sub-1": {ID: "sub-1", Code: "CT-501"},
		}},
		&stubTeacherFinder{teachers: map[string]*models.Teacher{
			"teacher-1": {ID: "teacher-1", ShortName: "RKS", FullName: "R. K. Sharma"},
		}},
		&stubRoomFinder{rooms: map[string]*models.Room{
			"room-1": {ID: "room-1", Number: "301"},
		}},
		zap.NewNop(),
		"Test Routine",
	)
}

func TestExportServiceSectionRoutineCSV(t *testing.T) {
	slots := []models.RoutineSlot{
		{
			ID: "s1", AcademicYearID: "ay-1", ProgramID: "prog-1", Semester: 5, Section: "A",
			DayIndex: 0, SlotIndex: 2, SubjectID: "sub-1", TeacherIDs: []string{"teacher-1"},
			RoomID: "room-1", ClassType: models.ClassTypeLecture,
			RecurrenceType: models.RecurrenceWeekly, IsActive: true,
		},
	}
	svc := newExportService(slots)

	file, err := svc.SectionRoutine(context.Background(), ExportFormatCSV, "ay-1", "prog-1", 5, "A")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"))

	body := string(file.Data)
	assert.Contains(t, body, "Sunday")
	assert.Contains(t, body, "CT-501")
	assert.Contains(t, body, "RKS")
	assert.Contains(t, body, "R:301")
	assert.Contains(t, body, "BREAK")
}

func TestExportServiceAlternateWeekAnnotation(t *testing.T) {
	slots := []models.RoutineSlot{
		{
			ID: "s1", DayIndex: 1, SlotIndex: 0, SubjectID: "sub-1", TeacherIDs: []string{"teacher-1"},
			RoomID: "room-1", ClassType: models.ClassTypePractical,
			RecurrenceType: models.RecurrenceAlternate, RecurrencePat: models.PatternOddWeek, IsActive: true,
		},
	}
	svc := newExportService(slots)

	file, err := svc.SectionRoutine(context.Background(), ExportFormatCSV, "ay-1", "prog-1", 5, "A")
	require.NoError(t, err)
	assert.Contains(t, string(file.Data), "ODD weeks")
	assert.Contains(t, string(file.Data), "PRACTICAL")
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	svc := newExportService(nil)

	_, err := svc.SectionRoutine(context.Background(), ExportFormat("docx"), "ay-1", "prog-1", 5, "A")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServicePDFAndExcelRender(t *testing.T) {
	slots := []models.RoutineSlot{
		{
			ID: "s1", DayIndex: 0, SlotIndex: 0, SubjectID: "sub-1", TeacherIDs: []string{"teacher-1"},
			RoomID: "room-1", ClassType: models.ClassTypeLecture,
			RecurrenceType: models.RecurrenceWeekly, IsActive: true,
		},
	}
	svc := newExportService(slots)

	pdf, err := svc.SectionRoutine(context.Background(), ExportFormatPDF, "ay-1", "prog-1", 5, "A")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.NotEmpty(t, pdf.Data)

	xlsx, err := svc.SectionRoutine(context.Background(), ExportFormatExcel, "ay-1", "prog-1", 5, "A")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(xlsx.Filename, ".xlsx"))
	assert.NotEmpty(t, xlsx.Data)
}
