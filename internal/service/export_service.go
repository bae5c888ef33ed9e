package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sundar404/be-routine-api/internal/models"
	appErrors "github.com/sundar404/be-routine-api/pkg/errors"
	"github.com/sundar404/be-routine-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV   ExportFormat = "csv"
	ExportFormatPDF   ExportFormat = "pdf"
	ExportFormatExcel ExportFormat = "xlsx"
)

var exportContentTypes = map[ExportFormat]string{
	ExportFormatCSV:   "text/csv",
	ExportFormatPDF:   "application/pdf",
	ExportFormatExcel: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ExportFile is a rendered routine document streamed back to the client.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type routineExportSource interface {
	List(ctx context.Context, filter models.RoutineSlotFilter) ([]models.RoutineSlot, error)
}

type subjectFinder interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type teacherFinder interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type roomFinder interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type excelRenderer interface {
	Render(data export.Dataset, sheetName string) ([]byte, error)
}

// ExportService renders routine grids as downloadable documents. Documents
// are built in memory and streamed inline, nothing is persisted.
type ExportService struct {
	slots     routineExportSource
	timeSlots timeSlotCatalogRepository
	subjects  subjectFinder
	teachers  teacherFinder
	rooms     roomFinder
	csv       csvRenderer
	pdf       pdfRenderer
	excel     excelRenderer
	logger    *zap.Logger
	title     string
}

// NewExportService constructs an ExportService.
func NewExportService(slots routineExportSource, timeSlots timeSlotCatalogRepository, subjects subjectFinder, teachers teacherFinder, rooms roomFinder, logger *zap.Logger, title string) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Class Routine"
	}
	return &ExportService{
		slots:     slots,
		timeSlots: timeSlots,
		subjects:  subjects,
		teachers:  teachers,
		rooms:     rooms,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(true),
		excel:     export.NewExcelExporter(),
		logger:    logger,
		title:     title,
	}
}

// SectionRoutine renders the weekly grid of one program/semester/section.
func (s *ExportService) SectionRoutine(ctx context.Context, format ExportFormat, academicYearID, programID string, semester int, section string) (*ExportFile, error) {
	filter := models.RoutineSlotFilter{
		AcademicYearID: academicYearID,
		ProgramID:      programID,
		Semester:       semester,
		Section:        section,
		ActiveOnly:     true,
	}
	subtitle := fmt.Sprintf("Semester %d Section %s", semester, section)
	name := fmt.Sprintf("routine_sem%d_%s", semester, strings.ToLower(section))
	return s.render(ctx, format, filter, subtitle, name)
}

// TeacherRoutine renders the weekly grid of one teacher.
func (s *ExportService) TeacherRoutine(ctx context.Context, format ExportFormat, academicYearID, teacherID string) (*ExportFile, error) {
	filter := models.RoutineSlotFilter{
		AcademicYearID: academicYearID,
		TeacherID:      teacherID,
		ActiveOnly:     true,
	}
	subtitle := "Teacher Schedule"
	if teacher, err := s.teachers.FindByID(ctx, teacherID); err == nil {
		subtitle = teacher.FullName
	}
	return s.render(ctx, format, filter, subtitle, "routine_teacher")
}

// RoomRoutine renders the weekly booking grid of one room.
func (s *ExportService) RoomRoutine(ctx context.Context, format ExportFormat, academicYearID, roomID string) (*ExportFile, error) {
	filter := models.RoutineSlotFilter{
		AcademicYearID: academicYearID,
		RoomID:         roomID,
		ActiveOnly:     true,
	}
	subtitle := "Room Schedule"
	if room, err := s.rooms.FindByID(ctx, roomID); err == nil {
		subtitle = fmt.Sprintf("Room %s", room.Number)
	}
	return s.render(ctx, format, filter, subtitle, "routine_room")
}

func (s *ExportService) render(ctx context.Context, format ExportFormat, filter models.RoutineSlotFilter, subtitle, baseName string) (*ExportFile, error) {
	contentType, ok := exportContentTypes[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	slots, err := s.slots.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine slots")
	}
	catalog, err := s.timeSlots.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot catalog")
	}

	dataset := s.buildGrid(ctx, slots, catalog)
	title := fmt.Sprintf("%s: %s", s.title, subtitle)

	var payload []byte
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	case ExportFormatExcel:
		payload, err = s.excel.Render(dataset, "Routine")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("%s_%s.%s", baseName, time.Now().UTC().Format("20060102"), format)
	return &ExportFile{Filename: filename, ContentType: contentType, Data: payload}, nil
}

// buildGrid pivots slots into a day-by-period matrix. Parallel entries on the
// same cell (lab groups, parity tracks) are joined into one cell.
func (s *ExportService) buildGrid(ctx context.Context, slots []models.RoutineSlot, catalog models.TimeSlotCatalog) export.Dataset {
	headers := []string{"Day"}
	for _, def := range catalog {
		header := def.Label
		if def.StartTime != "" && def.EndTime != "" {
			header = fmt.Sprintf("%s (%s-%s)", def.Label, def.StartTime, def.EndTime)
		}
		headers = append(headers, header)
	}

	cells := make(map[int]map[int][]string)
	maxDay := -1
	for i := range slots {
		slot := &slots[i]
		if slot.DayIndex > maxDay {
			maxDay = slot.DayIndex
		}
		if cells[slot.DayIndex] == nil {
			cells[slot.DayIndex] = make(map[int][]string)
		}
		cells[slot.DayIndex][slot.SlotIndex] = append(cells[slot.DayIndex][slot.SlotIndex], s.describeSlot(ctx, slot))
	}

	var rows []map[string]string
	for day := 0; day <= maxDay; day++ {
		row := map[string]string{"Day": dayName(day)}
		for idx, def := range catalog {
			header := headers[idx+1]
			if def.IsBreak {
				row[header] = "BREAK"
				continue
			}
			entries := cells[day][idx]
			sort.Strings(entries)
			row[header] = strings.Join(entries, " / ")
		}
		rows = append(rows, row)
	}

	return export.Dataset{Headers: headers, Rows: rows}
}

// describeSlot builds a compact cell label, preferring human names over ids.
func (s *ExportService) describeSlot(ctx context.Context, slot *models.RoutineSlot) string {
	subjectLabel := slot.SubjectID
	if subject, err := s.subjects.FindByID(ctx, slot.SubjectID); err == nil {
		subjectLabel = subject.Code
	}

	teacherLabels := make([]string, 0, len(slot.TeacherIDs))
	for _, id := range slot.TeacherIDs {
		label := id
		if teacher, err := s.teachers.FindByID(ctx, id); err == nil {
			label = teacher.ShortName
		}
		teacherLabels = append(teacherLabels, label)
	}

	roomLabel := slot.RoomID
	if room, err := s.rooms.FindByID(ctx, slot.RoomID); err == nil {
		roomLabel = room.Number
	}

	parts := []string{subjectLabel}
	if slot.ClassType != models.ClassTypeLecture {
		parts = append(parts, string(slot.ClassType))
	}
	if slot.LabGroupID != nil {
		parts = append(parts, "Grp "+*slot.LabGroupID)
	}
	if len(teacherLabels) > 0 {
		parts = append(parts, strings.Join(teacherLabels, ","))
	}
	parts = append(parts, "R:"+roomLabel)
	if slot.Recurrence().IsAlternate() {
		parts = append(parts, string(slot.RecurrencePat)+" weeks")
	}
	return strings.Join(parts, " ")
}

var weekDayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func dayName(index int) string {
	if index >= 0 && index < len(weekDayNames) {
		return weekDayNames[index]
	}
	return fmt.Sprintf("Day %d", index+1)
}
