package routine

import (
	"fmt"

	"github.com/sundar404/be-routine-api/internal/models"
)

// Proposal describes a requested class assignment: one period, or several
// contiguous periods when SpanLength > 1. The engine never mutates state;
// callers commit the planned slots themselves.
type Proposal struct {
	AcademicYearID string
	ProgramID      string
	Semester       int
	Section        string
	DayIndex       int
	SlotIndex      int
	SpanLength     int
	SubjectID      string
	TeacherIDs     []string
	RoomID         string
	ClassType      models.ClassType
	LabGroupID     *string
	Recurrence     models.Recurrence
}

// ValidationError reports a malformed proposal, detected before any conflict
// evaluation takes place.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid proposal: %s: %s", e.Field, e.Message)
}

// Validate checks the proposal's shape against the day range and the ordered
// time-slot catalog. Conflict evaluation only runs on valid proposals.
func (p *Proposal) Validate(teachingDays int, catalog models.TimeSlotCatalog) error {
	if len(p.TeacherIDs) == 0 {
		return &ValidationError{Field: "teacher_ids", Message: "at least one teacher is required"}
	}
	for _, id := range p.TeacherIDs {
		if id == "" {
			return &ValidationError{Field: "teacher_ids", Message: "teacher id must not be empty"}
		}
	}
	if p.SubjectID == "" {
		return &ValidationError{Field: "subject_id", Message: "subject is required"}
	}
	if p.RoomID == "" {
		return &ValidationError{Field: "room_id", Message: "room is required"}
	}
	if p.DayIndex < 0 || p.DayIndex >= teachingDays {
		return &ValidationError{Field: "day_index", Message: fmt.Sprintf("day index must be between 0 and %d", teachingDays-1)}
	}
	if p.SpanLength < 1 {
		return &ValidationError{Field: "span_length", Message: "span length must be at least 1"}
	}
	if p.SlotIndex < 0 || p.SlotIndex > catalog.MaxIndex() {
		return &ValidationError{Field: "slot_index", Message: "slot index is outside the configured time slots"}
	}
	if last := p.SlotIndex + p.SpanLength - 1; last > catalog.MaxIndex() {
		return &ValidationError{Field: "span_length", Message: fmt.Sprintf("span ends at period %d but the last configured period is %d", last, catalog.MaxIndex())}
	}
	if p.Semester < 1 {
		return &ValidationError{Field: "semester", Message: "semester must be positive"}
	}
	if p.Recurrence.Type == models.RecurrenceAlternate && !p.Recurrence.IsAlternate() {
		return &ValidationError{Field: "recurrence", Message: "alternate recurrence requires an odd or even pattern"}
	}
	return nil
}

// slotIndexes returns every period index the proposal covers, in order.
func (p *Proposal) slotIndexes() []int {
	indexes := make([]int, p.SpanLength)
	for i := range indexes {
		indexes[i] = p.SlotIndex + i
	}
	return indexes
}

// asSlot materializes a transient RoutineSlot for one covered period so the
// proposal can be compared against stored slots with the same predicates.
func (p *Proposal) asSlot(slotIndex int) *models.RoutineSlot {
	return &models.RoutineSlot{
		AcademicYearID: p.AcademicYearID,
		ProgramID:      p.ProgramID,
		Semester:       p.Semester,
		Section:        p.Section,
		DayIndex:       p.DayIndex,
		SlotIndex:      slotIndex,
		SubjectID:      p.SubjectID,
		TeacherIDs:     append([]string(nil), p.TeacherIDs...),
		RoomID:         p.RoomID,
		ClassType:      p.ClassType,
		LabGroupID:     p.LabGroupID,
		RecurrenceType: p.Recurrence.Type,
		RecurrencePat:  p.Recurrence.Pattern,
		IsActive:       true,
	}
}
