package models

import (
	"time"

	"github.com/lib/pq"
)

// ClassType classifies the kind of scheduled class.
type ClassType string

const (
	ClassTypeLecture   ClassType = "LECTURE"
	ClassTypePractical ClassType = "PRACTICAL"
	ClassTypeTutorial  ClassType = "TUTORIAL"
)

// RecurrenceType distinguishes weekly classes from alternate-week ones.
type RecurrenceType string

const (
	RecurrenceWeekly    RecurrenceType = "WEEKLY"
	RecurrenceAlternate RecurrenceType = "ALTERNATE"
)

// RecurrencePattern selects which week an alternate-week class runs on.
type RecurrencePattern string

const (
	PatternOddWeek  RecurrencePattern = "ODD"
	PatternEvenWeek RecurrencePattern = "EVEN"
)

// Recurrence describes how often a slot occurs. The zero value means weekly.
type Recurrence struct {
	Type    RecurrenceType    `db:"recurrence_type" json:"type"`
	Pattern RecurrencePattern `db:"recurrence_pattern" json:"pattern,omitempty"`
}

// IsAlternate reports whether the slot only runs every other week.
func (r Recurrence) IsAlternate() bool {
	return r.Type == RecurrenceAlternate && (r.Pattern == PatternOddWeek || r.Pattern == PatternEvenWeek)
}

// RoutineSlot is the atomic scheduled unit: one subject occupying one period
// of one teaching day for a program/semester/section. Spanned (multi-period)
// classes are stored as one slot per period linked through SpanID.
type RoutineSlot struct {
	ID             string            `db:"id" json:"id"`
	AcademicYearID string            `db:"academic_year_id" json:"academic_year_id"`
	ProgramID      string            `db:"program_id" json:"program_id"`
	Semester       int               `db:"semester" json:"semester"`
	Section        string            `db:"section" json:"section"`
	DayIndex       int               `db:"day_index" json:"day_index"`
	SlotIndex      int               `db:"slot_index" json:"slot_index"`
	SubjectID      string            `db:"subject_id" json:"subject_id"`
	TeacherIDs     pq.StringArray    `db:"teacher_ids" json:"teacher_ids"`
	RoomID         string            `db:"room_id" json:"room_id"`
	ClassType      ClassType         `db:"class_type" json:"class_type"`
	LabGroupID     *string           `db:"lab_group_id" json:"lab_group_id,omitempty"`
	SpanID         *string           `db:"span_id" json:"span_id,omitempty"`
	SpanPosition   int               `db:"span_position" json:"span_position"`
	IsSpanned      bool              `db:"is_spanned" json:"is_spanned"`
	RecurrenceType RecurrenceType    `db:"recurrence_type" json:"recurrence_type"`
	RecurrencePat  RecurrencePattern `db:"recurrence_pattern" json:"recurrence_pattern,omitempty"`
	IsActive       bool              `db:"is_active" json:"is_active"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// Recurrence assembles the slot's recurrence descriptor.
func (s *RoutineSlot) Recurrence() Recurrence {
	return Recurrence{Type: s.RecurrenceType, Pattern: s.RecurrencePat}
}

// SemesterParityOdd reports whether the slot's semester sits on the odd track.
func (s *RoutineSlot) SemesterParityOdd() bool {
	return s.Semester%2 == 1
}

// SameSection reports whether two slots target the same program/semester/section.
func (s *RoutineSlot) SameSection(other *RoutineSlot) bool {
	return s.ProgramID == other.ProgramID && s.Semester == other.Semester && s.Section == other.Section
}

// RoutineSlotFilter narrows routine queries to one scheduling scope.
type RoutineSlotFilter struct {
	AcademicYearID string
	ProgramID      string
	Semester       int
	Section        string
	TeacherID      string
	RoomID         string
	DayIndex       *int
	ActiveOnly     bool
}

// ConflictType identifies the exclusivity dimension a proposal violated.
type ConflictType string

const (
	ConflictTeacher ConflictType = "TEACHER"
	ConflictRoom    ConflictType = "ROOM"
	ConflictSection ConflictType = "SECTION"
)

// Conflict describes one collision between a proposal and an existing slot.
type Conflict struct {
	Type      ConflictType `json:"type"`
	SlotID    string       `json:"slot_id"`
	DayIndex  int          `json:"day_index"`
	SlotIndex int          `json:"slot_index"`
	TeacherID string       `json:"teacher_id,omitempty"`
	RoomID    string       `json:"room_id,omitempty"`
	Message   string       `json:"message"`
}

// ConflictResult is the outcome of a conflict check. IsValid is true only
// when the conflict list is empty.
type ConflictResult struct {
	IsValid   bool       `json:"is_valid"`
	Conflicts []Conflict `json:"conflicts"`
}

// ConflictResultError carries a failed conflict check across layer boundaries.
type ConflictResultError struct {
	Result ConflictResult `json:"result"`
}

// Error implements the error interface.
func (e *ConflictResultError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Result.Conflicts) > 0 {
		return e.Result.Conflicts[0].Message
	}
	return "routine conflict"
}

// SpanIntegrityIssue flags a span group whose stored members violate the
// span invariants (missing siblings, gaps, mismatched payloads). Reported to
// administrators, never auto-repaired.
type SpanIntegrityIssue struct {
	SpanID  string   `json:"span_id"`
	SlotIDs []string `json:"slot_ids"`
	Reason  string   `json:"reason"`
}
