package routine

import "github.com/sundar404/be-routine-api/internal/models"

// Exemption explains why two slots sharing a day and period do not collide.
type Exemption int

const (
	// ExemptNone means no exemption applies; dimension checks decide.
	ExemptNone Exemption = iota
	// ExemptParityTrack applies when the semesters sit on different
	// odd/even tracks, which never run in the same physical week.
	ExemptParityTrack
	// ExemptAlternateWeeks applies when both slots recur on alternate
	// weeks with complementary patterns.
	ExemptAlternateWeeks
	// ExemptLabGroups applies when the slots are parallel lab groups of
	// the same practical session. Only the section dimension is waived;
	// each group's teacher and room are still checked.
	ExemptLabGroups
)

// String returns a stable name for logging.
func (e Exemption) String() string {
	switch e {
	case ExemptParityTrack:
		return "PARITY_TRACK"
	case ExemptAlternateWeeks:
		return "ALTERNATE_WEEKS"
	case ExemptLabGroups:
		return "LAB_GROUPS"
	default:
		return "NONE"
	}
}

// Skip reports whether the pair is dropped from conflict evaluation entirely.
func (e Exemption) Skip() bool {
	return e == ExemptParityTrack || e == ExemptAlternateWeeks
}

// ExemptionBetween applies the exemption decision table to two slots that
// nominally occupy the same day and period. Rows are evaluated in order and
// the first match wins. The relation is symmetric.
func ExemptionBetween(a, b *models.RoutineSlot) Exemption {
	if a.SemesterParityOdd() != b.SemesterParityOdd() {
		return ExemptParityTrack
	}
	if complementaryRecurrence(a.Recurrence(), b.Recurrence()) {
		return ExemptAlternateWeeks
	}
	if parallelLabGroups(a, b) {
		return ExemptLabGroups
	}
	return ExemptNone
}

func complementaryRecurrence(a, b models.Recurrence) bool {
	return a.IsAlternate() && b.IsAlternate() && a.Pattern != b.Pattern
}

func parallelLabGroups(a, b *models.RoutineSlot) bool {
	if !a.SameSection(b) || a.SubjectID != b.SubjectID {
		return false
	}
	if a.LabGroupID == nil || b.LabGroupID == nil {
		return false
	}
	return *a.LabGroupID != *b.LabGroupID
}
