package routine

import (
	"fmt"

	"github.com/sundar404/be-routine-api/internal/models"
)

// Checker evaluates proposals against the active schedule for one scope. It
// is pure: the caller loads the candidate slots and commits accepted
// assignments itself, inside the same critical section as the check.
type Checker struct {
	teachingDays int
	catalog      models.TimeSlotCatalog
}

// NewChecker builds a Checker for the given day range and ordered catalog.
// The catalog must already be sorted by sort_order; slot indexes are
// positions within that ordering.
func NewChecker(teachingDays int, catalog models.TimeSlotCatalog) *Checker {
	return &Checker{teachingDays: teachingDays, catalog: catalog}
}

// CheckConflicts decides whether the proposal can be committed. A non-nil
// error reports a malformed proposal; conflicts are never errors, they are
// enumerated in the result so callers can show all of them at once.
func (c *Checker) CheckConflicts(p *Proposal, existing []models.RoutineSlot) (models.ConflictResult, error) {
	if err := p.Validate(c.teachingDays, c.catalog); err != nil {
		return models.ConflictResult{}, err
	}

	covered := make(map[int]struct{}, p.SpanLength)
	for _, idx := range p.slotIndexes() {
		covered[idx] = struct{}{}
	}

	var conflicts []models.Conflict
	for i := range existing {
		candidate := &existing[i]
		if !candidate.IsActive || candidate.DayIndex != p.DayIndex {
			continue
		}
		if _, ok := covered[candidate.SlotIndex]; !ok {
			continue
		}

		proposed := p.asSlot(candidate.SlotIndex)
		exemption := ExemptionBetween(proposed, candidate)
		if exemption.Skip() {
			continue
		}

		conflicts = append(conflicts, dimensionConflicts(proposed, candidate, exemption)...)
	}

	return models.ConflictResult{IsValid: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// dimensionConflicts partitions one overlapping pair by conflict dimension.
// Teacher and room are always evaluated; the section dimension is waived for
// parallel lab groups.
func dimensionConflicts(proposed, candidate *models.RoutineSlot, exemption Exemption) []models.Conflict {
	var conflicts []models.Conflict

	for _, teacherID := range sharedTeachers(proposed.TeacherIDs, candidate.TeacherIDs) {
		conflicts = append(conflicts, models.Conflict{
			Type:      models.ConflictTeacher,
			SlotID:    candidate.ID,
			DayIndex:  candidate.DayIndex,
			SlotIndex: candidate.SlotIndex,
			TeacherID: teacherID,
			Message:   fmt.Sprintf("teacher %s already teaches at day %d period %d", teacherID, candidate.DayIndex, candidate.SlotIndex),
		})
	}

	if proposed.RoomID == candidate.RoomID {
		conflicts = append(conflicts, models.Conflict{
			Type:      models.ConflictRoom,
			SlotID:    candidate.ID,
			DayIndex:  candidate.DayIndex,
			SlotIndex: candidate.SlotIndex,
			RoomID:    candidate.RoomID,
			Message:   fmt.Sprintf("room %s is already booked at day %d period %d", candidate.RoomID, candidate.DayIndex, candidate.SlotIndex),
		})
	}

	if exemption != ExemptLabGroups && proposed.SameSection(candidate) {
		conflicts = append(conflicts, models.Conflict{
			Type:      models.ConflictSection,
			SlotID:    candidate.ID,
			DayIndex:  candidate.DayIndex,
			SlotIndex: candidate.SlotIndex,
			Message:   fmt.Sprintf("section %s semester %d already has a class at day %d period %d", candidate.Section, candidate.Semester, candidate.DayIndex, candidate.SlotIndex),
		})
	}

	return conflicts
}

func sharedTeachers(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	var shared []string
	for _, id := range b {
		if _, ok := set[id]; ok {
			shared = append(shared, id)
		}
	}
	return shared
}
