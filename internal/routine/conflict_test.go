package routine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundar404/be-routine-api/internal/models"
)

func testCatalog(n int, breaks ...int) models.TimeSlotCatalog {
	breakSet := make(map[int]bool, len(breaks))
	for _, b := range breaks {
		breakSet[b] = true
	}
	catalog := make(models.TimeSlotCatalog, n)
	for i := range catalog {
		catalog[i] = models.TimeSlotDefinition{
			ID:        fmt.Sprintf("ts-%d", i),
			Label:     fmt.Sprintf("P%d", i+1),
			SortOrder: i,
			IsBreak:   breakSet[i],
		}
	}
	return catalog
}

func newTestChecker() *Checker {
	return NewChecker(6, testCatalog(8, 4))
}

func activeSlot(id string, day, index int, mutate ...func(*models.RoutineSlot)) models.RoutineSlot {
	slot := models.RoutineSlot{
		ID:             id,
		AcademicYearID: "ay-1",
		ProgramID:      "prog-1",
		Semester:       5,
		Section:        "A",
		DayIndex:       day,
		SlotIndex:      index,
		SubjectID:      "sub-1",
		TeacherIDs:     []string{"teacher-1"},
		RoomID:         "room-1",
		ClassType:      models.ClassTypeLecture,
		RecurrenceType: models.RecurrenceWeekly,
		IsActive:       true,
	}
	for _, m := range mutate {
		m(&slot)
	}
	return slot
}

func baseProposal() *Proposal {
	return &Proposal{
		AcademicYearID: "ay-1",
		ProgramID:      "prog-1",
		Semester:       5,
		Section:        "A",
		DayIndex:       1,
		SlotIndex:      3,
		SpanLength:     1,
		SubjectID:      "sub-2",
		TeacherIDs:     []string{"teacher-2"},
		RoomID:         "room-2",
		ClassType:      models.ClassTypeLecture,
		Recurrence:     models.Recurrence{Type: models.RecurrenceWeekly},
	}
}

func TestCheckConflictsRejectsMalformedProposal(t *testing.T) {
	checker := newTestChecker()

	cases := map[string]func(*Proposal){
		"no teachers":       func(p *Proposal) { p.TeacherIDs = nil },
		"empty teacher id":  func(p *Proposal) { p.TeacherIDs = []string{""} },
		"missing subject":   func(p *Proposal) { p.SubjectID = "" },
		"missing room":      func(p *Proposal) { p.RoomID = "" },
		"negative day":      func(p *Proposal) { p.DayIndex = -1 },
		"day out of range":  func(p *Proposal) { p.DayIndex = 6 },
		"zero span":         func(p *Proposal) { p.SpanLength = 0 },
		"slot out of range": func(p *Proposal) { p.SlotIndex = 8 },
		"span tail past last period": func(p *Proposal) {
			p.SlotIndex = 6
			p.SpanLength = 3 // ends at 8, last period is 7
		},
		"bad recurrence":    func(p *Proposal) { p.Recurrence = models.Recurrence{Type: models.RecurrenceAlternate} },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			proposal := baseProposal()
			mutate(proposal)
			_, err := checker.CheckConflicts(proposal, nil)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
		})
	}
}

func TestCheckConflictsEmptySchedule(t *testing.T) {
	checker := newTestChecker()

	result, err := checker.CheckConflicts(baseProposal(), nil)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Conflicts)
}

func TestCheckConflictsTeacherDimension(t *testing.T) {
	checker := newTestChecker()
	existing := []models.RoutineSlot{activeSlot("slot-1", 1, 3)}

	proposal := baseProposal()
	proposal.Semester = 7 // same odd track as semester 5
	proposal.Section = "B"
	proposal.TeacherIDs = []string{"teacher-1", "teacher-9"}

	result, err := checker.CheckConflicts(proposal, existing)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictTeacher, result.Conflicts[0].Type)
	assert.Equal(t, "slot-1", result.Conflicts[0].SlotID)
	assert.Equal(t, "teacher-1", result.Conflicts[0].TeacherID)
}

func TestCheckConflictsRoomDimension(t *testing.T) {
	checker := newTestChecker()
	existing := []models.RoutineSlot{activeSlot("slot-1", 1, 3)}

	proposal := baseProposal()
	proposal.Semester = 7
	proposal.Section = "B"
	proposal.RoomID = "room-1"

	result, err := checker.CheckConflicts(proposal, existing)
	require.NoError(t, err)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictRoom, result.Conflicts[0].Type)
	assert.Equal(t, "room-1", result.Conflicts[0].RoomID)
}

func TestCheckConflictsSectionDimension(t *testing.T) {
	checker := newTestChecker()
	existing := []models.RoutineSlot{activeSlot("slot-1", 1, 3)}

	// Same section, different subject/teacher/room: still a section conflict.
	result, err := checker.CheckConflicts(baseProposal(), existing)
	require.NoError(t, err)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictSection, result.Conflicts[0].Type)
}

func TestCheckConflictsIgnoresInactiveAndOtherPeriods(t *testing.T) {
	checker := newTestChecker()
	existing := []models.RoutineSlot{
		activeSlot("cleared", 1, 3, func(s *models.RoutineSlot) { s.IsActive = false }),
		activeSlot("other-day", 2, 3),
		activeSlot("other-period", 1, 5),
	}

	proposal := baseProposal()
	proposal.TeacherIDs = []string{"teacher-1"}
	proposal.RoomID = "room-1"
	proposal.Section = "B"
	proposal.Semester = 7

	result, err := checker.CheckConflicts(proposal, existing)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

// Teacher, room and section are symmetric relations: if A conflicts with B
// then proposing A against a schedule holding B reports the mirror image.
func TestConflictSymmetry(t *testing.T) {
	checker := newTestChecker()

	a := activeSlot("slot-a", 1, 3)
	b := activeSlot("slot-b", 1, 3, func(s *models.RoutineSlot) {
		s.Semester = 7
		s.Section = "B"
		s.SubjectID = "sub-9"
		s.RoomID = "room-9"
	})

	proposalFrom := func(s models.RoutineSlot) *Proposal {
		return &Proposal{
			AcademicYearID: s.AcademicYearID,
			ProgramID:      s.ProgramID,
			Semester:       s.Semester,
			Section:        s.Section,
			DayIndex:       s.DayIndex,
			SlotIndex:      s.SlotIndex,
			SpanLength:     1,
			SubjectID:      s.SubjectID,
			TeacherIDs:     s.TeacherIDs,
			RoomID:         s.RoomID,
			ClassType:      s.ClassType,
			Recurrence:     s.Recurrence(),
		}
	}

	forward, err := checker.CheckConflicts(proposalFrom(a), []models.RoutineSlot{b})
	require.NoError(t, err)
	backward, err := checker.CheckConflicts(proposalFrom(b), []models.RoutineSlot{a})
	require.NoError(t, err)

	assert.Equal(t, forward.IsValid, backward.IsValid)
	assert.Len(t, backward.Conflicts, len(forward.Conflicts))
}

func TestParityExemption(t *testing.T) {
	checker := newTestChecker()
	existing := []models.RoutineSlot{activeSlot("slot-1", 1, 3)} // semester 5, odd

	proposal := baseProposal()
	proposal.Semester = 6 // even track
	proposal.TeacherIDs = []string{"teacher-1"}
	proposal.RoomID = "room-1"

	result, err := checker.CheckConflicts(proposal, existing)
	require.NoError(t, err)
	assert.True(t, result.IsValid, "different parity tracks never conflict")
}

func TestAlternateWeekExemption(t *testing.T) {
	checker := newTestChecker()
	existing := []models.RoutineSlot{activeSlot("slot-1", 1, 3, func(s *models.RoutineSlot) {
		s.RecurrenceType = models.RecurrenceAlternate
		s.RecurrencePat = models.PatternOddWeek
	})}

	proposal := baseProposal()
	proposal.Semester = 7
	proposal.Section = "B"
	proposal.TeacherIDs = []string{"teacher-1"}
	proposal.Recurrence = models.Recurrence{Type: models.RecurrenceAlternate, Pattern: models.PatternEvenWeek}

	result, err := checker.CheckConflicts(proposal, existing)
	require.NoError(t, err)
	assert.True(t, result.IsValid, "opposite alternate-week patterns never meet")

	// Same pattern on both sides collides as usual.
	proposal.Recurrence.Pattern = models.PatternOddWeek
	result, err = checker.CheckConflicts(proposal, existing)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictTeacher, result.Conflicts[0].Type)
}

func TestLabGroupsFullyIndependent(t *testing.T) {
	checker := newTestChecker()
	groupA := "A1"
	existing := []models.RoutineSlot{activeSlot("slot-1", 1, 3, func(s *models.RoutineSlot) {
		s.ClassType = models.ClassTypePractical
		s.LabGroupID = &groupA
	})}

	groupB := "A2"
	proposal := baseProposal()
	proposal.SubjectID = "sub-1"
	proposal.ClassType = models.ClassTypePractical
	proposal.LabGroupID = &groupB

	result, err := checker.CheckConflicts(proposal, existing)
	require.NoError(t, err)
	assert.True(t, result.IsValid, "parallel groups with distinct teacher and room are independent")
}

func TestLabGroupsShareTeacher(t *testing.T) {
	checker := newTestChecker()
	groupA := "A1"
	existing := []models.RoutineSlot{activeSlot("slot-1", 1, 3, func(s *models.RoutineSlot) {
		s.ClassType = models.ClassTypePractical
		s.LabGroupID = &groupA
	})}

	groupB := "A2"
	proposal := baseProposal()
	proposal.SubjectID = "sub-1"
	proposal.ClassType = models.ClassTypePractical
	proposal.LabGroupID = &groupB
	proposal.TeacherIDs = []string{"teacher-1"}

	result, err := checker.CheckConflicts(proposal, existing)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictTeacher, result.Conflicts[0].Type, "section exemption never waives the teacher dimension")
}

func TestLabGroupExemptionRequiresSameSubject(t *testing.T) {
	checker := newTestChecker()
	groupA := "A1"
	existing := []models.RoutineSlot{activeSlot("slot-1", 1, 3, func(s *models.RoutineSlot) {
		s.LabGroupID = &groupA
	})}

	groupB := "A2"
	proposal := baseProposal() // sub-2, not sub-1
	proposal.LabGroupID = &groupB

	result, err := checker.CheckConflicts(proposal, existing)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictSection, result.Conflicts[0].Type)
}

// Scenario from the timetable office: teacher T holds Monday period 3 for
// semester 5. Reusing T at the same time works for semester 6 (even track)
// but not for semester 7 (same odd track).
func TestParityTrackScenario(t *testing.T) {
	checker := newTestChecker()
	existing := []models.RoutineSlot{activeSlot("sem5-slot", 1, 3)}

	evenTrack := baseProposal()
	evenTrack.Semester = 6
	evenTrack.TeacherIDs = []string{"teacher-1"}
	evenTrack.RoomID = "room-2"

	result, err := checker.CheckConflicts(evenTrack, existing)
	require.NoError(t, err)
	assert.True(t, result.IsValid)

	oddTrack := baseProposal()
	oddTrack.Semester = 7
	oddTrack.Section = "B"
	oddTrack.TeacherIDs = []string{"teacher-1"}
	oddTrack.RoomID = "room-3"

	result, err = checker.CheckConflicts(oddTrack, existing)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, models.ConflictTeacher, result.Conflicts[0].Type)
	assert.Equal(t, "sem5-slot", result.Conflicts[0].SlotID)
}

func TestExemptionTableOrderAndSymmetry(t *testing.T) {
	odd := activeSlot("a", 1, 3)
	even := activeSlot("b", 1, 3, func(s *models.RoutineSlot) {
		s.Semester = 6
		s.RecurrenceType = models.RecurrenceAlternate
		s.RecurrencePat = models.PatternEvenWeek
	})

	// Parity wins over any later row.
	assert.Equal(t, ExemptParityTrack, ExemptionBetween(&odd, &even))
	assert.Equal(t, ExemptionBetween(&even, &odd), ExemptionBetween(&odd, &even))

	same := activeSlot("c", 1, 3)
	assert.Equal(t, ExemptNone, ExemptionBetween(&odd, &same))
}
