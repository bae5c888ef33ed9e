package routine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundar404/be-routine-api/internal/models"
)

func TestPlanSpanSinglePeriod(t *testing.T) {
	checker := newTestChecker()

	slots, err := checker.PlanSpan(baseProposal(), nil)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.False(t, slots[0].IsSpanned)
	assert.Equal(t, 0, slots[0].SpanPosition)
	require.NotNil(t, slots[0].SpanID)
	assert.True(t, slots[0].IsActive)
}

func TestPlanSpanMultiPeriod(t *testing.T) {
	checker := newTestChecker()

	proposal := baseProposal()
	proposal.SlotIndex = 0
	proposal.SpanLength = 3
	proposal.ClassType = models.ClassTypePractical

	slots, err := checker.PlanSpan(proposal, nil)
	require.NoError(t, err)
	require.Len(t, slots, 3)

	spanID := *slots[0].SpanID
	for pos, slot := range slots {
		assert.Equal(t, spanID, *slot.SpanID)
		assert.Equal(t, pos, slot.SpanPosition)
		assert.Equal(t, pos, slot.SlotIndex)
		assert.True(t, slot.IsSpanned)
		assert.Equal(t, proposal.SubjectID, slot.SubjectID)
		assert.Equal(t, proposal.RoomID, slot.RoomID)
	}
}

// A span whose middle period collides is rejected whole; nothing is planned
// and the existing schedule is untouched.
func TestPlanSpanAtomicRejection(t *testing.T) {
	checker := newTestChecker()
	existing := []models.RoutineSlot{activeSlot("blocker", 1, 1, func(s *models.RoutineSlot) {
		s.Semester = 7
		s.Section = "B"
	})}

	proposal := baseProposal()
	proposal.SlotIndex = 0
	proposal.SpanLength = 3
	proposal.TeacherIDs = []string{"teacher-1"}

	slots, err := checker.PlanSpan(proposal, existing)
	assert.Nil(t, slots)
	var spanErr *SpanError
	require.ErrorAs(t, err, &spanErr)
	assert.Equal(t, SpanPeriodBlocked, spanErr.Code)
	assert.Equal(t, 1, spanErr.SlotIndex)
	require.Len(t, spanErr.Conflicts, 1)
	assert.Equal(t, models.ConflictTeacher, spanErr.Conflicts[0].Type)
	assert.Equal(t, "blocker", spanErr.Conflicts[0].SlotID)

	// The blocker itself is unchanged.
	assert.True(t, existing[0].IsActive)
}

// Test catalog marks period 4 as the lunch break.
func TestPlanSpanCrossingBreak(t *testing.T) {
	checker := newTestChecker()

	proposal := baseProposal()
	proposal.SlotIndex = 3
	proposal.SpanLength = 3 // covers 3,4,5

	_, err := checker.PlanSpan(proposal, nil)
	var spanErr *SpanError
	require.ErrorAs(t, err, &spanErr)
	assert.Equal(t, SpanCrossesBreak, spanErr.Code)
	assert.Equal(t, 4, spanErr.SlotIndex)
}

func TestPlanSpanOnBreakPeriod(t *testing.T) {
	checker := newTestChecker()

	proposal := baseProposal()
	proposal.SlotIndex = 4
	proposal.SpanLength = 1

	_, err := checker.PlanSpan(proposal, nil)
	var spanErr *SpanError
	require.ErrorAs(t, err, &spanErr)
	assert.Equal(t, SpanCrossesBreak, spanErr.Code)
}

// A span running past the catalog end is malformed, so both the dry-run
// check and the planner reject it the same way before conflict evaluation.
func TestPlanSpanOutOfBounds(t *testing.T) {
	checker := newTestChecker()

	proposal := baseProposal()
	proposal.SlotIndex = 6
	proposal.SpanLength = 3 // ends at 8, last period is 7

	_, err := checker.PlanSpan(proposal, nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "span_length", vErr.Field)

	result, checkErr := checker.CheckConflicts(proposal, nil)
	require.ErrorAs(t, checkErr, &vErr)
	assert.False(t, result.IsValid)
}

// Parallel lab groups of the same subject can occupy the same span range as
// long as teacher and room differ; a third group reusing a teacher cannot.
func TestPlanSpanParallelLabGroups(t *testing.T) {
	checker := newTestChecker()

	groupA := "G-A"
	first := baseProposal()
	first.DayIndex = 2
	first.SlotIndex = 5
	first.SpanLength = 2
	first.SubjectID = "sub-lab"
	first.ClassType = models.ClassTypePractical
	first.LabGroupID = &groupA
	first.TeacherIDs = []string{"teacher-x"}
	first.RoomID = "room-x"

	committed, err := checker.PlanSpan(first, nil)
	require.NoError(t, err)
	require.Len(t, committed, 2)

	groupB := "G-B"
	second := baseProposal()
	second.DayIndex = 2
	second.SlotIndex = 5
	second.SpanLength = 2
	second.SubjectID = "sub-lab"
	second.ClassType = models.ClassTypePractical
	second.LabGroupID = &groupB
	second.TeacherIDs = []string{"teacher-y"}
	second.RoomID = "room-y"

	planned, err := checker.PlanSpan(second, committed)
	require.NoError(t, err)
	committed = append(committed, planned...)

	groupC := "G-C"
	third := baseProposal()
	third.DayIndex = 2
	third.SlotIndex = 5
	third.SpanLength = 2
	third.SubjectID = "sub-lab"
	third.ClassType = models.ClassTypePractical
	third.LabGroupID = &groupC
	third.TeacherIDs = []string{"teacher-x"}
	third.RoomID = "room-z"

	_, err = checker.PlanSpan(third, committed)
	var spanErr *SpanError
	require.ErrorAs(t, err, &spanErr)
	assert.Equal(t, SpanPeriodBlocked, spanErr.Code)
	require.NotEmpty(t, spanErr.Conflicts)
	assert.Equal(t, models.ConflictTeacher, spanErr.Conflicts[0].Type)
}
