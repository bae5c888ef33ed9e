package routine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sundar404/be-routine-api/internal/models"
)

func spanMember(id, spanID string, pos, slotIndex int, mutate ...func(*models.RoutineSlot)) models.RoutineSlot {
	slot := activeSlot(id, 1, slotIndex, func(s *models.RoutineSlot) {
		s.SpanID = &spanID
		s.SpanPosition = pos
		s.IsSpanned = true
	})
	for _, m := range mutate {
		m(&slot)
	}
	return slot
}

func TestCheckSpanIntegrityCleanSchedule(t *testing.T) {
	slots := []models.RoutineSlot{
		spanMember("s1", "span-1", 0, 2),
		spanMember("s2", "span-1", 1, 3),
		activeSlot("single", 2, 0),
	}

	assert.Empty(t, CheckSpanIntegrity(slots))
}

// A partial clear leaves one spanned member without siblings: that is a
// data-integrity defect to surface, not to repair.
func TestCheckSpanIntegrityOrphanedMember(t *testing.T) {
	slots := []models.RoutineSlot{
		spanMember("s1", "span-1", 0, 2),
		spanMember("s2", "span-1", 1, 3, func(s *models.RoutineSlot) { s.IsActive = false }),
	}

	issues := CheckSpanIntegrity(slots)
	require.Len(t, issues, 1)
	assert.Equal(t, "span-1", issues[0].SpanID)
	assert.Equal(t, []string{"s1"}, issues[0].SlotIDs)
	assert.Contains(t, issues[0].Reason, "siblings")
}

func TestCheckSpanIntegrityNonConsecutivePeriods(t *testing.T) {
	slots := []models.RoutineSlot{
		spanMember("s1", "span-1", 0, 2),
		spanMember("s2", "span-1", 1, 5),
	}

	issues := CheckSpanIntegrity(slots)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Reason, "consecutive")
}

func TestCheckSpanIntegrityMismatchedPayload(t *testing.T) {
	slots := []models.RoutineSlot{
		spanMember("s1", "span-1", 0, 2),
		spanMember("s2", "span-1", 1, 3, func(s *models.RoutineSlot) { s.RoomID = "room-9" }),
	}

	issues := CheckSpanIntegrity(slots)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Reason, "disagree")
}

func TestCheckSpanIntegrityIgnoresInactiveGroups(t *testing.T) {
	slots := []models.RoutineSlot{
		spanMember("s1", "span-1", 0, 2, func(s *models.RoutineSlot) { s.IsActive = false }),
		spanMember("s2", "span-1", 1, 3, func(s *models.RoutineSlot) { s.IsActive = false }),
	}

	assert.Empty(t, CheckSpanIntegrity(slots))
}
