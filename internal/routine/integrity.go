package routine

import (
	"fmt"
	"sort"

	"github.com/sundar404/be-routine-api/internal/models"
)

// CheckSpanIntegrity scans active slots for span groups that violate the
// span invariants: members must share one day, cover strictly consecutive
// periods with positions 0..n-1, and carry identical subject, teachers, room
// and class type. Violations indicate a data-integrity defect (for example a
// partial clear) and are reported for an administrator, never repaired here.
func CheckSpanIntegrity(slots []models.RoutineSlot) []models.SpanIntegrityIssue {
	groups := make(map[string][]*models.RoutineSlot)
	for i := range slots {
		slot := &slots[i]
		if !slot.IsActive || slot.SpanID == nil {
			continue
		}
		groups[*slot.SpanID] = append(groups[*slot.SpanID], slot)
	}

	var issues []models.SpanIntegrityIssue
	for spanID, members := range groups {
		if reason := spanGroupDefect(members); reason != "" {
			ids := make([]string, len(members))
			for i, m := range members {
				ids[i] = m.ID
			}
			sort.Strings(ids)
			issues = append(issues, models.SpanIntegrityIssue{SpanID: spanID, SlotIDs: ids, Reason: reason})
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].SpanID < issues[j].SpanID })
	return issues
}

func spanGroupDefect(members []*models.RoutineSlot) string {
	if len(members) == 1 && members[0].IsSpanned {
		return "spanned slot has no active siblings"
	}

	sort.Slice(members, func(i, j int) bool { return members[i].SpanPosition < members[j].SpanPosition })
	head := members[0]
	for i, m := range members {
		if m.SpanPosition != i {
			return fmt.Sprintf("span positions are not contiguous at position %d", m.SpanPosition)
		}
		if m.DayIndex != head.DayIndex {
			return "span members cross days"
		}
		if m.SlotIndex != head.SlotIndex+i {
			return fmt.Sprintf("span periods are not consecutive at position %d", i)
		}
		if m.SubjectID != head.SubjectID || m.RoomID != head.RoomID || m.ClassType != head.ClassType {
			return "span members disagree on subject, room or class type"
		}
		if !sameTeacherSet(m.TeacherIDs, head.TeacherIDs) {
			return "span members disagree on teachers"
		}
	}
	return ""
}

func sameTeacherSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]int, len(a))
	for _, id := range a {
		set[id]++
	}
	for _, id := range b {
		set[id]--
		if set[id] < 0 {
			return false
		}
	}
	return true
}
