package routine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/sundar404/be-routine-api/internal/models"
)

// SpanFailCode identifies why a span request was rejected.
type SpanFailCode string

const (
	SpanCrossesBreak  SpanFailCode = "SPAN_CROSSES_BREAK"
	SpanPeriodBlocked SpanFailCode = "SPAN_PERIOD_BLOCKED"
)

// SpanError rejects a span request as a whole. SlotIndex points at the
// offending period; Conflicts is populated for SpanPeriodBlocked.
type SpanError struct {
	Code      SpanFailCode
	SlotIndex int
	Message   string
	Conflicts []models.Conflict
}

// Error implements the error interface.
func (e *SpanError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// PlanSpan expands the proposal into one RoutineSlot per covered period and
// validates the whole request atomically: every period must sit off break
// slots and be conflict free, or nothing is planned. Members of a
// multi-period span share a freshly assigned span id with increasing
// positions.
func (c *Checker) PlanSpan(p *Proposal, existing []models.RoutineSlot) ([]models.RoutineSlot, error) {
	if err := p.Validate(c.teachingDays, c.catalog); err != nil {
		return nil, err
	}

	for _, idx := range p.slotIndexes() {
		def, ok := c.catalog.ByIndex(idx)
		if ok && def.IsBreak {
			return nil, &SpanError{
				Code:      SpanCrossesBreak,
				SlotIndex: idx,
				Message:   fmt.Sprintf("period %d (%s) is a break", idx, def.Label),
			}
		}
	}

	result, err := c.CheckConflicts(p, existing)
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		first := result.Conflicts[0]
		return nil, &SpanError{
			Code:      SpanPeriodBlocked,
			SlotIndex: first.SlotIndex,
			Message:   first.Message,
			Conflicts: result.Conflicts,
		}
	}

	spanID := uuid.NewString()
	spanned := p.SpanLength > 1
	slots := make([]models.RoutineSlot, 0, p.SpanLength)
	for pos, idx := range p.slotIndexes() {
		slot := p.asSlot(idx)
		slot.ID = uuid.NewString()
		slot.SpanID = &spanID
		slot.SpanPosition = pos
		slot.IsSpanned = spanned
		slots = append(slots, *slot)
	}
	return slots, nil
}
