package models

import "time"

// TimeSlotDefinition is one entry of the ordered period catalog. Slots are
// always compared by SortOrder, never by array position.
type TimeSlotDefinition struct {
	ID        string    `db:"id" json:"id"`
	Label     string    `db:"label" json:"label"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	SortOrder int       `db:"sort_order" json:"sort_order"`
	IsBreak   bool      `db:"is_break" json:"is_break"`
	ProgramID *string   `db:"program_id" json:"program_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TimeSlotCatalog is a set of slot definitions sorted by SortOrder.
type TimeSlotCatalog []TimeSlotDefinition

// ByIndex returns the definition at the given canonical slot index.
func (c TimeSlotCatalog) ByIndex(index int) (*TimeSlotDefinition, bool) {
	if index < 0 || index >= len(c) {
		return nil, false
	}
	return &c[index], true
}

// MaxIndex returns the highest valid slot index, or -1 for an empty catalog.
func (c TimeSlotCatalog) MaxIndex() int {
	return len(c) - 1
}
