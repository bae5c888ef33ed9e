package models

import "time"

// Subject represents an academic subject offered within a program semester.
type Subject struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	ProgramID   string    `db:"program_id" json:"program_id"`
	Semester    int       `db:"semester" json:"semester"`
	CreditHours float64   `db:"credit_hours" json:"credit_hours"`
	DefaultType ClassType `db:"default_class_type" json:"default_class_type"`
	IsElective  bool      `db:"is_elective" json:"is_elective"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	ProgramID string
	Semester  int
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
