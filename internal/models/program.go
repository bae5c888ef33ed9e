package models

import "time"

// Program represents a degree program offered by a department.
type Program struct {
	ID            string    `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"`
	Name          string    `db:"name" json:"name"`
	DepartmentID  string    `db:"department_id" json:"department_id"`
	SemesterCount int       `db:"semester_count" json:"semester_count"`
	Sections      int       `db:"sections" json:"sections"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramFilter captures filtering options for listing programs.
type ProgramFilter struct {
	DepartmentID string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
