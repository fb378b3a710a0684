package model

import "time"

// Student is one roster row. AbsenceCount mirrors the number of the student's
// attendance records with Present == false.
type Student struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Class        string    `json:"class"`
	AbsenceCount int       `json:"absence_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateStudentRequest is the payload for adding a student to the roster.
type CreateStudentRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=120"`
	Class        string `json:"class" binding:"required,min=1,max=40"`
	AbsenceCount int    `json:"absence_count" binding:"omitempty,min=0"`
}

// UpdateStudentRequest overwrites every mutable roster field, the absence
// counter included.
type UpdateStudentRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=120"`
	Class        string `json:"class" binding:"required,min=1,max=40"`
	AbsenceCount *int   `json:"absence_count" binding:"required,min=0"`
}

// StudentFilter narrows listStudents. Zero values are ignored.
type StudentFilter struct {
	ID           *int   `form:"id" binding:"omitempty,min=1"`
	Name         string `form:"name"`
	Class        string `form:"class"`
	AbsenceCount *int   `form:"absence_count" binding:"omitempty,min=0"`
	Page
}

// Page is the optional offset/limit window of a list query.
type Page struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}
