package model

import "time"

// Attendance is one presence observation of a student on a date.
type Attendance struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	Date      Date      `json:"date"`
	Present   bool      `json:"present"`
	CreatedAt time.Time `json:"created_at"`
}

// AttendanceDetail is an attendance record joined with its owner's roster row.
type AttendanceDetail struct {
	Attendance
	StudentName  string `json:"student_name"`
	StudentClass string `json:"student_class"`
	AbsenceCount int    `json:"absence_count"`
}

// RegisterAttendanceRequest is the payload for recording presence.
type RegisterAttendanceRequest struct {
	StudentID int    `json:"student_id" binding:"required,min=1"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Present   *bool  `json:"present" binding:"required"`
}

// UpdatePresenceRequest flips the present flag of an existing record.
type UpdatePresenceRequest struct {
	Present *bool `json:"present" binding:"required"`
}

// AttendanceFilter narrows listAttendance. Zero values are ignored.
type AttendanceFilter struct {
	StudentID    *int   `form:"student_id" binding:"omitempty,min=1"`
	Name         string `form:"name"`
	Class        string `form:"class"`
	Date         string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Present      *bool  `form:"present"`
	AbsenceCount *int   `form:"absence_count" binding:"omitempty,min=0"`
	Page
}
