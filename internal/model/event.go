package model

import "time"

// EventKind names the compound operation that produced an AttendanceEvent.
type EventKind string

const (
	EventAttendanceRegistered EventKind = "attendance_registered"
	EventAttendanceUpdated    EventKind = "attendance_updated"
	EventAttendanceRemoved    EventKind = "attendance_removed"
	EventStudentRemoved       EventKind = "student_removed"
)

// AttendanceEvent describes one committed change to attendance state.
// AbsenceDelta is the adjustment applied to the student's absence counter.
type AttendanceEvent struct {
	ID           string    `json:"id"`
	Kind         EventKind `json:"kind"`
	StudentID    int       `json:"student_id"`
	AttendanceID *int      `json:"attendance_id,omitempty"`
	Present      *bool     `json:"present,omitempty"`
	AbsenceDelta int       `json:"absence_delta"`
	Removed      int       `json:"removed,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
