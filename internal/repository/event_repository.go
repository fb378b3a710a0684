package repository

import (
	"context"

	"github.com/stemsi/attendance-backend/internal/model"
)

// EventRepository persists the attendance audit trail.
type EventRepository struct {
	db Querier
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db Querier) *EventRepository {
	return &EventRepository{db: db}
}

// Insert stores an event. Replays of the same event ID are ignored.
func (r *EventRepository) Insert(ctx context.Context, ev *model.AttendanceEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO attendance_events (id, kind, student_id, attendance_id, present, absence_delta, removed, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO NOTHING`,
		ev.ID, string(ev.Kind), ev.StudentID, ev.AttendanceID, ev.Present, ev.AbsenceDelta, ev.Removed, ev.OccurredAt,
	)
	return err
}
