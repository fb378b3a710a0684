package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/attendance-backend/internal/model"
)

// EventPublisher receives attendance events after their unit has committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev *model.AttendanceEvent) error
}

// NopPublisher discards events. Used when no event queue is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *model.AttendanceEvent) error { return nil }

func newEvent(kind model.EventKind, studentID int) *model.AttendanceEvent {
	return &model.AttendanceEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		StudentID:  studentID,
		OccurredAt: time.Now().UTC(),
	}
}

// flipDelta is the absence counter adjustment when a record's present flag
// changes to present.
func flipDelta(present bool) int {
	if present {
		return -1
	}
	return 1
}
