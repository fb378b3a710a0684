package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/apperror"
	"github.com/stemsi/attendance-backend/internal/model"
)

// AttendanceService keeps every student's absence_count equal to the number
// of their records with present == false. Each mutation runs as one atomic
// unit that changes the record and applies the matching counter adjustment.
//
// Units lock the owning student row before touching any attendance row, so
// mutations against one student serialize and never deadlock each other.
type AttendanceService struct {
	stores Stores
	tx     Transactor
	events EventPublisher
	log    zerolog.Logger
}

// NewAttendanceService creates a new AttendanceService. stores serves reads
// outside of any unit.
func NewAttendanceService(stores Stores, tx Transactor, events EventPublisher, log zerolog.Logger) *AttendanceService {
	if events == nil {
		events = NopPublisher{}
	}
	return &AttendanceService{
		stores: stores,
		tx:     tx,
		events: events,
		log:    log.With().Str("component", "attendance_service").Logger(),
	}
}

// List returns attendance records joined with their students, newest first.
func (s *AttendanceService) List(ctx context.Context, f model.AttendanceFilter) ([]model.AttendanceDetail, error) {
	return s.stores.Attendance.List(ctx, f)
}

// Get returns one attendance record.
func (s *AttendanceService) Get(ctx context.Context, id int) (*model.Attendance, error) {
	return s.stores.Attendance.GetByID(ctx, id)
}

// Register inserts a record and, when the student was absent, increments
// their absence counter. Duplicate dates for one student are accepted.
func (s *AttendanceService) Register(ctx context.Context, studentID int, date model.Date, present bool) (*model.Attendance, error) {
	a := &model.Attendance{StudentID: studentID, Date: date, Present: present}
	delta := 0
	if !present {
		delta = 1
	}

	err := s.tx.WithTx(ctx, func(st Stores) error {
		if _, err := st.Students.LockByID(ctx, studentID); err != nil {
			if errors.Is(err, apperror.ErrStudentNotFound) {
				return apperror.ErrUnknownStudent
			}
			return err
		}
		if err := st.Attendance.Create(ctx, a); err != nil {
			return err
		}
		if delta != 0 {
			return st.Students.AdjustAbsences(ctx, studentID, delta)
		}
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Int("student_id", studentID).Msg("Register rolled back")
		return nil, fmt.Errorf("register attendance: %w", err)
	}

	ev := newEvent(model.EventAttendanceRegistered, studentID)
	ev.AttendanceID = &a.ID
	ev.Present = &a.Present
	ev.AbsenceDelta = delta
	s.publish(ctx, ev)

	return a, nil
}

// UpdatePresence flips the present flag of a record and moves the absence
// counter by one in the matching direction. Resubmitting the stored value
// fails with apperror.ErrNoChange.
func (s *AttendanceService) UpdatePresence(ctx context.Context, id int, present bool) (*model.Attendance, error) {
	var updated *model.Attendance
	delta := flipDelta(present)

	err := s.tx.WithTx(ctx, func(st Stores) error {
		cur, err := s.lockRecord(ctx, st, id)
		if err != nil {
			return err
		}
		if cur.Present == present {
			return apperror.ErrNoChange
		}
		if err := st.Attendance.SetPresence(ctx, id, present); err != nil {
			return err
		}
		if err := st.Students.AdjustAbsences(ctx, cur.StudentID, delta); err != nil {
			return err
		}
		cur.Present = present
		updated = cur
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Int("attendance_id", id).Msg("UpdatePresence rolled back")
		return nil, fmt.Errorf("update attendance %d: %w", id, err)
	}

	ev := newEvent(model.EventAttendanceUpdated, updated.StudentID)
	ev.AttendanceID = &updated.ID
	ev.Present = &updated.Present
	ev.AbsenceDelta = delta
	s.publish(ctx, ev)

	return updated, nil
}

// Remove deletes a record and, when it was an absence, decrements the owning
// student's counter.
func (s *AttendanceService) Remove(ctx context.Context, id int) error {
	var removed *model.Attendance
	delta := 0

	err := s.tx.WithTx(ctx, func(st Stores) error {
		cur, err := s.lockRecord(ctx, st, id)
		if err != nil {
			return err
		}
		if err := st.Attendance.Delete(ctx, id); err != nil {
			return err
		}
		if !cur.Present {
			delta = -1
			if err := st.Students.AdjustAbsences(ctx, cur.StudentID, delta); err != nil {
				return err
			}
		}
		removed = cur
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Int("attendance_id", id).Msg("Remove rolled back")
		return fmt.Errorf("remove attendance %d: %w", id, err)
	}

	ev := newEvent(model.EventAttendanceRemoved, removed.StudentID)
	ev.AttendanceID = &removed.ID
	ev.Present = &removed.Present
	ev.AbsenceDelta = delta
	s.publish(ctx, ev)

	return nil
}

// lockRecord locks the owner of record id and then the record itself, and
// returns the record as seen under both locks.
func (s *AttendanceService) lockRecord(ctx context.Context, st Stores, id int) (*model.Attendance, error) {
	peek, err := st.Attendance.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := st.Students.LockByID(ctx, peek.StudentID); err != nil {
		if errors.Is(err, apperror.ErrStudentNotFound) {
			// The owner was removed, taking its records with it.
			return nil, apperror.ErrAttendanceNotFound
		}
		return nil, err
	}
	// Re-read: a concurrent unit may have flipped or deleted the record
	// while this one waited for the student lock.
	return st.Attendance.LockByID(ctx, id)
}

func (s *AttendanceService) publish(ctx context.Context, ev *model.AttendanceEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).
			Str("event_id", ev.ID).
			Str("kind", string(ev.Kind)).
			Msg("Failed to publish attendance event")
	}
}
