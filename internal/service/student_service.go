package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/attendance-backend/internal/model"
)

// StudentService handles roster business logic.
type StudentService struct {
	stores Stores
	tx     Transactor
	events EventPublisher
	log    zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(stores Stores, tx Transactor, events EventPublisher, log zerolog.Logger) *StudentService {
	if events == nil {
		events = NopPublisher{}
	}
	return &StudentService{
		stores: stores,
		tx:     tx,
		events: events,
		log:    log.With().Str("component", "student_service").Logger(),
	}
}

// List retrieves students matching the filter, ordered by ID.
func (s *StudentService) List(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	return s.stores.Students.List(ctx, f)
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.stores.Students.GetByID(ctx, id)
}

// Create adds a student to the roster. Names need not be unique.
func (s *StudentService) Create(ctx context.Context, name, class string, absenceCount int) (*model.Student, error) {
	student := &model.Student{Name: name, Class: class, AbsenceCount: absenceCount}
	if err := s.stores.Students.Create(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Update overwrites name, class and absence_count.
//
// Writing absence_count here bypasses the attendance records; it is kept as a
// manual correction path and may leave the counter out of step with them.
func (s *StudentService) Update(ctx context.Context, id int, name, class string, absenceCount int) (*model.Student, error) {
	student := &model.Student{ID: id, Name: name, Class: class, AbsenceCount: absenceCount}
	if err := s.stores.Students.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Remove deletes the student and every attendance record it owns in one unit.
func (s *StudentService) Remove(ctx context.Context, id int) error {
	removed := 0
	err := s.tx.WithTx(ctx, func(st Stores) error {
		if _, err := st.Students.LockByID(ctx, id); err != nil {
			return err
		}
		n, err := st.Attendance.DeleteByStudent(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return st.Students.Delete(ctx, id)
	})
	if err != nil {
		s.log.Debug().Err(err).Int("student_id", id).Msg("Remove rolled back")
		return fmt.Errorf("remove student %d: %w", id, err)
	}

	ev := newEvent(model.EventStudentRemoved, id)
	ev.Removed = removed
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event_id", ev.ID).Msg("Failed to publish student event")
	}
	return nil
}
