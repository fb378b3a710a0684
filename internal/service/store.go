package service

import (
	"context"

	"github.com/stemsi/attendance-backend/internal/model"
)

// StudentStore is the roster persistence used by the services.
type StudentStore interface {
	List(ctx context.Context, f model.StudentFilter) ([]model.Student, error)
	GetByID(ctx context.Context, id int) (*model.Student, error)
	// LockByID reads the student and, inside a transaction, blocks other
	// units that lock the same student until this one ends.
	LockByID(ctx context.Context, id int) (*model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	AdjustAbsences(ctx context.Context, id, delta int) error
	Delete(ctx context.Context, id int) error
}

// AttendanceStore is the attendance persistence used by the services.
type AttendanceStore interface {
	List(ctx context.Context, f model.AttendanceFilter) ([]model.AttendanceDetail, error)
	GetByID(ctx context.Context, id int) (*model.Attendance, error)
	LockByID(ctx context.Context, id int) (*model.Attendance, error)
	Create(ctx context.Context, a *model.Attendance) error
	SetPresence(ctx context.Context, id int, present bool) error
	Delete(ctx context.Context, id int) error
	DeleteByStudent(ctx context.Context, studentID int) (int, error)
}

// Stores bundles the stores bound to one session: the shared pool, or a
// single transaction inside Transactor.WithTx.
type Stores struct {
	Students   StudentStore
	Attendance AttendanceStore
}

// Transactor runs fn as one atomic unit. If fn returns an error every write
// made through the given Stores is rolled back and that same error is
// returned. Otherwise the unit is committed.
type Transactor interface {
	WithTx(ctx context.Context, fn func(Stores) error) error
}
