package repository

import (
	"context"
	"time"

	"github.com/stemsi/attendance-backend/internal/apperror"
	"github.com/stemsi/attendance-backend/internal/model"
)

// AttendanceRepository handles attendance data access.
type AttendanceRepository struct {
	db Querier
}

// NewAttendanceRepository creates a new AttendanceRepository.
func NewAttendanceRepository(db Querier) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// AttendanceFilterSQL turns an AttendanceFilter into predicates over the
// attendance/students join, newest date first.
func AttendanceFilterSQL(f model.AttendanceFilter) (*Filter, error) {
	q := NewFilter("a.date DESC, a.id DESC").
		EqInt("a.student_id", f.StudentID).
		Contains("s.name", f.Name).
		EqString("s.class", f.Class)

	if f.Date != "" {
		d, err := model.ParseDate(f.Date)
		if err != nil {
			return nil, err
		}
		q.Add(Eq{Column: "a.date", Value: d.Time})
	}

	return q.EqBool("a.present", f.Present).
		EqInt("s.absence_count", f.AbsenceCount).
		Window(f.Limit, f.Offset), nil
}

// List retrieves attendance records joined with their students.
func (r *AttendanceRepository) List(ctx context.Context, f model.AttendanceFilter) ([]model.AttendanceDetail, error) {
	filter, err := AttendanceFilterSQL(f)
	if err != nil {
		return nil, err
	}
	query, args := filter.Build(
		`SELECT a.id, a.student_id, a.date, a.present, a.created_at, s.name, s.class, s.absence_count
		 FROM attendance a
		 JOIN students s ON s.id = a.student_id`)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, apperror.ErrAttendanceNotFound)
	}
	defer rows.Close()

	records := []model.AttendanceDetail{}
	for rows.Next() {
		var (
			d   model.AttendanceDetail
			day time.Time
		)
		if err := rows.Scan(&d.ID, &d.StudentID, &day, &d.Present, &d.CreatedAt,
			&d.StudentName, &d.StudentClass, &d.AbsenceCount); err != nil {
			return nil, err
		}
		d.Date = model.NewDate(day)
		records = append(records, d)
	}
	return records, mapError(rows.Err(), apperror.ErrAttendanceNotFound)
}

// GetByID retrieves an attendance record by ID.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int) (*model.Attendance, error) {
	return r.get(ctx, `SELECT id, student_id, date, present, created_at FROM attendance WHERE id = $1`, id)
}

// LockByID retrieves an attendance record under a row lock.
func (r *AttendanceRepository) LockByID(ctx context.Context, id int) (*model.Attendance, error) {
	return r.get(ctx, `SELECT id, student_id, date, present, created_at FROM attendance WHERE id = $1 FOR UPDATE`, id)
}

func (r *AttendanceRepository) get(ctx context.Context, query string, id int) (*model.Attendance, error) {
	var (
		a   model.Attendance
		day time.Time
	)
	if err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.StudentID, &day, &a.Present, &a.CreatedAt); err != nil {
		return nil, mapError(err, apperror.ErrAttendanceNotFound)
	}
	a.Date = model.NewDate(day)
	return &a, nil
}

// Create inserts an attendance record. A missing student surfaces as
// apperror.ErrUnknownStudent through the foreign key.
func (r *AttendanceRepository) Create(ctx context.Context, a *model.Attendance) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO attendance (student_id, date, present)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		a.StudentID, a.Date.Time, a.Present,
	).Scan(&a.ID, &a.CreatedAt)
	return mapError(err, apperror.ErrAttendanceNotFound)
}

// SetPresence overwrites the present flag.
func (r *AttendanceRepository) SetPresence(ctx context.Context, id int, present bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE attendance SET present = $1 WHERE id = $2`, present, id)
	if err != nil {
		return mapError(err, apperror.ErrAttendanceNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrAttendanceNotFound
	}
	return nil
}

// Delete removes an attendance record by ID.
func (r *AttendanceRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM attendance WHERE id = $1`, id)
	if err != nil {
		return mapError(err, apperror.ErrAttendanceNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrAttendanceNotFound
	}
	return nil
}

// DeleteByStudent removes every record owned by the student and returns how
// many were removed.
func (r *AttendanceRepository) DeleteByStudent(ctx context.Context, studentID int) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM attendance WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, mapError(err, apperror.ErrAttendanceNotFound)
	}
	return int(tag.RowsAffected()), nil
}
