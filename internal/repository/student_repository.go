package repository

import (
	"context"

	"github.com/stemsi/attendance-backend/internal/apperror"
	"github.com/stemsi/attendance-backend/internal/model"
)

const studentColumns = `id, name, class, absence_count, created_at, updated_at`

// StudentRepository handles roster data access.
type StudentRepository struct {
	db Querier
}

// NewStudentRepository creates a new StudentRepository.
func NewStudentRepository(db Querier) *StudentRepository {
	return &StudentRepository{db: db}
}

// StudentFilterSQL turns a StudentFilter into predicates ordered by id.
func StudentFilterSQL(f model.StudentFilter) *Filter {
	return NewFilter("id ASC").
		EqInt("id", f.ID).
		Contains("name", f.Name).
		Contains("class", f.Class).
		EqInt("absence_count", f.AbsenceCount).
		Window(f.Limit, f.Offset)
}

// List retrieves students matching the filter.
func (r *StudentRepository) List(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	query, args := StudentFilterSQL(f).Build(`SELECT ` + studentColumns + ` FROM students`)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, apperror.ErrStudentNotFound)
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Class, &s.AbsenceCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, mapError(rows.Err(), apperror.ErrStudentNotFound)
}

// GetByID retrieves a student by ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return r.get(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
}

// LockByID retrieves a student and holds a row lock until the surrounding
// transaction ends. Outside a transaction it behaves like GetByID.
func (r *StudentRepository) LockByID(ctx context.Context, id int) (*model.Student, error) {
	return r.get(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1 FOR UPDATE`, id)
}

func (r *StudentRepository) get(ctx context.Context, query string, id int) (*model.Student, error) {
	s := &model.Student{}
	err := r.db.QueryRow(ctx, query, id).
		Scan(&s.ID, &s.Name, &s.Class, &s.AbsenceCount, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapError(err, apperror.ErrStudentNotFound)
	}
	return s, nil
}

// Create inserts a new student.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO students (name, class, absence_count)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		s.Name, s.Class, s.AbsenceCount,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapError(err, apperror.ErrStudentNotFound)
}

// Update overwrites name, class and absence_count.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	err := r.db.QueryRow(ctx,
		`UPDATE students SET name = $1, class = $2, absence_count = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4
		 RETURNING created_at, updated_at`,
		s.Name, s.Class, s.AbsenceCount, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return mapError(err, apperror.ErrStudentNotFound)
}

// AdjustAbsences adds delta to the student's absence counter in place.
func (r *StudentRepository) AdjustAbsences(ctx context.Context, id, delta int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE students SET absence_count = absence_count + $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2`,
		delta, id,
	)
	if err != nil {
		return mapError(err, apperror.ErrStudentNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrStudentNotFound
	}
	return nil
}

// Delete removes a student by ID.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return mapError(err, apperror.ErrStudentNotFound)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrStudentNotFound
	}
	return nil
}
