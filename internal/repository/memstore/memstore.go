// Package memstore is an in-memory backend for the roster and attendance
// stores. Atomic units run one at a time and restore a snapshot of the whole
// state when they fail. It backs STORE_DRIVER=memory and the engine tests.
package memstore

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stemsi/attendance-backend/internal/apperror"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stemsi/attendance-backend/internal/service"
)

type state struct {
	students       map[int]model.Student
	attendance     map[int]model.Attendance
	nextStudent    int
	nextAttendance int
}

func (s state) clone() state {
	return state{
		students:       maps.Clone(s.students),
		attendance:     maps.Clone(s.attendance),
		nextStudent:    s.nextStudent,
		nextAttendance: s.nextAttendance,
	}
}

// Store holds the in-memory state.
type Store struct {
	mu    sync.Mutex
	state state
	now   func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		state: state{
			students:   map[int]model.Student{},
			attendance: map[int]model.Attendance{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Stores returns stores that take the store lock per call.
func (s *Store) Stores() service.Stores {
	v := &view{store: s}
	return service.Stores{Students: studentView{v}, Attendance: attendanceView{v}}
}

// WithTx implements service.Transactor. Units are serialized, which is
// stronger than the row locks the PostgreSQL backend takes.
func (s *Store) WithTx(ctx context.Context, fn func(service.Stores) error) (err error) {
	if err := ctx.Err(); err != nil {
		return apperror.Unavailable("begin", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	defer func() {
		if p := recover(); p != nil {
			s.state = snapshot
			panic(p)
		}
	}()

	v := &view{store: s, locked: true}
	if err := fn(service.Stores{Students: studentView{v}, Attendance: attendanceView{v}}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// AbsencesOf counts the student's records with present == false.
func (s *Store) AbsencesOf(studentID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.state.attendance {
		if a.StudentID == studentID && !a.Present {
			n++
		}
	}
	return n
}

// view runs store calls either under the unit's lock or under its own.
type view struct {
	store  *Store
	locked bool
}

func (v *view) do(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return apperror.Unavailable("query", err)
	}
	if !v.locked {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(&v.store.state)
}

type studentView struct{ v *view }

func (sv studentView) List(ctx context.Context, f model.StudentFilter) ([]model.Student, error) {
	out := []model.Student{}
	err := sv.v.do(ctx, func(st *state) error {
		for _, s := range st.students {
			if matchStudent(f, s) {
				out = append(out, s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, f.Page), nil
}

func (sv studentView) GetByID(ctx context.Context, id int) (*model.Student, error) {
	var out model.Student
	err := sv.v.do(ctx, func(st *state) error {
		s, ok := st.students[id]
		if !ok {
			return apperror.ErrStudentNotFound
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (sv studentView) LockByID(ctx context.Context, id int) (*model.Student, error) {
	return sv.GetByID(ctx, id)
}

func (sv studentView) Create(ctx context.Context, s *model.Student) error {
	return sv.v.do(ctx, func(st *state) error {
		if s.AbsenceCount < 0 {
			return apperror.ErrConstraintViolation
		}
		st.nextStudent++
		s.ID = st.nextStudent
		s.CreatedAt = sv.v.store.now()
		s.UpdatedAt = s.CreatedAt
		st.students[s.ID] = *s
		return nil
	})
}

func (sv studentView) Update(ctx context.Context, s *model.Student) error {
	return sv.v.do(ctx, func(st *state) error {
		cur, ok := st.students[s.ID]
		if !ok {
			return apperror.ErrStudentNotFound
		}
		if s.AbsenceCount < 0 {
			return apperror.ErrConstraintViolation
		}
		cur.Name, cur.Class, cur.AbsenceCount = s.Name, s.Class, s.AbsenceCount
		cur.UpdatedAt = sv.v.store.now()
		st.students[s.ID] = cur
		*s = cur
		return nil
	})
}

func (sv studentView) AdjustAbsences(ctx context.Context, id, delta int) error {
	return sv.v.do(ctx, func(st *state) error {
		cur, ok := st.students[id]
		if !ok {
			return apperror.ErrStudentNotFound
		}
		if cur.AbsenceCount+delta < 0 {
			return apperror.ErrConstraintViolation
		}
		cur.AbsenceCount += delta
		cur.UpdatedAt = sv.v.store.now()
		st.students[id] = cur
		return nil
	})
}

func (sv studentView) Delete(ctx context.Context, id int) error {
	return sv.v.do(ctx, func(st *state) error {
		if _, ok := st.students[id]; !ok {
			return apperror.ErrStudentNotFound
		}
		for _, a := range st.attendance {
			if a.StudentID == id {
				return apperror.ErrConstraintViolation
			}
		}
		delete(st.students, id)
		return nil
	})
}

type attendanceView struct{ v *view }

func (av attendanceView) List(ctx context.Context, f model.AttendanceFilter) ([]model.AttendanceDetail, error) {
	var day *model.Date
	if f.Date != "" {
		d, err := model.ParseDate(f.Date)
		if err != nil {
			return nil, err
		}
		day = &d
	}

	out := []model.AttendanceDetail{}
	err := av.v.do(ctx, func(st *state) error {
		for _, a := range st.attendance {
			s := st.students[a.StudentID]
			d := model.AttendanceDetail{
				Attendance:   a,
				StudentName:  s.Name,
				StudentClass: s.Class,
				AbsenceCount: s.AbsenceCount,
			}
			if matchAttendance(f, day, d) {
				out = append(out, d)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return window(out, f.Page), nil
}

func (av attendanceView) GetByID(ctx context.Context, id int) (*model.Attendance, error) {
	var out model.Attendance
	err := av.v.do(ctx, func(st *state) error {
		a, ok := st.attendance[id]
		if !ok {
			return apperror.ErrAttendanceNotFound
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (av attendanceView) LockByID(ctx context.Context, id int) (*model.Attendance, error) {
	return av.GetByID(ctx, id)
}

func (av attendanceView) Create(ctx context.Context, a *model.Attendance) error {
	return av.v.do(ctx, func(st *state) error {
		if _, ok := st.students[a.StudentID]; !ok {
			return apperror.ErrUnknownStudent
		}
		st.nextAttendance++
		a.ID = st.nextAttendance
		a.CreatedAt = av.v.store.now()
		st.attendance[a.ID] = *a
		return nil
	})
}

func (av attendanceView) SetPresence(ctx context.Context, id int, present bool) error {
	return av.v.do(ctx, func(st *state) error {
		a, ok := st.attendance[id]
		if !ok {
			return apperror.ErrAttendanceNotFound
		}
		a.Present = present
		st.attendance[id] = a
		return nil
	})
}

func (av attendanceView) Delete(ctx context.Context, id int) error {
	return av.v.do(ctx, func(st *state) error {
		if _, ok := st.attendance[id]; !ok {
			return apperror.ErrAttendanceNotFound
		}
		delete(st.attendance, id)
		return nil
	})
}

func (av attendanceView) DeleteByStudent(ctx context.Context, studentID int) (int, error) {
	n := 0
	err := av.v.do(ctx, func(st *state) error {
		for id, a := range st.attendance {
			if a.StudentID == studentID {
				delete(st.attendance, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

func matchStudent(f model.StudentFilter, s model.Student) bool {
	switch {
	case f.ID != nil && s.ID != *f.ID:
		return false
	case f.Name != "" && !containsFold(s.Name, f.Name):
		return false
	case f.Class != "" && !containsFold(s.Class, f.Class):
		return false
	case f.AbsenceCount != nil && s.AbsenceCount != *f.AbsenceCount:
		return false
	}
	return true
}

func matchAttendance(f model.AttendanceFilter, day *model.Date, d model.AttendanceDetail) bool {
	switch {
	case f.StudentID != nil && d.StudentID != *f.StudentID:
		return false
	case f.Name != "" && !containsFold(d.StudentName, f.Name):
		return false
	case f.Class != "" && d.StudentClass != f.Class:
		return false
	case day != nil && !d.Date.Equal(*day):
		return false
	case f.Present != nil && d.Present != *f.Present:
		return false
	case f.AbsenceCount != nil && d.AbsenceCount != *f.AbsenceCount:
		return false
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func window[T any](items []T, p model.Page) []T {
	if p.Offset > 0 {
		if p.Offset >= len(items) {
			return items[:0]
		}
		items = items[p.Offset:]
	}
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}
