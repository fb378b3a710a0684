package service_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stemsi/attendance-backend/internal/apperror"
	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestStudentCRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.students.Create(ctx, "Ana", "A1", 0)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	// Names are not unique.
	_, err = f.students.Create(ctx, "Ana", "A2", 0)
	require.NoError(t, err)

	updated, err := f.students.Update(ctx, created.ID, "Ana Maria", "B1", 3)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, 3, updated.AbsenceCount)

	_, err = f.students.Update(ctx, 999, "X", "Y", 0)
	assert.ErrorIs(t, err, apperror.ErrStudentNotFound)

	list, err := f.students.List(ctx, model.StudentFilter{Name: "ana"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Less(t, list[0].ID, list[1].ID)

	list, err = f.students.List(ctx, model.StudentFilter{Class: "b"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestRemoveStudentCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.student(t, "Ana", "A1")
	bia := f.student(t, "Bia", "A1")

	for _, present := range []bool{false, true, false} {
		_, err := f.attendance.Register(ctx, ana.ID, day(t, "2024-03-01"), present)
		require.NoError(t, err)
	}
	_, err := f.attendance.Register(ctx, bia.ID, day(t, "2024-03-01"), false)
	require.NoError(t, err)

	require.NoError(t, f.students.Remove(ctx, ana.ID))

	rows, err := f.attendance.List(ctx, model.AttendanceFilter{StudentID: &ana.ID})
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = f.students.GetByID(ctx, ana.ID)
	assert.ErrorIs(t, err, apperror.ErrStudentNotFound)

	rows, err = f.attendance.List(ctx, model.AttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1, "other students keep their records")
	f.assertInvariant(t)

	f.events.mu.Lock()
	last := f.events.events[len(f.events.events)-1]
	f.events.mu.Unlock()
	assert.Equal(t, model.EventStudentRemoved, last.Kind)
	assert.Equal(t, 3, last.Removed)
}

func TestRemoveUnknownStudent(t *testing.T) {
	f := newFixture(t)
	err := f.students.Remove(context.Background(), 7)
	assert.ErrorIs(t, err, apperror.ErrStudentNotFound)
}

func TestDirectCounterWriteThenRemoveBelowZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ana := f.student(t, "Ana", "A1")

	rec, err := f.attendance.Register(ctx, ana.ID, day(t, "2024-03-01"), false)
	require.NoError(t, err)

	// Manual correction drives the counter below the record count.
	_, err = f.students.Update(ctx, ana.ID, "Ana", "A1", 0)
	require.NoError(t, err)

	err = f.attendance.Remove(ctx, rec.ID)
	assert.ErrorIs(t, err, apperror.ErrConstraintViolation)

	_, err = f.attendance.Get(ctx, rec.ID)
	assert.NoError(t, err, "failed removal keeps the record")
}

func rosterWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	wb := excelize.NewFile()
	defer wb.Close()
	sheet := wb.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow(sheet, cell, &row))
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	buf := rosterWorkbook(t, [][]any{
		{"Name", "Class", "Absences"},
		{"Ana", "A1"},
		{"", "A1"},
		{"Bia", "B1", 2},
		{"Caio", "B1", "many"},
	})

	res, err := f.students.ImportRoster(ctx, buf)
	require.NoError(t, err)
	require.Len(t, res.Created, 2)
	assert.Equal(t, []int{3, 5}, res.Skipped)
	assert.Equal(t, 2, res.Created[1].AbsenceCount)

	all, err := f.students.List(ctx, model.StudentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestImportRosterRejectsNonWorkbook(t *testing.T) {
	f := newFixture(t)
	_, err := f.students.ImportRoster(context.Background(), bytes.NewBufferString("name,class\nAna,A1\n"))
	assert.Error(t, err)
}
