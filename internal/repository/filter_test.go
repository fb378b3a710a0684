package repository

import (
	"testing"
	"time"

	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestFilterEmptyKeepsOrdering(t *testing.T) {
	query, args := NewFilter("id ASC").Build("SELECT id FROM students")
	assert.Equal(t, "SELECT id FROM students ORDER BY id ASC", query)
	assert.Empty(t, args)
}

func TestFilterSkipsUnsetFields(t *testing.T) {
	f := NewFilter("id ASC").
		EqInt("id", nil).
		Contains("name", "").
		EqString("class", "").
		EqBool("present", nil)
	assert.Equal(t, 0, f.Len())
}

func TestFilterConjunctionAndPlaceholders(t *testing.T) {
	query, args := NewFilter("id ASC").
		EqInt("id", intPtr(3)).
		Contains("name", "ana").
		EqBool("present", boolPtr(false)).
		Window(10, 20).
		Build("SELECT id FROM students")

	assert.Equal(t,
		"SELECT id FROM students WHERE id = $1 AND name ILIKE $2 AND present = $3 ORDER BY id ASC LIMIT $4 OFFSET $5",
		query)
	assert.Equal(t, []any{3, "%ana%", false, 10, 20}, args)
}

func TestFilterContinuesAfterBaseArgs(t *testing.T) {
	query, args := NewFilter("").
		EqString("class", "A1").
		Build("SELECT id FROM students_with_absences($1) s", 2)

	assert.Equal(t, "SELECT id FROM students_with_absences($1) s WHERE class = $2", query)
	assert.Equal(t, []any{2, "A1"}, args)
}

func TestContainsNeverInterpolatesValue(t *testing.T) {
	hostile := "x'; DROP TABLE students; --"
	query, args := NewFilter("").Contains("name", hostile).Build("SELECT 1 FROM students")

	assert.NotContains(t, query, "DROP")
	assert.Equal(t, []any{"%" + hostile + "%"}, args)
}

func TestContainsEscapesWildcards(t *testing.T) {
	_, args := NewFilter("").Contains("name", `50%_a\b`).Build("SELECT 1")
	assert.Equal(t, []any{`%50\%\_a\\b%`}, args)
}

func TestStudentFilterSQL(t *testing.T) {
	query, args := StudentFilterSQL(model.StudentFilter{
		Name:         "an",
		Class:        "a1",
		AbsenceCount: intPtr(0),
	}).Build("SELECT id FROM students")

	assert.Equal(t,
		"SELECT id FROM students WHERE name ILIKE $1 AND class ILIKE $2 AND absence_count = $3 ORDER BY id ASC",
		query)
	assert.Equal(t, []any{"%an%", "%a1%", 0}, args)
}

func TestAttendanceFilterSQL(t *testing.T) {
	f, err := AttendanceFilterSQL(model.AttendanceFilter{
		StudentID: intPtr(9),
		Name:      "ana",
		Class:     "A1",
		Date:      "2024-03-01",
		Present:   boolPtr(true),
		Page:      model.Page{Limit: 5},
	})
	require.NoError(t, err)

	query, args := f.Build("SELECT a.id FROM attendance a JOIN students s ON s.id = a.student_id")
	assert.Equal(t,
		"SELECT a.id FROM attendance a JOIN students s ON s.id = a.student_id"+
			" WHERE a.student_id = $1 AND s.name ILIKE $2 AND s.class = $3 AND a.date = $4 AND a.present = $5"+
			" ORDER BY a.date DESC, a.id DESC LIMIT $6",
		query)
	require.Len(t, args, 6)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), args[3])
}

func TestAttendanceFilterSQLRejectsBadDate(t *testing.T) {
	_, err := AttendanceFilterSQL(model.AttendanceFilter{Date: "March 1"})
	assert.Error(t, err)
}
