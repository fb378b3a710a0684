package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stemsi/attendance-backend/internal/model"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook is returned for a spreadsheet without sheets.
var ErrEmptyWorkbook = errors.New("workbook does not contain any sheets")

// ImportResult summarises a roster import.
type ImportResult struct {
	Created []model.Student `json:"created"`
	// Skipped lists 1-based sheet row numbers that were not imported.
	Skipped []int `json:"skipped"`
}

// ImportRoster reads students from the first sheet of an .xlsx workbook.
// Row 1 is a header. Column A is the name, column B the class and the
// optional column C the starting absence count. Rows without a name or class,
// or with an unreadable count, are skipped. The remaining rows are created in
// one atomic unit.
func (s *StudentService) ImportRoster(ctx context.Context, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to close workbook")
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	result := &ImportResult{Created: []model.Student{}, Skipped: []int{}}
	var pending []model.Student

	for i, row := range rows {
		if i == 0 {
			continue
		}
		student, ok := parseRosterRow(row)
		if !ok {
			result.Skipped = append(result.Skipped, i+1)
			continue
		}
		pending = append(pending, student)
	}

	if len(pending) == 0 {
		return result, nil
	}

	err = s.tx.WithTx(ctx, func(st Stores) error {
		for i := range pending {
			if err := st.Students.Create(ctx, &pending[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("import roster: %w", err)
	}

	result.Created = pending
	s.log.Info().
		Int("created", len(result.Created)).
		Int("skipped", len(result.Skipped)).
		Msg("Roster imported")
	return result, nil
}

func parseRosterRow(row []string) (model.Student, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	student := model.Student{Name: cell(0), Class: cell(1)}
	if student.Name == "" || student.Class == "" {
		return student, false
	}
	if raw := cell(2); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return student, false
		}
		student.AbsenceCount = n
	}
	return student, true
}
