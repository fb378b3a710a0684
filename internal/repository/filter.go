package repository

import (
	"strconv"
	"strings"
)

// Predicate is one condition of a WHERE clause. Render must pass every value
// through bind and embed only the placeholder it returns.
type Predicate interface {
	Render(bind func(v any) string) string
}

// Eq matches a column by exact equality.
type Eq struct {
	Column string
	Value  any
}

func (p Eq) Render(bind func(any) string) string {
	return p.Column + " = " + bind(p.Value)
}

// ContainsFold matches a text column containing Value, ignoring case.
// LIKE wildcards inside Value are matched literally.
type ContainsFold struct {
	Column string
	Value  string
}

func (p ContainsFold) Render(bind func(any) string) string {
	return p.Column + " ILIKE " + bind("%"+escapeLike(p.Value)+"%")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Filter collects predicates joined with AND, a fixed ordering and an
// optional limit/offset window.
type Filter struct {
	preds   []Predicate
	orderBy string
	limit   int
	offset  int
}

// NewFilter starts an empty conjunction ordered by orderBy.
func NewFilter(orderBy string) *Filter {
	return &Filter{orderBy: orderBy}
}

// Add appends a predicate.
func (f *Filter) Add(p Predicate) *Filter {
	f.preds = append(f.preds, p)
	return f
}

// EqInt adds an equality predicate when v is set.
func (f *Filter) EqInt(column string, v *int) *Filter {
	if v != nil {
		f.Add(Eq{Column: column, Value: *v})
	}
	return f
}

// EqBool adds an equality predicate when v is set.
func (f *Filter) EqBool(column string, v *bool) *Filter {
	if v != nil {
		f.Add(Eq{Column: column, Value: *v})
	}
	return f
}

// EqString adds an equality predicate when v is not empty.
func (f *Filter) EqString(column, v string) *Filter {
	if v != "" {
		f.Add(Eq{Column: column, Value: v})
	}
	return f
}

// Contains adds a case-insensitive substring predicate when v is not empty.
func (f *Filter) Contains(column, v string) *Filter {
	if v != "" {
		f.Add(ContainsFold{Column: column, Value: v})
	}
	return f
}

// Window sets LIMIT and OFFSET. Non-positive values are omitted.
func (f *Filter) Window(limit, offset int) *Filter {
	f.limit = limit
	f.offset = offset
	return f
}

// Len returns the number of predicates.
func (f *Filter) Len() int {
	return len(f.preds)
}

// Build appends the WHERE, ORDER BY, LIMIT and OFFSET clauses to base.
// Placeholders continue after the args already bound by base.
func (f *Filter) Build(base string, args ...any) (string, []any) {
	var sb strings.Builder
	sb.WriteString(base)

	bind := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	for i, p := range f.preds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(p.Render(bind))
	}

	if f.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(f.orderBy)
	}
	if f.limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(bind(f.limit))
	}
	if f.offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(bind(f.offset))
	}

	return sb.String(), args
}
