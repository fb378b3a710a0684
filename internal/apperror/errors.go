// Package apperror defines the error kinds shared by the store, the
// consistency engine and the HTTP layer. Callers match them with errors.Is.
package apperror

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the base kind for any id-based lookup that matched nothing.
	ErrNotFound = errors.New("not found")

	ErrStudentNotFound    = fmt.Errorf("student %w", ErrNotFound)
	ErrAttendanceNotFound = fmt.Errorf("attendance record %w", ErrNotFound)

	// ErrNoChange rejects a presence update that resubmits the stored value.
	ErrNoChange = errors.New("presence already has the requested value")

	// ErrConstraintViolation reports a write rejected by a referential or
	// check constraint.
	ErrConstraintViolation = errors.New("constraint violation")

	// ErrStoreUnavailable wraps connection and transaction failures.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnknownStudent is returned when attendance references a student that
	// does not exist. It matches both ErrStudentNotFound and ErrConstraintViolation.
	ErrUnknownStudent = fmt.Errorf("%w: %w", ErrConstraintViolation, ErrStudentNotFound)
)

// Unavailable wraps err as ErrStoreUnavailable, keeping the cause in the message.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
