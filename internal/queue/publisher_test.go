package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeRejectsIncompletePayload(t *testing.T) {
	_, err := Decode(`{"id":"e1","kind":"attendance_removed"}`)
	assert.Error(t, err)

	_, err = Decode(`not json`)
	assert.Error(t, err)
}

func TestDecodeKeepsOptionalFields(t *testing.T) {
	ev, err := Decode(`{"id":"e1","kind":"attendance_updated","student_id":4,"attendance_id":9,"present":true,"absence_delta":-1}`)
	assert.NoError(t, err)
	if assert.NotNil(t, ev.AttendanceID) && assert.NotNil(t, ev.Present) {
		assert.Equal(t, 9, *ev.AttendanceID)
		assert.True(t, *ev.Present)
	}
	assert.Equal(t, -1, ev.AbsenceDelta)
}
