package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d, err := ParseDate("2024-03-01")
	require.NoError(t, err)

	raw, err := json.Marshal(Attendance{ID: 1, StudentID: 2, Date: d})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"date":"2024-03-01"`)

	var back Attendance
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Date.Equal(d))
}

func TestNewDateDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	d := NewDate(time.Date(2024, 3, 1, 23, 30, 0, 0, loc))
	assert.Equal(t, "2024-03-01", d.String())
	assert.Equal(t, 0, d.Hour())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("01/03/2024")
	assert.Error(t, err)
}
