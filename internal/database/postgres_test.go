package database

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIsoLevel(t *testing.T) {
	cases := map[string]pgx.TxIsoLevel{
		"":                pgx.ReadCommitted,
		"read_committed":  pgx.ReadCommitted,
		"repeatable_read": pgx.RepeatableRead,
		"serializable":    pgx.Serializable,
	}
	for raw, want := range cases {
		got, err := ParseIsoLevel(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseIsoLevel("read_uncommitted")
	assert.Error(t, err)
}
