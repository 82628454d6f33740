package postgres

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDescribeAddsSQLState(t *testing.T) {
	base := &pq.Error{Code: "42P01", Message: "relation does not exist"}

	err := describe(base)
	assert.Contains(t, err.Error(), "undefined_table")
	assert.Contains(t, err.Error(), "42P01")
	assert.True(t, errors.Is(err, base))
}

func TestDescribePassesThroughOtherErrors(t *testing.T) {
	base := errors.New("boom")
	assert.Equal(t, base, describe(base))
}

func TestNewWithDBQuotesIdentifiers(t *testing.T) {
	s := NewWithDB(nil, Config{Table: "odd name"})
	assert.Equal(t, `"odd name"`, s.table)
	assert.Equal(t, `'"external_player_seq"'`, s.sequence)
}
