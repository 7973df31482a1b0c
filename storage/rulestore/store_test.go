package rulestore

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/vitalstream/errors"
)

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.NotZero(t, cfg.ConnMaxLifetime)
	assert.NotZero(t, cfg.QueryTimeout)
}

func testStore() *Store {
	return &Store{logger: slog.Default()}
}

func TestDecodeStringList(t *testing.T) {
	s := testStore()

	tests := []struct {
		name string
		raw  sql.NullString
		want []string
	}{
		{"null column", sql.NullString{}, nil},
		{"empty string", sql.NullString{Valid: true}, nil},
		{"json array", sql.NullString{String: `["sms","app"]`, Valid: true}, []string{"sms", "app"}},
		{"malformed", sql.NullString{String: "sms,app", Valid: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.decodeStringList(1, "enabled_channels", tt.raw))
		})
	}
}

func TestDecodeIntList(t *testing.T) {
	s := testStore()

	assert.Equal(t, []int{1, 2, 3}, s.decodeIntList(1, "effective_weekdays",
		sql.NullString{String: "[1,2,3]", Valid: true}))
	assert.Nil(t, s.decodeIntList(1, "effective_weekdays",
		sql.NullString{String: "1;2", Valid: true}))
	assert.Nil(t, s.decodeIntList(1, "effective_weekdays", sql.NullString{}))
}

func TestQueryRequiresCustomerID(t *testing.T) {
	s := testStore()
	_, err := s.Query(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}
