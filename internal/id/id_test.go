package id

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEbookID(t *testing.T) {
	seen := make(map[string]struct{}, 500)
	for range 500 {
		got, err := NewEbookID()
		require.NoError(t, err)
		require.True(t, IsEbookID(got), got)

		_, dup := seen[got]
		require.False(t, dup, "duplicate id %s", got)
		seen[got] = struct{}{}
	}
}

func TestIsEbookID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"bk_7hq2m9xkd3ra", true},
		{"bk_7hq2m9xkd3r", false},
		{"bk_7hq2m9xkd3ral", false},
		{"bk_7hq2m9xkd3r0", false},
		{"BK_7hq2m9xkd3ra", false},
		{"book-V1StGXR8_Z5jdHi6B-myT", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEbookID(tt.in))
		})
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}
