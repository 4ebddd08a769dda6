package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"ErrScoreNotFound", ErrScoreNotFound, true},
		{"wrapped ErrScoreNotFound", fmt.Errorf("load: %w", ErrScoreNotFound), true},
		{"store error around not found", NewStoreError(EntityUserScore, "get", "missing", ErrScoreNotFound), true},
		{"unavailable", ErrStorageUnavailable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := NewStoreError(EntityUserScore, "put", "write failed", inner)
	assert.Equal(t, "put operation on user_score failed: write failed: connection refused", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := NewStoreError(EntityUserScore, "get", "no row", nil)
	assert.Equal(t, "get operation on user_score failed: no row", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestUnavailable(t *testing.T) {
	t.Parallel()

	inner := errors.New("dial tcp: timeout")
	err := Unavailable(EntityUserScore, "get", inner)

	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, inner)

	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "get", storeErr.Operation)
}
