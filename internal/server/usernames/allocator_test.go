package usernames

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evetools/mumble-sync/internal/common"
)

type fakeStore struct {
	taken map[string]bool
	err   error
}

func (f *fakeStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.taken[strings.ToLower(username)], nil
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "O'Brien Jöhn", want: "o_brien_j_hn"},
		{in: "Jane Doe", want: "jane_doe"},
		{in: "abc-DEF_123", want: "abc-def_123"},
		{in: "", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestAllocate_FirstCandidateFree(t *testing.T) {
	a := NewAllocator(&fakeStore{taken: map[string]bool{}})

	got, err := a.Allocate(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "jane_doe", got)
}

func TestAllocate_SequentialSuffixes(t *testing.T) {
	store := &fakeStore{taken: map[string]bool{"jane_doe": true}}
	a := NewAllocator(store)

	got, err := a.Allocate(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "jane_doe_1", got)

	store.taken["jane_doe_1"] = true
	got, err = a.Allocate(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, "jane_doe_2", got)
}

func TestAllocate_ReservedNameNeverReturned(t *testing.T) {
	// The store has no conflicting row, yet the reserved name is skipped.
	a := NewAllocator(&fakeStore{taken: map[string]bool{}})

	got, err := a.Allocate(context.Background(), "superUSER")
	require.NoError(t, err)
	assert.Equal(t, "superuser_1", got)
}

func TestAllocate_Exhaustion(t *testing.T) {
	taken := map[string]bool{"jane_doe": true}
	for i := 1; i <= maxAttempts; i++ {
		taken["jane_doe_"+strconv.Itoa(i)] = true
	}
	a := NewAllocator(&fakeStore{taken: taken})

	_, err := a.Allocate(context.Background(), "Jane Doe")
	require.ErrorIs(t, err, common.ErrAllocationExhausted)
}

func TestAllocate_StoreError(t *testing.T) {
	storeErr := errors.New("db down")
	a := NewAllocator(&fakeStore{err: storeErr})

	_, err := a.Allocate(context.Background(), "Jane Doe")
	require.ErrorIs(t, err, storeErr)
}
