// Package usernames allocates guaranteed-unique account names for the voice
// server from a character's display name.
package usernames

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/evetools/mumble-sync/internal/common"
)

// ReservedUsername is the voice server's built-in administrative account.
// It is never assignable to a generated account, in any case variant.
const ReservedUsername = "SuperUser"

// maxAttempts bounds the suffix search. Hitting it means the store is
// saturated with colliding names, which is a systemic problem rather than
// expected behavior.
const maxAttempts = 900

var invalidChars = regexp.MustCompile(`[^A-Za-z0-9-]`)

// Store is the read-only slice of the account store the allocator probes.
type Store interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type Allocator struct {
	store Store
}

func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store}
}

// Normalize lower-cases rawName and replaces every character outside
// [A-Za-z0-9-] with an underscore.
func Normalize(rawName string) string {
	return strings.ToLower(invalidChars.ReplaceAllString(rawName, "_"))
}

// Allocate returns the first candidate derived from rawName that is absent
// from the store (ignoring case) and is not the reserved name. Candidates
// after the normalized base carry numeric suffixes _1, _2, … up to the
// attempt budget; exhausting it yields ErrAllocationExhausted.
func (a *Allocator) Allocate(ctx context.Context, rawName string) (string, error) {
	base := Normalize(rawName)
	reserved := strings.ToLower(ReservedUsername)

	candidate := base
	for count := 0; count < maxAttempts; count++ {
		if candidate != reserved {
			exists, err := a.store.UsernameExists(ctx, candidate)
			if err != nil {
				return "", fmt.Errorf("probing username %q: %w", candidate, err)
			}
			if !exists {
				return candidate, nil
			}
		}
		candidate = fmt.Sprintf("%s_%d", base, count+1)
	}

	return "", common.ErrAllocationExhausted
}
