package store

import (
	"context"
	"errors"

	"sentinel-hq/sentinel/pkg/policy"
)

var (
	// ErrNotFound is returned when no policy exists for the given ID.
	ErrNotFound = errors.New("policy not found")

	// ErrReadOnly is returned by write operations on read-only sources
	// such as the file source.
	ErrReadOnly = errors.New("policy store is read-only")
)

// Filter narrows a List call. The zero value matches every policy.
type Filter struct {
	// Provider, when non-empty, matches policies scoped to that provider
	// or to all providers (empty Provider field).
	Provider string

	// EnabledOnly drops disabled policies from the result.
	EnabledOnly bool
}

// Matches reports whether p satisfies the filter.
func (f Filter) Matches(p *policy.Policy) bool {
	if f.EnabledOnly && !p.Enabled {
		return false
	}
	if f.Provider != "" && p.Provider != "" && p.Provider != f.Provider {
		return false
	}
	return true
}

// Store is the policy persistence contract. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get returns the policy with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*policy.Policy, error)

	// List returns the policies matching the filter, ordered by ID.
	List(ctx context.Context, filter Filter) ([]*policy.Policy, error)

	// Put inserts or replaces a policy. The policy is validated first.
	Put(ctx context.Context, p *policy.Policy) error

	// Delete removes the policy with the given ID, or returns
	// ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases the store's resources.
	Close() error
}
