// Package runner executes pipeline stages through the cache.
package runner

import "go.trai.ch/sift/internal/core/domain"

// Policy decides whether a cache entry may stand in for a fresh computation.
// Validity is pure fingerprint and schema comparison; entries never expire
// by age.
type Policy struct{}

// IsValid reports whether entry can be used instead of recomputing. A nil
// entry (miss or corrupt data) and a zero current fingerprint never validate.
func (Policy) IsValid(entry *domain.CacheEntry, schema int, current domain.Fingerprint) bool {
	if entry == nil || current.IsZero() {
		return false
	}
	if entry.Schema != schema {
		return false
	}
	return entry.Fingerprint.Equal(current)
}
