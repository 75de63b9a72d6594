package ports

import "go.trai.ch/sift/internal/core/domain"

// CacheStore defines the interface for the persistent stage cache. It is the
// only component that touches the on-disk cache layout.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// SetRoot changes the cache root directory. Called before a run when
	// --cache-dir or the config file overrides the default.
	SetRoot(dir string)

	// Get retrieves the entry for the given key. Returns nil, nil when the key
	// is missing or the entry on disk is corrupt; corruption is logged, never
	// surfaced as a failure.
	Get(key domain.CacheKey) (*domain.CacheEntry, error)

	// Put atomically writes an entry, replacing any prior entry for the key.
	Put(key domain.CacheKey, schema int, payload []byte, fp domain.Fingerprint) error

	// Delete removes the entry for a single key if present.
	Delete(key domain.CacheKey) error

	// DeleteStage removes all entries of one stage, whole-stage and per-item
	// alike. Returns the number of entries removed.
	DeleteStage(stage domain.StageID) (int, error)

	// DeleteAll removes every entry. Returns the number of entries removed.
	DeleteAll() (int, error)

	// Stats summarizes the cache from directory metadata only.
	Stats() (domain.CacheStats, error)
}
