// Package cache implements the persistent stage cache store.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore with one JSON file per key under a single
// root directory. Writes go through a temp file and rename so a crash
// mid-write never leaves a half-written entry visible to Get.
type Store struct {
	mu      sync.RWMutex
	root    string
	fs      afero.Fs
	logger  ports.Logger
	nowFunc func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithFs sets a custom filesystem, primarily for tests with afero.NewMemMapFs().
func WithFs(fs afero.Fs) Option {
	return func(s *Store) {
		s.fs = fs
	}
}

// WithNowFunc sets a custom clock, primarily for deterministic timestamps in tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Store) {
		s.nowFunc = now
	}
}

// NewStore creates a store rooted at the default cache path. The directory is
// created lazily on the first write, so constructing a store never fails.
func NewStore(logger ports.Logger, options ...Option) *Store {
	s := &Store{
		root:    domain.DefaultCachePath(),
		fs:      afero.NewOsFs(),
		logger:  logger,
		nowFunc: time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// SetRoot changes the cache root directory.
func (s *Store) SetRoot(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dir != "" {
		s.root = filepath.Clean(dir)
	}
}

// Root returns the current cache root directory.
func (s *Store) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Get retrieves the entry for the given key. A missing key and a corrupt
// entry both yield nil, nil; corruption is logged as a warning because the
// caller recovers by recomputing.
func (s *Store) Get(key domain.CacheKey) (*domain.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := filepath.Join(s.root, key.Filename())
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheDirInaccessible.Error()), "path", path)
	}

	var entry domain.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		s.logger.Warn(fmt.Sprintf("corrupt cache entry %s, treating as miss: %v", filepath.Base(path), err))
		return nil, nil
	}

	return &entry, nil
}

// Put atomically writes an entry, replacing any prior entry for the key.
// A failing write is fatal to the run: a silently skipped cache write would
// hide a real operational problem.
func (s *Store) Put(key domain.CacheKey, schema int, payload []byte, fp domain.Fingerprint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.root, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "dir", s.root)
	}

	entry := domain.CacheEntry{
		Schema:      schema,
		Stage:       key.Stage,
		Scope:       key.Scope,
		Fingerprint: fp,
		WrittenAt:   s.nowFunc(),
		Payload:     json.RawMessage(payload),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	final := filepath.Join(s.root, key.Filename())
	tmp, err := afero.TempFile(s.fs, s.root, "put-*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "dir", s.root)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", final)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", final)
	}

	if err := s.fs.Rename(tmpName, final); err != nil {
		_ = s.fs.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, domain.ErrCacheWriteFailed.Error()), "path", final)
	}

	return nil
}

// Delete removes the entry for a single key if present.
func (s *Store) Delete(key domain.CacheKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.root, key.Filename())
	if err := s.fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheDeleteFailed.Error()), "path", path)
	}
	return nil
}

// DeleteStage removes all entries whose filename carries the stage prefix.
func (s *Store) DeleteStage(stage domain.StageID) (int, error) {
	return s.deleteMatching(func(name string) bool {
		return strings.HasPrefix(name, domain.StagePrefix(stage))
	})
}

// DeleteAll removes every cache entry.
func (s *Store) DeleteAll() (int, error) {
	return s.deleteMatching(func(name string) bool {
		return domain.StageFromFilename(name) != ""
	})
}

func (s *Store) deleteMatching(match func(name string) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, zerr.With(zerr.Wrap(err, domain.ErrCacheDirInaccessible.Error()), "dir", s.root)
	}

	removed := 0
	for _, info := range entries {
		if info.IsDir() || !match(info.Name()) {
			continue
		}
		path := filepath.Join(s.root, info.Name())
		if err := s.fs.Remove(path); err != nil {
			return removed, zerr.With(zerr.Wrap(err, domain.ErrCacheDeleteFailed.Error()), "path", path)
		}
		removed++
	}

	return removed, nil
}

// Stats summarizes the cache from directory metadata only; payloads are
// never decoded.
func (s *Store) Stats() (domain.CacheStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.CacheStats{PerStage: make(map[domain.StageID]int)}

	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, zerr.With(zerr.Wrap(err, domain.ErrCacheDirInaccessible.Error()), "dir", s.root)
	}

	for _, info := range entries {
		if info.IsDir() {
			continue
		}
		stage := domain.StageFromFilename(info.Name())
		if stage == "" {
			continue
		}
		stats.PerStage[stage]++
		stats.TotalBytes += info.Size()
	}

	return stats, nil
}
