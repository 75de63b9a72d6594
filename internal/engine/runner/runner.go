package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

// Runner wraps stage computations with cache reads and writes. It owns the
// read-check-compute-write cycle; the computations themselves know nothing
// about caching.
type Runner struct {
	store  ports.CacheStore
	logger ports.Logger
	policy Policy
}

// NewRunner creates a new Runner on top of the given store.
func NewRunner(store ports.CacheStore, logger ports.Logger) *Runner {
	return &Runner{
		store:  store,
		logger: logger,
	}
}

// Options control a single stage execution.
type Options struct {
	// BypassRead skips cache reads. Results are still written back, so a
	// bypassed run repopulates the cache.
	BypassRead bool
}

// Outcome reports how a stage execution went.
type Outcome struct {
	Status  domain.StageStatus
	Hits    int
	Misses  int
	Elapsed time.Duration
}

// Item pairs one unit of per-item work with its precomputed fingerprint.
type Item[I any] struct {
	Path        string
	Fingerprint domain.Fingerprint
	Input       I
}

// Execute runs a whole-stage computation through the cache. The subject
// fingerprint identifies the stage input; when it matches the stored entry
// the cached payload is returned without calling compute.
func Execute[T any](
	ctx context.Context,
	r *Runner,
	stage domain.StageID,
	schema int,
	subject domain.Fingerprint,
	opts Options,
	compute func(context.Context) (T, error),
) (T, Outcome, error) {
	var zero T
	started := time.Now()
	key := domain.CacheKey{Stage: stage, Scope: domain.ScopeGlobal, Identity: subject.Identity()}

	if !opts.BypassRead {
		entry, err := r.store.Get(key)
		if err != nil {
			return zero, failed(started), err
		}
		if r.policy.IsValid(entry, schema, subject) {
			if result, ok := decode[T](r, key, entry); ok {
				return result, Outcome{
					Status:  domain.StatusCached,
					Hits:    1,
					Elapsed: time.Since(started),
				}, nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return zero, failed(started), err
	}

	result, err := compute(ctx)
	if err != nil {
		return zero, failed(started), zerr.With(
			zerr.Wrap(err, domain.ErrStageFailed.Error()),
			"stage", string(stage),
		)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return zero, failed(started), zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := r.store.Put(key, schema, payload, subject); err != nil {
		return zero, failed(started), err
	}

	return result, Outcome{
		Status:  domain.StatusComputed,
		Misses:  1,
		Elapsed: time.Since(started),
	}, nil
}

// ExecuteItems runs a per-item stage through the cache. Each item carries its
// own fingerprint and cache entry; aggregate identifies the full item set and
// backs a whole-stage fast path that skips per-item decoding when nothing
// changed. The fast path is only taken while every per-item entry behind it
// is intact, so a damaged entry is recomputed and repaired on the next run
// instead of hiding behind the aggregate.
//
// Item failures are isolated: the stage continues, failures are reported as
// item errors, and successfully computed items are cached immediately so an
// aborted run resumes where it left off. The whole-stage entry is only
// written when every item succeeded.
func ExecuteItems[I, R any](
	ctx context.Context,
	r *Runner,
	stage domain.StageID,
	schema int,
	aggregate domain.Fingerprint,
	items []Item[I],
	opts Options,
	compute func(context.Context, Item[I]) (R, error),
) ([]R, []domain.ItemError, Outcome, error) {
	started := time.Now()
	globalKey := domain.CacheKey{Stage: stage, Scope: domain.ScopeGlobal, Identity: aggregate.Identity()}

	if !opts.BypassRead {
		entry, err := r.store.Get(globalKey)
		if err != nil {
			return nil, nil, failed(started), err
		}
		if r.policy.IsValid(entry, schema, aggregate) && itemEntriesIntact(r, stage, schema, items) {
			if results, ok := decode[[]R](r, globalKey, entry); ok {
				return results, nil, Outcome{
					Status:  domain.StatusCached,
					Hits:    len(items),
					Elapsed: time.Since(started),
				}, nil
			}
		}
	}

	sorted := make([]Item[I], len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	var (
		results    []R
		itemErrors []domain.ItemError
		outcome    Outcome
	)

	for _, item := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, nil, failed(started), err
		}

		if item.Fingerprint.IsZero() {
			itemErrors = append(itemErrors, domain.ItemError{
				Path:    item.Path,
				Message: domain.ErrFingerprintFailed.Error(),
			})
			continue
		}

		itemKey := domain.CacheKey{Stage: stage, Scope: domain.ScopeItem, Identity: item.Fingerprint.Identity()}

		if !opts.BypassRead {
			entry, err := r.store.Get(itemKey)
			if err != nil {
				return nil, nil, failed(started), err
			}
			if r.policy.IsValid(entry, schema, item.Fingerprint) {
				if result, ok := decode[R](r, itemKey, entry); ok {
					results = append(results, result)
					outcome.Hits++
					continue
				}
			}
		}

		result, err := compute(ctx, item)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, failed(started), ctx.Err()
			}
			r.logger.Warn(fmt.Sprintf("%s: item %s failed: %s", stage, item.Path, err.Error()))
			itemErrors = append(itemErrors, domain.ItemError{Path: item.Path, Message: err.Error()})
			continue
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, nil, failed(started), zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
		}
		if err := r.store.Put(itemKey, schema, payload, item.Fingerprint); err != nil {
			return nil, nil, failed(started), err
		}

		results = append(results, result)
		outcome.Misses++
	}

	if len(itemErrors) == 0 && !aggregate.IsZero() {
		payload, err := json.Marshal(results)
		if err != nil {
			return nil, nil, failed(started), zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
		}
		if err := r.store.Put(globalKey, schema, payload, aggregate); err != nil {
			return nil, nil, failed(started), err
		}
	}

	outcome.Elapsed = time.Since(started)
	if outcome.Misses == 0 && len(itemErrors) == 0 {
		outcome.Status = domain.StatusCached
	} else {
		outcome.Status = domain.StatusComputed
	}

	return results, itemErrors, outcome, nil
}

// itemEntriesIntact reports whether every per-item entry behind an aggregate
// entry is still present and valid. A damaged item entry disables the fast
// path so that the per-item pass recomputes and rewrites exactly that item.
func itemEntriesIntact[I any](r *Runner, stage domain.StageID, schema int, items []Item[I]) bool {
	for _, item := range items {
		key := domain.CacheKey{Stage: stage, Scope: domain.ScopeItem, Identity: item.Fingerprint.Identity()}
		entry, err := r.store.Get(key)
		if err != nil || !r.policy.IsValid(entry, schema, item.Fingerprint) {
			return false
		}
	}
	return true
}

// decode unmarshals an entry payload, downgrading decode failures to misses.
func decode[T any](r *Runner, key domain.CacheKey, entry *domain.CacheEntry) (T, bool) {
	var result T
	if err := json.Unmarshal(entry.Payload, &result); err != nil {
		r.logger.Warn(fmt.Sprintf("discarding undecodable cache entry %s: %s", key.Filename(), err.Error()))
		var zero T
		return zero, false
	}
	return result, true
}

func failed(started time.Time) Outcome {
	return Outcome{Status: domain.StatusFailed, Elapsed: time.Since(started)}
}
