package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is the identity of a cache subject. For a single file it is the
// (path, size, mtime) triple; for a directory snapshot or a byte blob it is a
// digest over the constituents. Two fingerprints are equal iff every field
// matches, so any change to a constituent invalidates dependants.
type Fingerprint struct {
	Path       string `json:"path,omitempty"`
	Size       int64  `json:"size,omitempty"`
	ModifiedAt int64  `json:"modified_at,omitempty"` // UnixNano
	Digest     string `json:"digest,omitempty"`
}

// Equal reports whether two fingerprints describe the same subject state.
func (f Fingerprint) Equal(other Fingerprint) bool {
	return f == other
}

// IsZero reports whether the fingerprint is unset, which happens when the
// subject could not be fingerprinted. A zero fingerprint never validates a
// cache entry.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// Identity returns a stable string form used to derive cache keys.
func (f Fingerprint) Identity() string {
	return fmt.Sprintf("%s|%d|%d|%s", f.Path, f.Size, f.ModifiedAt, f.Digest)
}

// ModTime returns the modification time carried by the fingerprint.
func (f Fingerprint) ModTime() time.Time {
	return time.Unix(0, f.ModifiedAt)
}

// AggregateFingerprints folds a set of fingerprints into one, used for the
// whole-stage fast path of per-item stages. The input is sorted by path so
// the result is independent of item order.
func AggregateFingerprints(prints []Fingerprint) Fingerprint {
	sorted := make([]Fingerprint, len(prints))
	copy(sorted, prints)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	hasher := xxhash.New()
	_, _ = fmt.Fprintf(hasher, "%d", len(sorted))
	for _, p := range sorted {
		_, _ = hasher.WriteString(p.Identity())
		_, _ = hasher.Write([]byte{0})
	}

	return Fingerprint{
		Size:   int64(len(sorted)),
		Digest: fmt.Sprintf("%016x", hasher.Sum64()),
	}
}
