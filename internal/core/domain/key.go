package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Scope distinguishes whole-stage cache entries from per-item entries.
type Scope string

const (
	// ScopeGlobal marks an entry covering a whole stage result.
	ScopeGlobal Scope = "global"
	// ScopeItem marks an entry covering a single work item within a stage.
	ScopeItem Scope = "item"
)

// CacheKey addresses a single cache entry. Identity is the fingerprint
// identity of the subject (a directory snapshot, a prior stage result, or a
// single file's content). Keys are unique within a stage but not required to
// be unique across stages.
type CacheKey struct {
	Stage    StageID
	Scope    Scope
	Identity string
}

// keyDigestLen is the number of hex characters of the identity hash kept in
// filenames. 32 hex chars (128 bits) is plenty to avoid collisions while
// keeping names readable.
const keyDigestLen = 32

// Filename returns the filesystem-safe name of the entry. The stage id leads
// so that stage-scoped deletion can match on the prefix.
func (k CacheKey) Filename() string {
	sum := sha256.Sum256([]byte(string(k.Stage) + "\x00" + string(k.Scope) + "\x00" + k.Identity))
	return fmt.Sprintf("%s-%s-%s.json", k.Stage, k.Scope, hex.EncodeToString(sum[:])[:keyDigestLen])
}

// StagePrefix returns the filename prefix shared by all entries of a stage.
func StagePrefix(stage StageID) string {
	return string(stage) + "-"
}

// StageFromFilename recovers the stage id from an entry filename, or ""
// if the name does not look like a cache entry.
func StageFromFilename(name string) StageID {
	if !strings.HasSuffix(name, ".json") {
		return ""
	}
	for _, stage := range Stages() {
		if strings.HasPrefix(name, StagePrefix(stage)) {
			return stage
		}
	}
	return ""
}

// CacheEntry is the on-disk representation of one cached result. Entries are
// immutable once written; a write for an existing key replaces the prior
// entry. Validity is decided solely by fingerprint comparison, never by age.
type CacheEntry struct {
	Schema      int             `json:"schema"`
	Stage       StageID         `json:"stage"`
	Scope       Scope           `json:"scope"`
	Fingerprint Fingerprint     `json:"fingerprint"`
	WrittenAt   time.Time       `json:"written_at"`
	Payload     json.RawMessage `json:"payload"`
}

// CacheStats summarizes the cache directory without decoding payloads.
type CacheStats struct {
	PerStage   map[StageID]int
	TotalBytes int64
}

// TotalEntries returns the number of entries across all stages.
func (s CacheStats) TotalEntries() int {
	total := 0
	for _, n := range s.PerStage {
		total += n
	}
	return total
}
