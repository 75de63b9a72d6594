package ports

import "go.trai.ch/sift/internal/core/domain"

// Fingerprinter derives stable identities for cache subjects.
//
//go:generate mockgen -source=fingerprinter.go -destination=mocks/mock_fingerprinter.go -package=mocks
type Fingerprinter interface {
	// File returns a stat-based fingerprint (path, size, mtime) for one file.
	File(path string) (domain.Fingerprint, error)

	// Content returns a content-digest fingerprint for one file, used as the
	// per-item identity of the analyze stage.
	Content(path string) (domain.Fingerprint, error)

	// Directory returns a deterministic aggregate over all files under root,
	// identical for any enumeration order of an unchanged tree.
	Directory(root string, ignore []string) (domain.Fingerprint, error)

	// Bytes returns a digest fingerprint for an arbitrary blob, e.g. a
	// serialized prior-stage result.
	Bytes(blob []byte) domain.Fingerprint
}
