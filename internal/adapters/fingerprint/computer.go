// Package fingerprint derives stable identities for cache subjects.
package fingerprint

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Computer)(nil)

// Computer implements ports.Fingerprinter using xxHash64 digests.
type Computer struct{}

// NewComputer creates a new Computer.
func NewComputer() *Computer {
	return &Computer{}
}

// File returns a stat-based fingerprint for one file. Callers treat a failed
// stat as "must recompute".
func (c *Computer) File(path string) (domain.Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.Fingerprint{}, zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "path", path)
	}
	return domain.Fingerprint{
		Path:       path,
		Size:       info.Size(),
		ModifiedAt: info.ModTime().UnixNano(),
	}, nil
}

// Content returns a content-digest fingerprint for one file. The modification
// time is deliberately left out so a touch without a content change still
// yields an equal fingerprint.
func (c *Computer) Content(path string) (domain.Fingerprint, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return domain.Fingerprint{}, zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	size, err := io.Copy(hasher, f)
	if err != nil {
		return domain.Fingerprint{}, zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "path", path)
	}

	return domain.Fingerprint{
		Path:   path,
		Size:   size,
		Digest: fmt.Sprintf("%016x", hasher.Sum64()),
	}, nil
}

// Directory aggregates the stat fingerprints of every file under root into a
// single digest. Files are sorted by path before hashing so two scans of an
// unchanged tree produce an identical value regardless of enumeration order.
func (c *Computer) Directory(root string, ignore []string) (domain.Fingerprint, error) {
	var files []domain.Fingerprint

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skipDir(d.Name(), ignore) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if skipFile(d.Name(), ignore) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, domain.Fingerprint{
			Path:       filepath.ToSlash(rel),
			Size:       info.Size(),
			ModifiedAt: info.ModTime().UnixNano(),
		})
		return nil
	})
	if err != nil {
		return domain.Fingerprint{}, zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "root", root)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	hasher := xxhash.New()
	_, _ = fmt.Fprintf(hasher, "%d", len(files))
	for _, f := range files {
		_, _ = hasher.WriteString(f.Path)
		_, _ = hasher.Write([]byte{0})
		_, _ = fmt.Fprintf(hasher, "%d|%d", f.Size, f.ModifiedAt)
		_, _ = hasher.Write([]byte{0})
	}

	return domain.Fingerprint{
		Path:   root,
		Size:   int64(len(files)),
		Digest: fmt.Sprintf("%016x", hasher.Sum64()),
	}, nil
}

// Bytes returns a digest fingerprint for an arbitrary blob.
func (c *Computer) Bytes(blob []byte) domain.Fingerprint {
	return domain.Fingerprint{
		Size:   int64(len(blob)),
		Digest: fmt.Sprintf("%016x", xxhash.Sum64(blob)),
	}
}

// The skip rules mirror the scanner's visibility exactly, so the directory
// subject covers precisely the files a scan would enumerate.
func skipDir(name string, ignore []string) bool {
	if name == ".git" || name == domain.SiftDirName {
		return true
	}
	return matchesIgnore(name, ignore)
}

func skipFile(name string, ignore []string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return matchesIgnore(name, ignore)
}

func matchesIgnore(name string, ignore []string) bool {
	for _, pattern := range ignore {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
