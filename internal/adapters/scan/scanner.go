// Package scan implements the filesystem enumeration adapter.
package scan

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

// sniffLen is the number of leading bytes handed to content-type detection
// when the extension alone is not conclusive.
const sniffLen = 512

// Scanner implements ports.Scanner by walking the source tree.
type Scanner struct {
	fs     afero.Fs
	logger ports.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFs overrides the filesystem, primarily for testing.
func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) {
		s.fs = fs
	}
}

// NewScanner creates a new Scanner.
func NewScanner(logger ports.Logger, options ...Option) *Scanner {
	s := &Scanner{
		fs:     afero.NewOsFs(),
		logger: logger,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Scan enumerates the regular files under root, skipping internal metadata
// directories and anything matched by the ignore patterns. The result is
// sorted by path so identical trees always produce identical output.
func (s *Scanner) Scan(ctx context.Context, root string, ignore []string) (*domain.ScanResult, error) {
	info, err := s.fs.Stat(root)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrSourceNotFound.Error()), "root", root)
	}
	if !info.IsDir() {
		return nil, zerr.With(domain.ErrSourceNotFound, "root", root)
	}

	var files []domain.FileRecord

	walkErr := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		name := info.Name()
		if info.IsDir() {
			if path != root && skipDir(name, ignore) {
				return filepath.SkipDir
			}
			return nil
		}

		if skipFile(name, ignore) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, domain.FileRecord{
			Path:       filepath.ToSlash(rel),
			Size:       info.Size(),
			ModifiedAt: info.ModTime(),
			MIME:       s.detectMIME(path),
		})
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, zerr.Wrap(walkErr, "failed to scan source directory")
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return &domain.ScanResult{Root: root, Files: files}, nil
}

// detectMIME resolves the MIME type from the file extension, falling back
// to content sniffing for unknown extensions. Detection failures degrade
// to application/octet-stream rather than failing the scan.
func (s *Scanner) detectMIME(path string) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		if mt, _, err := mime.ParseMediaType(byExt); err == nil {
			return mt
		}
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return "application/octet-stream"
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, sniffLen)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "application/octet-stream"
	}

	detected := http.DetectContentType(buf[:n])
	if mt, _, err := mime.ParseMediaType(detected); err == nil {
		return mt
	}
	return "application/octet-stream"
}

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
		if matched, err := filepath.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}
