// Package move applies the derived taxonomy to the source tree.
package move

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/zerr"
)

// Mover implements ports.Mover by renaming files into their target folders.
type Mover struct {
	fs     afero.Fs
	logger ports.Logger
}

// Option configures a Mover.
type Option func(*Mover)

// WithFs overrides the filesystem, primarily for testing.
func WithFs(fs afero.Fs) Option {
	return func(m *Mover) {
		m.fs = fs
	}
}

// NewMover creates a new Mover.
func NewMover(logger ports.Logger, options ...Option) *Mover {
	m := &Mover{
		fs:     afero.NewOsFs(),
		logger: logger,
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// Apply moves every assigned file into its folder under root. In dry-run
// mode the moves are planned and reported but nothing touches the disk.
// Assignments are processed in path order so repeated runs produce the
// same plan, including conflict suffixes.
func (m *Mover) Apply(ctx context.Context, root string, taxonomy *domain.TaxonomyResult, dryRun bool) (*domain.MoveResult, error) {
	paths := make([]string, 0, len(taxonomy.Assignments))
	for path := range taxonomy.Assignments {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	result := &domain.MoveResult{DryRun: dryRun}
	taken := make(map[string]bool, len(paths))

	for _, path := range paths {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		folder := taxonomy.Assignments[path]
		if err := validateFolder(folder); err != nil {
			return nil, err
		}

		from := filepath.Join(root, filepath.FromSlash(path))
		target := m.resolveTarget(root, folder, from, taken)
		taken[target] = true

		rel, err := filepath.Rel(root, target)
		if err != nil {
			return nil, zerr.Wrap(err, domain.ErrMoveFailed.Error())
		}

		record := domain.MoveRecord{From: path, To: filepath.ToSlash(rel)}

		if path == record.To {
			// Already in place, nothing to move
			result.Moves = append(result.Moves, record)
			continue
		}

		if !dryRun {
			if err := m.move(from, target); err != nil {
				return nil, zerr.With(zerr.Wrap(err, domain.ErrMoveFailed.Error()), "path", path)
			}
			record.Applied = true
		}
		result.Moves = append(result.Moves, record)
	}

	return result, nil
}

// resolveTarget picks a non-conflicting destination inside the folder,
// suffixing the stem with a counter when the name is already taken. The
// source path itself never counts as a conflict so files already sitting
// in their folder stay put.
func (m *Mover) resolveTarget(root, folder, from string, taken map[string]bool) string {
	base := filepath.Base(from)
	dir := filepath.Join(root, filepath.FromSlash(folder))
	target := filepath.Join(dir, base)

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for i := 1; taken[target] || (target != from && m.exists(target)); i++ {
		target = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
	return target
}

func (m *Mover) exists(path string) bool {
	_, err := m.fs.Stat(path)
	return err == nil
}

func (m *Mover) move(from, to string) error {
	if err := m.fs.MkdirAll(filepath.Dir(to), domain.DirPerm); err != nil {
		return err
	}
	if err := m.fs.Rename(from, to); err != nil {
		// Rename fails across filesystems, fall back to copy and delete
		return m.copyAndRemove(from, to)
	}
	return nil
}

func (m *Mover) copyAndRemove(from, to string) error {
	src, err := m.fs.Open(from)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := m.fs.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = m.fs.Remove(to)
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return m.fs.Remove(from)
}

// validateFolder rejects folder names that would escape the source root.
func validateFolder(folder string) error {
	if folder == "" || filepath.IsAbs(folder) {
		return zerr.With(domain.ErrMoveOutsideRoot, "folder", folder)
	}
	clean := filepath.ToSlash(filepath.Clean(folder))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return zerr.With(domain.ErrMoveOutsideRoot, "folder", folder)
	}
	return nil
}
