package move_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/move"
	"go.trai.ch/sift/internal/core/domain"
)

type noopLogger struct{}

func (noopLogger) Info(string) {}
func (noopLogger) Warn(string) {}
func (noopLogger) Error(error) {}

func newTestMover(fs afero.Fs) *move.Mover {
	return move.NewMover(noopLogger{}, move.WithFs(fs))
}

func taxonomy(assignments map[string]string) *domain.TaxonomyResult {
	return &domain.TaxonomyResult{Assignments: assignments}
}

func exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	return ok
}

func TestMover_Apply(t *testing.T) {
	t.Run("moves files into folders", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/inbox/report.pdf", []byte("pdf"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/inbox/photo.jpg", []byte("jpg"), 0o644))

		result, err := newTestMover(fs).Apply(context.Background(), "/inbox", taxonomy(map[string]string{
			"report.pdf": "Finance",
			"photo.jpg":  "Media",
		}), false)
		require.NoError(t, err)

		require.Len(t, result.Moves, 2)
		assert.False(t, result.DryRun)
		for _, m := range result.Moves {
			assert.True(t, m.Applied)
		}

		assert.True(t, exists(t, fs, "/inbox/Finance/report.pdf"))
		assert.True(t, exists(t, fs, "/inbox/Media/photo.jpg"))
		assert.False(t, exists(t, fs, "/inbox/report.pdf"))
	})

	t.Run("dry run leaves tree untouched", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/inbox/report.pdf", []byte("pdf"), 0o644))

		result, err := newTestMover(fs).Apply(context.Background(), "/inbox", taxonomy(map[string]string{
			"report.pdf": "Finance",
		}), true)
		require.NoError(t, err)

		assert.True(t, result.DryRun)
		require.Len(t, result.Moves, 1)
		assert.Equal(t, "Finance/report.pdf", result.Moves[0].To)
		assert.False(t, result.Moves[0].Applied)

		assert.True(t, exists(t, fs, "/inbox/report.pdf"))
		assert.False(t, exists(t, fs, "/inbox/Finance/report.pdf"))
	})

	t.Run("name conflicts get numeric suffixes", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/inbox/a/notes.txt", []byte("a"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/inbox/b/notes.txt", []byte("b"), 0o644))

		result, err := newTestMover(fs).Apply(context.Background(), "/inbox", taxonomy(map[string]string{
			"a/notes.txt": "Docs",
			"b/notes.txt": "Docs",
		}), false)
		require.NoError(t, err)

		require.Len(t, result.Moves, 2)
		assert.Equal(t, "Docs/notes.txt", result.Moves[0].To)
		assert.Equal(t, "Docs/notes-1.txt", result.Moves[1].To)

		assert.True(t, exists(t, fs, "/inbox/Docs/notes.txt"))
		assert.True(t, exists(t, fs, "/inbox/Docs/notes-1.txt"))
	})

	t.Run("file already in place is not rewritten", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/inbox/Finance/report.pdf", []byte("pdf"), 0o644))

		result, err := newTestMover(fs).Apply(context.Background(), "/inbox", taxonomy(map[string]string{
			"Finance/report.pdf": "Finance",
		}), false)
		require.NoError(t, err)

		require.Len(t, result.Moves, 1)
		assert.Equal(t, "Finance/report.pdf", result.Moves[0].To)
		assert.False(t, result.Moves[0].Applied)
	})

	t.Run("rejects folders outside root", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/inbox/report.pdf", []byte("pdf"), 0o644))

		for _, folder := range []string{"../elsewhere", "/abs", ""} {
			_, err := newTestMover(fs).Apply(context.Background(), "/inbox", taxonomy(map[string]string{
				"report.pdf": folder,
			}), false)
			require.Error(t, err, "folder %q", folder)
			assert.ErrorContains(t, err, domain.ErrMoveOutsideRoot.Error())
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/inbox/report.pdf", []byte("pdf"), 0o644))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestMover(fs).Apply(ctx, "/inbox", taxonomy(map[string]string{
			"report.pdf": "Finance",
		}), false)
		require.ErrorIs(t, err, context.Canceled)
	})
}
