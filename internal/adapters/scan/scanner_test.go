package scan_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/scan"
	"go.trai.ch/sift/internal/core/domain"
)

type noopLogger struct{}

func (noopLogger) Info(string) {}
func (noopLogger) Warn(string) {}
func (noopLogger) Error(error) {}

func newTestScanner(fs afero.Fs) *scan.Scanner {
	return scan.NewScanner(noopLogger{}, scan.WithFs(fs))
}

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func paths(result *domain.ScanResult) []string {
	out := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		out = append(out, f.Path)
	}
	return out
}

func TestScanner_Scan(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		fs := afero.NewMemMapFs()

		_, err := newTestScanner(fs).Scan(context.Background(), "/inbox", nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrSourceNotFound.Error())
	})

	t.Run("sorted relative paths", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/inbox/zebra.txt", "z")
		writeFile(t, fs, "/inbox/sub/alpha.txt", "a")
		writeFile(t, fs, "/inbox/beta.txt", "b")

		result, err := newTestScanner(fs).Scan(context.Background(), "/inbox", nil)
		require.NoError(t, err)

		assert.Equal(t, "/inbox", result.Root)
		assert.Equal(t, []string{"beta.txt", "sub/alpha.txt", "zebra.txt"}, paths(result))
	})

	t.Run("skips hidden and internal entries", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/inbox/keep.txt", "k")
		writeFile(t, fs, "/inbox/.hidden", "h")
		writeFile(t, fs, "/inbox/.git/config", "g")
		writeFile(t, fs, "/inbox/.sift/cache/scan-global-x.json", "c")

		result, err := newTestScanner(fs).Scan(context.Background(), "/inbox", nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"keep.txt"}, paths(result))
	})

	t.Run("ignore patterns apply to files and directories", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/inbox/keep.txt", "k")
		writeFile(t, fs, "/inbox/draft.tmp", "t")
		writeFile(t, fs, "/inbox/node_modules/pkg/index.js", "j")

		result, err := newTestScanner(fs).Scan(context.Background(), "/inbox", []string{"*.tmp", "node_modules"})
		require.NoError(t, err)

		assert.Equal(t, []string{"keep.txt"}, paths(result))
	})

	t.Run("records size and mime", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/inbox/notes.txt", "hello world")

		result, err := newTestScanner(fs).Scan(context.Background(), "/inbox", nil)
		require.NoError(t, err)
		require.Len(t, result.Files, 1)

		assert.Equal(t, int64(11), result.Files[0].Size)
		assert.Equal(t, "text/plain", result.Files[0].MIME)
		assert.False(t, result.Files[0].ModifiedAt.IsZero())
	})

	t.Run("cancelled context", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		writeFile(t, fs, "/inbox/a.txt", "a")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestScanner(fs).Scan(ctx, "/inbox", nil)
		require.ErrorIs(t, err, context.Canceled)
	})
}
