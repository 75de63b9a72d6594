package logger_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated testing.
// It also sets NO_COLOR=1 to ensure deterministic output without ANSI escape codes.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("scanning source directory")

	assert.Contains(t, buf.String(), "scanning source directory")
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("cache entry unreadable")

	assert.Contains(t, buf.String(), "! cache entry unreadable")
}

func TestLogger_Error(t *testing.T) {
	t.Run("nil error is ignored", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Error(nil)

		assert.Empty(t, buf.String())
	})

	t.Run("plain error", func(t *testing.T) {
		lg, buf := newTestLogger(t)
		lg.Error(errors.New("something broke"))

		out := buf.String()
		assert.Contains(t, out, "Error: something broke")
		assert.NotContains(t, out, "Caused by:")
	})

	t.Run("zerr chain renders causes", func(t *testing.T) {
		lg, buf := newTestLogger(t)

		root := errors.New("permission denied")
		wrapped := zerr.Wrap(root, "cannot read cache directory")
		top := zerr.Wrap(wrapped, "stage execution failed")
		lg.Error(top)

		out := buf.String()
		assert.Contains(t, out, "Error: stage execution failed")
		assert.Contains(t, out, "Caused by:")
		assert.Contains(t, out, "→ cannot read cache directory")
		assert.Contains(t, out, "→ permission denied")
	})
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Info("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	lg.Error(errors.New("boom"))
	assert.Contains(t, buf.String(), `"error":"boom"`)
}

func TestLogger_SetOutput(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	lg, ok := logger.New().(*logger.Logger)
	require.True(t, ok)

	first := &bytes.Buffer{}
	second := &bytes.Buffer{}

	lg.SetOutput(first)
	lg.Info("one")
	lg.SetOutput(second)
	lg.Info("two")

	assert.Contains(t, first.String(), "one")
	assert.NotContains(t, first.String(), "two")
	assert.Contains(t, second.String(), "two")
}
