package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/cmd/sift/commands"
	"go.trai.ch/sift/internal/app"
	"go.trai.ch/sift/internal/build"
)

type mockApp struct {
	runFunc   func(ctx context.Context, opts app.RunOptions) error
	statsFunc func(opts app.RunOptions) error
	clearFunc func(scope string, opts app.RunOptions) error
}

func (m *mockApp) Run(ctx context.Context, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, opts)
	}
	return nil
}

func (m *mockApp) CacheStats(opts app.RunOptions) error {
	if m.statsFunc != nil {
		return m.statsFunc(opts)
	}
	return nil
}

func (m *mockApp) ClearCache(scope string, opts app.RunOptions) error {
	if m.clearFunc != nil {
		return m.clearFunc(scope, opts)
	}
	return nil
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		called := false

		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				capturedOpts = opts
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "/srv/inbox", "--no-cache", "--dry-run", "--skip", "move", "--cache-dir", "/tmp/cache"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "/srv/inbox", capturedOpts.Source)
		assert.True(t, capturedOpts.NoCache)
		assert.True(t, capturedOpts.DryRun)
		assert.Equal(t, "move", capturedOpts.Skip)
		assert.Equal(t, "/tmp/cache", capturedOpts.CacheDir)
	})

	t.Run("clear-cache accepts bare and stage forms", func(t *testing.T) {
		var capturedOpts app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				capturedOpts = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "/srv/inbox", "--clear-cache"})
		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "all", capturedOpts.ClearCache)

		cli = commands.New(mock)
		cli.SetArgs([]string{"run", "/srv/inbox", "--clear-cache=stage3"})
		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "stage3", capturedOpts.ClearCache)
	})

	t.Run("source argument is optional", func(t *testing.T) {
		var capturedOpts app.RunOptions
		mock := &mockApp{
			runFunc: func(_ context.Context, opts app.RunOptions) error {
				capturedOpts = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Empty(t, capturedOpts.Source)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "/srv/inbox"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Plan(t *testing.T) {
	var capturedOpts app.RunOptions
	mock := &mockApp{
		runFunc: func(_ context.Context, opts app.RunOptions) error {
			capturedOpts = opts
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"plan", "/srv/inbox"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/srv/inbox", capturedOpts.Source)
	assert.True(t, capturedOpts.DryRun)
	assert.False(t, capturedOpts.NoCache)
}

func TestCommands_Cache(t *testing.T) {
	t.Run("stats", func(t *testing.T) {
		var capturedOpts app.RunOptions
		called := false
		mock := &mockApp{
			statsFunc: func(opts app.RunOptions) error {
				capturedOpts = opts
				called = true
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"cache", "stats", "--cache-dir", "/tmp/cache"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.True(t, called)
		assert.Equal(t, "/tmp/cache", capturedOpts.CacheDir)
	})

	t.Run("clear defaults to all", func(t *testing.T) {
		var capturedScope string
		mock := &mockApp{
			clearFunc: func(scope string, _ app.RunOptions) error {
				capturedScope = scope
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"cache", "clear"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "all", capturedScope)
	})

	t.Run("clear single stage", func(t *testing.T) {
		var capturedScope string
		mock := &mockApp{
			clearFunc: func(scope string, _ app.RunOptions) error {
				capturedScope = scope
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"cache", "clear", "analyze"})

		err := cli.Execute(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "analyze", capturedScope)
	})
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}

	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "sift version "+build.Version)
}
