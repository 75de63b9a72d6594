// Package app implements the application layer for sift.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/engine/pipeline"
	"go.trai.ch/sift/internal/engine/runner"
	"go.trai.ch/sift/internal/ui/render"
	"go.trai.ch/zerr"
)

// App wires the configuration, cache and pipeline together behind the CLI.
type App struct {
	configLoader  ports.ConfigLoader
	store         ports.CacheStore
	fingerprinter ports.Fingerprinter
	scanner       ports.Scanner
	classifier    ports.Classifier
	analyzer      ports.Analyzer
	taxonomy      ports.TaxonomyBuilder
	mover         ports.Mover
	logger        ports.Logger
	stdout        io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	store ports.CacheStore,
	fingerprinter ports.Fingerprinter,
	scanner ports.Scanner,
	classifier ports.Classifier,
	analyzer ports.Analyzer,
	taxonomy ports.TaxonomyBuilder,
	mover ports.Mover,
	log ports.Logger,
) *App {
	return &App{
		configLoader:  loader,
		store:         store,
		fingerprinter: fingerprinter,
		scanner:       scanner,
		classifier:    classifier,
		analyzer:      analyzer,
		taxonomy:      taxonomy,
		mover:         mover,
		logger:        log,
		stdout:        os.Stdout,
	}
}

// SetOutput redirects the run summary, primarily for testing.
func (a *App) SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	a.stdout = w
}

// RunOptions configuration for the Run method. Flag values override the
// config file; zero values defer to it.
type RunOptions struct {
	Source     string
	CacheDir   string
	DryRun  bool
	NoCache bool
	// ClearCache names a stage (or "all") whose entries are removed before
	// the run. Empty means no clearing.
	ClearCache string
	// Skip names a stage; the run covers only the stages before it.
	Skip string
}

// Run executes the pipeline on the configured source directory.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	if opts.NoCache && opts.ClearCache != "" {
		return zerr.With(domain.ErrConflictingFlags, "flags", "--no-cache, --clear-cache")
	}

	var stopBefore domain.StageID
	if opts.Skip != "" {
		stage, err := domain.ParseStage(opts.Skip)
		if err != nil {
			return err
		}
		stopBefore = stage
	}

	settings, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	applyFlags(settings, opts)

	if settings.Source == "" {
		return domain.ErrNoSourceSpecified
	}

	a.store.SetRoot(settings.CacheDir)

	if opts.ClearCache != "" {
		removed, err := a.deleteScope(opts.ClearCache)
		if err != nil {
			return err
		}
		a.logger.Info(fmt.Sprintf("cleared %d cache entries", removed))
	}

	if err := a.configureProvider(settings, stopBefore); err != nil {
		return err
	}

	p := pipeline.New(
		runner.NewRunner(a.store, a.logger),
		a.fingerprinter,
		a.scanner,
		a.classifier,
		a.analyzer,
		a.taxonomy,
		a.mover,
		a.logger,
	)

	summary, err := p.Run(ctx, pipeline.RunOptions{
		Source:     settings.Source,
		Ignore:     settings.Ignore,
		DryRun:     settings.DryRun,
		NoCache:    opts.NoCache,
		StopBefore: stopBefore,
	})
	if err != nil {
		return zerr.Wrap(err, domain.ErrPipelineFailed.Error())
	}

	render.Summary(a.stdout, summary)

	if n := summary.ItemErrorCount(); n > 0 {
		a.logger.Warn(fmt.Sprintf("%d files could not be analyzed, rerun to retry them", n))
	}
	return nil
}

// configureProvider pushes the provider settings into the AI-backed
// collaborators. Stages cut off by --skip keep their collaborators
// unconfigured so a missing API key does not block cache-only runs.
func (a *App) configureProvider(settings *domain.Settings, stopBefore domain.StageID) error {
	needs := func(stage domain.StageID) bool {
		return stopBefore == "" || stopBefore.Position() > stage.Position()
	}

	if needs(domain.StageAnalyze) {
		if c, ok := a.analyzer.(ports.ProviderConfigurable); ok {
			if err := c.Configure(settings.Provider); err != nil {
				return err
			}
		}
	}
	if needs(domain.StageTaxonomy) {
		if c, ok := a.taxonomy.(ports.ProviderConfigurable); ok {
			if err := c.Configure(settings.Provider); err != nil {
				return err
			}
		}
	}
	return nil
}

// applyFlags overlays non-zero flag values onto the settings.
func applyFlags(settings *domain.Settings, opts RunOptions) {
	if opts.Source != "" {
		settings.Source = opts.Source
	}
	if opts.CacheDir != "" {
		settings.CacheDir = opts.CacheDir
	}
	if opts.DryRun {
		settings.DryRun = true
	}
}

// CacheStats prints a summary of the cache directory.
func (a *App) CacheStats(opts RunOptions) error {
	if err := a.pointStoreAt(opts); err != nil {
		return err
	}

	stats, err := a.store.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "%d entries, %s\n", stats.TotalEntries(), humanize.Bytes(uint64(stats.TotalBytes)))
	for _, stage := range domain.Stages() {
		if n := stats.PerStage[stage]; n > 0 {
			fmt.Fprintf(a.stdout, "  %-10s %d\n", stage, n)
		}
	}
	return nil
}

// ClearCache removes cache entries. Scope is a stage name, a positional
// alias, or "all".
func (a *App) ClearCache(scope string, opts RunOptions) error {
	if err := a.pointStoreAt(opts); err != nil {
		return err
	}

	removed, err := a.deleteScope(scope)
	if err != nil {
		return err
	}

	a.logger.Info(fmt.Sprintf("removed %d cache entries", removed))
	return nil
}

// deleteScope removes cache entries for a stage name, a positional alias,
// or "all", returning the number removed.
func (a *App) deleteScope(scope string) (int, error) {
	if scope == "all" {
		return a.store.DeleteAll()
	}
	stage, err := domain.ParseStage(scope)
	if err != nil {
		return 0, err
	}
	return a.store.DeleteStage(stage)
}

// pointStoreAt resolves the cache directory from flags and config and
// aims the store at it.
func (a *App) pointStoreAt(opts RunOptions) error {
	settings, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}
	applyFlags(settings, opts)
	a.store.SetRoot(settings.CacheDir)
	return nil
}
