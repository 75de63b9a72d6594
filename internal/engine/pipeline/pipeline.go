// Package pipeline orchestrates the five processing stages. Stages run
// strictly in order; each consumes the previous stage's result and goes
// through the cache runner so unchanged work is never redone.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/core/ports"
	"go.trai.ch/sift/internal/engine/runner"
	"go.trai.ch/zerr"
)

// Pipeline chains the stage collaborators through the cache runner.
type Pipeline struct {
	runner        *runner.Runner
	fingerprinter ports.Fingerprinter
	scanner       ports.Scanner
	classifier    ports.Classifier
	analyzer      ports.Analyzer
	taxonomy      ports.TaxonomyBuilder
	mover         ports.Mover
	logger        ports.Logger
}

// New creates a new Pipeline.
func New(
	run *runner.Runner,
	fingerprinter ports.Fingerprinter,
	scanner ports.Scanner,
	classifier ports.Classifier,
	analyzer ports.Analyzer,
	taxonomy ports.TaxonomyBuilder,
	mover ports.Mover,
	logger ports.Logger,
) *Pipeline {
	return &Pipeline{
		runner:        run,
		fingerprinter: fingerprinter,
		scanner:       scanner,
		classifier:    classifier,
		analyzer:      analyzer,
		taxonomy:      taxonomy,
		mover:         mover,
		logger:        logger,
	}
}

// RunOptions control a single pipeline run.
type RunOptions struct {
	// Source is the directory to organize.
	Source string
	// Ignore patterns exclude files and directories from the scan.
	Ignore []string
	// DryRun plans the move stage without touching the tree.
	DryRun bool
	// NoCache bypasses cache reads; results are still written back.
	NoCache bool
	// StopBefore ends the run before the named stage. Empty runs everything.
	StopBefore domain.StageID
}

// StageReport describes how one stage went within a run.
type StageReport struct {
	Stage      domain.StageID
	Status     domain.StageStatus
	Hits       int
	Misses     int
	Elapsed    time.Duration
	ItemErrors []domain.ItemError
}

// Summary is the outcome of a full pipeline run.
type Summary struct {
	Reports   []StageReport
	FileCount int
	Moves     *domain.MoveResult
	Elapsed   time.Duration
}

// ItemErrorCount returns the number of per-item failures across all stages.
func (s *Summary) ItemErrorCount() int {
	n := 0
	for _, r := range s.Reports {
		n += len(r.ItemErrors)
	}
	return n
}

// Run executes the pipeline on the source directory. The first stage error
// aborts the run; per-item analysis failures do not, they are carried in the
// summary instead.
//
//nolint:cyclop // linear stage sequence
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	started := time.Now()
	summary := &Summary{}
	runnerOpts := runner.Options{BypassRead: opts.NoCache}

	// Stage 1: scan
	if stopBefore(opts, domain.StageScan) {
		return p.finish(summary, started), nil
	}
	scanFP, err := p.fingerprinter.Directory(opts.Source, opts.Ignore)
	if err != nil {
		return nil, err
	}
	scan, outcome, err := runner.Execute(ctx, p.runner, domain.StageScan, domain.ScanSchemaVersion, scanFP, runnerOpts,
		func(ctx context.Context) (*domain.ScanResult, error) {
			return p.scanner.Scan(ctx, opts.Source, opts.Ignore)
		})
	summary.Reports = append(summary.Reports, report(domain.StageScan, outcome, nil))
	if err != nil {
		return nil, err
	}
	summary.FileCount = len(scan.Files)
	p.logStage(domain.StageScan, outcome, fmt.Sprintf("%d files", len(scan.Files)))

	// Stage 2: discover
	if stopBefore(opts, domain.StageDiscover) {
		return p.finish(summary, started), nil
	}
	discoverFP, err := p.resultFingerprint(scan)
	if err != nil {
		return nil, err
	}
	discover, outcome, err := runner.Execute(ctx, p.runner, domain.StageDiscover, domain.DiscoverSchemaVersion, discoverFP, runnerOpts,
		func(context.Context) (*domain.DiscoverResult, error) {
			return p.classifier.Classify(scan)
		})
	summary.Reports = append(summary.Reports, report(domain.StageDiscover, outcome, nil))
	if err != nil {
		return nil, err
	}
	p.logStage(domain.StageDiscover, outcome, "")

	// Stage 3: analyze, per item
	if stopBefore(opts, domain.StageAnalyze) {
		return p.finish(summary, started), nil
	}
	items, itemErrors := p.analyzeItems(opts.Source, discover)
	prints := make([]domain.Fingerprint, 0, len(items))
	for _, item := range items {
		prints = append(prints, item.Fingerprint)
	}
	aggregate := domain.AggregateFingerprints(prints)

	analyses, analyzeErrors, outcome, err := runner.ExecuteItems(ctx, p.runner, domain.StageAnalyze, domain.AnalyzeSchemaVersion, aggregate, items, runnerOpts,
		func(ctx context.Context, item runner.Item[domain.ClassifiedFile]) (domain.Analysis, error) {
			analysis, err := p.analyzer.Analyze(ctx, opts.Source, item.Input)
			if err != nil {
				return domain.Analysis{}, err
			}
			return *analysis, nil
		})
	itemErrors = append(itemErrors, analyzeErrors...)
	summary.Reports = append(summary.Reports, report(domain.StageAnalyze, outcome, itemErrors))
	if err != nil {
		return nil, err
	}
	p.logStage(domain.StageAnalyze, outcome, fmt.Sprintf("%d analyzed, %d failed", len(analyses), len(itemErrors)))

	analysis := &domain.AnalysisResult{Items: analyses, Errors: itemErrors}

	// Stage 4: taxonomy
	if stopBefore(opts, domain.StageTaxonomy) {
		return p.finish(summary, started), nil
	}
	taxonomyFP, err := p.resultFingerprint(analysis)
	if err != nil {
		return nil, err
	}
	taxonomy, outcome, err := runner.Execute(ctx, p.runner, domain.StageTaxonomy, domain.TaxonomySchemaVersion, taxonomyFP, runnerOpts,
		func(ctx context.Context) (*domain.TaxonomyResult, error) {
			return p.taxonomy.Build(ctx, analysis)
		})
	summary.Reports = append(summary.Reports, report(domain.StageTaxonomy, outcome, nil))
	if err != nil {
		return nil, err
	}
	p.logStage(domain.StageTaxonomy, outcome, fmt.Sprintf("%d folders", len(taxonomy.Folders)))

	// Stage 5: move
	if stopBefore(opts, domain.StageMove) {
		return p.finish(summary, started), nil
	}
	moveFP, err := p.moveFingerprint(taxonomy, opts.DryRun)
	if err != nil {
		return nil, err
	}
	moves, outcome, err := runner.Execute(ctx, p.runner, domain.StageMove, domain.MoveSchemaVersion, moveFP, runnerOpts,
		func(ctx context.Context) (*domain.MoveResult, error) {
			return p.mover.Apply(ctx, opts.Source, taxonomy, opts.DryRun)
		})
	summary.Reports = append(summary.Reports, report(domain.StageMove, outcome, nil))
	if err != nil {
		return nil, err
	}
	summary.Moves = moves
	p.logStage(domain.StageMove, outcome, fmt.Sprintf("%d moves", len(moves.Moves)))

	return p.finish(summary, started), nil
}

// analyzeItems fingerprints every classified file by content. Files that
// cannot be fingerprinted become item errors instead of aborting the stage.
func (p *Pipeline) analyzeItems(source string, discover *domain.DiscoverResult) ([]runner.Item[domain.ClassifiedFile], []domain.ItemError) {
	items := make([]runner.Item[domain.ClassifiedFile], 0, len(discover.Files))
	var itemErrors []domain.ItemError

	for _, file := range discover.Files {
		abs := filepath.Join(source, filepath.FromSlash(file.Path))
		fp, err := p.fingerprinter.Content(abs)
		if err != nil {
			p.logger.Warn(fmt.Sprintf("cannot fingerprint %s: %s", file.Path, err.Error()))
			itemErrors = append(itemErrors, domain.ItemError{Path: file.Path, Message: err.Error()})
			continue
		}
		// Key per-item entries by the relative path so renames of the source
		// root do not invalidate them.
		fp.Path = file.Path
		items = append(items, runner.Item[domain.ClassifiedFile]{
			Path:        file.Path,
			Fingerprint: fp,
			Input:       file,
		})
	}
	return items, itemErrors
}

// resultFingerprint derives a stage subject from the serialized result of
// the previous stage, chaining invalidation down the pipeline.
func (p *Pipeline) resultFingerprint(result any) (domain.Fingerprint, error) {
	blob, err := json.Marshal(result)
	if err != nil {
		return domain.Fingerprint{}, zerr.Wrap(err, domain.ErrFingerprintFailed.Error())
	}
	return p.fingerprinter.Bytes(blob), nil
}

// moveFingerprint additionally folds the dry-run flag into the subject so a
// dry run never masks a real one.
func (p *Pipeline) moveFingerprint(taxonomy *domain.TaxonomyResult, dryRun bool) (domain.Fingerprint, error) {
	fp, err := p.resultFingerprint(taxonomy)
	if err != nil {
		return domain.Fingerprint{}, err
	}
	fp.Path = fmt.Sprintf("dry-run=%t", dryRun)
	return fp, nil
}

func (p *Pipeline) finish(summary *Summary, started time.Time) *Summary {
	summary.Elapsed = time.Since(started)
	return summary
}

func (p *Pipeline) logStage(stage domain.StageID, outcome runner.Outcome, detail string) {
	msg := fmt.Sprintf("stage %d/%d %s: %s", stage.Position(), len(domain.Stages()), stage, outcome.Status)
	if detail != "" {
		msg += " (" + detail + ")"
	}
	p.logger.Info(msg)
}

func stopBefore(opts RunOptions, stage domain.StageID) bool {
	return opts.StopBefore != "" && opts.StopBefore.Position() <= stage.Position()
}

func report(stage domain.StageID, outcome runner.Outcome, itemErrors []domain.ItemError) StageReport {
	return StageReport{
		Stage:      stage,
		Status:     outcome.Status,
		Hits:       outcome.Hits,
		Misses:     outcome.Misses,
		Elapsed:    outcome.Elapsed,
		ItemErrors: itemErrors,
	}
}
