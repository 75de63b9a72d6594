package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/sift/internal/adapters/cache"
	"go.trai.ch/sift/internal/adapters/classify"
	"go.trai.ch/sift/internal/adapters/fingerprint"
	"go.trai.ch/sift/internal/adapters/move"
	"go.trai.ch/sift/internal/adapters/scan"
	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/sift/internal/engine/pipeline"
	"go.trai.ch/sift/internal/engine/runner"
)

type noopLogger struct{}

func (noopLogger) Info(string) {}
func (noopLogger) Warn(string) {}
func (noopLogger) Error(error) {}

// countingAnalyzer fakes the AI call and records which paths it analyzed.
type countingAnalyzer struct {
	calls []string
}

func (a *countingAnalyzer) Analyze(_ context.Context, _ string, file domain.ClassifiedFile) (*domain.Analysis, error) {
	a.calls = append(a.calls, file.Path)
	return &domain.Analysis{
		Path:          file.Path,
		SuggestedName: "named-" + filepath.Base(file.Path),
		Tags:          []string{file.Category},
	}, nil
}

// singleFolderBuilder assigns every file to one folder and counts calls.
type singleFolderBuilder struct {
	calls int
}

func (b *singleFolderBuilder) Build(_ context.Context, analysis *domain.AnalysisResult) (*domain.TaxonomyResult, error) {
	b.calls++
	result := &domain.TaxonomyResult{
		Folders:     []domain.TaxonomyFolder{{Name: "Sorted"}},
		Assignments: make(map[string]string, len(analysis.Items)),
	}
	for _, item := range analysis.Items {
		result.Assignments[item.Path] = "Sorted"
	}
	return result, nil
}

type fixture struct {
	pipeline *pipeline.Pipeline
	analyzer *countingAnalyzer
	builder  *singleFolderBuilder
	source   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := cache.NewStore(noopLogger{}, cache.WithFs(afero.NewMemMapFs()))
	store.SetRoot("/cache")

	analyzer := &countingAnalyzer{}
	builder := &singleFolderBuilder{}

	p := pipeline.New(
		runner.NewRunner(store, noopLogger{}),
		fingerprint.NewComputer(),
		scan.NewScanner(noopLogger{}),
		classify.NewClassifier(),
		analyzer,
		builder,
		move.NewMover(noopLogger{}),
		noopLogger{},
	)

	source := t.TempDir()
	writeSourceFile(t, source, "report.pdf", "pdf bytes")
	writeSourceFile(t, source, "notes.txt", "meeting notes")
	writeSourceFile(t, source, "photo.jpg", "jpg bytes")

	return &fixture{pipeline: p, analyzer: analyzer, builder: builder, source: source}
}

func writeSourceFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func (f *fixture) run(t *testing.T, opts pipeline.RunOptions) *pipeline.Summary {
	t.Helper()
	opts.Source = f.source
	summary, err := f.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	return summary
}

func statusOf(t *testing.T, summary *pipeline.Summary, stage domain.StageID) domain.StageStatus {
	t.Helper()
	for _, report := range summary.Reports {
		if report.Stage == stage {
			return report.Status
		}
	}
	t.Fatalf("no report for stage %s", stage)
	return ""
}

func TestPipeline_FullRun(t *testing.T) {
	f := newFixture(t)

	summary := f.run(t, pipeline.RunOptions{})

	require.Len(t, summary.Reports, 5)
	for _, report := range summary.Reports {
		assert.Equal(t, domain.StatusComputed, report.Status, "stage %s", report.Stage)
	}
	assert.Equal(t, 3, summary.FileCount)
	assert.Len(t, f.analyzer.calls, 3)

	require.NotNil(t, summary.Moves)
	assert.Len(t, summary.Moves.Moves, 3)
	assert.FileExists(t, filepath.Join(f.source, "Sorted", "report.pdf"))
}

func TestPipeline_SecondDryRunIsFullyCached(t *testing.T) {
	f := newFixture(t)

	f.run(t, pipeline.RunOptions{DryRun: true})
	summary := f.run(t, pipeline.RunOptions{DryRun: true})

	for _, report := range summary.Reports {
		assert.Equal(t, domain.StatusCached, report.Status, "stage %s", report.Stage)
	}
	assert.Len(t, f.analyzer.calls, 3)
	assert.Equal(t, 1, f.builder.calls)
}

func TestPipeline_OneChangedFileReanalyzesOnlyThatFile(t *testing.T) {
	f := newFixture(t)

	f.run(t, pipeline.RunOptions{DryRun: true})
	writeSourceFile(t, f.source, "notes.txt", "entirely new notes")
	summary := f.run(t, pipeline.RunOptions{DryRun: true})

	report := findReport(t, summary, domain.StageAnalyze)
	assert.Equal(t, 2, report.Hits)
	assert.Equal(t, 1, report.Misses)
	assert.Equal(t, []string{"notes.txt", "photo.jpg", "report.pdf", "notes.txt"}, f.analyzer.calls)
}

func TestPipeline_TouchWithoutChangeKeepsAnalysisCached(t *testing.T) {
	f := newFixture(t)

	f.run(t, pipeline.RunOptions{DryRun: true})

	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(filepath.Join(f.source, "notes.txt"), future, future))

	summary := f.run(t, pipeline.RunOptions{DryRun: true})

	// The stat-based scan fingerprint sees the new mtime, so scan and
	// discover recompute, but the content-addressed analysis stays valid.
	assert.Equal(t, domain.StatusComputed, statusOf(t, summary, domain.StageScan))
	assert.Equal(t, domain.StatusCached, statusOf(t, summary, domain.StageAnalyze))
	assert.Equal(t, domain.StatusCached, statusOf(t, summary, domain.StageTaxonomy))
	assert.Len(t, f.analyzer.calls, 3)
}

func TestPipeline_StopBefore(t *testing.T) {
	f := newFixture(t)

	summary := f.run(t, pipeline.RunOptions{StopBefore: domain.StageAnalyze})

	require.Len(t, summary.Reports, 2)
	assert.Equal(t, domain.StageScan, summary.Reports[0].Stage)
	assert.Equal(t, domain.StageDiscover, summary.Reports[1].Stage)
	assert.Empty(t, f.analyzer.calls)
	assert.Nil(t, summary.Moves)
	assert.NoFileExists(t, filepath.Join(f.source, "Sorted", "report.pdf"))
}

func TestPipeline_NoCacheRecomputesEverything(t *testing.T) {
	f := newFixture(t)

	f.run(t, pipeline.RunOptions{DryRun: true})
	f.run(t, pipeline.RunOptions{DryRun: true, NoCache: true})

	assert.Len(t, f.analyzer.calls, 6)
	assert.Equal(t, 2, f.builder.calls)

	// The bypassed run rewrote the cache, so a normal run still hits.
	summary := f.run(t, pipeline.RunOptions{DryRun: true})
	assert.Equal(t, domain.StatusCached, statusOf(t, summary, domain.StageAnalyze))
}

func TestPipeline_DryRunDoesNotMaskRealRun(t *testing.T) {
	f := newFixture(t)

	f.run(t, pipeline.RunOptions{DryRun: true})
	summary := f.run(t, pipeline.RunOptions{})

	report := findReport(t, summary, domain.StageMove)
	assert.Equal(t, domain.StatusComputed, report.Status)
	assert.FileExists(t, filepath.Join(f.source, "Sorted", "report.pdf"))
}

func findReport(t *testing.T, summary *pipeline.Summary, stage domain.StageID) pipeline.StageReport {
	t.Helper()
	for _, report := range summary.Reports {
		if report.Stage == stage {
			return report
		}
	}
	t.Fatalf("no report for stage %s", stage)
	return pipeline.StageReport{}
}
