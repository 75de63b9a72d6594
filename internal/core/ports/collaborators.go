// Package ports defines the core interfaces of the application. The stage
// collaborators are pure compute functions: they know nothing about caching.
package ports

import (
	"context"

	"go.trai.ch/sift/internal/core/domain"
)

// Scanner enumerates the source directory and detects MIME types.
//
//go:generate mockgen -source=collaborators.go -destination=mocks/mock_collaborators.go -package=mocks
type Scanner interface {
	// Scan walks root and returns the file records sorted by path.
	Scan(ctx context.Context, root string, ignore []string) (*domain.ScanResult, error)
}

// Classifier maps scanned files to coarse categories.
type Classifier interface {
	Classify(scan *domain.ScanResult) (*domain.DiscoverResult, error)
}

// Analyzer produces a name, description and tags for a single file. One call
// per file; this is the slow external AI call of the analyze stage.
type Analyzer interface {
	Analyze(ctx context.Context, root string, file domain.ClassifiedFile) (*domain.Analysis, error)
}

// TaxonomyBuilder derives the target folder structure from the analyses.
type TaxonomyBuilder interface {
	Build(ctx context.Context, analysis *domain.AnalysisResult) (*domain.TaxonomyResult, error)
}

// Mover executes (or, in dry-run mode, plans) the file moves.
type Mover interface {
	Apply(ctx context.Context, root string, taxonomy *domain.TaxonomyResult, dryRun bool) (*domain.MoveResult, error)
}

// ProviderConfigurable is implemented by collaborators that talk to an AI
// provider. The effective provider settings are only known after config and
// flags are merged, so they are pushed in right before the run.
type ProviderConfigurable interface {
	Configure(settings domain.ProviderSettings) error
}
