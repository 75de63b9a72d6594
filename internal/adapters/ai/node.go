package ai

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sift/internal/adapters/logger"
	"go.trai.ch/sift/internal/core/ports"
)

// AnalyzerNodeID is the unique identifier for the analyzer Graft node.
const AnalyzerNodeID graft.ID = "adapter.analyzer"

// BuilderNodeID is the unique identifier for the taxonomy builder Graft node.
const BuilderNodeID graft.ID = "adapter.taxonomy_builder"

func init() {
	graft.Register(graft.Node[ports.Analyzer]{
		ID:        AnalyzerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Analyzer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewAnalyzer(log), nil
		},
	})

	graft.Register(graft.Node[ports.TaxonomyBuilder]{
		ID:        BuilderNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.TaxonomyBuilder, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewBuilder(log), nil
		},
	})
}
