package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sift/internal/adapters/ai"
	"go.trai.ch/sift/internal/adapters/cache"
	"go.trai.ch/sift/internal/adapters/classify"
	"go.trai.ch/sift/internal/adapters/config"
	"go.trai.ch/sift/internal/adapters/fingerprint"
	"go.trai.ch/sift/internal/adapters/logger"
	"go.trai.ch/sift/internal/adapters/move"
	"go.trai.ch/sift/internal/adapters/scan"
	"go.trai.ch/sift/internal/core/ports"
)

// Components contains the initialized application components needed by the
// CLI layer.
type Components struct {
	App    *App
	Logger ports.Logger
}

// NodeID is the unique identifier for the components Graft node.
const NodeID graft.ID = "app.components"

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			config.NodeID,
			cache.NodeID,
			fingerprint.NodeID,
			scan.NodeID,
			classify.NodeID,
			ai.AnalyzerNodeID,
			ai.BuilderNodeID,
			move.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.CacheStore](ctx)
			if err != nil {
				return nil, err
			}
			fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
			if err != nil {
				return nil, err
			}
			scanner, err := graft.Dep[ports.Scanner](ctx)
			if err != nil {
				return nil, err
			}
			classifier, err := graft.Dep[ports.Classifier](ctx)
			if err != nil {
				return nil, err
			}
			analyzer, err := graft.Dep[ports.Analyzer](ctx)
			if err != nil {
				return nil, err
			}
			taxonomy, err := graft.Dep[ports.TaxonomyBuilder](ctx)
			if err != nil {
				return nil, err
			}
			mover, err := graft.Dep[ports.Mover](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{
				App:    New(loader, store, fingerprinter, scanner, classifier, analyzer, taxonomy, mover, log),
				Logger: log,
			}, nil
		},
	})
}
