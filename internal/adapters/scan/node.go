package scan

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sift/internal/adapters/logger"
	"go.trai.ch/sift/internal/core/ports"
)

// NodeID is the unique identifier for the scanner Graft node.
const NodeID graft.ID = "adapter.scanner"

func init() {
	graft.Register(graft.Node[ports.Scanner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Scanner, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewScanner(log), nil
		},
	})
}
