package move

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/sift/internal/adapters/logger"
	"go.trai.ch/sift/internal/core/ports"
)

// NodeID is the unique identifier for the mover Graft node.
const NodeID graft.ID = "adapter.mover"

func init() {
	graft.Register(graft.Node[ports.Mover]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.Mover, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewMover(log), nil
		},
	})
}
