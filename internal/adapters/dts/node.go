package dts

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pack/internal/adapters/logger"
	"go.trai.ch/pack/internal/adapters/shell"
	"go.trai.ch/pack/internal/core/ports"
)

// NodeID is the unique identifier for the declaration emitter Graft node.
const NodeID graft.ID = "adapter.dts"

func init() {
	graft.Register(graft.Node[ports.DeclarationEmitter]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.DeclarationEmitter, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewEmitter(executor, log), nil
		},
	})
}
