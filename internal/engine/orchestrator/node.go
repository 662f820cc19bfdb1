package orchestrator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pack/internal/adapters/dts"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pack/internal/adapters/esbuild" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pack/internal/adapters/fs"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pack/internal/adapters/logger"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pack/internal/adapters/shell"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/pack/internal/core/ports"
)

// NodeID is the unique identifier for the orchestrator Graft node.
const NodeID graft.ID = "engine.orchestrator"

func init() {
	graft.Register(graft.Node[*Orchestrator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.ResolverNodeID,
			fs.CleanerNodeID,
			fs.HasherNodeID,
			esbuild.NodeID,
			dts.NodeID,
			shell.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Orchestrator, error) {
			resolver, err := graft.Dep[ports.EntryPointResolver](ctx)
			if err != nil {
				return nil, err
			}

			cleaner, err := graft.Dep[ports.OutputCleaner](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.ArtifactHasher](ctx)
			if err != nil {
				return nil, err
			}

			compiler, err := graft.Dep[ports.Compiler](ctx)
			if err != nil {
				return nil, err
			}

			declarations, err := graft.Dep[ports.DeclarationEmitter](ctx)
			if err != nil {
				return nil, err
			}

			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(resolver, cleaner, compiler, declarations, hasher, executor, log), nil
		},
	})
}
