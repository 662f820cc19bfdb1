package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/pack/internal/core/ports"
)

const (
	// WalkerNodeID is the unique identifier for the walker Graft node.
	WalkerNodeID graft.ID = "adapter.fs.walker"
	// ResolverNodeID is the unique identifier for the entry point resolver Graft node.
	ResolverNodeID graft.ID = "adapter.fs.resolver"
	// HasherNodeID is the unique identifier for the artifact hasher Graft node.
	HasherNodeID graft.ID = "adapter.fs.hasher"
	// CleanerNodeID is the unique identifier for the output cleaner Graft node.
	CleanerNodeID graft.ID = "adapter.fs.cleaner"
)

func init() {
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	graft.Register(graft.Node[ports.EntryPointResolver]{
		ID:        ResolverNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.EntryPointResolver, error) {
			return NewResolver(), nil
		},
	})

	graft.Register(graft.Node[ports.ArtifactHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{WalkerNodeID},
		Run: func(ctx context.Context) (ports.ArtifactHasher, error) {
			walker, err := graft.Dep[*Walker](ctx)
			if err != nil {
				return nil, err
			}
			return NewHasher(walker), nil
		},
	})

	graft.Register(graft.Node[ports.OutputCleaner]{
		ID:        CleanerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.OutputCleaner, error) {
			return NewCleaner(), nil
		},
	})
}
