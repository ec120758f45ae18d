package packages

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/adapters/manifest" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/core/ports"
)

// NodeID is the unique identifier for the package builder Graft node.
const NodeID graft.ID = "engine.packages"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			fs.ResolverNodeID,
			config.OverlayNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			reader, err := graft.Dep[ports.ManifestReader](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[ports.ModuleResolver](ctx)
			if err != nil {
				return nil, err
			}

			hook, err := graft.Dep[ports.ConfigHook](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewBuilder(reader, resolver, hook, log), nil
		},
	})
}
