package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/esbuild"            //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/fs"                 //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/httpstatic"         //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/shell"              //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/adapters/watcher"            //nolint:depguard // Wired in app layer
	"go.trai.ch/strata/internal/core/ports"
	"go.trai.ch/strata/internal/engine/artifacts"
	"go.trai.ch/strata/internal/engine/packages"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			packages.NodeID,
			artifacts.NodeID,
			fs.WriterNodeID,
			fs.HasherNodeID,
			logger.NodeID,
			progrock.NodeID,
			shell.NodeID,
			esbuild.BundlerNodeID,
			esbuild.MinifierNodeID,
			watcher.NodeID,
			httpstatic.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			progrock.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log, telemetry), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	builder, err := graft.Dep[*packages.Builder](ctx)
	if err != nil {
		return nil, err
	}

	synthesizer, err := graft.Dep[*artifacts.Synthesizer](ctx)
	if err != nil {
		return nil, err
	}

	writer, err := graft.Dep[ports.ArtifactWriter](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	telemetry, err := graft.Dep[ports.Telemetry](ctx)
	if err != nil {
		return nil, err
	}

	compiler, err := graft.Dep[ports.StyleCompiler](ctx)
	if err != nil {
		return nil, err
	}

	minifier, err := graft.Dep[ports.StyleMinifier](ctx)
	if err != nil {
		return nil, err
	}

	bundler, err := graft.Dep[ports.Bundler](ctx)
	if err != nil {
		return nil, err
	}

	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	server, err := graft.Dep[ports.StaticServer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, builder, synthesizer, writer, log, telemetry).
		WithStyles(compiler, minifier).
		WithBundler(bundler).
		WithWatcher(w, hasher).
		WithServer(server), nil
}
