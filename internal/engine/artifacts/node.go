package artifacts

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/strata/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/strata/internal/core/ports"
)

// NodeID is the unique identifier for the artifact synthesizer Graft node.
const NodeID graft.ID = "engine.artifacts"

func init() {
	graft.Register(graft.Node[*Synthesizer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WriterNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Synthesizer, error) {
			writer, err := graft.Dep[ports.ArtifactWriter](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewSynthesizer(writer, log), nil
		},
	})
}
