package app

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
	"go.trai.ch/strata/internal/core/domain"
)

// Artifact describes a file produced by a pipeline stage.
type Artifact struct {
	Path string
	Size int64
	// Changed is false when the file already had the generated content.
	Changed bool
}

// HumanSize returns the artifact size in human readable form.
func (a *Artifact) HumanSize() string {
	return units.HumanSizeWithPrecision(float64(a.Size), 3)
}

func reportPackages(reg *domain.Registry) string {
	return fmt.Sprintf("%d packages below %s", reg.Len(), reg.Root)
}

// statArtifact describes a file written by a collaborator.
func statArtifact(path string) (*Artifact, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Artifact{Path: path, Size: info.Size(), Changed: true}, nil
}
