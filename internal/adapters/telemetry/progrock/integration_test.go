package progrock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/telemetry/progrock"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports"
)

func TestRecorder_Integration(t *testing.T) {
	recorder := progrock.New()

	ctx, vertex := recorder.Record(context.Background(), domain.StageCompileLess)
	require.NotNil(t, vertex)

	fromCtx, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, vertex, fromCtx)

	_, err := vertex.Stdout().Write([]byte("compiled 3 files\n"))
	require.NoError(t, err)
	vertex.Log(domain.LogLevelDebug, "debug msg")
	vertex.Log(domain.LogLevelWarn, "deprecated mixin")
	vertex.Complete(nil)

	_, failed := recorder.Record(context.Background(), domain.StageBundle)
	failed.Complete(errors.New("bundle failed"))

	_, cached := recorder.Record(context.Background(), domain.StageMinifyCSS)
	cached.Cached()
	cached.Complete(nil)

	assert.NoError(t, recorder.Close())
}

func TestRecorder_RepeatedStages(t *testing.T) {
	recorder := progrock.New()

	_, first := recorder.Record(context.Background(), domain.StageSynthesize)
	_, second := recorder.Record(context.Background(), domain.StageSynthesize)
	assert.NotSame(t, first, second)

	first.Complete(nil)
	second.Complete(nil)
	assert.NoError(t, recorder.Close())
}
