package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/cmd/strata/commands"
	"go.trai.ch/strata/internal/adapters/config"
	"go.trai.ch/strata/internal/adapters/fs"
	"go.trai.ch/strata/internal/adapters/manifest"
	"go.trai.ch/strata/internal/adapters/telemetry"
	"go.trai.ch/strata/internal/app"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.trai.ch/strata/internal/engine/artifacts"
	"go.trai.ch/strata/internal/engine/packages"
	"go.uber.org/mock/gomock"
)

type harness struct {
	cli     *commands.CLI
	out     *bytes.Buffer
	bundler *mocks.MockBundler
	server  *mocks.MockStaticServer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	h := &harness{
		out:     &bytes.Buffer{},
		bundler: mocks.NewMockBundler(ctrl),
		server:  mocks.NewMockStaticServer(ctrl),
	}

	resolver := fs.NewResolver()
	writer := fs.NewWriter()
	a := app.New(
		config.NewLoader(log),
		packages.NewBuilder(manifest.NewReader(log, resolver), resolver, config.NewOverlay(log), log),
		artifacts.NewSynthesizer(writer, log),
		writer,
		log,
		telemetry.NewNoop(),
	).
		WithStyles(mocks.NewMockStyleCompiler(ctrl), mocks.NewMockStyleMinifier(ctrl)).
		WithBundler(h.bundler).
		WithServer(h.server)

	h.cli = commands.New(a, log)
	return h
}

func (h *harness) run(args ...string) error {
	h.cli.SetArgs(args)
	h.cli.SetOutput(h.out)
	return h.cli.Execute(context.Background())
}

func project(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	write := func(path, content string) {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	write(filepath.Join(root, "strata.yaml"), "root: .\n")
	write(filepath.Join(root, "package.json"), `{
		"name": "app",
		"dependencies": {"ui": "*"},
		"strata": {"browserDependencies": "all"}
	}`)
	write(filepath.Join(root, "index.js"), "")
	write(filepath.Join(root, "node_modules", "ui", "package.json"), `{"name": "ui", "version": "2.1.0"}`)
	write(filepath.Join(root, "node_modules", "ui", "index.js"), "")
	return root
}

func TestPackagesCommand(t *testing.T) {
	root := project(t)
	h := newHarness(t)

	require.NoError(t, h.run("packages", "-c", filepath.Join(root, "strata.yaml")))

	out := h.out.String()
	assert.Contains(t, out, "2 packages")
	assert.Contains(t, out, "ui")
	assert.Contains(t, out, "2.1.0")
	assert.Less(t, bytes.Index(h.out.Bytes(), []byte("ui")), bytes.Index(h.out.Bytes(), []byte(" app")))
}

func TestOptimizeCommand_JSOnly(t *testing.T) {
	root := project(t)
	h := newHarness(t)

	h.bundler.EXPECT().Bundle(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, task domain.BuildTask) error {
			assert.Equal(t, domain.BuildModeDevelopment, task.Mode())
			if err := os.MkdirAll(filepath.Dir(task.OutputPath()), 0o750); err != nil {
				return err
			}
			return os.WriteFile(task.OutputPath(), []byte("x"), 0o600)
		})

	require.NoError(t, h.run("optimize", "--js", "--minify", "false", "-c", filepath.Join(root, "strata.yaml")))
	assert.FileExists(t, filepath.Join(root, domain.DefaultOutputDir, "importAll.js"))
}

func TestOptimizeCommand_InvalidMinify(t *testing.T) {
	root := project(t)
	h := newHarness(t)

	err := h.run("optimize", "--minify", "maybe", "-c", filepath.Join(root, "strata.yaml"))
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestServeCommand(t *testing.T) {
	root := project(t)
	h := newHarness(t)

	h.server.EXPECT().Serve(gomock.Any(), "127.0.0.1:9999", gomock.Len(3)).Return(nil)

	require.NoError(t, h.run("serve", "--addr", "127.0.0.1:9999", "-c", filepath.Join(root, "strata.yaml")))
}

func TestWatchCommand_Unavailable(t *testing.T) {
	root := project(t)
	h := newHarness(t)

	err := h.run("watch", "-c", filepath.Join(root, "strata.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watch mode is not available")
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("version"))
	assert.Contains(t, h.out.String(), "strata version dev")
}

func TestRootCommand_RejectsArguments(t *testing.T) {
	h := newHarness(t)

	assert.Error(t, h.run("packages", "extra"))
}
