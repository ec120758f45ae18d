package packages_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/fs"
	"go.trai.ch/strata/internal/adapters/manifest"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.trai.ch/strata/internal/engine/packages"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
	"golang.org/x/sync/errgroup"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o600))
}

type fixture struct {
	builder *packages.Builder
	logger  *mocks.MockLogger
	hook    *mocks.MockConfigHook

	mu    sync.Mutex
	warns []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		logger: mocks.NewMockLogger(ctrl),
		hook:   mocks.NewMockConfigHook(ctrl),
	}
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.warns = append(f.warns, msg)
	}).AnyTimes()

	resolver := fs.NewResolver()
	f.builder = packages.NewBuilder(manifest.NewReader(f.logger, resolver), resolver, f.hook, f.logger)
	return f
}

func (f *fixture) warnings() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.warns...)
}

// appTree lays out app -> ui -> core below a fresh root.
func appTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeManifest(t, root, `{
		"name": "app",
		"dependencies": {"ui": "^1.0.0"},
		"strata": {"browserDependencies": "all"}
	}`)
	writeManifest(t, filepath.Join(root, "node_modules", "ui"), `{
		"name": "ui",
		"version": "1.2.0",
		"dependencies": {"core": "^3.0.0"},
		"strata": {"browserDependencies": ["core"]}
	}`)
	writeManifest(t, filepath.Join(root, "node_modules", "core"), `{"name": "core", "version": "3.0.1"}`)
	return root
}

func TestBuilder_ReadPackages_DependencyOrder(t *testing.T) {
	root := appTree(t)
	f := newFixture(t)

	reg, err := f.builder.ReadPackages(context.Background(), root, domain.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"core", "ui", "app"}, reg.Names())
	assert.Equal(t, root, reg.Root)
	assert.Equal(t, "app", reg.RootName)

	ui, ok := reg.Get("ui")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "node_modules", "ui"), ui.Path)
	assert.Equal(t, "1.2.0", ui.Version())
	assert.Empty(t, f.warnings())
}

func TestBuilder_ReadPackages_NestedModulesWin(t *testing.T) {
	root := appTree(t)
	nested := filepath.Join(root, "node_modules", "ui", "node_modules", "core")
	writeManifest(t, nested, `{"name": "core", "version": "2.0.0"}`)
	f := newFixture(t)

	reg, err := f.builder.ReadPackages(context.Background(), root, domain.DefaultConfig())
	require.NoError(t, err)

	core, ok := reg.Get("core")
	require.True(t, ok)
	assert.Equal(t, nested, core.Path)
	assert.Equal(t, "2.0.0", core.Version())
}

func TestBuilder_ReadPackages_Cycle(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"name": "app", "dependencies": {"a": "*"}, "strata": {"browserDependencies": "all"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "a"), `{"name": "a", "dependencies": {"b": "*"}, "strata": {"browserDependencies": "all"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "b"), `{"name": "b", "dependencies": {"a": "*"}, "strata": {"browserDependencies": "all"}}`)
	f := newFixture(t)

	_, err := f.builder.ReadPackages(context.Background(), root, domain.DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCycleDetected)

	var zErr *zerr.Error
	require.ErrorAs(t, err, &zErr)
	chain, ok := zErr.Metadata()["chain"].([]string)
	require.True(t, ok)
	assert.Contains(t, chain, "a")
	assert.Contains(t, chain, "b")
	assert.NotContains(t, chain, "app")
}

func TestBuilder_ReadPackages_PseudoPackageWins(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"name": "app", "dependencies": {"widgets": "*"}, "strata": {"browserDependencies": "all"}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "widgets"), `{"name": "widgets", "version": "9.9.9"}`)
	local := filepath.Join(t.TempDir(), "local-widgets")
	writeManifest(t, local, `{"name": "widgets", "version": "0.0.1-local"}`)

	cfg := domain.DefaultConfig()
	cfg.Pseudo = []domain.PseudoPackage{{Name: "widgets", Path: local}}
	f := newFixture(t)

	reg, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)

	widgets, ok := reg.Get("widgets")
	require.True(t, ok)
	assert.Equal(t, local, widgets.Path)
	assert.Equal(t, "0.0.1-local", widgets.Version())
	assert.IsType(t, domain.OverrideSource{}, widgets.Source)
	assert.Equal(t, []string{"widgets", "app"}, reg.Names())
}

func TestBuilder_ReadPackages_PseudoDependenciesResolvedAfterAllPseudo(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"name": "app"}`)
	writeManifest(t, filepath.Join(root, "node_modules", "theme"), `{"name": "theme", "version": "1.0.0"}`)
	first := filepath.Join(t.TempDir(), "shell")
	writeManifest(t, first, `{"name": "shell", "dependencies": {"theme": "*"}, "strata": {"browserDependencies": "all"}}`)
	second := filepath.Join(t.TempDir(), "theme")
	writeManifest(t, second, `{"name": "theme", "version": "local"}`)

	cfg := domain.DefaultConfig()
	cfg.Pseudo = []domain.PseudoPackage{
		{Name: "shell", Path: first},
		{Name: "theme", Path: second},
	}
	f := newFixture(t)

	reg, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)

	theme, ok := reg.Get("theme")
	require.True(t, ok)
	assert.Equal(t, "local", theme.Version())
	assert.Equal(t, []string{"theme", "app", "shell"}, reg.Names())
}

func TestBuilder_ReadPackages_Overrides(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{
		"name": "app",
		"dependencies": {"b": "*"},
		"strata": {
			"browserDependencies": "all",
			"manifest": {
				"b": {"main": "dist/b.js", "strata": {"browserDependencies": ["d"]}},
				"c": {"main": "never.js"}
			}
		}
	}`)
	writeManifest(t, filepath.Join(root, "node_modules", "b"), `{
		"name": "b",
		"version": "1.0.0",
		"main": "b.js",
		"strata": {"config": ["b.yaml"]}
	}`)
	f := newFixture(t)

	reg, err := f.builder.ReadPackages(context.Background(), root, domain.DefaultConfig())
	require.NoError(t, err)

	b, ok := reg.Get("b")
	require.True(t, ok)
	assert.Equal(t, "dist/b.js", b.Manifest.String("main"))
	assert.Equal(t, "1.0.0", b.Version(), "untouched fields survive")
	require.NotNil(t, b.Framework)
	assert.Equal(t, []string{"b.yaml"}, b.Framework.Config, "nested sections are merged")
	assert.Equal(t, []string{"d"}, b.BrowserDependencies)
	assert.Equal(t, []string{"app"}, b.Overrides)
	assert.False(t, reg.Has("c"))

	warns := f.warnings()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], `"c"`)
}

func TestBuilder_ReadPackages_MissingDependencySkipped(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"name": "app", "dependencies": {"real": "*"}, "strata": {"browserDependencies": ["ghost", "real"]}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "real"), `{"name": "real"}`)
	f := newFixture(t)

	reg, err := f.builder.ReadPackages(context.Background(), root, domain.DefaultConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"real", "app"}, reg.Names())
	warns := f.warnings()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], `"ghost"`)
}

func TestBuilder_ReadPackages_Idempotent(t *testing.T) {
	root := appTree(t)
	f := newFixture(t)
	cfg := domain.DefaultConfig()

	first, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)
	second, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)

	ui, _ := first.Get("ui")
	ui.BrowserDependencies = append(ui.BrowserDependencies, "mutated")
	ui.Manifest["version"] = "0.0.0"

	third, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)
	assert.Equal(t, second, third)

	cached, _ := third.Get("ui")
	assert.Equal(t, []string{"core"}, cached.BrowserDependencies)
	assert.Equal(t, "1.2.0", cached.Version())
}

func TestBuilder_ReadPackages_CacheInvalidation(t *testing.T) {
	root := appTree(t)
	f := newFixture(t)
	cfg := domain.DefaultConfig()

	_, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)

	writeManifest(t, filepath.Join(root, "node_modules", "core"), `{"name": "core", "version": "4.0.0"}`)

	reg, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)
	core, _ := reg.Get("core")
	assert.Equal(t, "3.0.1", core.Version(), "served from cache")

	f.builder.Cache().Invalidate()

	reg, err = f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)
	core, _ = reg.Get("core")
	assert.Equal(t, "4.0.0", core.Version())
}

func TestBuilder_ReadPackages_ConfigRootAndSubdirectory(t *testing.T) {
	root := appTree(t)
	src := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(src, 0o750))
	f := newFixture(t)

	cfg := domain.DefaultConfig()
	cfg.Root = src

	reg, err := f.builder.ReadPackages(context.Background(), "", cfg)
	require.NoError(t, err)
	assert.Equal(t, root, reg.Root)
	assert.Equal(t, "app", reg.RootName)
}

func TestBuilder_ReadPackages_Errors(t *testing.T) {
	t.Run("root not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.builder.ReadPackages(context.Background(), t.TempDir(), domain.DefaultConfig())
		assert.ErrorIs(t, err, domain.ErrPackageRootNotFound)
	})

	t.Run("root unreadable", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte("{not json"), 0o600))
		f := newFixture(t)

		_, err := f.builder.ReadPackages(context.Background(), root, domain.DefaultConfig())
		assert.ErrorIs(t, err, domain.ErrRootPackageUnreadable)
		assert.ErrorIs(t, err, domain.ErrInvalidManifest)
	})

	t.Run("canceled", func(t *testing.T) {
		root := appTree(t)
		f := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := f.builder.ReadPackages(ctx, root, domain.DefaultConfig())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBuilder_ReadPackages_Concurrent(t *testing.T) {
	root := appTree(t)
	f := newFixture(t)
	cfg := domain.DefaultConfig()

	results := make([]*domain.Registry, 8)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			reg, err := f.builder.ReadPackages(context.Background(), root, cfg)
			results[i] = reg
			return err
		})
	}
	require.NoError(t, g.Wait())

	for _, reg := range results[1:] {
		assert.Equal(t, results[0], reg)
		assert.NotSame(t, results[0], reg)
	}
}

func TestBuilder_RequireFrameworkConfig(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{
		"name": "app",
		"dependencies": {"theme": "*"},
		"strata": {"browserDependencies": "all", "config": ["strata.app.yaml"]}
	}`)
	writeManifest(t, filepath.Join(root, "node_modules", "theme"), `{
		"name": "theme",
		"strata": {"dependencies": {"missing-host": "*"}, "config": ["theme.yaml"]}
	}`)

	f := newFixture(t)
	cfg := domain.DefaultConfig()
	reg, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)

	app, _ := reg.Get("app")
	f.hook.EXPECT().Apply(gomock.Any(), app, []string{"strata.app.yaml"}, cfg).Return(nil)

	loaded, err := f.builder.LoadFrameworkConfigs(context.Background(), reg, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"app"}, loaded)

	warns := f.warnings()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "missing-host")
}

func TestBuilder_RequireFrameworkConfig_HookFailure(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"name": "app", "strata": {"config": ["broken.yaml"]}}`)

	f := newFixture(t)
	cfg := domain.DefaultConfig()
	reg, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)
	app, _ := reg.Get("app")

	f.hook.EXPECT().Apply(gomock.Any(), app, []string{"broken.yaml"}, cfg).Return(errors.New("boom"))

	ok, err := f.builder.RequireFrameworkConfig(context.Background(), reg, app, cfg)
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, f.warnings(), 1)
	assert.True(t, strings.Contains(f.warnings()[0], "boom"))
}

func TestBuilder_RequireFrameworkConfig_NoConfig(t *testing.T) {
	root := appTree(t)
	f := newFixture(t)
	cfg := domain.DefaultConfig()
	reg, err := f.builder.ReadPackages(context.Background(), root, cfg)
	require.NoError(t, err)

	core, _ := reg.Get("core")
	ok, err := f.builder.RequireFrameworkConfig(context.Background(), reg, core, cfg)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBuilder_ReadPackages_BrowserOnlyBackEdge(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{"name": "app", "strata": {"browserDependencies": ["b"]}}`)
	writeManifest(t, filepath.Join(root, "node_modules", "b"), `{"name": "b", "dependencies": {"app": "*"}}`)
	f := newFixture(t)

	reg, err := f.builder.ReadPackages(context.Background(), root, domain.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"app", "b"}, reg.Names())
	assert.Empty(t, f.warnings())
}

func TestBuilder_ReadPackages_RegistersUnderRequestedName(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `{
		"name": "app",
		"dependencies": {"ui": "*"},
		"strata": {"browserDependencies": "all"}
	}`)
	writeManifest(t, filepath.Join(root, "node_modules", "ui"), `{"name": "ui-lib", "version": "1.0.0"}`)
	f := newFixture(t)

	reg, err := f.builder.ReadPackages(context.Background(), root, domain.DefaultConfig())
	require.NoError(t, err)

	assert.True(t, reg.Has("ui"))
	assert.False(t, reg.Has("ui-lib"))
	assert.Equal(t, []string{"ui", "app"}, reg.Names())

	ui, _ := reg.Get("ui")
	assert.Equal(t, "ui-lib", ui.Manifest.Name())
	assert.Equal(t, filepath.Join(root, "node_modules", "ui"), ui.Path)
}

func TestBuilder_ReadPackages_CanceledCallerDoesNotFailSharedBuild(t *testing.T) {
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	resolver := mocks.NewMockModuleResolver(ctrl)
	resolver.EXPECT().FindPackageRoot("/app").Return("/app", nil).AnyTimes()

	var once sync.Once
	entered := make(chan struct{})
	release := make(chan struct{})
	reader := mocks.NewMockManifestReader(ctrl)
	reader.EXPECT().ReadPackage(gomock.Any()).DoAndReturn(func(src domain.PackageSource) (*domain.Package, error) {
		if _, ok := src.(domain.OverrideSource); !ok {
			return nil, errors.New("not installed")
		}
		once.Do(func() { close(entered) })
		<-release
		m := domain.Manifest{"name": "app", "strata": map[string]any{"browserDependencies": []any{"ui"}}}
		return domain.NewPackage(src, "/app", "/app/package.json", m, nil), nil
	}).AnyTimes()

	b := packages.NewBuilder(reader, resolver, mocks.NewMockConfigHook(ctrl), logger)
	cfg := domain.DefaultConfig()

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := b.ReadPackages(ctx, "/app", cfg)
		first <- err
	}()
	<-entered
	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	type result struct {
		reg *domain.Registry
		err error
	}
	second := make(chan result, 1)
	go func() {
		reg, err := b.ReadPackages(context.Background(), "/app", cfg)
		second <- result{reg, err}
	}()
	close(release)

	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, []string{"app"}, res.reg.Names())
}
