package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/config"
	"go.trai.ch/strata/internal/core/domain"
	"go.trai.ch/strata/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOverlay_Apply(t *testing.T) {
	pkgDir := t.TempDir()
	createFile(t, pkgDir, "config/strata.yaml", `
less:
  files: [less/theme.less]
  vars:
    accent: "#ff0000"
system:
  importAllIgnore: [theme]
bundle:
  target: es2018
`)

	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Debug(gomock.Any()).Times(1)

	cfg := domain.DefaultConfig()
	cfg.Less.Files = []domain.LessFile{{Name: "/app/site.less"}}
	cfg.Less.Vars = map[string]string{"brand": "blue", "accent": "black"}
	cfg.System.ImportAllIgnore = []string{"jquery"}

	pkg := domain.NewPackage(domain.ResolvedSource{ModuleName: "theme"}, pkgDir, filepath.Join(pkgDir, "package.json"), domain.Manifest{"name": "theme"}, nil)

	err := config.NewOverlay(mockLogger).Apply(context.Background(), pkg, []string{"config/strata.yaml"}, cfg)
	require.NoError(t, err)

	assert.Equal(t, []domain.LessFile{
		{Name: "/app/site.less"},
		{Name: filepath.Join(pkgDir, "config", "less", "theme.less"), ImportAsLess: true},
	}, cfg.Less.Files)
	assert.Equal(t, map[string]string{"brand": "blue", "accent": "#ff0000"}, cfg.Less.Vars)
	assert.Equal(t, []string{"jquery", "theme"}, cfg.System.ImportAllIgnore)
	assert.Equal(t, "es2018", cfg.Bundle.Target)
	assert.Equal(t, "iife", cfg.Bundle.Format, "unset fields keep their value")
	assert.Equal(t, "/packages", cfg.System.BaseURL)
}

func TestOverlay_Apply_MissingFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	pkgDir := t.TempDir()
	pkg := domain.NewPackage(domain.ResolvedSource{ModuleName: "theme"}, pkgDir, filepath.Join(pkgDir, "package.json"), domain.Manifest{"name": "theme"}, nil)

	err := config.NewOverlay(mockLogger).Apply(context.Background(), pkg, []string{"nope.yaml"}, domain.DefaultConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestOverlay_Apply_Canceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pkg := domain.NewPackage(domain.ResolvedSource{ModuleName: "theme"}, "/nm/theme", "/nm/theme/package.json", domain.Manifest{"name": "theme"}, nil)
	err := config.NewOverlay(mockLogger).Apply(ctx, pkg, []string{"a.yaml"}, domain.DefaultConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
