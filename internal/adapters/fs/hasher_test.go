package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/strata/internal/adapters/fs"
)

func TestHasher_Fingerprint(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "package.json")
	b := filepath.Join(dir, "b", "strata.json")
	writeTree(t, dir, map[string]string{
		"a/package.json": `{"name":"a"}`,
		"b/strata.json":  `{"browserDependencies":"all"}`,
	})

	h := fs.NewHasher(fs.NewWalker())

	first, err := h.Fingerprint([]string{a, b})
	require.NoError(t, err)
	assert.Len(t, first, 16)

	again, err := h.Fingerprint([]string{b, a, a})
	require.NoError(t, err)
	assert.Equal(t, first, again, "order and duplicates do not matter")

	require.NoError(t, os.WriteFile(a, []byte(`{"name":"a","main":"x.js"}`), 0o600))
	changed, err := h.Fingerprint([]string{a, b})
	require.NoError(t, err)
	assert.NotEqual(t, first, changed)
}

func TestHasher_Fingerprint_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "strata.json")
	h := fs.NewHasher(fs.NewWalker())

	absent, err := h.Fingerprint([]string{missing})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(missing, []byte("{}"), 0o600))
	present, err := h.Fingerprint([]string{missing})
	require.NoError(t, err)
	assert.NotEqual(t, absent, present)

	require.NoError(t, os.Remove(missing))
	gone, err := h.Fingerprint([]string{missing})
	require.NoError(t, err)
	assert.Equal(t, absent, gone)
}

func TestHasher_Fingerprint_Directory(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"less/a.less": "@a: 1;"})
	h := fs.NewHasher(fs.NewWalker())

	before, err := h.Fingerprint([]string{dir})
	require.NoError(t, err)

	writeTree(t, dir, map[string]string{"less/b.less": "@b: 2;"})
	after, err := h.Fingerprint([]string{dir})
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestHasher_ComputeFileHash(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string]string{"x": "same", "y": "same"})
	h := fs.NewHasher(fs.NewWalker())

	x, err := h.ComputeFileHash(filepath.Join(dir, "x"))
	require.NoError(t, err)
	y, err := h.ComputeFileHash(filepath.Join(dir, "y"))
	require.NoError(t, err)
	assert.Equal(t, x, y)

	_, err = h.ComputeFileHash(filepath.Join(dir, "nope"))
	assert.Error(t, err)
}
