package world

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDog(t *testing.T, dir, rel, contents string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoader_ModulePrefixFromDirectoryStructure(t *testing.T) {
	dir := t.TempDir()
	writeDog(t, dir, "sre/deploy.dog", `pattern nr = 18`)

	loader, err := NewLoader([]Source{{Root: dir}}, nil)
	require.NoError(t, err)

	w, err := loader.Load()
	require.NoError(t, err)
	_, ok := w.Patterns["sre::deploy::nr"]
	assert.True(t, ok)
}

func TestLoader_ModulePrefixConfigured(t *testing.T) {
	dir := t.TempDir()
	writeDog(t, dir, "deploy.dog", `pattern nr = 18`)

	loader, err := NewLoader([]Source{{Root: dir, ModulePrefix: "vendor"}}, nil)
	require.NoError(t, err)

	w, err := loader.Load()
	require.NoError(t, err)
	_, ok := w.Patterns["vendor::deploy::nr"]
	assert.True(t, ok)
}

func TestHolder_ReloadSwapsSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeDog(t, dir, "m.dog", `pattern nr = 18`)

	loader, err := NewLoader([]Source{{Root: dir}}, nil)
	require.NoError(t, err)

	h := NewHolder(loader)
	assert.Nil(t, h.Current())

	require.NoError(t, h.Reload(context.Background()))
	w := h.Current()
	require.NotNil(t, w)
	_, ok := w.Patterns["m::nr"]
	assert.True(t, ok)

	_, ever := h.LastReload()
	assert.True(t, ever)
}

func TestLoader_CompileErrorFailsClosed(t *testing.T) {
	dir := t.TempDir()
	writeDog(t, dir, "m.dog", `pattern a = nope`)

	loader, err := NewLoader([]Source{{Root: dir}}, nil)
	require.NoError(t, err)

	_, err = loader.Load()
	assert.Error(t, err)
}
