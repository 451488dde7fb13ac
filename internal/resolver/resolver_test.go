package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("export default 1;\n"), 0644))
}

func TestResolveRelativeWithExtension(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "game.js"))

	r := NewFileResolver(filepath.Join(dir, "src"), []string{".js"})

	resolved, err := r.Resolve("./game.js", filepath.Join(dir, "src"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "game.js"), resolved)
}

func TestResolveProbesExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "game.mjs"))

	r := NewFileResolver(filepath.Join(dir, "src"), []string{".js", ".mjs"})

	resolved, err := r.Resolve("./game", filepath.Join(dir, "src"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "game.mjs"), resolved)
}

func TestResolveExtensionOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "game.js"))
	writeFile(t, filepath.Join(dir, "src", "game.mjs"))

	r := NewFileResolver(filepath.Join(dir, "src"), []string{".js", ".mjs"})

	resolved, err := r.Resolve("./game", filepath.Join(dir, "src"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "game.js"), resolved,
		"first configured extension wins")
}

func TestResolveDirectoryIndex(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "lib", "index.js"))

	r := NewFileResolver(filepath.Join(dir, "src"), []string{".js"})

	resolved, err := r.Resolve("./lib", filepath.Join(dir, "src"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "lib", "index.js"), resolved)
}

func TestResolveBareSpecifierAgainstRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "util.js"))

	r := NewFileResolver(filepath.Join(dir, "src"), []string{".js"})

	resolved, err := r.Resolve("util", filepath.Join(dir, "src", "deep", "nested"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "util.js"), resolved)
}

func TestResolveParentRelative(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "shared.js"))
	fromDir := filepath.Join(dir, "src", "pages")
	require.NoError(t, os.MkdirAll(fromDir, 0755))

	r := NewFileResolver(filepath.Join(dir, "src"), []string{".js"})

	resolved, err := r.Resolve("../shared", fromDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src", "shared.js"), resolved)
}

func TestResolveMissingFile(t *testing.T) {
	dir := t.TempDir()

	r := NewFileResolver(dir, []string{".js"})

	_, err := r.Resolve("./nope", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "./nope")
}

func TestResolveEmptySpecifier(t *testing.T) {
	r := NewFileResolver(t.TempDir(), []string{".js"})

	_, err := r.Resolve("", "/tmp")
	assert.Error(t, err)
}

func TestResolveDoesNotMatchBareDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "game"), 0755))

	r := NewFileResolver(filepath.Join(dir, "src"), []string{".js"})

	_, err := r.Resolve("./game", filepath.Join(dir, "src"))
	assert.Error(t, err, "a directory without an index file is not a module")
}
