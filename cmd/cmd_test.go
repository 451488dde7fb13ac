package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"

	"github.com/cpascale43/minipack/internal/config"
)

// newCaptureCommand returns a bare command whose output lands in the buffer
func newCaptureCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}

// writeProject lays out a bundleable project and points viper at it
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, source := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(source), 0644))
	}

	viper.Reset()
	viper.Set("entry", filepath.Join(dir, "src", "index.js"))
	viper.Set("output.path", filepath.Join(dir, "dist"))
	viper.Set("resolve.root", filepath.Join(dir, "src"))
	t.Cleanup(viper.Reset)
	return dir
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	initForce = false

	cmd, out := newCaptureCommand()
	require.NoError(t, runInit(cmd, []string{dir}))

	assert.FileExists(t, filepath.Join(dir, ".minipack.yml"))
	assert.FileExists(t, filepath.Join(dir, "src", "index.js"))
	assert.FileExists(t, filepath.Join(dir, "src", "game.js"))
	assert.FileExists(t, filepath.Join(dir, "public", "index.html"))
	assert.Contains(t, out.String(), "Scaffolded")

	// The generated config round-trips through the config loader's types
	raw, err := os.ReadFile(filepath.Join(dir, ".minipack.yml"))
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(raw, &cfg))
	assert.Equal(t, "src/index.js", cfg.Entry)
	assert.Equal(t, "bundle.js", cfg.Output.Filename)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".minipack.yml"), []byte("entry: other.js\n"), 0644))
	initForce = false

	cmd, _ := newCaptureCommand()
	err := runInit(cmd, []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	initForce = true
	defer func() { initForce = false }()
	cmd, _ = newCaptureCommand()
	require.NoError(t, runInit(cmd, []string{dir}))
}

func TestBuildCommand(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"src/index.js": "import { click } from './game';\nclick();\n",
		"src/game.js":  "export function click() {}\n",
	})

	cmd, out := newCaptureCommand()
	require.NoError(t, runBuild(cmd, nil))

	assert.FileExists(t, filepath.Join(dir, "dist", "bundle.js"))
	assert.Contains(t, out.String(), "Bundled 2 modules")
}

func TestBuildCommandReportsResolutionFailure(t *testing.T) {
	writeProject(t, map[string]string{
		"src/index.js": "import missing from './missing';\n",
	})

	cmd, _ := newCaptureCommand()
	err := runBuild(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "./missing")
}

func TestGraphCommandText(t *testing.T) {
	writeProject(t, map[string]string{
		"src/index.js": "import game from './game';\n",
		"src/game.js":  "export default 1;\n",
	})

	graphFormat = "text"
	cmd, out := newCaptureCommand()
	require.NoError(t, runGraph(cmd, nil))

	text := out.String()
	assert.Contains(t, text, "Entry: index.js")
	assert.Contains(t, text, "game.js")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("game.js")), bytes.Index(out.Bytes(), []byte("2. index.js")))
}

func TestGraphCommandJSON(t *testing.T) {
	writeProject(t, map[string]string{
		"src/index.js": "import a from './a';\n",
		"src/a.js":     "import b from './b';\nexport default 'a';\n",
		"src/b.js":     "import a from './a';\nexport default 'b';\n",
	})

	graphFormat = "json"
	defer func() { graphFormat = "text" }()
	cmd, out := newCaptureCommand()
	require.NoError(t, runGraph(cmd, nil))

	var report graphReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "index.js", report.Entry)
	assert.Equal(t, []string{"a.js", "b.js", "index.js"}, report.Order)
	require.Len(t, report.Cycles, 1)
	assert.ElementsMatch(t, []string{"a.js", "b.js"}, report.Cycles[0])
}

func TestGraphCommandRejectsUnknownFormat(t *testing.T) {
	writeProject(t, map[string]string{
		"src/index.js": "var a = 1;\n",
	})

	graphFormat = "yaml"
	defer func() { graphFormat = "text" }()
	cmd, _ := newCaptureCommand()
	err := runGraph(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestVersionCommand(t *testing.T) {
	versionFormat = "text"
	versionShort = false
	cmd, out := newCaptureCommand()
	require.NoError(t, runVersion(cmd, nil))
	assert.Contains(t, out.String(), "minipack")

	versionFormat = "json"
	defer func() { versionFormat = "text" }()
	cmd, out = newCaptureCommand()
	require.NoError(t, runVersion(cmd, nil))

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &payload))
	assert.Contains(t, payload, "version")
	assert.Contains(t, payload, "go_version")
}
