package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cpascale43/minipack/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:     "init [directory]",
	Aliases: []string{"i"},
	Short:   "Scaffold a new minipack project",
	Long: `Create a minimal project: a .minipack.yml config, an entry module with
one dependency, and an HTML page that loads the bundle.

Examples:
  minipack init                   # Scaffold into the current directory
  minipack init my-app            # Scaffold into ./my-app
  minipack init --force           # Overwrite existing files`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
}

const scaffoldEntry = `import { createCounter } from './game';

const counter = createCounter(document.getElementById('app'));
counter.render();
`

const scaffoldGame = `let clicks = 0;

export function createCounter(root) {
  return {
    render() {
      root.innerHTML = '<button>Clicked ' + clicks + ' times</button>';
      root.querySelector('button').addEventListener('click', () => {
        clicks += 1;
        this.render();
      });
    },
  };
}
`

const scaffoldPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>minipack app</title>
</head>
<body>
<div id="app"></div>
<script src="/bundle.js"></script>
</body>
</html>
`

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	cfg := &config.Config{}
	cfg.Entry = "src/index.js"
	cfg.Output.Path = "dist"
	cfg.Output.Filename = "bundle.js"
	cfg.Resolve.Root = "src"
	cfg.Resolve.Extensions = []string{".js", ".mjs"}
	cfg.Watch.Paths = []string{"src"}
	cfg.Watch.Ignore = []string{"node_modules", ".git", "dist"}
	cfg.Watch.DebounceMs = 300
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 8080

	configYAML, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	files := map[string][]byte{
		".minipack.yml":     configYAML,
		"src/index.js":      []byte(scaffoldEntry),
		"src/game.js":       []byte(scaffoldGame),
		"public/index.html": []byte(scaffoldPage),
	}

	for name, content := range files {
		path := filepath.Join(dir, name)
		if !initForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Scaffolded minipack project in %s\n\nNext steps:\n  minipack build\n  minipack serve\n", dir)
	return nil
}
