// Package config provides configuration management for minipack using
// Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files (.minipack.yml), environment
// variable overrides with MINIPACK_ prefix, and validation. It manages the
// entry point, output destination, resolver settings, watch mode, and the
// dev server.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Entry        string        `yaml:"entry"`
	Output       OutputConfig  `yaml:"output"`
	Resolve      ResolveConfig `yaml:"resolve"`
	Watch        WatchConfig   `yaml:"watch"`
	Server       ServerConfig  `yaml:"server"`
	StrictCycles bool          `yaml:"strict_cycles"`
}

type OutputConfig struct {
	Path     string `yaml:"path"`
	Filename string `yaml:"filename"`
}

type ResolveConfig struct {
	// Root is the source root bare specifiers resolve against
	Root string `yaml:"root"`
	// Extensions are probed in order when a specifier has none
	Extensions []string `yaml:"extensions"`
}

type WatchConfig struct {
	Paths      []string `yaml:"paths"`
	Ignore     []string `yaml:"ignore"`
	DebounceMs int      `yaml:"debounce_ms"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slice values set via viper (workaround for viper slice handling)
	if viper.IsSet("resolve.extensions") && len(config.Resolve.Extensions) == 0 {
		config.Resolve.Extensions = viper.GetStringSlice("resolve.extensions")
	}
	if viper.IsSet("watch.paths") && len(config.Watch.Paths) == 0 {
		config.Watch.Paths = viper.GetStringSlice("watch.paths")
	}
	if viper.IsSet("watch.ignore") && len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = viper.GetStringSlice("watch.ignore")
	}
	if viper.IsSet("strict_cycles") {
		config.StrictCycles = viper.GetBool("strict_cycles")
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Entry == "" {
		config.Entry = "src/index.js"
	}
	if config.Output.Path == "" {
		config.Output.Path = "dist"
	}
	if config.Output.Filename == "" {
		config.Output.Filename = "bundle.js"
	}
	if config.Resolve.Root == "" {
		config.Resolve.Root = "src"
	}
	if len(config.Resolve.Extensions) == 0 {
		config.Resolve.Extensions = []string{".js", ".mjs"}
	}
	if len(config.Watch.Paths) == 0 {
		config.Watch.Paths = []string{config.Resolve.Root}
	}
	if len(config.Watch.Ignore) == 0 {
		config.Watch.Ignore = []string{"node_modules", ".git", config.Output.Path}
	}
	if config.Watch.DebounceMs <= 0 {
		config.Watch.DebounceMs = 300
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
}

// OutputFile returns the full path of the emitted bundle.
func (c *Config) OutputFile() string {
	return filepath.Join(c.Output.Path, c.Output.Filename)
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validatePath(config.Entry); err != nil {
		return fmt.Errorf("entry: %w", err)
	}
	if err := validatePath(config.Output.Path); err != nil {
		return fmt.Errorf("output.path: %w", err)
	}
	if config.Output.Filename != filepath.Base(config.Output.Filename) {
		return fmt.Errorf("output.filename must be a bare file name: %s", config.Output.Filename)
	}
	if err := validatePath(config.Resolve.Root); err != nil {
		return fmt.Errorf("resolve.root: %w", err)
	}
	for _, ext := range config.Resolve.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("resolve.extensions entry %q must start with a dot", ext)
		}
	}
	for _, path := range config.Watch.Paths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("watch.paths: %w", err)
		}
	}
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(config.Host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
