// Package cmd provides the command-line interface for minipack with
// configuration management across multiple sources.
//
// Configuration precedence, highest first:
//  1. Command-line flags (--config, --port, etc.)
//  2. MINIPACK_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (MINIPACK_SERVER_PORT, etc.)
//  4. Configuration file (.minipack.yml)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "minipack",
	Short: "A minimal JavaScript module bundler",
	Long: `Minipack bundles a JavaScript module graph into a single script.
Starting from an entry module it follows import declarations, orders the
modules so dependencies come first, and links them through a shared module
registry so the bundle runs without a module loader.

Quick Start:
  minipack init                   Scaffold a new project
  minipack build                  Bundle the entry module
  minipack graph                  Inspect the module graph
  minipack watch                  Rebuild on source changes
  minipack serve                  Development server with live reload`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .minipack.yml, can also use MINIPACK_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig wires viper to the config file and environment. A missing or
// malformed config file falls back to defaults without failing.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MINIPACK_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".minipack")
	}

	viper.SetEnvPrefix("MINIPACK")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
