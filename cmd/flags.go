package cmd

import (
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cpascale43/minipack/internal/logging"
)

// addBundleFlags registers the flags shared by every command that runs the
// pipeline, bound to their viper keys so flags override the config file.
func addBundleFlags(flags *pflag.FlagSet) {
	flags.StringP("entry", "e", "", "entry module (default src/index.js)")
	flags.StringP("output", "o", "", "output directory (default dist)")
	flags.Bool("strict-cycles", false, "fail the build when the graph contains an import cycle")

	_ = viper.BindPFlag("entry", flags.Lookup("entry"))
	_ = viper.BindPFlag("output.path", flags.Lookup("output"))
	_ = viper.BindPFlag("strict_cycles", flags.Lookup("strict-cycles"))
}

// addServerFlags registers the dev server listen flags
func addServerFlags(flags *pflag.FlagSet) {
	flags.IntP("port", "p", 0, "port to serve on (default 8080)")
	flags.String("host", "", "host to bind to (default localhost)")

	_ = viper.BindPFlag("server.port", flags.Lookup("port"))
	_ = viper.BindPFlag("server.host", flags.Lookup("host"))
}

// newLogger builds the command logger from the configured log level
func newLogger() logging.Logger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(viper.GetString("log-level")),
		Format: "text",
		Output: os.Stderr,
	})
}
