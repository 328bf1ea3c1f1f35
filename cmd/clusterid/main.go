// Package main provides the clusterid command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clusterid",
		Short: "Assign cluster identifiers to SRST2 allele variants",
		Long: `clusterid joins a compiled SRST2 allele table with a cd-hit-est cluster
report, appending the consensus-sequence cluster identifier to every allele
call flagged as a variant. The augmented table is written to stdout.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.clusterid.yaml if present.
func initConfig() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}

	viper.AddConfigPath(home)
	viper.SetConfigName(".clusterid")
	viper.SetConfigType("yaml")
	viper.ReadInConfig() // missing config file is fine
}

// newLogger creates the stderr logger used by all subcommands, so that
// logging never interleaves with table output on stdout. The level can be
// set with `clusterid config set log.level debug`.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl := viper.GetString("log.level"); lvl != "" {
		if parsed, err := zapcore.ParseLevel(lvl); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(parsed)
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
