package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tzatlas/internal/tzconfig"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tzatlas",
		Short:        "Compile IANA tzdata source files into resolved UTC transition timelines",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("source", "", "tzdata source directory (overrides config)")
	cmd.PersistentFlags().String("dest", "", "output directory (overrides config)")
	cmd.PersistentFlags().Bool("debug", false, "enable verbose logging")

	cmd.AddCommand(
		newCompileCmd(),
		newFetchCmd(),
		newInspectCmd(),
		newDiffCmd(),
	)

	return cmd
}

// loadConfig merges tzconfig.Load's file/env layer with this invocation's
// --source/--dest/--debug flags, flags taking precedence, and installs the
// resulting debug level as the default slog logger.
func loadConfig(cmd *cobra.Command) (*tzconfig.Config, error) {
	cfg, err := tzconfig.Load()
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("source"); v != "" {
		cfg.SourceDir = v
	}
	if v, _ := cmd.Flags().GetString("dest"); v != "" {
		cfg.DestDir = v
	}
	if v, _ := cmd.Flags().GetBool("debug"); v {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	return cfg, nil
}
