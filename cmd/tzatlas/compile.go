package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"tzatlas/internal/resolve"
	"tzatlas/tzcompile"
	"tzatlas/tzdata"
)

func newCompileCmd() *cobra.Command {
	var tzif bool
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile tzdata source files into resolved zone timelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			zones, err := runCompile(cfg.SourceDir)
			if err != nil {
				return err
			}
			slog.Info("compiled zones", slog.Int("count", len(zones)))
			if tzif {
				return writeTZif(zones, cfg.DestDir)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&tzif, "tzif", false, "also write RFC 8536 TZif binaries to --dest")
	return cmd
}

// runCompile parses every regular file directly under sourceDir as a tzdata
// source file and compiles the merged result. zic's own source tree mixes
// data files ("europe", "northamerica") with build plumbing in the same
// directory, so unparseable files are skipped with a warning rather than
// failing the whole run.
func runCompile(sourceDir string) (map[string]resolve.TimeZone, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	var merged tzdata.File
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(sourceDir, name)
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		parsed, err := tzdata.Parse(f)
		f.Close()
		if err != nil {
			slog.Warn("skipping unparseable source file", slog.String("file", path), slog.String("error", err.Error()))
			continue
		}
		merged.ZoneLines = append(merged.ZoneLines, parsed.ZoneLines...)
		merged.RuleLines = append(merged.RuleLines, parsed.RuleLines...)
		merged.LinkLines = append(merged.LinkLines, parsed.LinkLines...)
		merged.LeapLines = append(merged.LeapLines, parsed.LeapLines...)
		merged.ExpiresLines = append(merged.ExpiresLines, parsed.ExpiresLines...)
		merged.Warnings = append(merged.Warnings, parsed.Warnings...)
	}

	for _, w := range merged.Warnings {
		slog.Debug("tzdata parse warning", slog.String("warning", w.String()))
	}

	return tzcompile.Compile(merged)
}

func writeTZif(zones map[string]resolve.TimeZone, destDir string) error {
	encoded, err := tzcompile.CompileToTZif(zones)
	if err != nil {
		return err
	}
	for name, data := range encoded {
		path := filepath.Join(destDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("create dest dir for %s: %w", name, err)
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
		err = data.Encode(f)
		closeErr := f.Close()
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		if closeErr != nil {
			return fmt.Errorf("close %s: %w", path, closeErr)
		}
	}
	return nil
}
