package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"tzatlas/internal/tzdbcache"
	"tzatlas/tzdb/ianadist"
)

func newFetchCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the latest IANA tzdata release into the source directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runFetch(cmd.Context(), cfg.SourceDir, cfg.CacheDir, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "overwrite the source directory without prompting")
	return cmd
}

func runFetch(ctx context.Context, sourceDir, cacheDir string, yes bool) error {
	manifest, err := tzdbcache.Load(cacheDir)
	if err != nil {
		return err
	}

	release, newEtag, err := ianadist.Latest(ctx, manifest.Latest.ETag)
	if err != nil {
		return fmt.Errorf("download tzdata: %w", err)
	}
	if release == nil {
		slog.Info("already up to date", slog.String("version", manifest.Latest.Version))
		return nil
	}

	if !yes {
		confirmed, err := confirmOverwrite(sourceDir, release.Version)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("fetch cancelled")
			return nil
		}
	}

	if err := os.MkdirAll(sourceDir, 0o750); err != nil {
		return fmt.Errorf("create source dir: %w", err)
	}
	for name, contents := range release.DataFiles {
		path := filepath.Join(sourceDir, name)
		if err := os.WriteFile(path, contents, 0o640); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}

	manifest.Record(tzdbcache.Entry{
		Version:    release.Version,
		ETag:       newEtag,
		FetchedAt:  time.Now().UTC(),
		ArchiveDir: sourceDir,
	}, 10)
	if err := manifest.Save(cacheDir); err != nil {
		return fmt.Errorf("save cache manifest: %w", err)
	}

	slog.Info("fetched tzdata release", slog.String("version", release.Version), slog.Int("files", len(release.DataFiles)))
	return nil
}

func confirmOverwrite(sourceDir, version string) (bool, error) {
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Overwrite %s with tzdata release %s?", sourceDir, version),
		Default: true,
	}
	var confirmed bool
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}
