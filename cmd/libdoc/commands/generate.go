package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/doctools/libdoc/internal/logging"
	"github.com/doctools/libdoc/internal/pipeline"
	"github.com/doctools/libdoc/internal/scanner"
	"github.com/doctools/libdoc/internal/search"
	"github.com/doctools/libdoc/internal/sitemap"
	"github.com/doctools/libdoc/internal/storage"
)

var (
	force       bool
	failuresDir string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate documentation for all configured roots",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := logging.BuildLogger(logLevel)
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		indexer, err := search.NewSQLiteIndexer(cfg.IndexPath())
		if err != nil {
			return fmt.Errorf("open search index: %w", err)
		}

		failures := failuresDir
		if failures == "" {
			failures = filepath.Join(cfg.OutputDir, "failures")
		}

		runner := &pipeline.Runner{
			Scanner: &scanner.Scanner{Exclude: cfg.Exclude, Logger: logger},
			Indexer: indexer,
			Storage: storage.NewFSStorage(cfg.OutputDir),
			SitemapGenerator: &sitemap.Generator{
				Root:    cfg.OutputDir,
				SiteURL: cfg.SiteURL(),
				Logger:  logger,
			},
			Logger:           logger,
			FailuresDir:      failures,
			ForceProcess:     force,
			DefaultDocFormat: cfg.DocFormat,
		}
		return runner.Run(cmd.Context(), cfg.Roots)
	},
}

func init() {
	generateCmd.Flags().BoolVar(&force, "force", false, "regenerate libraries even when their sources are unchanged")
	generateCmd.Flags().StringVar(&failuresDir, "failures-dir", "", "directory for per-root failure logs")
	rootCmd.AddCommand(generateCmd)
}
