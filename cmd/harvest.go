package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/filmcast/internal/film"
	"github.com/JakeFAU/filmcast/internal/harvest"
)

// newHarvestCmd creates the 'harvest' subcommand, which crawls the configured
// years and writes both artifacts.
func newHarvestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Crawl film categories and write the movie dataset and actor index",
		Long: `Walks Category:<year>_films for every year in the configured range,
extracts the cast of each listed film and writes the movie dataset and the
derived actor index. Years or titles that fail are skipped and reported; the
command then exits with status 2.`,
		Args: cobra.NoArgs,
		RunE: runHarvestCommand,
	}

	flags := cmd.Flags()
	flags.Int("start-year", 0, "first year to harvest (default 1888)")
	flags.Int("end-year", 0, "last year to harvest, inclusive (default current year)")
	flags.Int("concurrency", 0, "cast lookups in flight per year (default 1)")
	flags.Bool("fail-fast", false, "abort on the first failed year or title")
	flags.String("user-agent", "", "User-Agent sent to the API (required)")
	flags.String("split-policy", "", "cast line split policy: first or last")
	flags.String("movies", "", "movie dataset destination (path, gs://bucket/object or memory://object)")
	flags.String("actors", "", "actor index destination (path, gs://bucket/object or memory://object)")
	flags.String("metrics-addr", "", "serve /metrics and /healthz on this address during the run")
	return cmd
}

func runHarvestCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	h, err := appInstance.Harvester()
	if err != nil {
		return err
	}

	dataset, report, runErr := h.Run(cmd.Context())
	if runErr != nil && !errors.Is(runErr, harvest.ErrPartial) {
		return fmt.Errorf("harvest: %w", runErr)
	}

	if _, err := appInstance.WriteDataset(cmd.Context(), dataset); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	index := film.BuildIndex(dataset)
	if _, err := appInstance.WriteIndex(cmd.Context(), index); err != nil {
		return fmt.Errorf("write actor index: %w", err)
	}

	logger.Info("harvest complete",
		zap.String("run_id", report.RunID),
		zap.Int("years", report.Years),
		zap.Int("films", report.Films),
		zap.Int("actors", len(index)),
		zap.Int("skipped_years", len(report.SkippedYears)),
		zap.Int("skipped_titles", len(report.SkippedTitles)),
	)
	if report.Partial() {
		logger.Warn("skipped items",
			zap.String("run_id", report.RunID),
			zap.Objects("years", report.SkippedYears),
			zap.Objects("titles", report.SkippedTitles),
		)
	}
	return runErr
}
