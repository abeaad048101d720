package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/filmcast/internal/film"
)

// newIndexCmd creates the 'index' subcommand, which rebuilds the actor index
// from an existing movie dataset without touching the API.
func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the actor index from an existing movie dataset",
		Args:  cobra.NoArgs,
		RunE:  runIndexCommand,
	}
	cmd.Flags().String("movies", "", "movie dataset to read (path or gs://bucket/object)")
	cmd.Flags().String("actors", "", "actor index destination (path or gs://bucket/object)")
	return cmd
}

func runIndexCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	dataset, err := appInstance.ReadDataset(cmd.Context())
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	index := film.BuildIndex(dataset)
	uri, err := appInstance.WriteIndex(cmd.Context(), index)
	if err != nil {
		return fmt.Errorf("write actor index: %w", err)
	}

	appInstance.Logger().Info("actor index rebuilt",
		zap.String("uri", uri),
		zap.Int("years", len(dataset)),
		zap.Int("films", dataset.Films()),
		zap.Int("actors", len(index)),
	)
	return nil
}
