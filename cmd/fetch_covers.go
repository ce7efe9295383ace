package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/podshelf/shelf-cli/internal/covers"
	"github.com/podshelf/shelf-cli/pkg/openlibrary"
)

var fetchCoversCmd = &cobra.Command{
	Use:   "fetch-covers",
	Short: "Download cover images for catalog entries that have none",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		books, err := st.Load()
		if err != nil {
			return err
		}

		missing := covers.Missing(books)
		if len(missing) == 0 {
			zap.L().Info("all catalog entries already have covers")
			return nil
		}
		zap.L().Info("fetching covers", zap.Int("missing", len(missing)))

		fetcher := covers.NewFetcher(
			cfg.Catalog.CoversDir,
			openlibrary.NewClient(),
			nil,
			rate.Every(time.Duration(cfg.Covers.PauseMillis)*time.Millisecond),
		)
		resolved := fetcher.FillMissing(cmd.Context(), books, nil)
		if resolved == 0 {
			zap.L().Info("no covers resolved")
			return nil
		}
		if err := st.Save(books); err != nil {
			return err
		}

		zap.L().Info("covers fetched",
			zap.Int("resolved", resolved),
			zap.Int("remaining", len(missing)-resolved),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCoversCmd)
}
