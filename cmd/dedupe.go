package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/catalog"
)

var dedupeCmd = &cobra.Command{
	Use:   "deduplicate-books",
	Short: "Collapse duplicate catalog entries by ASIN identity and title",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		books, err := st.Load()
		if err != nil {
			return err
		}

		// Backup before a destructive rewrite.
		backup, err := st.Backup()
		if err != nil {
			return err
		}
		zap.L().Info("catalog backed up", zap.String("path", backup))

		books, stats := catalog.Dedupe(books)
		for _, p := range stats.Collapsed {
			zap.L().Info("collapsed duplicate",
				zap.String("reason", p.Reason),
				zap.String("kept", p.KeptTitle),
				zap.String("keptAsin", p.KeptASIN),
				zap.String("dropped", p.DroppedTitle),
				zap.String("droppedAsin", p.DroppedASIN),
			)
		}

		if err := st.Save(books); err != nil {
			return err
		}
		zap.L().Info("deduplication complete",
			zap.Int("before", stats.Before),
			zap.Int("afterId", stats.AfterID),
			zap.Int("afterTitle", stats.AfterTitle),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
}
