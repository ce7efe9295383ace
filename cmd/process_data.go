package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/catalog"
	"github.com/podshelf/shelf-cli/internal/csvload"
)

var processDataCmd = &cobra.Command{
	Use:   "process-data [unique-csv] [expanded-csv]",
	Short: "Bootstrap the catalog from the legacy CSV exports",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		uniquePath := "books_unique.csv"
		expandedPath := "books_expanded.csv"
		if len(args) > 0 {
			uniquePath = args[0]
		}
		if len(args) > 1 {
			expandedPath = args[1]
		}

		st := newStore()
		if st.Exists() {
			return eris.Errorf("process-data: %s already exists, refusing to overwrite", st.Path())
		}

		books, err := csvload.Build(uniquePath, expandedPath)
		if err != nil {
			return err
		}

		books, stats := catalog.Dedupe(books)
		if err := st.Save(books); err != nil {
			return err
		}

		zap.L().Info("catalog bootstrapped",
			zap.String("path", st.Path()),
			zap.Int("rows", stats.Before),
			zap.Int("books", stats.AfterTitle),
			zap.Int("collapsed", len(stats.Collapsed)),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(processDataCmd)
}
