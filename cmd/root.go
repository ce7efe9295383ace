package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/catalog"
	"github.com/podshelf/shelf-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "shelf-cli",
	Short: "Podcast book catalog pipeline",
	Long:  "Scrapes podcast episode pages for Amazon book links, merges them into the shelf catalog JSON, and maintains covers, colors, and duplicates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newStore builds the catalog store from config. Pretty-printing is on
// unless this is a production build.
func newStore() *catalog.Store {
	return catalog.NewStore(cfg.Catalog.Path, !cfg.Production)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
