package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/episode"
	"github.com/podshelf/shelf-cli/internal/model"
)

var discoverCmd = &cobra.Command{
	Use:   "discover-episodes",
	Short: "List sitemap episodes not yet represented in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st := newStore()
		var books []model.Book
		if st.Exists() {
			var err error
			books, err = st.Load()
			if err != nil {
				return err
			}
		}

		seen := make(map[int]struct{})
		for _, b := range books {
			for _, m := range b.Episodes {
				seen[m.EpisodeNum] = struct{}{}
			}
		}

		episodes, err := episode.DiscoverSitemap(cmd.Context(), nil, cfg.Site.SitemapURL)
		if err != nil {
			return err
		}

		missing := 0
		for _, ep := range episodes {
			if _, ok := seen[ep.Num]; ok {
				continue
			}
			missing++
			fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", ep.Num, ep.Date, ep.URL)
		}
		zap.L().Info("episodes discovered",
			zap.Int("sitemap", len(episodes)),
			zap.Int("ingested", len(seen)),
			zap.Int("missing", missing),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}
