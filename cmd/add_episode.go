package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/podshelf/shelf-cli/internal/amazon"
	"github.com/podshelf/shelf-cli/internal/catalog"
	"github.com/podshelf/shelf-cli/internal/covers"
	"github.com/podshelf/shelf-cli/internal/episode"
	"github.com/podshelf/shelf-cli/internal/extract"
	"github.com/podshelf/shelf-cli/internal/model"
	"github.com/podshelf/shelf-cli/pkg/openlibrary"
)

var addEpisodeCmd = &cobra.Command{
	Use:   "add-episode <episode-url>",
	Short: "Scrape one episode page and merge its books into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		desc, err := episode.Parse(args[0])
		if err != nil {
			return err // cobra prints usage; nothing has been mutated
		}

		st := newStore()
		var books []model.Book
		if st.Exists() {
			books, err = st.Load()
			if err != nil {
				return err
			}
		}

		client := extract.NewPageClient(time.Duration(cfg.Scrape.PageTimeoutSecs) * time.Second)
		html, err := extract.FetchPage(ctx, client, desc.URL)
		if err != nil {
			// The episode page itself is unreachable: fatal, no mutation.
			return eris.Wrapf(err, "add-episode: fetch episode %d", desc.Num)
		}

		pause := time.Duration(cfg.Scrape.ResolvePauseMillis) * time.Millisecond
		extractor := extract.NewExtractor(amazon.NewResolver(), rate.Every(pause))
		candidates, err := extractor.Extract(ctx, html, desc.URL)
		if err != nil {
			return eris.Wrap(err, "add-episode: extract")
		}
		if len(candidates) == 0 {
			zap.L().Info("no books found on episode page", zap.Int("episode", desc.Num))
			return nil
		}

		books, stats, err := catalog.MergeEpisode(books, candidates, desc)
		if err != nil {
			return eris.Wrap(err, "add-episode: merge")
		}
		if err := st.Save(books); err != nil {
			return err
		}

		// Covers for newly added entries only; existing entries keep theirs.
		if stats.New > 0 {
			only := make(map[string]struct{}, len(stats.NewASINs))
			for _, asin := range stats.NewASINs {
				only[asin] = struct{}{}
			}
			fetcher := covers.NewFetcher(
				cfg.Catalog.CoversDir,
				openlibrary.NewClient(),
				nil,
				rate.Every(time.Duration(cfg.Covers.PauseMillis)*time.Millisecond),
			)
			if n := fetcher.FillMissing(ctx, books, only); n > 0 {
				if err := st.Save(books); err != nil {
					return err
				}
			}
		}

		// Final normalization pass over the whole catalog.
		books, dstats := catalog.Dedupe(books)
		if err := st.Save(books); err != nil {
			return err
		}

		zap.L().Info("episode ingested",
			zap.Int("episode", desc.Num),
			zap.String("title", desc.Title),
			zap.Int("new", stats.New),
			zap.Int("updated", stats.Updated),
			zap.Int("unchanged", stats.Unchanged),
			zap.Int("catalog", dstats.AfterTitle),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addEpisodeCmd)
}
