package catalog

import (
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/episode"
	"github.com/podshelf/shelf-cli/internal/extract"
	"github.com/podshelf/shelf-cli/internal/model"
)

// MergeStats summarizes one episode ingestion.
type MergeStats struct {
	New       int
	Updated   int
	Unchanged int
	NewASINs  []string
}

// MergeEpisode folds extraction candidates into the catalog. Lookup is keyed
// by ASIN rather than the derived id, so re-ingesting an episode stays
// idempotent even if id derivation ever collided. Returns the updated
// catalog, re-sorted by title.
func MergeEpisode(books []model.Book, candidates []extract.Candidate, ep episode.Descriptor) ([]model.Book, MergeStats, error) {
	byASIN := make(map[string]int, len(books))
	for i, b := range books {
		byASIN[b.ASIN] = i
	}

	mention := model.Mention{
		EpisodeNum:   ep.Num,
		EpisodeTitle: ep.Title,
		EpisodeDate:  ep.Date,
		EpisodeURL:   ep.URL,
	}

	var stats MergeStats
	for _, c := range candidates {
		if i, ok := byASIN[c.ASIN]; ok {
			if books[i].AddMention(mention) {
				stats.Updated++
				zap.L().Info("mention added",
					zap.String("asin", c.ASIN),
					zap.String("title", books[i].Title),
					zap.Int("episode", ep.Num),
				)
			} else {
				stats.Unchanged++
				zap.L().Debug("episode already recorded",
					zap.String("asin", c.ASIN),
					zap.Int("episode", ep.Num),
				)
			}
			continue
		}

		book, err := model.NewBook(c.ASIN, c.Title, c.Link, mention)
		if err != nil {
			return nil, MergeStats{}, err
		}
		byASIN[c.ASIN] = len(books)
		books = append(books, *book)
		stats.New++
		stats.NewASINs = append(stats.NewASINs, c.ASIN)
		zap.L().Info("book added",
			zap.String("asin", c.ASIN),
			zap.String("title", c.Title),
			zap.Int("episode", ep.Num),
		)
	}

	sortByTitle(books)
	return books, stats, nil
}
