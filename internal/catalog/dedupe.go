package catalog

import (
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/model"
	"github.com/podshelf/shelf-cli/internal/titles"
)

// CollapsedPair records one losing entry folded into a keeper, for operator
// review. Diagnostic only, never used for control flow.
type CollapsedPair struct {
	KeptASIN     string `json:"keptAsin"`
	KeptTitle    string `json:"keptTitle"`
	DroppedASIN  string `json:"droppedAsin"`
	DroppedTitle string `json:"droppedTitle"`
	Reason       string `json:"reason"` // "id" or "title"
}

// DedupeStats reports the size of the catalog at each stage of the pass.
type DedupeStats struct {
	Before     int
	AfterID    int
	AfterTitle int
	Collapsed  []CollapsedPair
}

// Dedupe collapses duplicate entries, first by derived id, then by
// normalized title. Idempotent, and never drops a mention: the union of
// episode numbers across the output equals the union across the input.
func Dedupe(books []model.Book) ([]model.Book, DedupeStats) {
	stats := DedupeStats{Before: len(books)}

	books, byID := dedupeByID(books)
	stats.AfterID = len(books)
	stats.Collapsed = append(stats.Collapsed, byID...)

	books, byTitle := dedupeByTitle(books)
	stats.AfterTitle = len(books)
	stats.Collapsed = append(stats.Collapsed, byTitle...)

	sortByTitle(books)

	zap.L().Info("dedup complete",
		zap.Int("before", stats.Before),
		zap.Int("after_id", stats.AfterID),
		zap.Int("after_title", stats.AfterTitle),
		zap.Int("collapsed", len(stats.Collapsed)),
	)
	return books, stats
}

// dedupeByID folds entries sharing a derived id into the first-encountered
// entry of each group.
func dedupeByID(books []model.Book) ([]model.Book, []CollapsedPair) {
	var (
		out       []model.Book
		collapsed []CollapsedPair
		index     = make(map[string]int)
	)
	for _, b := range books {
		id := model.DeriveID(b.ASIN)
		if i, ok := index[id]; ok {
			collapsed = append(collapsed, fold(&out[i], b, "id"))
			continue
		}
		index[id] = len(out)
		out = append(out, b)
	}
	return out, collapsed
}

// dedupeByTitle folds entries sharing a normalized title. The winner is
// elected per group before any folding, so it is the entry with the highest
// original mention count; ties prefer the entry that already has a cover,
// then the first-encountered one.
func dedupeByTitle(books []model.Book) ([]model.Book, []CollapsedPair) {
	var (
		order  []string
		groups = make(map[string][]model.Book)
	)
	for _, b := range books {
		key := titles.NormalizeKey(b.Title)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], b)
	}

	var (
		out       []model.Book
		collapsed []CollapsedPair
	)
	for _, key := range order {
		group := groups[key]
		win := 0
		for i := 1; i < len(group); i++ {
			if wins(group[i], group[win]) {
				win = i
			}
		}
		keeper := group[win]
		for i, b := range group {
			if i == win {
				continue
			}
			collapsed = append(collapsed, fold(&keeper, b, "title"))
		}
		out = append(out, keeper)
	}
	return out, collapsed
}

// wins reports whether challenger beats incumbent for title dedup.
func wins(challenger, incumbent model.Book) bool {
	if challenger.EpisodeCount != incumbent.EpisodeCount {
		return challenger.EpisodeCount > incumbent.EpisodeCount
	}
	return challenger.Cover != nil && incumbent.Cover == nil
}

// fold merges the loser's mentions and cover into the keeper and records the
// collapse. A non-generic loser title replaces a generic keeper title, so a
// real title recovered on a later episode survives dedup.
func fold(keeper *model.Book, loser model.Book, reason string) CollapsedPair {
	for _, m := range loser.Episodes {
		keeper.AddMention(m)
	}
	if keeper.Cover == nil && loser.Cover != nil {
		keeper.Cover = loser.Cover
	}
	if titles.IsGeneric(keeper.Title) && !titles.IsGeneric(loser.Title) {
		keeper.Title = loser.Title
	}
	keeper.Recompute()
	return CollapsedPair{
		KeptASIN:     keeper.ASIN,
		KeptTitle:    keeper.Title,
		DroppedASIN:  loser.ASIN,
		DroppedTitle: loser.Title,
		Reason:       reason,
	}
}
