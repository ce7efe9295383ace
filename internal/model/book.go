// Package model defines the catalog records shared by the ingestion
// pipeline and the rendering app.
package model

import (
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// Rendering defaults used until a cover and its palette exist.
const (
	DefaultBackgroundColor = "#f0f0f0"
	DefaultTextColor       = "#1f1f2e"
	DefaultHeight          = 190
)

// SentinelTitle is the fallback anchor title used when extraction finds no
// real text. It is always rejected by the sanitizer and must never be stored.
const SentinelTitle = "Amazon Book Link"

// Mention records one episode's reference to a book.
type Mention struct {
	EpisodeNum   int    `json:"episodeNum"`
	EpisodeTitle string `json:"episodeTitle"`
	EpisodeDate  string `json:"episodeDate"` // ISO YYYY-MM-DD
	EpisodeURL   string `json:"episodeUrl"`
}

// Book is one distinct work on the shelf. Field names match the catalog
// JSON consumed by the rendering app; do not rename.
type Book struct {
	ID              string    `json:"id"`
	ASIN            string    `json:"asin"`
	Title           string    `json:"title"`
	AmazonLink      string    `json:"amazonLink"`
	EpisodeCount    int       `json:"episodeCount"`
	Episodes        []Mention `json:"episodes"`
	Cover           *string   `json:"cover"`
	BackgroundColor string    `json:"backgroundColor"`
	TextColor       string    `json:"textColor"`
	SpineWidth      int       `json:"spineWidth"`
	Height          int       `json:"height"`
}

// DeriveID derives the stable record key from an ASIN: non-alphanumerics
// stripped, truncated to 10 characters.
func DeriveID(asin string) string {
	var b strings.Builder
	for _, r := range asin {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
		if b.Len() == 10 {
			break
		}
	}
	return b.String()
}

// SpineWidth maps a mention count to a rendered spine width in [40,120].
func SpineWidth(mentionCount int) int {
	w := 40 + 3*mentionCount
	if w > 120 {
		return 120
	}
	return w
}

// NewBook builds a Book for an ASIN seen for the first time. The title must
// already be sanitized; the single mention seeds the episode list.
func NewBook(asin, title, link string, mention Mention) (*Book, error) {
	if asin == "" {
		return nil, eris.New("model: empty asin")
	}
	if title == "" || title == SentinelTitle {
		return nil, eris.Errorf("model: unsanitized title %q", title)
	}
	return &Book{
		ID:              DeriveID(asin),
		ASIN:            asin,
		Title:           title,
		AmazonLink:      link,
		EpisodeCount:    1,
		Episodes:        []Mention{mention},
		Cover:           nil,
		BackgroundColor: DefaultBackgroundColor,
		TextColor:       DefaultTextColor,
		SpineWidth:      SpineWidth(1),
		Height:          DefaultHeight,
	}, nil
}

// HasMention reports whether the book already carries a mention for the
// given episode number.
func (b *Book) HasMention(episodeNum int) bool {
	for _, m := range b.Episodes {
		if m.EpisodeNum == episodeNum {
			return true
		}
	}
	return false
}

// AddMention appends a mention unless its episode number is already present,
// keeps the list sorted ascending, and recomputes the derived fields.
// Returns true when the book changed.
func (b *Book) AddMention(m Mention) bool {
	if b.HasMention(m.EpisodeNum) {
		return false
	}
	b.Episodes = append(b.Episodes, m)
	sort.Slice(b.Episodes, func(i, j int) bool {
		return b.Episodes[i].EpisodeNum < b.Episodes[j].EpisodeNum
	})
	b.Recompute()
	return true
}

// Recompute refreshes episodeCount and spineWidth from the mention list.
func (b *Book) Recompute() {
	b.EpisodeCount = len(b.Episodes)
	b.SpineWidth = SpineWidth(b.EpisodeCount)
}
