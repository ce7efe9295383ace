// Package csvload builds the initial catalog from the two CSV exports: the
// unique-books file (one row per work) and the expanded file (one row per
// work per mention).
package csvload

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/model"
	"github.com/podshelf/shelf-cli/internal/titles"
)

// Column layouts of the two exports. Header row is present but matched by
// position, as the exports are produced by our own tooling.
const (
	uniqueCols   = 5 // ASIN, Book Title, Amazon Link, Episode Count, Episode Numbers
	expandedCols = 7 // Episode Number, Episode Title, Episode Date, ASIN, Book Title, Amazon Link, Episode URL
)

// Build assembles a catalog from the two CSVs. The unique file is the
// authoritative book list; the expanded file supplies full mention detail,
// joined on ASIN. Rows with rejected titles or malformed numbers are logged
// and skipped, never fatal.
func Build(uniquePath, expandedPath string) ([]model.Book, error) {
	uniqueRows, err := readRows(uniquePath, uniqueCols)
	if err != nil {
		return nil, err
	}
	expandedRows, err := readRows(expandedPath, expandedCols)
	if err != nil {
		return nil, err
	}

	mentions := mentionsByASIN(expandedRows)

	var books []model.Book
	for _, row := range uniqueRows {
		asin := strings.TrimSpace(row[0])
		if asin == "" {
			continue
		}
		title, err := titles.Sanitize(titles.DecodeEntities(row[1]))
		if err != nil {
			zap.L().Warn("csv title rejected, skipping row",
				zap.String("asin", asin),
				zap.String("raw", row[1]),
				zap.Error(err),
			)
			continue
		}
		link := strings.TrimSpace(row[2])

		ms := mentions[asin]
		if len(ms) == 0 {
			// No expanded detail: fall back to the bare episode-numbers list.
			ms = bareMentions(row[4])
		}
		if len(ms) == 0 {
			zap.L().Warn("no mentions for book, skipping row", zap.String("asin", asin))
			continue
		}

		book, err := model.NewBook(asin, title, link, ms[0])
		if err != nil {
			zap.L().Warn("invalid book row, skipping", zap.String("asin", asin), zap.Error(err))
			continue
		}
		for _, m := range ms[1:] {
			book.AddMention(m)
		}
		books = append(books, *book)
	}

	zap.L().Info("catalog built from csv",
		zap.Int("unique_rows", len(uniqueRows)),
		zap.Int("expanded_rows", len(expandedRows)),
		zap.Int("books", len(books)),
	)
	return books, nil
}

// readRows loads a CSV, skips the header, and drops rows with too few
// columns.
func readRows(path string, minCols int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "csvload: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "csvload: read %s", path)
	}
	if len(records) < 2 {
		return nil, nil // header only or empty
	}

	var rows [][]string
	for _, row := range records[1:] {
		if len(row) < minCols {
			zap.L().Warn("short csv row skipped", zap.String("file", path), zap.Strings("row", row))
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// mentionsByASIN groups expanded rows into mention lists.
func mentionsByASIN(rows [][]string) map[string][]model.Mention {
	out := make(map[string][]model.Mention)
	for _, row := range rows {
		num, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			zap.L().Warn("bad episode number in expanded csv, skipping row", zap.String("value", row[0]))
			continue
		}
		asin := strings.TrimSpace(row[3])
		if asin == "" {
			continue
		}
		out[asin] = append(out[asin], model.Mention{
			EpisodeNum:   num,
			EpisodeTitle: strings.TrimSpace(row[1]),
			EpisodeDate:  strings.TrimSpace(row[2]),
			EpisodeURL:   strings.TrimSpace(row[6]),
		})
	}
	return out
}

// bareMentions parses the semicolon-joined episode-numbers column of the
// unique file into detail-less mentions.
func bareMentions(joined string) []model.Mention {
	var ms []model.Mention
	for _, part := range strings.Split(joined, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		ms = append(ms, model.Mention{EpisodeNum: num})
	}
	return ms
}
