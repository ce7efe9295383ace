// Package covers resolves and caches cover images for catalog entries.
package covers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/podshelf/shelf-cli/internal/model"
	"github.com/podshelf/shelf-cli/internal/retry"
	"github.com/podshelf/shelf-cli/pkg/openlibrary"
)

// cdnPatterns are conventional Amazon image-CDN URL shapes keyed by ASIN,
// probed in order when the bibliographic lookup has no cover.
var cdnPatterns = []string{
	"https://images-na.ssl-images-amazon.com/images/P/%s.01._SCLZZZZZZZ_.jpg",
	"https://m.media-amazon.com/images/P/%s.01._SCLZZZZZZZ_.jpg",
	"https://images-eu.ssl-images-amazon.com/images/P/%s.01._SCLZZZZZZZ_.jpg",
}

// Fetcher resolves covers one entry at a time, sequentially, with a
// politeness pause between entries.
type Fetcher struct {
	dir      string // local covers directory
	ol       openlibrary.Client
	client   *http.Client
	limiter  *rate.Limiter
	patterns []string
}

// NewFetcher creates a Fetcher writing into dir. pacing spaces successive
// entries; zero disables it (tests).
func NewFetcher(dir string, ol openlibrary.Client, client *http.Client, pacing rate.Limit) *Fetcher {
	if client == nil {
		client = &http.Client{
			Timeout: 15 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > 1 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}
	var limiter *rate.Limiter
	if pacing > 0 {
		limiter = rate.NewLimiter(pacing, 1)
	}
	return &Fetcher{dir: dir, ol: ol, client: client, limiter: limiter, patterns: cdnPatterns}
}

// coverFile is the local filename for an entry.
func (f *Fetcher) coverFile(id string) string {
	return filepath.Join(f.dir, id+".jpg")
}

// relPath is the catalog-facing path for an entry's cover.
func (f *Fetcher) relPath(id string) string {
	return path.Join(filepath.Base(f.dir), id+".jpg")
}

// Resolve finds a cover for one book. A cached file short-circuits with no
// network call. Returns ok=false when no source has a cover; that is a
// normal outcome, not an error.
func (f *Fetcher) Resolve(ctx context.Context, book *model.Book) (string, bool) {
	if _, err := os.Stat(f.coverFile(book.ID)); err == nil {
		return f.relPath(book.ID), true
	}

	if coverURL := f.lookupCoverURL(ctx, book.ASIN); coverURL != "" {
		err := f.download(ctx, coverURL, book.ID)
		if err == nil {
			return f.relPath(book.ID), true
		}
		zap.L().Warn("cover download failed",
			zap.String("asin", book.ASIN),
			zap.String("url", coverURL),
			zap.Error(err),
		)
	}

	for _, pattern := range f.patterns {
		probeURL := fmt.Sprintf(pattern, book.ASIN)
		if !f.probe(ctx, probeURL) {
			continue
		}
		if err := f.download(ctx, probeURL, book.ID); err == nil {
			return f.relPath(book.ID), true
		}
	}

	zap.L().Info("no cover found", zap.String("asin", book.ASIN), zap.String("title", book.Title))
	return "", false
}

// FillMissing resolves covers for every book without one, optionally
// restricted to a set of ASINs (new entries after ingestion). Returns the
// number of covers set.
func (f *Fetcher) FillMissing(ctx context.Context, books []model.Book, only map[string]struct{}) int {
	updated := 0
	for i := range books {
		if books[i].Cover != nil {
			continue
		}
		if only != nil {
			if _, ok := only[books[i].ASIN]; !ok {
				continue
			}
		}
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return updated
			}
		}
		if p, ok := f.Resolve(ctx, &books[i]); ok {
			books[i].Cover = &p
			updated++
			zap.L().Info("cover resolved", zap.String("asin", books[i].ASIN), zap.String("path", p))
		}
	}
	return updated
}

// lookupCoverURL queries the bibliographic service. Failures and misses both
// yield "" — the caller falls through to the CDN probes.
func (f *Fetcher) lookupCoverURL(ctx context.Context, asin string) string {
	data, err := f.ol.BookByISBN(ctx, asin)
	if err != nil {
		zap.L().Warn("bibliographic lookup failed", zap.String("asin", asin), zap.Error(err))
		return ""
	}
	if data == nil {
		return ""
	}
	return data.Cover.BestURL()
}

// probe checks whether a CDN URL serves an image. Rejects non-image content
// types: a 200 HTML error page must not become a cover.
func (f *Fetcher) probe(ctx context.Context, probeURL string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return false
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return false
	}
	// Amazon serves a 1x1 GIF for unknown ASINs; anything that tiny is a miss.
	if resp.ContentLength > 0 && resp.ContentLength < 100 {
		return false
	}
	return true
}

// download fetches the image to a uniquely named partial file, then renames
// it into place. The partial is removed on any failure; rate limits and
// server errors are retried.
func (f *Fetcher) download(ctx context.Context, imageURL, id string) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return eris.Wrapf(err, "covers: create dir %s", f.dir)
	}
	return retry.Do(ctx, retry.Defaults(), "download cover", func(ctx context.Context) error {
		return f.downloadOnce(ctx, imageURL, id)
	})
}

func (f *Fetcher) downloadOnce(ctx context.Context, imageURL, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return eris.Wrap(err, "covers: create request")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &retry.StatusError{Code: resp.StatusCode, URL: imageURL}
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return eris.Errorf("covers: non-image content type %q", resp.Header.Get("Content-Type"))
	}

	partial := filepath.Join(f.dir, fmt.Sprintf("%s.%s.part", id, uuid.NewString()))
	out, err := os.Create(partial)
	if err != nil {
		return eris.Wrap(err, "covers: create partial file")
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(partial)
		return eris.Wrap(err, "covers: write image")
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(partial)
		return eris.Wrap(err, "covers: close partial file")
	}
	if err := os.Rename(partial, f.coverFile(id)); err != nil {
		_ = os.Remove(partial)
		return eris.Wrapf(err, "covers: finalize %s", f.coverFile(id))
	}
	return nil
}

// Missing lists books without a cover, for the audit report.
func Missing(books []model.Book) []model.Book {
	var out []model.Book
	for _, b := range books {
		if b.Cover == nil {
			out = append(out, b)
		}
	}
	return out
}
