package extract

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/podshelf/shelf-cli/internal/amazon"
	"github.com/podshelf/shelf-cli/internal/model"
	"github.com/podshelf/shelf-cli/internal/titles"
)

// Candidate is one book discovered on an episode page, ready for merging.
type Candidate struct {
	ASIN  string
	Title string
	Link  string
}

// ShortLinkResolver expands a redirecting short link to its target URL.
type ShortLinkResolver interface {
	Resolve(ctx context.Context, shortURL string) (string, error)
}

// Extractor turns episode-page HTML into merge candidates. Short links are
// resolved sequentially with a politeness pause between requests.
type Extractor struct {
	resolver ShortLinkResolver
	limiter  *rate.Limiter
}

// NewExtractor creates an Extractor. resolveInterval spaces successive
// short-link resolutions; zero disables pacing (tests).
func NewExtractor(resolver ShortLinkResolver, resolveInterval rate.Limit) *Extractor {
	var limiter *rate.Limiter
	if resolveInterval > 0 {
		limiter = rate.NewLimiter(resolveInterval, 1)
	}
	return &Extractor{resolver: resolver, limiter: limiter}
}

// Extract finds marketplace links in the HTML, resolves short links,
// extracts ASINs, and recovers a sanitized title per link. A page with no
// resolvable links yields an empty slice; per-link failures are logged and
// skipped, never fatal.
func (e *Extractor) Extract(ctx context.Context, html, episodeURL string) ([]Candidate, error) {
	links := FindLinks(html)
	if len(links) == 0 {
		zap.L().Info("no amazon links on page", zap.String("episode", episodeURL))
		return nil, nil
	}

	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))
	if docErr != nil {
		// Title recovery degrades to the raw-HTML fallback scan.
		zap.L().Warn("html parse failed, using fallback title scan", zap.Error(docErr))
		doc = nil
	}

	var (
		candidates []Candidate
		seen       = make(map[string]struct{})
	)
	for _, link := range links {
		resolved := link
		if amazon.IsShortLink(link) {
			if e.limiter != nil {
				if err := e.limiter.Wait(ctx); err != nil {
					return candidates, err
				}
			}
			r, err := e.resolver.Resolve(ctx, link)
			if err != nil {
				zap.L().Warn("short link unresolved, skipping",
					zap.String("link", link),
					zap.Error(err),
				)
				continue
			}
			resolved = r
		}

		asin, ok := amazon.ExtractASIN(resolved)
		if !ok {
			zap.L().Warn("no asin in link, skipping",
				zap.String("link", link),
				zap.String("resolved", resolved),
			)
			continue
		}
		if _, dup := seen[asin]; dup {
			continue
		}

		raw := recoverTitle(doc, html, link)
		title, err := titles.Sanitize(titles.DecodeEntities(raw))
		if err != nil {
			zap.L().Warn("title rejected, skipping candidate",
				zap.String("asin", asin),
				zap.String("raw", raw),
				zap.Error(err),
			)
			continue
		}

		seen[asin] = struct{}{}
		candidates = append(candidates, Candidate{ASIN: asin, Title: title, Link: resolved})
	}

	zap.L().Info("extraction complete",
		zap.String("episode", episodeURL),
		zap.Int("links", len(links)),
		zap.Int("candidates", len(candidates)),
	)
	return candidates, nil
}

// fallbackSpanRe finds the next >text< span after a link occurrence.
var fallbackSpanRe = regexp.MustCompile(`>\s*([^<>]+?)\s*<`)

// recoverTitle tries three strategies in order: exact-href anchor text, an
// anchor href sharing the short link's trailing path segment, and a bounded
// forward scan of the raw HTML. Falls back to the sentinel, which the
// sanitizer rejects downstream.
func recoverTitle(doc *goquery.Document, html, link string) string {
	if doc != nil {
		if t := anchorTextByHref(doc, link); t != "" {
			return t
		}
		if seg := trailingSegment(link); seg != "" {
			if t := anchorTextBySegment(doc, seg); t != "" {
				return t
			}
		}
	}
	if t := scanAfterLink(html, link); t != "" {
		return t
	}
	return model.SentinelTitle
}

// anchorTextByHref returns the text of the first anchor whose href equals or
// contains the link.
func anchorTextByHref(doc *goquery.Document, link string) string {
	var text string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if href == link || strings.Contains(href, link) {
			text = strings.TrimSpace(s.Text())
			return text == ""
		}
		return true
	})
	return text
}

// anchorTextBySegment matches anchors by the short link's trailing path
// segment, catching hrefs that were rewritten by the CMS.
func anchorTextBySegment(doc *goquery.Document, segment string) string {
	var text string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if strings.Contains(href, segment) {
			text = strings.TrimSpace(s.Text())
			return text == ""
		}
		return true
	})
	return text
}

// trailingSegment returns the last non-empty path segment of a URL.
func trailingSegment(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 0 {
		return ""
	}
	seg := parts[len(parts)-1]
	if len(seg) < 4 {
		// Too short to be discriminating (e.g. "d").
		return ""
	}
	return seg
}

// scanAfterLink looks at up to 300 characters following the link's first
// occurrence in the raw HTML for the next tag-enclosed text span.
func scanAfterLink(html, link string) string {
	idx := strings.Index(html, link)
	if idx < 0 {
		return ""
	}
	start := idx + len(link)
	end := start + 300
	if end > len(html) {
		end = len(html)
	}
	m := fallbackSpanRe.FindStringSubmatch(html[start:end])
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
