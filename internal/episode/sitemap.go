package episode

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/podshelf/shelf-cli/internal/retry"
)

// sitemapURLSet is the subset of the sitemaps.org schema we read.
type sitemapURLSet struct {
	URLs []struct {
		Loc string `xml:"loc"`
	} `xml:"url"`
}

// DiscoverSitemap fetches the site's sitemap.xml and returns every episode
// page it lists, sorted ascending by episode number. Non-episode URLs are
// skipped silently.
func DiscoverSitemap(ctx context.Context, client *http.Client, sitemapURL string) ([]Descriptor, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	body, err := retry.DoVal(ctx, retry.Defaults(), "fetch sitemap", func(ctx context.Context) ([]byte, error) {
		return fetchSitemap(ctx, client, sitemapURL)
	})
	if err != nil {
		return nil, eris.Wrap(err, "episode: fetch sitemap")
	}

	var set sitemapURLSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, eris.Wrap(err, "episode: parse sitemap xml")
	}

	var episodes []Descriptor
	for _, u := range set.URLs {
		desc, err := Parse(u.Loc)
		if err != nil {
			continue
		}
		episodes = append(episodes, desc)
	}
	sort.Slice(episodes, func(i, j int) bool { return episodes[i].Num < episodes[j].Num })

	zap.L().Info("sitemap discovered", zap.Int("episodes", len(episodes)), zap.String("sitemap", sitemapURL))
	return episodes, nil
}

func fetchSitemap(ctx context.Context, client *http.Client, sitemapURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "episode: create sitemap request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.StatusError{Code: resp.StatusCode, URL: sitemapURL}
	}

	return io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
}
