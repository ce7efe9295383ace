package amazon

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

// userAgent mimics a desktop browser; amzn.in refuses obviously botty agents.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Resolver expands short links by following a single redirect hop.
type Resolver struct {
	client *http.Client
}

// NewResolver creates a Resolver with a bounded timeout and redirects
// disabled so the Location header can be read directly.
func NewResolver() *Resolver {
	return &Resolver{
		client: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// NewResolverWithClient creates a Resolver using a caller-supplied HTTP
// client (tests point it at an httptest server).
func NewResolverWithClient(client *http.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve issues one GET against a short link. A redirect status yields the
// absolute Location; a direct 200 yields the original URL unchanged. Any
// other status, or a network error, fails — the caller skips that one link
// and moves on.
func (r *Resolver) Resolve(ctx context.Context, shortURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "amazon: create request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "amazon: resolve short link")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		loc := resp.Header.Get("Location")
		if loc == "" {
			return "", eris.Errorf("amazon: redirect without location for %s", shortURL)
		}
		return absoluteLocation(shortURL, loc)
	case resp.StatusCode == http.StatusOK:
		return shortURL, nil
	default:
		return "", eris.Errorf("amazon: unexpected status %d for %s", resp.StatusCode, shortURL)
	}
}

// absoluteLocation resolves a possibly relative Location header against the
// original request URL.
func absoluteLocation(base, loc string) (string, error) {
	locURL, err := url.Parse(loc)
	if err != nil {
		return "", eris.Wrap(err, "amazon: parse location")
	}
	if locURL.IsAbs() {
		return loc, nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", eris.Wrap(err, "amazon: parse base url")
	}
	return baseURL.ResolveReference(locURL).String(), nil
}
