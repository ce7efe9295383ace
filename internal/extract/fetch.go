package extract

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/podshelf/shelf-cli/internal/retry"
)

// NewPageClient returns the HTTP client used for episode page fetches.
func NewPageClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

// FetchPage downloads an episode page, retrying transient failures. An
// unreachable page is fatal for the invocation: there is nothing to ingest.
func FetchPage(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	body, err := retry.DoVal(ctx, retry.Defaults(), "fetch page", func(ctx context.Context) (string, error) {
		return fetchOnce(ctx, client, pageURL)
	})
	if err != nil {
		return "", eris.Wrapf(err, "extract: fetch %s", pageURL)
	}
	return body, nil
}

func fetchOnce(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", eris.Wrap(err, "extract: create request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return "", &retry.StatusError{Code: resp.StatusCode, URL: pageURL}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", eris.Wrap(err, "extract: read body")
	}
	return string(body), nil
}
