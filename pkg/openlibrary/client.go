// Package openlibrary provides a client for the Open Library Books API,
// used to look up cover images by ISBN.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://openlibrary.org"

// Client defines the Open Library operations we use.
type Client interface {
	// BookByISBN looks up a book record by ISBN-10/ISBN-13. A missing
	// record is (nil, nil), not an error.
	BookByISBN(ctx context.Context, isbn string) (*BookData, error)
}

// BookData is the subset of the jscmd=data payload we read.
type BookData struct {
	Title string `json:"title"`
	Cover Cover  `json:"cover"`
}

// Cover holds the cover image URLs by size.
type Cover struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// BestURL returns the largest available cover image URL, or "".
func (c Cover) BestURL() string {
	switch {
	case c.Large != "":
		return c.Large
	case c.Medium != "":
		return c.Medium
	default:
		return c.Small
	}
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(base string) Option {
	return func(c *httpClient) {
		c.baseURL = base
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an Open Library client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BookByISBN queries /api/books with a single bibkey. The response is a map
// keyed by the bibkey; an empty map means the ISBN is unknown.
func (c *httpClient) BookByISBN(ctx context.Context, isbn string) (*BookData, error) {
	bibkey := "ISBN:" + isbn
	q := url.Values{}
	q.Set("bibkeys", bibkey)
	q.Set("format", "json")
	q.Set("jscmd", "data")

	reqURL := fmt.Sprintf("%s/api/books?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "openlibrary: create request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "openlibrary: request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("openlibrary: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, eris.Wrap(err, "openlibrary: read body")
	}

	var payload map[string]BookData
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, eris.Wrap(err, "openlibrary: unmarshal")
	}

	data, ok := payload[bibkey]
	if !ok {
		return nil, nil
	}
	return &data, nil
}
