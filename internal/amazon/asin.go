// Package amazon normalizes Amazon marketplace links: ASIN extraction from
// product URLs and resolution of redirecting short links.
package amazon

import (
	"net/url"
	"regexp"
	"strings"
)

// asinMatcher is one named extraction strategy. Strategies are tried in
// order; the first match wins.
type asinMatcher struct {
	name string
	re   *regexp.Regexp
}

// asinMatchers covers the product URL shapes seen across episode pages.
// ASINs are strictly uppercase; a case-insensitive match would turn nav
// paths like /primevideo into fake identifiers.
var asinMatchers = []asinMatcher{
	{"dp_path", regexp.MustCompile(`/dp/([A-Z0-9]{10})(?:[/?]|$)`)},
	{"gp_product_path", regexp.MustCompile(`/gp/product/([A-Z0-9]{10})(?:[/?]|$)`)},
	{"product_path", regexp.MustCompile(`/product/([A-Z0-9]{10})(?:[/?]|$)`)},
	{"digital_path", regexp.MustCompile(`/d/([A-Z0-9]{10})(?:[/?]|$)`)},
	{"bare_asin_path", regexp.MustCompile(`amazon\.[^/]+/([A-Z0-9]{10})(?:[/?]|$)`)},
}

// nonProductPrefixes are storefront, author, search, and seller pages whose
// paths can contain 10-character alphanumeric segments that are not ASINs.
var nonProductPrefixes = []string{
	"/stores/",
	"/shops/",
	"/author/",
	"/s/",
	"/s?",
	"/hz/",
	"/gp/browse",
	"/sp?",
}

var asinShapeRe = regexp.MustCompile(`^[A-Z0-9]{10}$`)

// ExtractASIN pulls a 10-character ASIN out of a product URL. Non-product
// pages are excluded before any matcher runs, so they never yield a false
// positive.
func ExtractASIN(rawURL string) (string, bool) {
	if isNonProductPath(rawURL) {
		return "", false
	}
	for _, m := range asinMatchers {
		if match := m.re.FindStringSubmatch(rawURL); match != nil {
			if asinShapeRe.MatchString(match[1]) {
				return match[1], true
			}
		}
	}
	return "", false
}

func isNonProductPath(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	probe := u.Path
	if u.RawQuery != "" {
		probe = u.Path + "?" + u.RawQuery
	}
	for _, prefix := range nonProductPrefixes {
		if strings.HasPrefix(probe, prefix) {
			return true
		}
	}
	return false
}

var shortLinkRe = regexp.MustCompile(`^https?://(?:amzn\.(?:in|to)|a\.co)/`)

// IsShortLink reports whether the URL is a redirecting short link that needs
// resolution before an ASIN can be extracted.
func IsShortLink(rawURL string) bool {
	return shortLinkRe.MatchString(rawURL)
}
