// Package extract discovers Amazon book links on an episode page and
// recovers a display title for each.
package extract

import (
	"regexp"
	"sort"
)

var (
	// Direct marketplace links, embedded as-is in the page HTML.
	directLinkRe = regexp.MustCompile(`https?://(?:(?:www\.)?amazon\.(?:in|com)|amzn\.(?:in|to)|a\.co)/[^\s<>"&]+`)
	// Marketplace links wrapped in a Google redirector query parameter.
	googleRedirectRe = regexp.MustCompile(`https://www\.google\.com/url\?q=(https?://(?:(?:www\.)?amazon\.(?:in|com)|amzn\.(?:in|to)|a\.co)/[^&"]+)`)
)

// FindLinks scans raw HTML for both link families, unions them, and
// de-duplicates. The result is sorted so callers see a stable order.
func FindLinks(html string) []string {
	seen := make(map[string]struct{})

	for _, m := range directLinkRe.FindAllString(html, -1) {
		seen[m] = struct{}{}
	}
	for _, m := range googleRedirectRe.FindAllStringSubmatch(html, -1) {
		seen[m[1]] = struct{}{}
	}

	links := make([]string, 0, len(seen))
	for l := range seen {
		links = append(links, l)
	}
	sort.Strings(links)
	return links
}
