// Package titles cleans and classifies book titles recovered from scraped
// HTML and CSV exports.
package titles

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/podshelf/shelf-cli/internal/model"
)

var (
	// Markup fragments that leak into anchor text when the source HTML is
	// malformed around the link.
	attrFragmentRe = regexp.MustCompile(`(?i)\s*(target|rel|data-saferedirecturl)=["'][^"']*["']?`)
	// Affiliate tag suffixes pasted into the visible text, e.g. `&tag=su-21`.
	affiliateTagRe = regexp.MustCompile(`(?i)[?&]tag=[\w-]+`)
	numericRe      = regexp.MustCompile(`^\d+$`)
	spaceRe        = regexp.MustCompile(`\s+`)
)

// genericRes match anchor texts that are calls to action rather than titles.
// Grouped here as an ordered list so each pattern stays independently
// testable.
var genericRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^amazon\s+book\s+link$`),
	regexp.MustCompile(`(?i)^buy\s+here$`),
	regexp.MustCompile(`(?i)^on\s+amazon$`),
	regexp.MustCompile(`(?i)^here$`),
	regexp.MustCompile(`(?i)^click\s+here$`),
	regexp.MustCompile(`(?i)^link$`),
	regexp.MustCompile(`(?i)^book$`),
	regexp.MustCompile(`(?i)^amazon$`),
	regexp.MustCompile(`(?i)amazon\s+link`),
	regexp.MustCompile(`^\d+$`),
}

// entityReplacer decodes the named and numeric HTML entities that show up in
// episode-page anchor text.
var entityReplacer = strings.NewReplacer(
	"&#8216;", "‘",
	"&#8217;", "’",
	"&#8220;", "“",
	"&#8221;", "”",
	"&lsquo;", "‘",
	"&rsquo;", "’",
	"&ldquo;", "“",
	"&rdquo;", "”",
	"&#8211;", "–",
	"&#8212;", "—",
	"&ndash;", "–",
	"&mdash;", "—",
	"&#8230;", "…",
	"&hellip;", "…",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&nbsp;", " ",
	"&#160;", " ",
	"&amp;", "&",
)

// DecodeEntities replaces common HTML character entities with their runes.
// Single pass, so "&amp;lt;" decodes to "&lt;" and no further.
func DecodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// Sanitize cleans a raw title or rejects it. Rejections are expected and
// frequent; callers log and skip. Sanitize is idempotent: re-sanitizing an
// accepted title returns it unchanged.
func Sanitize(raw string) (string, error) {
	if raw == "" {
		return "", eris.New("titles: empty title")
	}
	if raw == model.SentinelTitle {
		return "", eris.New("titles: placeholder title")
	}
	if utf8.RuneCountInString(strings.TrimSpace(raw)) < 3 {
		return "", eris.Errorf("titles: too short %q", raw)
	}

	cleaned := attrFragmentRe.ReplaceAllString(raw, "")
	cleaned = affiliateTagRe.ReplaceAllString(cleaned, "")
	cleaned = spaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if utf8.RuneCountInString(cleaned) < 3 {
		return "", eris.Errorf("titles: too short after cleaning %q", raw)
	}
	if numericRe.MatchString(cleaned) {
		return "", eris.Errorf("titles: purely numeric %q", raw)
	}
	return cleaned, nil
}

// IsGeneric reports whether a title is a call-to-action rather than a real
// book title. Generic titles are kept only until dedup finds a better one.
func IsGeneric(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, re := range genericRes {
		if re.MatchString(t) {
			return true
		}
	}
	return utf8.RuneCountInString(t) < 5
}

// NormalizeKey produces the grouping key for title-based dedup: entities
// decoded, lower-cased, whitespace trimmed.
func NormalizeKey(title string) string {
	return strings.ToLower(strings.TrimSpace(DecodeEntities(title)))
}
