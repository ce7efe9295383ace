// Package episode parses episode page URLs and discovers episodes from the
// site's sitemap.
package episode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Descriptor identifies one episode. Num is the published sequence number
// and is the only field used for mention identity.
type Descriptor struct {
	Num   int
	Title string
	Date  string // ISO YYYY-MM-DD
	URL   string
}

// Episode page URLs look like /episodes/2021/3/7/episode-214-some-slug/
// with one- or two-digit month and day.
var episodeURLRe = regexp.MustCompile(`/episodes/(\d{4})/(\d{1,2})/(\d{1,2})/episode-(\d+)-([^/]+)/?`)

var titleCaser = cases.Title(language.English)

// Parse extracts the episode descriptor from a page URL. Any URL that does
// not match the expected path shape is an input error.
func Parse(rawURL string) (Descriptor, error) {
	m := episodeURLRe.FindStringSubmatch(rawURL)
	if m == nil {
		return Descriptor{}, eris.Errorf("episode: url does not match /episodes/YYYY/M/D/episode-N-slug/: %s", rawURL)
	}

	num, err := strconv.Atoi(m[4])
	if err != nil {
		return Descriptor{}, eris.Wrap(err, "episode: parse episode number")
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])

	return Descriptor{
		Num:   num,
		Title: titleCaser.String(strings.ReplaceAll(m[5], "-", " ")),
		Date:  fmt.Sprintf("%s-%02d-%02d", m[1], month, day),
		URL:   rawURL,
	}, nil
}
