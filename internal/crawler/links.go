package crawler

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"xwlb/pkg/cndate"
)

// dateSegmentRe matches a /YYYY/M/D/ path segment with 1- or 2-digit month
// and day.
var dateSegmentRe = regexp.MustCompile(`/(\d{4})/(\d{1,2})/(\d{1,2})/`)

// markerRe matches the broadcast/transcript tokens that identify an
// article link.
var markerRe = regexp.MustCompile(`新闻联播|文字版`)

// ExtractNewsLinks finds article links on a legacy directory listing page.
// pageURL is the listing page's own URL, used to resolve relative hrefs and
// as the length baseline for the path-depth heuristic; legacyHost scopes
// that heuristic to the expected site. Returns a deduplicated list of
// absolute URLs; any parse failure yields an empty list.
func ExtractNewsLinks(html, pageURL, legacyHost string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)

	var links []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}

		parsed, err := url.Parse(href)
		if err != nil {
			return
		}

		resolved := base.ResolveReference(parsed).String()

		if !dateSegmentRe.MatchString(resolved) {
			return
		}

		if !isNewsLink(resolved, a.Text(), pageURL, legacyHost) {
			return
		}

		if !seen[resolved] {
			seen[resolved] = true
			links = append(links, resolved)
		}
	})

	return links
}

// isNewsLink applies the three-way keep heuristic: a Chinese date plus a
// transcript marker in the decoded URL or the anchor text, or a deep
// trailing-slash path on the expected host that is meaningfully longer than
// the listing URL itself.
func isNewsLink(link, anchorText, pageURL, legacyHost string) bool {
	decoded := link
	if d, err := url.QueryUnescape(link); err == nil {
		decoded = d
	}

	if cndate.Contains(decoded) && markerRe.MatchString(decoded) {
		return true
	}

	text := strings.TrimSpace(anchorText)
	if cndate.Contains(text) && markerRe.MatchString(text) {
		return true
	}

	return strings.Count(link, "/") >= 5 &&
		strings.HasSuffix(link, "/") &&
		legacyHost != "" &&
		strings.Contains(link, legacyHost) &&
		len(link) > len(pageURL)+10
}

// DateFromURL extracts the calendar date embedded in an article URL path.
func DateFromURL(link string) (time.Time, bool) {
	match := dateSegmentRe.FindStringSubmatch(link)
	if match == nil {
		return time.Time{}, false
	}

	t, err := time.ParseInLocation("2006-1-2", match[1]+"-"+match[2]+"-"+match[3], time.Local)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// NormalizeLink strips the trailing slash and query string so equivalent
// links deduplicate.
func NormalizeLink(link string) string {
	normalized := strings.TrimRight(link, "/")
	if i := strings.Index(normalized, "?"); i >= 0 {
		normalized = normalized[:i]
	}

	return normalized
}
