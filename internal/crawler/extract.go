package crawler

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"xwlb/pkg/cndate"
)

// contentSelectors is the ordered list of containers tried when locating
// the article body. Earlier entries win.
var contentSelectors = []string{
	"div.entry-content",
	"div.post-content",
	"div.content",
	"article",
	"div#content",
	"main",
}

// strippedTags are removed from a content block before text extraction.
var strippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
	"aside":  true,
}

// ExtractTitle returns the page title: first h1, else the title element.
func ExtractTitle(doc *goquery.Document) string {
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		return strings.TrimSpace(h1.Text())
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}

// ExtractArticleText locates the content block via the ordered selector
// list and returns its text, one text node per line. Returns "" when no
// selector matches or the block is empty.
func ExtractArticleText(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		block := doc.Find(selector).First()
		if block.Length() == 0 {
			continue
		}

		if text := blockText(block); text != "" {
			return text
		}
	}

	return ""
}

// ExtractPrimaryContent handles the primary provider's page shape: repeated
// article blocks, each with an h2 title and p paragraphs, concatenated into
// numbered markdown sections joined by horizontal rules. Pages without
// article blocks fall back to the selector list, then the whole body, with
// each candidate gated on minLength.
func ExtractPrimaryContent(doc *goquery.Document, minLength int) string {
	articles := doc.Find("article")
	if articles.Length() > 0 {
		var blocks []string

		articles.Each(func(i int, article *goquery.Selection) {
			title := strings.TrimSpace(article.Find("h2").First().Text())
			if title == "" {
				return
			}

			var parts []string

			article.Find("p").Each(func(_ int, p *goquery.Selection) {
				if t := strings.TrimSpace(p.Text()); t != "" {
					parts = append(parts, t)
				}
			})

			if len(parts) == 0 {
				return
			}

			blocks = append(blocks, fmt.Sprintf("## %d. %s\n\n%s", i+1, title, strings.Join(parts, "\n\n")))
		})

		if len(blocks) > 0 {
			return strings.Join(blocks, "\n\n---\n\n")
		}
	}

	for _, selector := range append(contentSelectors, "body") {
		block := doc.Find(selector).First()
		if block.Length() == 0 {
			continue
		}

		if text := blockText(block); utf8.RuneCountInString(text) >= minLength {
			return text
		}
	}

	return ""
}

// blockText extracts the visible text of a block, skipping boilerplate
// tags, with each text node on its own line. Inline links contribute their
// anchor text like any other node.
func blockText(sel *goquery.Selection) string {
	var parts []string

	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}

	return strings.Join(parts, "\n")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}

		return
	}

	if n.Type == html.ElementNode && strippedTags[n.Data] {
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// TitleForDate builds the fallback transcript title for a date when the
// page exposes none.
func TitleForDate(dateCN string) string {
	return dateCN + "新闻联播文字版"
}

// ResolveDate determines the calendar date of an article page: from its
// title if possible, else from the URL path.
func ResolveDate(title, pageURL string) (time.Time, bool) {
	if d, err := cndate.Parse(title); err == nil {
		return d, true
	}

	return DateFromURL(pageURL)
}
