package crawler

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"xwlb/internal/config"
	"xwlb/pkg/cndate"
)

// URLBuilder constructs candidate URLs for a date across both providers.
// The legacy site is inconsistent about zero-padding month and day in its
// path segments, so callers try zeroPadded=true first, then false.
type URLBuilder struct {
	primaryBase string
	legacyBase  string
}

// NewURLBuilder creates a builder from the configured source bases.
func NewURLBuilder(sources config.SourcesConfig) *URLBuilder {
	return &URLBuilder{
		primaryBase: strings.TrimRight(sources.PrimaryBase, "/"),
		legacyBase:  strings.TrimRight(sources.LegacyBase, "/"),
	}
}

// DirectoryURL returns the legacy listing page for a date.
func (b *URLBuilder) DirectoryURL(date time.Time, zeroPadded bool) string {
	if zeroPadded {
		return fmt.Sprintf("%s/%d/%02d/%02d/", b.legacyBase, date.Year(), date.Month(), date.Day())
	}

	return fmt.Sprintf("%s/%d/%d/%d/", b.legacyBase, date.Year(), date.Month(), date.Day())
}

// ArticleURL returns the legacy single-article page for a date. The Chinese
// date in the final path segment is always two-digit, regardless of how the
// numeric segments are padded.
func (b *URLBuilder) ArticleURL(date time.Time, zeroPadded bool) string {
	segment := url.PathEscape(cndate.Format(date) + "新闻联播文字版")

	return b.DirectoryURL(date, zeroPadded) + segment + "/"
}

// PrimaryURL returns the primary provider page for a date.
func (b *URLBuilder) PrimaryURL(date time.Time) string {
	return fmt.Sprintf("%s/%s/", b.primaryBase, date.Format("20060102"))
}

// LegacyHost returns the hostname of the legacy provider, used by the link
// extractor's host heuristic.
func (b *URLBuilder) LegacyHost() string {
	parsed, err := url.Parse(b.legacyBase)
	if err != nil {
		return ""
	}

	return parsed.Host
}
