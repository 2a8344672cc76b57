// Package models defines the data types shared across the crawler.
package models

import (
	"fmt"
	"net/url"
	"time"

	"xwlb/pkg/cndate"
)

// NewsItem is a single broadcast transcript resolved to a calendar date.
// Immutable after construction; the caller that persists it owns it.
type NewsItem struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Date      time.Time `json:"date"`
	URL       string    `json:"url"`
	SourceURL string    `json:"source_url,omitempty"`
	CrawledAt time.Time `json:"crawled_at"`
}

// NewNewsItem builds a NewsItem, defaulting CrawledAt to now.
func NewNewsItem(title, content string, date time.Time, pageURL, sourceURL string) NewsItem {
	return NewsItem{
		Title:     title,
		Content:   content,
		Date:      date,
		URL:       pageURL,
		SourceURL: sourceURL,
		CrawledAt: time.Now(),
	}
}

// ToMarkdown renders the persisted file format. Downstream report and email
// tooling re-parses this frame, so its shape must stay stable.
func (n NewsItem) ToMarkdown() string {
	dateCN := cndate.Format(n.Date)

	host := ""
	if parsed, err := url.Parse(n.URL); err == nil {
		host = parsed.Host
	}

	return fmt.Sprintf(`# %s 新闻联播

**日期**: %s
**爬取时间**: %s

---

%s

---

*来源: %s*
*URL: %s*
`,
		dateCN,
		dateCN,
		n.CrawledAt.Format("2006-01-02 15:04:05"),
		n.Content,
		host,
		n.URL,
	)
}

// CrawlStats accumulates per-run outcome counts.
type CrawlStats struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Add merges another stats value into this one.
func (s *CrawlStats) Add(other CrawlStats) {
	s.Success += other.Success
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}

// Total returns the number of outcomes counted.
func (s CrawlStats) Total() int {
	return s.Success + s.Failed + s.Skipped
}

// String returns a one-line summary.
func (s CrawlStats) String() string {
	return fmt.Sprintf("success: %d, failed: %d, skipped: %d", s.Success, s.Failed, s.Skipped)
}

// FetchOutcome tags a FetchResult.
type FetchOutcome int

// Fetch outcomes.
const (
	// FetchSuccess carries a title, formatted content and resolved date.
	FetchSuccess FetchOutcome = iota
	// FetchNotFound means the URL shape is permanently empty (404).
	FetchNotFound
	// FetchTransient covers timeouts, connection errors and non-404 failures.
	FetchTransient
)

// FetchResult is the outcome of a single attempt against one URL candidate.
// It is consumed immediately by the fetch driver and never persisted.
type FetchResult struct {
	Outcome   FetchOutcome
	Title     string
	Content   string
	Date      time.Time
	SourceURL string
	Err       error
}

// Found reports whether the result carries usable content.
func (r FetchResult) Found() bool {
	return r.Outcome == FetchSuccess
}
