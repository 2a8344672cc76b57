package crawler

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"xwlb/internal/config"
	"xwlb/internal/formatter"
	"xwlb/internal/ledger"
	"xwlb/internal/logger"
	"xwlb/internal/models"
	"xwlb/internal/store"
	"xwlb/pkg/cndate"
)

// ErrNoDate indicates an article page whose date could not be resolved
// from its title, URL or the caller's context.
var ErrNoDate = errors.New("could not resolve article date")

// Fetcher orchestrates retrieval for one date at a time: primary source,
// then the legacy article URL in both padding shapes with retries, then the
// legacy directory listing. Strictly sequential; the retry sleeps are
// blocking delays.
type Fetcher struct {
	cfg      *config.Config
	scraper  *Scraper
	urls     *URLBuilder
	renderer Renderer
	store    *store.Store
	ledger   *ledger.Ledger
	log      *logger.Logger

	// Injected for tests; default to the real clock.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewFetcher creates a fetcher with default dependencies and no rendering
// fallback.
func NewFetcher(cfg *config.Config, st *store.Store, led *ledger.Ledger, log *logger.Logger) *Fetcher {
	return NewFetcherWithDeps(cfg, NewScraper(cfg.Retry.Timeout()), NoopRenderer{}, st, led, log)
}

// NewFetcherWithDeps creates a fetcher with injected dependencies.
func NewFetcherWithDeps(cfg *config.Config, scraper *Scraper, renderer Renderer, st *store.Store, led *ledger.Ledger, log *logger.Logger) *Fetcher {
	return &Fetcher{
		cfg:      cfg,
		scraper:  scraper,
		urls:     NewURLBuilder(cfg.Sources),
		renderer: renderer,
		store:    st,
		ledger:   led,
		log:      log,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// CrawlDate processes one date through to success, failure or skip, and
// returns the items that were persisted. Every failure is converted to a
// count; nothing propagates as an error to the batch caller.
func (f *Fetcher) CrawlDate(date time.Time) (models.CrawlStats, []models.NewsItem) {
	var stats models.CrawlStats

	date = midnight(date)
	today := midnight(f.now())

	if date.After(today) {
		f.log.Warn("date is in the future, transcript not yet broadcast", "date", dayStr(date))
		stats.Failed = 1

		return stats, nil
	}

	if date.Equal(today) && f.now().Hour() < f.cfg.Content.BroadcastHour {
		f.log.Warn("before broadcast hour, skipping today",
			"date", dayStr(date), "broadcast_hour", f.cfg.Content.BroadcastHour)
		stats.Skipped = 1

		return stats, nil
	}

	if f.store.Exists(date) {
		f.log.Info("already captured, skipping", "date", dayStr(date))
		stats.Skipped = 1

		return stats, nil
	}

	if result := f.fetchByDate(date); result.Found() {
		item := models.NewNewsItem(result.Title, result.Content, date, result.SourceURL, "")

		if path, err := f.store.WriteNews(item); err != nil {
			f.log.Error("failed to persist news item", "date", dayStr(date), "error", err)
			stats.Failed = 1
		} else {
			f.log.Info("saved", "path", path, "url", result.SourceURL)
			stats.Success = 1
			f.clearMissing(date)

			return stats, []models.NewsItem{item}
		}

		return stats, nil
	}

	links := f.fetchDirectoryLinks(date)
	if len(links) == 0 {
		f.log.Warn("no news links found for date, recording as missing", "date", dayStr(date))
		f.recordMissing(date)
		stats.Failed = 1

		return stats, nil
	}

	items := f.crawlLinks(date, links)
	if len(items) == 0 {
		if f.anyLinkCaptured(links) {
			f.log.Info("all directory links already captured", "date", dayStr(date))
			stats.Skipped = len(links)
		} else {
			f.log.Warn("directory links yielded no news", "date", dayStr(date))
			stats.Failed = 1
		}

		return stats, nil
	}

	var saved []models.NewsItem

	for _, item := range items {
		path, err := f.store.WriteNews(item)
		if err != nil {
			f.log.Error("failed to persist news item", "date", dayStr(item.Date), "error", err)
			stats.Failed++
			f.recordMissing(item.Date)

			continue
		}

		f.log.Info("saved", "path", path, "date", dayStr(item.Date), "url", item.URL)
		stats.Success++
		f.clearMissing(item.Date)
		saved = append(saved, item)
	}

	return stats, saved
}

// CrawlByURL fetches a single article page directly, bypassing the
// date-driven source chain. Used by the CLI's direct-URL override. The
// date is taken from fallbackDate when the page itself does not reveal one.
func (f *Fetcher) CrawlByURL(link string, fallbackDate *time.Time) (models.NewsItem, error) {
	result := f.fetchByURL(link)
	if !result.Found() {
		if result.Err != nil {
			return models.NewsItem{}, result.Err
		}

		return models.NewsItem{}, ErrNoDate
	}

	date := result.Date
	if date.IsZero() {
		if fallbackDate == nil {
			return models.NewsItem{}, ErrNoDate
		}

		date = midnight(*fallbackDate)
	}

	return models.NewNewsItem(result.Title, result.Content, date, link, ""), nil
}

// fetchByDate runs the per-date source chain: primary provider first, then
// the legacy article URL with zero-padded and unpadded shapes.
func (f *Fetcher) fetchByDate(date time.Time) models.FetchResult {
	f.sleep(f.cfg.Politeness.PreFetchDelay())

	if result := f.fetchPrimary(date); result.Found() {
		return result
	}

	return f.fetchLegacyArticle(date)
}

// fetchPrimary queries the primary provider, falling back to the injected
// renderer on HTTP 403.
func (f *Fetcher) fetchPrimary(date time.Time) models.FetchResult {
	pageURL := f.urls.PrimaryURL(date)
	f.log.Info("trying primary source", "url", pageURL)

	body, status, err := f.scraper.Fetch(pageURL)
	if err != nil {
		f.log.Warn("primary source unreachable", "url", pageURL, "error", err)

		return models.FetchResult{Outcome: models.FetchTransient, Err: err}
	}

	if status == 200 {
		if result := f.extractPrimary(body, date, pageURL); result.Found() {
			return result
		}

		f.log.Warn("primary source had no usable content", "url", pageURL)

		return models.FetchResult{Outcome: models.FetchTransient}
	}

	f.log.Info("primary source returned non-200", "url", pageURL, "status", status)

	if status == 403 {
		rendered, rerr := f.renderer.Render(pageURL, f.cfg.Retry.Timeout())
		if rerr != nil {
			f.log.Warn("rendering fallback failed", "url", pageURL, "error", rerr)

			return models.FetchResult{Outcome: models.FetchTransient, Err: rerr}
		}

		if result := f.extractPrimary(rendered, date, pageURL); result.Found() {
			f.log.Info("rendered fallback succeeded", "url", pageURL)

			return result
		}
	}

	return models.FetchResult{Outcome: models.FetchTransient}
}

func (f *Fetcher) extractPrimary(body string, date time.Time, pageURL string) models.FetchResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return models.FetchResult{Outcome: models.FetchTransient, Err: err}
	}

	content := ExtractPrimaryContent(doc, f.cfg.Content.MinLength)
	if content == "" {
		return models.FetchResult{Outcome: models.FetchTransient}
	}

	title := ExtractTitle(doc)
	if title == "" {
		title = TitleForDate(cndate.Format(date))
	}

	return models.FetchResult{
		Outcome:   models.FetchSuccess,
		Title:     title,
		Content:   formatter.FormatNews(content),
		Date:      date,
		SourceURL: pageURL,
	}
}

// fetchLegacyArticle tries the legacy single-article URL in both padding
// shapes, with a bounded retry loop per shape. A 404 on the zero-padded
// shape falls through to the unpadded one; 404 on both is a definitive
// not-found and the date is recorded as missing.
func (f *Fetcher) fetchLegacyArticle(date time.Time) models.FetchResult {
	for _, zeroPadded := range []bool{true, false} {
		pageURL := f.urls.ArticleURL(date, zeroPadded)
		f.log.Info("trying legacy article", "url", pageURL, "zero_padded", zeroPadded)

	attempts:
		for attempt := 1; attempt <= f.cfg.Retry.MaxAttempts; attempt++ {
			body, status, err := f.scraper.Fetch(pageURL)

			switch {
			case err != nil:
				f.log.Warn("legacy fetch failed", "url", pageURL, "attempt", attempt, "error", err)

				if attempt < f.cfg.Retry.MaxAttempts {
					f.sleep(f.cfg.Retry.Delay())

					continue
				}

				break attempts

			case status == 404:
				if zeroPadded {
					f.log.Info("zero-padded shape 404, trying unpadded")

					break attempts
				}

				f.log.Warn("no transcript for date, both URL shapes 404", "date", dayStr(date))
				f.recordMissing(date)

				return models.FetchResult{Outcome: models.FetchNotFound}

			case status != 200:
				f.log.Warn("legacy fetch non-200", "url", pageURL, "status", status, "attempt", attempt)

				if attempt < f.cfg.Retry.MaxAttempts {
					f.sleep(f.cfg.Retry.Delay())

					continue
				}

				break attempts

			default:
				result := f.extractLegacy(body, date, pageURL)
				if result.Found() {
					return result
				}

				// 200 with no locatable or long-enough content: possibly
				// a selector mismatch, try the other shape but never
				// record the date as permanently missing.
				break attempts
			}
		}
	}

	return models.FetchResult{Outcome: models.FetchTransient}
}

func (f *Fetcher) extractLegacy(body string, date time.Time, pageURL string) models.FetchResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		f.log.Warn("failed to parse legacy page", "url", pageURL, "error", err)

		return models.FetchResult{Outcome: models.FetchTransient, Err: err}
	}

	content := ExtractArticleText(doc)
	if utf8.RuneCountInString(content) < f.cfg.Content.MinLength {
		f.log.Warn("legacy content missing or too short", "url", pageURL, "length", utf8.RuneCountInString(content))

		return models.FetchResult{Outcome: models.FetchTransient}
	}

	title := ExtractTitle(doc)
	if title == "" {
		title = TitleForDate(cndate.Format(date))
	}

	return models.FetchResult{
		Outcome:   models.FetchSuccess,
		Title:     title,
		Content:   formatter.FormatNews(content),
		Date:      date,
		SourceURL: pageURL,
	}
}

// fetchDirectoryLinks fetches the legacy directory listing for a date in
// both padding shapes, a single attempt each, and extracts article links.
func (f *Fetcher) fetchDirectoryLinks(date time.Time) []string {
	for _, zeroPadded := range []bool{true, false} {
		dirURL := f.urls.DirectoryURL(date, zeroPadded)
		f.log.Info("trying directory listing", "url", dirURL, "zero_padded", zeroPadded)

		body, status, err := f.scraper.Fetch(dirURL)
		if err != nil {
			f.log.Warn("directory fetch failed", "url", dirURL, "error", err)

			continue
		}

		if status == 403 {
			f.log.Warn("directory access forbidden", "url", dirURL)
			f.sleep(3 * time.Second)

			continue
		}

		if status != 200 {
			f.log.Warn("directory fetch non-200", "url", dirURL, "status", status)

			continue
		}

		links := ExtractNewsLinks(body, dirURL, f.urls.LegacyHost())
		if len(links) > 0 {
			f.log.Info("extracted news links from directory", "url", dirURL, "count", len(links))

			return links
		}

		f.log.Warn("directory listing had no news links", "url", dirURL)
	}

	return nil
}

// crawlLinks fetches each unique directory link, resolves each article to
// its own calendar date (which may differ from the directory date) and
// dedupes by (title, date). Links whose resolved date is already captured
// are skipped.
func (f *Fetcher) crawlLinks(directoryDate time.Time, links []string) []models.NewsItem {
	sourceURL := f.urls.DirectoryURL(directoryDate, true)

	seen := make(map[string]bool)

	var unique []string

	for _, link := range links {
		normalized := NormalizeLink(link)
		if !seen[normalized] {
			seen[normalized] = true
			unique = append(unique, link)
		}
	}

	f.log.Info("crawling directory links", "unique", len(unique), "raw", len(links))

	seenItems := make(map[string]bool)

	var items []models.NewsItem

	for _, link := range unique {
		// Cheap pre-check from the URL path before fetching.
		if d, ok := DateFromURL(link); ok && f.store.Exists(d) {
			f.log.Info("skipping already captured link", "url", link)

			continue
		}

		result := f.fetchByURL(link)
		if !result.Found() {
			f.log.Warn("failed to crawl link", "url", link, "error", result.Err)

			continue
		}

		if result.Date.IsZero() {
			f.log.Warn("could not resolve article date", "url", link)

			continue
		}

		if f.store.Exists(result.Date) {
			f.log.Info("skipping already captured date", "date", dayStr(result.Date), "url", link)

			continue
		}

		key := result.Title + "|" + dayStr(result.Date)
		if seenItems[key] {
			f.log.Info("skipping duplicate news", "title", result.Title, "date", dayStr(result.Date))

			continue
		}

		seenItems[key] = true
		items = append(items, models.NewNewsItem(result.Title, result.Content, result.Date, link, sourceURL))
	}

	return items
}

// fetchByURL retrieves one article page directly, resolving its date from
// the title or URL path. Single attempt, no retry loop.
func (f *Fetcher) fetchByURL(link string) models.FetchResult {
	body, status, err := f.scraper.Fetch(link)
	if err != nil {
		return models.FetchResult{Outcome: models.FetchTransient, Err: err}
	}

	if status == 404 {
		return models.FetchResult{Outcome: models.FetchNotFound}
	}

	if status != 200 {
		return models.FetchResult{Outcome: models.FetchTransient, Err: ErrUnexpectedStatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return models.FetchResult{Outcome: models.FetchTransient, Err: err}
	}

	title := ExtractTitle(doc)

	content := ExtractArticleText(doc)
	if content == "" {
		return models.FetchResult{Outcome: models.FetchTransient}
	}

	date, _ := ResolveDate(title, link)
	if title == "" && !date.IsZero() {
		title = TitleForDate(cndate.Format(date))
	}

	return models.FetchResult{
		Outcome:   models.FetchSuccess,
		Title:     title,
		Content:   formatter.FormatNews(content),
		Date:      date,
		SourceURL: link,
	}
}

// anyLinkCaptured samples directory links to distinguish "everything was
// already captured" from "nothing could be crawled".
func (f *Fetcher) anyLinkCaptured(links []string) bool {
	sample := links
	if len(sample) > 10 {
		sample = sample[:10]
	}

	for _, link := range sample {
		if d, ok := DateFromURL(link); ok && f.store.Exists(d) {
			return true
		}
	}

	return false
}

func (f *Fetcher) recordMissing(date time.Time) {
	if err := f.ledger.Record(date); err != nil {
		f.log.Error("failed to record missing date", "date", dayStr(date), "error", err)
	}
}

func (f *Fetcher) clearMissing(date time.Time) {
	if err := f.ledger.Remove(date); err != nil {
		f.log.Error("failed to clear missing date", "date", dayStr(date), "error", err)
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func dayStr(t time.Time) string {
	return t.Format("2006-01-02")
}
