// Package report generates the per-run crawl report and the HTML email
// digest derived from saved transcripts.
package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-runewidth"

	"xwlb/internal/models"
	"xwlb/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxTitleWidth limits title cells in the success table.
const maxTitleWidth = 50

// Report accumulates the outcomes of one crawl run and renders them as a
// dated markdown report plus a machine-readable JSON sidecar.
type Report struct {
	crawlDate  time.Time
	rangeStart time.Time
	rangeEnd   time.Time
	hasRange   bool

	successItems []models.NewsItem
	failedDates  []time.Time
	stats        models.CrawlStats

	// Injected for tests.
	now func() time.Time
}

// New creates a report for a single-date run.
func New(crawlDate time.Time) *Report {
	return &Report{crawlDate: crawlDate, now: time.Now}
}

// NewRange creates a report for a batch run over [start, end].
func NewRange(crawlDate, start, end time.Time) *Report {
	r := New(crawlDate)
	r.rangeStart = start
	r.rangeEnd = end
	r.hasRange = true

	return r
}

// AddSuccess records a persisted news item.
func (r *Report) AddSuccess(item models.NewsItem) {
	r.successItems = append(r.successItems, item)
	r.stats.Success++
}

// AddFailed records a date that could not be crawled.
func (r *Report) AddFailed(date time.Time) {
	r.failedDates = append(r.failedDates, date)
	r.stats.Failed++
}

// AddSkipped records already-captured dates that were skipped.
func (r *Report) AddSkipped(count int) {
	r.stats.Skipped += count
}

// Stats returns the accumulated counts.
func (r *Report) Stats() models.CrawlStats {
	return r.stats
}

// Markdown renders the full report document.
func (r *Report) Markdown() string {
	reportDate := r.crawlDate.Format("2006-01-02")

	var lines []string

	if r.hasRange {
		lines = append(lines, fmt.Sprintf("# 每日新闻爬取报告 - %s（%s 至 %s）",
			reportDate, r.rangeStart.Format("2006-01-02"), r.rangeEnd.Format("2006-01-02")))
	} else {
		lines = append(lines, "# 每日新闻爬取报告 - "+reportDate)
	}

	lines = append(lines, "", "**生成时间**: "+r.now().Format("2006-01-02 15:04:05"))

	if r.hasRange {
		lines = append(lines, fmt.Sprintf("**爬取日期范围**: %s 至 %s",
			r.rangeStart.Format("2006-01-02"), r.rangeEnd.Format("2006-01-02")), "")
	}

	lines = append(lines,
		"## 📊 统计信息",
		"",
		fmt.Sprintf("- ✅ **成功**: %d 条", r.stats.Success),
		fmt.Sprintf("- ❌ **失败**: %d 条", r.stats.Failed),
		fmt.Sprintf("- ⏭️ **跳过**: %d 条（已存在）", r.stats.Skipped),
		"",
	)

	successItems := r.sortedSuccess()

	if len(successItems) > 0 {
		rows := make([][]string, 0, len(successItems))

		for _, item := range successItems {
			rows = append(rows, []string{
				item.Date.Format("2006-01-02"),
				truncateWidth(item.Title, maxTitleWidth),
				fmt.Sprintf("[%s](%s)", item.URL, item.URL),
			})
		}

		lines = append(lines, "## ✅ 成功爬取的新闻", "")
		lines = append(lines, renderTable([]string{"日期", "标题", "URL"}, rows)...)
		lines = append(lines, "")
	}

	if len(r.failedDates) > 0 {
		lines = append(lines, "## ❌ 失败的日期", "")

		for _, d := range dedupeSorted(r.failedDates) {
			lines = append(lines, "- "+d.Format("2006-01-02"))
		}

		lines = append(lines, "")
	}

	if len(successItems) > 0 {
		lines = append(lines, "## 📝 详细信息", "")

		for _, item := range successItems {
			lines = append(lines,
				fmt.Sprintf("### %s - %s", item.Date.Format("2006-01-02"), item.Title),
				"",
				fmt.Sprintf("- **URL**: [%s](%s)", item.URL, item.URL),
				"- **爬取时间**: "+item.CrawledAt.Format("2006-01-02 15:04:05"),
				"",
			)
		}
	}

	return strings.Join(lines, "\n")
}

// summaryItem is one success entry in the JSON sidecar.
type summaryItem struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// summary is the JSON sidecar document consumed by downstream automation.
type summary struct {
	Date        string            `json:"date"`
	GeneratedAt string            `json:"generated_at"`
	Stats       models.CrawlStats `json:"stats"`
	Success     []summaryItem     `json:"success"`
	FailedDates []string          `json:"failed_dates"`
}

// JSON renders the machine-readable run summary.
func (r *Report) JSON() ([]byte, error) {
	s := summary{
		Date:        r.crawlDate.Format("2006-01-02"),
		GeneratedAt: r.now().Format(time.RFC3339),
		Stats:       r.stats,
		Success:     []summaryItem{},
		FailedDates: []string{},
	}

	for _, item := range r.sortedSuccess() {
		s.Success = append(s.Success, summaryItem{
			Date:  item.Date.Format("2006-01-02"),
			Title: item.Title,
			URL:   item.URL,
		})
	}

	for _, d := range dedupeSorted(r.failedDates) {
		s.FailedDates = append(s.FailedDates, d.Format("2006-01-02"))
	}

	return json.MarshalIndent(s, "", "  ")
}

// Save writes the markdown report and its JSON sidecar next to each other
// in the reports directory. Returns the markdown path.
func (r *Report) Save(st *store.Store) (string, error) {
	path, err := st.WriteReport(r.crawlDate, r.Markdown())
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	data, err := r.JSON()
	if err != nil {
		return "", fmt.Errorf("failed to encode report summary: %w", err)
	}

	jsonPath := strings.TrimSuffix(path, ".md") + ".json"
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save report summary: %w", err)
	}

	return path, nil
}

func (r *Report) sortedSuccess() []models.NewsItem {
	items := make([]models.NewsItem, len(r.successItems))
	copy(items, r.successItems)
	sort.Slice(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })

	return items
}

// renderTable renders a markdown table with display-width aligned columns,
// so CJK cells line up in monospace viewers.
func renderTable(headers []string, rows [][]string) []string {
	colWidths := make([]int, len(headers))

	for i, h := range headers {
		colWidths[i] = runewidth.StringWidth(h)
	}

	for _, row := range rows {
		for i := 0; i < len(row) && i < len(colWidths); i++ {
			if w := runewidth.StringWidth(row[i]); w > colWidths[i] {
				colWidths[i] = w
			}
		}
	}

	for i := range colWidths {
		if colWidths[i] < 3 {
			colWidths[i] = 3
		}
	}

	renderRow := func(cells []string) string {
		var sb strings.Builder

		sb.WriteString("|")

		for i, width := range colWidths {
			content := ""
			if i < len(cells) {
				content = cells[i]
			}

			sb.WriteString(" ")
			sb.WriteString(content)

			if padding := width - runewidth.StringWidth(content); padding > 0 {
				sb.WriteString(strings.Repeat(" ", padding))
			}

			sb.WriteString(" |")
		}

		return sb.String()
	}

	var sep strings.Builder

	sep.WriteString("|")

	for _, width := range colWidths {
		sep.WriteString(" ")
		sep.WriteString(strings.Repeat("-", width))
		sep.WriteString(" |")
	}

	result := []string{renderRow(headers), sep.String()}

	for _, row := range rows {
		result = append(result, renderRow(row))
	}

	return result
}

// truncateWidth shortens s so its display width fits max, appending an
// ellipsis marker when anything was cut.
func truncateWidth(s string, max int) string {
	if runewidth.StringWidth(s) <= max {
		return s
	}

	return runewidth.Truncate(s, max, "...")
}

func dedupeSorted(dates []time.Time) []time.Time {
	seen := make(map[string]bool, len(dates))

	var out []time.Time

	for _, d := range dates {
		key := d.Format("2006-01-02")
		if !seen[key] {
			seen[key] = true
			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })

	return out
}
