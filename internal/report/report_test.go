package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"xwlb/internal/models"
	"xwlb/internal/store"
)

func fixedReport(t *testing.T, crawlDate time.Time) *Report {
	t.Helper()

	r := New(crawlDate)
	r.now = func() time.Time {
		return time.Date(2025, 1, 8, 9, 0, 0, 0, time.Local)
	}

	return r
}

func TestMarkdownEmptyRun(t *testing.T) {
	r := fixedReport(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local))

	got := r.Markdown()

	for _, want := range []string{
		"# 每日新闻爬取报告 - 2025-01-07",
		"**生成时间**: 2025-01-08 09:00:00",
		"**成功**: 0 条",
		"**失败**: 0 条",
		"**跳过**: 0 条",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}

	for _, absent := range []string{"成功爬取的新闻", "失败的日期", "详细信息"} {
		if strings.Contains(got, absent) {
			t.Errorf("empty run should omit section %q", absent)
		}
	}
}

func TestMarkdownFullRun(t *testing.T) {
	r := fixedReport(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local))

	crawledAt := time.Date(2025, 1, 7, 20, 15, 0, 0, time.Local)

	// Added out of date order; the report must sort by date.
	r.AddSuccess(models.NewsItem{
		Title:     "2025年01月07日新闻联播文字版",
		Date:      time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
		URL:       "http://mrxwlb.com/2025/01/07/post/",
		CrawledAt: crawledAt,
	})
	r.AddSuccess(models.NewsItem{
		Title:     "2025年01月06日新闻联播文字版",
		Date:      time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local),
		URL:       "http://mrxwlb.com/2025/01/06/post/",
		CrawledAt: crawledAt,
	})
	r.AddFailed(time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local))
	r.AddFailed(time.Date(2025, 1, 5, 0, 0, 0, 0, time.Local)) // duplicate
	r.AddSkipped(3)

	got := r.Markdown()

	for _, want := range []string{
		"**成功**: 2 条",
		"**失败**: 2 条",
		"**跳过**: 3 条",
		"| 日期",
		"- 2025-01-05",
		"### 2025-01-06 - 2025年01月06日新闻联播文字版",
		"**爬取时间**: 2025-01-07 20:15:00",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}

	// Duplicate failed date collapses into a single bullet.
	if strings.Count(got, "- 2025-01-05") != 1 {
		t.Errorf("failed date should be listed once:\n%s", got)
	}

	if strings.Index(got, "| 2025-01-06") > strings.Index(got, "| 2025-01-07") {
		t.Errorf("success rows should be sorted by date:\n%s", got)
	}
}

func TestRenderTableAlignment(t *testing.T) {
	lines := renderTable(
		[]string{"日期", "标题"},
		[][]string{
			{"2025-01-07", "新闻联播"},
			{"x", "短"},
		},
	)

	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %d lines", len(lines))
	}

	// All rows render to the same display width.
	want := runewidth.StringWidth(lines[0])
	for i, line := range lines {
		if got := runewidth.StringWidth(line); got != want {
			t.Errorf("line %d width = %d, want %d: %q", i, got, want, line)
		}
	}

	if !strings.HasPrefix(lines[1], "| ---") {
		t.Errorf("second line should be the separator: %q", lines[1])
	}
}

func TestTruncateWidth(t *testing.T) {
	long := strings.Repeat("新闻标题", 20)

	got := truncateWidth(long, maxTitleWidth)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated title should end with ellipsis: %q", got)
	}

	if w := runewidth.StringWidth(got); w > maxTitleWidth {
		t.Errorf("truncated width = %d, want <= %d", w, maxTitleWidth)
	}

	if got := truncateWidth("短标题", maxTitleWidth); got != "短标题" {
		t.Errorf("short title should pass through, got %q", got)
	}
}

func TestSaveWritesMarkdownAndJSON(t *testing.T) {
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "news"), filepath.Join(dir, "reports"))

	r := fixedReport(t, time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local))
	r.AddSuccess(models.NewsItem{
		Title: "标题",
		Date:  time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
		URL:   "http://mrxwlb.com/2025/01/07/post/",
	})
	r.AddFailed(time.Date(2025, 1, 6, 0, 0, 0, 0, time.Local))

	path, err := r.Save(st)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if filepath.Base(path) != "2025-01-07.md" {
		t.Errorf("report filename = %s, want 2025-01-07.md", filepath.Base(path))
	}

	jsonData, err := os.ReadFile(strings.TrimSuffix(path, ".md") + ".json")
	if err != nil {
		t.Fatalf("JSON sidecar missing: %v", err)
	}

	for _, want := range []string{
		`"date": "2025-01-07"`,
		`"success": 1`,
		`"failed": 1`,
		`"url": "http://mrxwlb.com/2025/01/07/post/"`,
		`"failed_dates"`,
	} {
		if !strings.Contains(string(jsonData), want) {
			t.Errorf("JSON sidecar missing %q:\n%s", want, jsonData)
		}
	}
}

func TestNewRangeHeader(t *testing.T) {
	r := NewRange(
		time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
		time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
	)
	r.now = func() time.Time { return time.Date(2025, 1, 8, 9, 0, 0, 0, time.Local) }

	got := r.Markdown()

	for _, want := range []string{
		"# 每日新闻爬取报告 - 2025-01-07（2025-01-01 至 2025-01-07）",
		"**爬取日期范围**: 2025-01-01 至 2025-01-07",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("range report missing %q:\n%s", want, got)
		}
	}
}
