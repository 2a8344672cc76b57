// Package main provides the scheduled daily crawl job: it sweeps the past
// week, writes a crawl report with a JSON sidecar, an HTML email digest and
// the list of newly created transcript files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"xwlb/internal/config"
	"xwlb/internal/crawler"
	"xwlb/internal/ledger"
	"xwlb/internal/logger"
	"xwlb/internal/models"
	"xwlb/internal/report"
	"xwlb/internal/store"
)

func main() {
	configFile := flag.String("config", "configs/crawler.yaml", "Path to YAML configuration file")
	days := flag.Int("days", 7, "Number of past days to sweep, including today")
	flag.Parse()

	_ = godotenv.Load()

	cfg := loadConfig(*configFile)

	logPath := filepath.Join(cfg.Paths.LogsDir, "daily_"+time.Now().Format("20060102")+".log")

	lg, err := logger.NewWithFile(cfg.Logging.Level, logPath)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}

	lg.Info("daily crawl started", "days", *days)

	st := store.New(cfg.Paths.NewsDir, cfg.Paths.ReportsDir)
	led := ledger.New(cfg.Paths.LedgerFile)
	fetcher := crawler.NewFetcher(cfg, st, led, lg)

	today := time.Now()

	dates := make([]time.Time, 0, *days)
	for i := *days - 1; i >= 0; i-- {
		dates = append(dates, today.AddDate(0, 0, -i))
	}

	lg.Info("target date range",
		"start", dates[0].Format("2006-01-02"),
		"end", dates[len(dates)-1].Format("2006-01-02"))

	rep := report.NewRange(today, dates[0], dates[len(dates)-1])
	delay := cfg.Politeness.BetweenDatesDelay()

	var total models.CrawlStats

	var newItems []models.NewsItem

	for i, date := range dates {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}

		lg.Info("processing date", "date", date.Format("2006-01-02"))

		stats, items := fetcher.CrawlDate(date)
		total.Add(stats)

		for _, item := range items {
			rep.AddSuccess(item)
			newItems = append(newItems, item)
		}

		if stats.Failed > 0 {
			rep.AddFailed(date)
		}

		if stats.Skipped > 0 {
			rep.AddSkipped(stats.Skipped)
		}
	}

	if err := writeNewFilesList(cfg, st, newItems); err != nil {
		lg.Error("failed to write new-files list", "error", err)
	}

	reportPath, err := rep.Save(st)
	if err != nil {
		lg.Error("failed to save daily report", "error", err)
	} else {
		lg.Info("daily report saved", "path", reportPath)
	}

	if err := writeEmailDigest(cfg, st, newItems); err != nil {
		lg.Error("failed to write email digest", "error", err)
	}

	lg.Info("daily crawl finished",
		"success", total.Success, "failed", total.Failed, "skipped", total.Skipped)

	for _, item := range newItems {
		lg.Info("new transcript", "date", item.Date.Format("2006-01-02"), "url", item.URL)
	}
}

func loadConfig(path string) *config.Config {
	if _, err := os.Stat(path); err != nil {
		return config.Default()
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// writeNewFilesList records the transcript files created in this run, one
// path per line, for downstream automation to pick up.
func writeNewFilesList(cfg *config.Config, st *store.Store, items []models.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	seen := make(map[string]bool)

	var lines []string

	for _, item := range items {
		path := st.NewsPath(item.Date)
		if !seen[path] {
			seen[path] = true
			lines = append(lines, path)
		}
	}

	listPath := filepath.Join(filepath.Dir(cfg.Paths.NewsDir), "new_files.txt")

	return os.WriteFile(listPath, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}

// writeEmailDigest renders the HTML digest for the newest transcript saved
// in this run. Runs with nothing new skip the digest.
func writeEmailDigest(cfg *config.Config, st *store.Store, items []models.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	newest := items[0]
	for _, item := range items[1:] {
		if item.Date.After(newest.Date) {
			newest = item
		}
	}

	content, err := st.ReadNews(newest.Date)
	if err != nil {
		return fmt.Errorf("failed to read transcript for digest: %w", err)
	}

	html := report.RenderEmail(report.ParseNewsFile(content))

	if err := os.MkdirAll(cfg.Paths.ReportsDir, 0o755); err != nil {
		return err
	}

	digestPath := filepath.Join(cfg.Paths.ReportsDir, "mail_"+newest.Date.Format("20060102")+".html")

	return os.WriteFile(digestPath, []byte(html), 0o644)
}
