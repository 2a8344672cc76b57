// Package main provides the command-line crawler for daily broadcast
// transcripts.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
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
	configFile := flag.String("config", "", "Path to YAML configuration file")
	dateFlag := flag.String("date", "today", "Date (YYYY-MM-DD, YYYYMMDD, or today/yesterday/tomorrow)")
	rangeDays := flag.Int("range", 0, "Crawl the last N days")
	startFlag := flag.String("start", "", "Range start date (batch mode)")
	endFlag := flag.String("end", "", "Range end date (batch mode)")
	targetURL := flag.String("url", "", "Crawl a specific article URL directly")
	dryRun := flag.Bool("dry-run", false, "Print candidate URLs without crawling")
	writeReport := flag.Bool("report", false, "Write a crawl report after a batch run")
	showUsage := flag.Bool("help", false, "Show usage information")

	flag.Parse()

	if *showUsage {
		printUsage()
		os.Exit(0)
	}

	// Optional .env for deployment overrides; absence is not an error.
	_ = godotenv.Load()

	cfg := loadConfig(*configFile)

	lg := logger.New(cfg.Logging.Level)

	st := store.New(cfg.Paths.NewsDir, cfg.Paths.ReportsDir)
	led := ledger.New(cfg.Paths.LedgerFile)
	fetcher := crawler.NewFetcher(cfg, st, led, lg)
	urls := crawler.NewURLBuilder(cfg.Sources)

	fmt.Println("🕷️  新闻联播爬虫")
	fmt.Printf("Primary: %s\n", cfg.Sources.PrimaryBase)
	fmt.Printf("Legacy:  %s\n", cfg.Sources.LegacyBase)
	fmt.Println()

	if *targetURL != "" {
		runURLMode(fetcher, st, *targetURL, *dateFlag)

		return
	}

	dates, rangeStart, rangeEnd, err := resolveDates(*dateFlag, *rangeDays, *startFlag, *endFlag)
	if err != nil {
		log.Fatalf("❌ 日期格式错误: %v", err)
	}

	if *dryRun {
		for _, date := range dates {
			fmt.Printf("📂 %s -> %s\n", date.Format("2006-01-02"), urls.DirectoryURL(date, true))
		}

		fmt.Println("(dry-run 模式，未实际爬取)")

		return
	}

	rep := report.NewRange(time.Now(), rangeStart, rangeEnd)
	delay := cfg.Politeness.BetweenDatesDelay()

	var total models.CrawlStats

	var missing []time.Time

	for i, date := range dates {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}

		lg.Info("processing date", "date", date.Format("2006-01-02"))

		stats, items := fetcher.CrawlDate(date)
		total.Add(stats)

		for _, item := range items {
			rep.AddSuccess(item)
		}

		if stats.Failed > 0 {
			missing = append(missing, date)
			rep.AddFailed(date)
		}

		if stats.Skipped > 0 {
			rep.AddSkipped(stats.Skipped)
		}
	}

	if len(missing) > 0 {
		if err := led.BulkAdd(missing); err != nil {
			lg.Error("failed to update missing-date ledger", "error", err)
		}
	}

	if *writeReport {
		path, err := rep.Save(st)
		if err != nil {
			lg.Error("failed to save report", "error", err)
		} else {
			fmt.Printf("📄 报告文件: %s\n", path)
		}
	}

	fmt.Println()
	fmt.Printf("✨ 完成！%s\n", total)
}

// loadConfig resolves configuration from the flag, the default config file
// or built-in defaults, in that order.
func loadConfig(path string) *config.Config {
	if path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			log.Fatalf("❌ Failed to load config: %v", err)
		}

		return cfg
	}

	const defaultConfig = "configs/crawler.yaml"

	if _, err := os.Stat(defaultConfig); err == nil {
		cfg, err := config.Load(defaultConfig)
		if err != nil {
			log.Fatalf("❌ Failed to load default config: %v", err)
		}

		return cfg
	}

	return config.Default()
}

// runURLMode crawls one article page directly and persists it.
func runURLMode(fetcher *crawler.Fetcher, st *store.Store, link, dateFlag string) {
	fmt.Printf("🔗 使用指定URL: %s\n", link)

	var fallback *time.Time

	if dateFlag != "today" {
		d, err := parseDate(dateFlag)
		if err != nil {
			log.Fatalf("❌ 日期格式错误: %v", err)
		}

		fallback = &d
	}

	item, err := fetcher.CrawlByURL(link, fallback)
	if err != nil {
		log.Fatalf("❌ 爬取失败: %v", err)
	}

	path, err := st.WriteNews(item)
	if err != nil {
		log.Fatalf("❌ 保存文件失败: %v", err)
	}

	fmt.Println("✓ 爬取完成！")
	fmt.Printf("文件保存位置: %s\n", path)
	fmt.Printf("使用的日期: %s\n", item.Date.Format("2006-01-02"))
}

// resolveDates turns the date flags into an ordered oldest-to-newest list.
func resolveDates(dateFlag string, rangeDays int, startFlag, endFlag string) ([]time.Time, time.Time, time.Time, error) {
	if rangeDays > 0 {
		dates := make([]time.Time, 0, rangeDays)
		for i := rangeDays - 1; i >= 0; i-- {
			dates = append(dates, time.Now().AddDate(0, 0, -i))
		}

		return dates, dates[0], dates[len(dates)-1], nil
	}

	if startFlag != "" && endFlag != "" {
		start, err := parseDate(startFlag)
		if err != nil {
			return nil, time.Time{}, time.Time{}, fmt.Errorf("invalid start date: %w", err)
		}

		end, err := parseDate(endFlag)
		if err != nil {
			return nil, time.Time{}, time.Time{}, fmt.Errorf("invalid end date: %w", err)
		}

		if start.After(end) {
			return nil, time.Time{}, time.Time{}, fmt.Errorf("start date %s is after end date %s", startFlag, endFlag)
		}

		var dates []time.Time
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}

		return dates, start, end, nil
	}

	d, err := parseDate(dateFlag)
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}

	return []time.Time{d}, d, d, nil
}

// parseDate accepts YYYY-MM-DD, YYYYMMDD and the relative keywords.
func parseDate(s string) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	switch s {
	case "today":
		return time.Now(), nil
	case "yesterday":
		return time.Now().AddDate(0, 0, -1), nil
	case "tomorrow":
		return time.Now().AddDate(0, 0, 1), nil
	}

	layout := "2006-01-02"
	if len(s) == 8 && !strings.Contains(s, "-") {
		layout = "20060102"
	}

	d, err := time.ParseInLocation(layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported date %q (want YYYY-MM-DD, YYYYMMDD, today, yesterday or tomorrow)", s)
	}

	return d, nil
}

func printUsage() {
	fmt.Println("Usage: ./bin/crawler [OPTIONS]")
	fmt.Println()
	fmt.Println("Modes:")
	fmt.Println("  1. Single date:  ./bin/crawler -date 2025-11-22")
	fmt.Println("  2. Last N days:  ./bin/crawler -range 7")
	fmt.Println("  3. Date range:   ./bin/crawler -start 2025-11-20 -end 2025-11-25")
	fmt.Println("  4. Direct URL:   ./bin/crawler -url http://... [-date 2025-11-22]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  ./bin/crawler -config configs/crawler.yaml -date yesterday")
	fmt.Println("  ./bin/crawler -range 7 -report")
	fmt.Println("  ./bin/crawler -start 2025-11-20 -end 2025-11-25 -dry-run")
}
