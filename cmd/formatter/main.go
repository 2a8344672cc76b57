// Package main provides the monthly archive tool: it merges the daily
// transcript files of each month into one signed summary document.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"xwlb/internal/config"
	"xwlb/internal/validator"
	"xwlb/pkg/metadata"
)

// newsFileRe matches daily transcript filenames: YYYYMMDD.md.
var newsFileRe = regexp.MustCompile(`^(\d{4})(\d{2})(\d{2})\.md$`)

func main() {
	configFile := flag.String("config", "configs/crawler.yaml", "Path to YAML configuration file")
	monthFlag := flag.String("month", "", "Only merge one month (YYYY-MM); default all months")
	verify := flag.Bool("verify", false, "Verify integrity of existing archives instead of merging")
	validate := flag.Bool("validate", true, "Validate transcript files while merging")

	flag.Parse()

	_ = godotenv.Load()

	cfg := loadConfig(*configFile)

	if *verify {
		verifyArchives(cfg)

		return
	}

	months, err := collectMonthlyFiles(cfg.Paths.NewsDir, *monthFlag)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	if len(months) == 0 {
		fmt.Println("没有找到新闻文件")

		return
	}

	fmt.Printf("按月份分组：%d 个月份\n\n", len(months))

	tv := validator.New(cfg)

	monthKeys := make([]string, 0, len(months))
	for month := range months {
		monthKeys = append(monthKeys, month)
	}

	sort.Strings(monthKeys)

	for _, month := range monthKeys {
		files := months[month]

		outPath, err := mergeMonth(cfg, tv, month, files, *validate)
		if err != nil {
			fmt.Printf("  ✗ %s: %v\n", month, err)

			continue
		}

		fmt.Printf("  ✓ [%s] 整合 %d 个文件 → %s\n", month, len(files), filepath.Base(outPath))
	}

	fmt.Println("\n✨ 所有月份新闻汇总完成！")
}

func loadConfig(path string) *config.Config {
	if _, err := os.Stat(path); err != nil {
		return config.Default()
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	return cfg
}

// collectMonthlyFiles groups daily transcript files by YYYYMM key. With a
// month filter (YYYY-MM) only that month is returned.
func collectMonthlyFiles(newsDir, monthFilter string) (map[string][]string, error) {
	entries, err := os.ReadDir(newsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read news directory: %w", err)
	}

	filterKey := strings.ReplaceAll(monthFilter, "-", "")

	months := make(map[string][]string)

	for _, entry := range entries {
		if entry.IsDir() || !newsFileRe.MatchString(entry.Name()) {
			continue
		}

		key := entry.Name()[:6]
		if filterKey != "" && key != filterKey {
			continue
		}

		months[key] = append(months[key], filepath.Join(newsDir, entry.Name()))
	}

	for _, files := range months {
		sort.Strings(files)
	}

	return months, nil
}

// mergeMonth builds and writes one signed monthly archive.
func mergeMonth(cfg *config.Config, tv *validator.TranscriptValidator, month string, files []string, validate bool) (string, error) {
	year, monthNum := month[:4], month[4:6]

	var b strings.Builder

	fmt.Fprintf(&b, "# %s年%s月新闻汇总\n\n", year, monthNum)
	fmt.Fprintf(&b, "整理时间：%s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "总计新闻日期：%d 天\n\n", len(files))
	b.WriteString("---\n")

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("    ✗ 错误读取 %s: %v\n", filepath.Base(path), err)

			continue
		}

		if validate {
			result := tv.Validate(string(data))
			if !result.IsValid {
				fmt.Printf("    ⚠ %s: %s\n", filepath.Base(path), result)
				result.PrintErrors()
			}
		}

		stem := strings.TrimSuffix(filepath.Base(path), ".md")
		formatted := fmt.Sprintf("%s-%s-%s", stem[:4], stem[4:6], stem[6:8])

		fmt.Fprintf(&b, "\n## %s\n\n", formatted)
		b.Write(data)
		b.WriteString("\n\n---\n")
	}

	signed := metadata.Sign(b.String(), len(files))

	if err := os.MkdirAll(cfg.Paths.ReportsDir, 0o755); err != nil {
		return "", err
	}

	outPath := filepath.Join(cfg.Paths.ReportsDir, fmt.Sprintf("%s年%s月新闻汇总.md", year, monthNum))
	if err := os.WriteFile(outPath, []byte(signed), 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive: %w", err)
	}

	return outPath, nil
}

// verifyArchives checks every signed archive in the reports directory
// against its embedded hash.
func verifyArchives(cfg *config.Config) {
	matches, err := filepath.Glob(filepath.Join(cfg.Paths.ReportsDir, "*新闻汇总.md"))
	if err != nil || len(matches) == 0 {
		fmt.Println("没有找到汇总文件")

		return
	}

	tv := validator.New(cfg)

	failed := 0

	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(path), err)
			failed++

			continue
		}

		result := tv.ValidateIntegrity(string(data))
		if result.IsValid {
			fmt.Printf("  ✓ %s\n", filepath.Base(path))
		} else {
			fmt.Printf("  ✗ %s: %s\n", filepath.Base(path), result)
			result.PrintErrors()

			failed++
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
