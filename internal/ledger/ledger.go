// Package ledger persists the record of dates with no retrievable transcript.
//
// The ledger's markdown rendering is also its parse format: every mutation
// loads the bullet lines back out of the file, applies the change to the
// full set and rewrites the file wholesale. Single-writer, no locking.
package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"xwlb/pkg/cndate"
)

// bulletRe is the storage schema: one date per bullet line. Any change to
// the rendered bullet shape must keep this parseable.
var bulletRe = regexp.MustCompile(`- (\d{4}-\d{2}-\d{2})`)

// Ledger is the on-disk set of missing dates, grouped by month for display.
type Ledger struct {
	path string
}

// New creates a ledger backed by the given file path. The file may not
// exist yet; it is created on first mutation.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

// Dates loads and parses the persisted ledger. A missing file is an empty
// ledger, not an error. Results are deduplicated and sorted ascending.
func (l *Ledger) Dates() ([]time.Time, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	return parseDates(string(data)), nil
}

// Record appends a single date to the ledger.
func (l *Ledger) Record(date time.Time) error {
	return l.BulkAdd([]time.Time{date})
}

// BulkAdd unions the given dates into the ledger and rewrites it. Dates
// already present are a no-op; if nothing new is added the file is left
// untouched.
func (l *Ledger) BulkAdd(dates []time.Time) error {
	if len(dates) == 0 {
		return nil
	}

	existing, err := l.Dates()
	if err != nil {
		return err
	}

	seen := make(map[string]bool, len(existing))
	for _, d := range existing {
		seen[dayKey(d)] = true
	}

	added := false

	for _, d := range dates {
		if !seen[dayKey(d)] {
			existing = append(existing, truncate(d))
			seen[dayKey(d)] = true
			added = true
		}
	}

	if !added {
		return nil
	}

	return l.write(existing)
}

// Remove deletes a date from the ledger; no-op if the date is not present.
func (l *Ledger) Remove(date time.Time) error {
	existing, err := l.Dates()
	if err != nil {
		return err
	}

	kept := existing[:0]

	for _, d := range existing {
		if dayKey(d) != dayKey(date) {
			kept = append(kept, d)
		}
	}

	if len(kept) == len(existing) {
		return nil
	}

	return l.write(kept)
}

func (l *Ledger) write(dates []time.Time) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	if err := os.WriteFile(l.path, []byte(render(dates)), 0o644); err != nil {
		return fmt.Errorf("failed to write ledger: %w", err)
	}

	return nil
}

func parseDates(content string) []time.Time {
	matches := bulletRe.FindAllStringSubmatch(content, -1)

	seen := make(map[string]bool, len(matches))

	var dates []time.Time

	for _, m := range matches {
		d, err := time.ParseInLocation("2006-01-02", m[1], time.Local)
		if err != nil {
			continue
		}

		if !seen[m[1]] {
			seen[m[1]] = true
			dates = append(dates, d)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	return dates
}

// render produces the full ledger document, grouped by year-month with a
// trailing count footer.
func render(dates []time.Time) string {
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var b strings.Builder

	b.WriteString("# 缺失的新闻日期\n\n")
	b.WriteString("本文档记录所有未找到新闻的日期。\n\n")
	fmt.Fprintf(&b, "**更新时间**: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString("## 缺失日期列表\n\n")

	currentMonth := ""

	for _, d := range sorted {
		month := cndate.FormatMonth(d)
		if month != currentMonth {
			if currentMonth != "" {
				b.WriteString("\n")
			}

			fmt.Fprintf(&b, "### %s\n\n", month)
			currentMonth = month
		}

		fmt.Fprintf(&b, "- %s (%s)\n", d.Format("2006-01-02"), cndate.Format(d))
	}

	b.WriteString("\n---\n")
	fmt.Fprintf(&b, "\n**总计**: %d 个日期缺失新闻\n", len(sorted))

	return b.String()
}

func truncate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
}

func dayKey(d time.Time) string {
	return d.Format("2006-01-02")
}
