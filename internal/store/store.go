// Package store handles path derivation and persistence of crawled files.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"xwlb/internal/models"
)

// Store writes news and report markdown files under their base directories.
// A date is considered captured iff its news file exists, regardless of
// which source produced it.
type Store struct {
	newsDir    string
	reportsDir string
}

// New creates a store. Directories are created lazily on first write.
func New(newsDir, reportsDir string) *Store {
	return &Store{
		newsDir:    newsDir,
		reportsDir: reportsDir,
	}
}

// NewsPath returns the news file path for a date: <newsDir>/YYYYMMDD.md.
func (s *Store) NewsPath(date time.Time) string {
	return filepath.Join(s.newsDir, date.Format("20060102")+".md")
}

// ReportPath returns the report file path for a date: <reportsDir>/YYYY-MM-DD.md.
func (s *Store) ReportPath(date time.Time) string {
	return filepath.Join(s.reportsDir, date.Format("2006-01-02")+".md")
}

// Exists reports whether the news file for a date is already on disk.
func (s *Store) Exists(date time.Time) bool {
	_, err := os.Stat(s.NewsPath(date))

	return err == nil
}

// WriteNews persists a news item under its resolved date and returns the
// written path.
func (s *Store) WriteNews(item models.NewsItem) (string, error) {
	if err := os.MkdirAll(s.newsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create news directory: %w", err)
	}

	path := s.NewsPath(item.Date)

	if err := os.WriteFile(path, []byte(item.ToMarkdown()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write news file: %w", err)
	}

	return path, nil
}

// ReadNews returns the persisted markdown for a date.
func (s *Store) ReadNews(date time.Time) (string, error) {
	data, err := os.ReadFile(s.NewsPath(date))
	if err != nil {
		return "", fmt.Errorf("failed to read news file: %w", err)
	}

	return string(data), nil
}

// WriteReport persists a report document for a date and returns the path.
func (s *Store) WriteReport(date time.Time, content string) (string, error) {
	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	path := s.ReportPath(date)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}
