package store

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"xwlb/internal/models"
)

func TestPaths(t *testing.T) {
	s := New("/data/news", "/data/reports")
	d := time.Date(2025, 11, 2, 0, 0, 0, 0, time.Local)

	if got := s.NewsPath(d); got != filepath.Join("/data/news", "20251102.md") {
		t.Errorf("NewsPath = %s", got)
	}

	if got := s.ReportPath(d); got != filepath.Join("/data/reports", "2025-11-02.md") {
		t.Errorf("ReportPath = %s", got)
	}
}

func TestWriteNewsAndExists(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "news"), filepath.Join(dir, "reports"))
	d := time.Date(2025, 11, 2, 0, 0, 0, 0, time.Local)

	if s.Exists(d) {
		t.Fatal("file should not exist before write")
	}

	item := models.NewNewsItem(
		"2025年11月02日新闻联播文字版",
		"今天的主要内容如下。",
		d,
		"https://cn.govopendata.com/xinwenlianbo/20251102/",
		"",
	)

	path, err := s.WriteNews(item)
	if err != nil {
		t.Fatalf("WriteNews failed: %v", err)
	}

	if !s.Exists(d) {
		t.Error("Exists should be true after write")
	}

	content, err := s.ReadNews(d)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"# 2025年11月02日 新闻联播",
		"**日期**: 2025年11月02日",
		"**爬取时间**:",
		"今天的主要内容如下。",
		"*来源: cn.govopendata.com*",
		"*URL: https://cn.govopendata.com/xinwenlianbo/20251102/*",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("persisted file at %s missing %q", path, want)
		}
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	s := New(filepath.Join(dir, "news"), filepath.Join(dir, "reports"))
	d := time.Date(2025, 11, 2, 0, 0, 0, 0, time.Local)

	path, err := s.WriteReport(d, "# 报告\n")
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	if filepath.Base(path) != "2025-11-02.md" {
		t.Errorf("report filename = %s", filepath.Base(path))
	}
}
