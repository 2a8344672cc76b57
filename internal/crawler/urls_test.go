package crawler

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"xwlb/internal/config"
)

func testBuilder() *URLBuilder {
	return NewURLBuilder(config.SourcesConfig{
		PrimaryBase: "https://cn.govopendata.com/xinwenlianbo",
		LegacyBase:  "http://mrxwlb.com",
	})
}

func TestDirectoryURL(t *testing.T) {
	b := testBuilder()
	d := time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local)

	if got := b.DirectoryURL(d, true); got != "http://mrxwlb.com/2025/01/07/" {
		t.Errorf("zero-padded = %s", got)
	}

	if got := b.DirectoryURL(d, false); got != "http://mrxwlb.com/2025/1/7/" {
		t.Errorf("unpadded = %s", got)
	}
}

func TestArticleURL(t *testing.T) {
	b := testBuilder()
	d := time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local)

	for _, zeroPadded := range []bool{true, false} {
		got := b.ArticleURL(d, zeroPadded)

		if !strings.HasSuffix(got, "/") {
			t.Errorf("article URL should end in a slash: %s", got)
		}

		decoded, err := url.QueryUnescape(got)
		if err != nil {
			t.Fatalf("article URL not decodable: %v", err)
		}

		// The Chinese date segment is always two-digit, even in the
		// unpadded numeric shape.
		if !strings.Contains(decoded, "2025年01月07日新闻联播文字版") {
			t.Errorf("decoded article URL = %s", decoded)
		}
	}

	if !strings.HasPrefix(b.ArticleURL(d, true), "http://mrxwlb.com/2025/01/07/") {
		t.Error("zero-padded article URL should use padded numeric segments")
	}

	if !strings.HasPrefix(b.ArticleURL(d, false), "http://mrxwlb.com/2025/1/7/") {
		t.Error("unpadded article URL should use unpadded numeric segments")
	}
}

func TestPrimaryURL(t *testing.T) {
	b := testBuilder()
	d := time.Date(2025, 1, 21, 0, 0, 0, 0, time.Local)

	if got := b.PrimaryURL(d); got != "https://cn.govopendata.com/xinwenlianbo/20250121/" {
		t.Errorf("PrimaryURL = %s", got)
	}
}

func TestLegacyHost(t *testing.T) {
	if got := testBuilder().LegacyHost(); got != "mrxwlb.com" {
		t.Errorf("LegacyHost = %s", got)
	}
}

func TestTrailingSlashOnBases(t *testing.T) {
	b := NewURLBuilder(config.SourcesConfig{
		PrimaryBase: "https://cn.govopendata.com/xinwenlianbo/",
		LegacyBase:  "http://mrxwlb.com/",
	})
	d := time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local)

	if got := b.DirectoryURL(d, true); got != "http://mrxwlb.com/2025/01/07/" {
		t.Errorf("trailing slash on base should not double: %s", got)
	}
}
