package crawler

import (
	"testing"
	"time"
)

const testDirURL = "http://mrxwlb.com/2025/01/07/"

func TestExtractNewsLinksByDecodedURL(t *testing.T) {
	html := `<html><body>
		<a href="http://mrxwlb.com/2025/01/07/2025%E5%B9%B401%E6%9C%8807%E6%97%A5%E6%96%B0%E9%97%BB%E8%81%94%E6%92%AD%E6%96%87%E5%AD%97%E7%89%88/">link</a>
	</body></html>`

	links := ExtractNewsLinks(html, testDirURL, "mrxwlb.com")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d: %v", len(links), links)
	}
}

func TestExtractNewsLinksByAnchorText(t *testing.T) {
	html := `<html><body>
		<a href="/2025/01/07/some-post/">2025年01月07日新闻联播文字版</a>
	</body></html>`

	links := ExtractNewsLinks(html, testDirURL, "mrxwlb.com")
	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d: %v", len(links), links)
	}

	if links[0] != "http://mrxwlb.com/2025/01/07/some-post/" {
		t.Errorf("relative href should resolve against the page URL: %s", links[0])
	}
}

func TestExtractNewsLinksDeepPathHeuristic(t *testing.T) {
	// No date string or marker anywhere, but a deep article-shaped path on
	// the expected host.
	html := `<html><body>
		<a href="http://mrxwlb.com/2025/01/07/some-long-article-slug/">阅读全文</a>
	</body></html>`

	links := ExtractNewsLinks(html, testDirURL, "mrxwlb.com")
	if len(links) != 1 {
		t.Fatalf("expected deep-path link to be kept, got %v", links)
	}
}

func TestExtractNewsLinksFilters(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "fragment only",
			html: `<a href="#comments">2025年01月07日新闻联播文字版</a>`,
		},
		{
			name: "no date segment in path",
			html: `<a href="http://mrxwlb.com/about/">2025年01月07日新闻联播文字版关于</a>`,
		},
		{
			name: "nav link on expected host",
			html: `<a href="http://mrxwlb.com/2025/01/07/">首页</a>`,
		},
		{
			name: "wrong host without markers",
			html: `<a href="http://other.example.com/2025/01/07/some-long-article-slug/">阅读全文</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := ExtractNewsLinks("<html><body>"+tt.html+"</body></html>", testDirURL, "mrxwlb.com")
			if len(links) != 0 {
				t.Errorf("expected link to be filtered, got %v", links)
			}
		})
	}
}

func TestExtractNewsLinksDedupes(t *testing.T) {
	html := `<html><body>
		<a href="/2025/01/07/post/">2025年01月07日新闻联播文字版</a>
		<a href="/2025/01/07/post/">2025年01月07日新闻联播文字版</a>
	</body></html>`

	links := ExtractNewsLinks(html, testDirURL, "mrxwlb.com")
	if len(links) != 1 {
		t.Errorf("identical links should dedupe, got %v", links)
	}
}

func TestExtractNewsLinksEmptyPage(t *testing.T) {
	if links := ExtractNewsLinks("", testDirURL, "mrxwlb.com"); len(links) != 0 {
		t.Errorf("empty page should yield no links, got %v", links)
	}
}

func TestDateFromURL(t *testing.T) {
	tests := []struct {
		name string
		link string
		want time.Time
		ok   bool
	}{
		{
			name: "padded",
			link: "http://mrxwlb.com/2025/01/07/post/",
			want: time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
			ok:   true,
		},
		{
			name: "unpadded",
			link: "http://mrxwlb.com/2025/1/7/post/",
			want: time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
			ok:   true,
		},
		{
			name: "no date",
			link: "http://mrxwlb.com/about/",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DateFromURL(tt.link)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}

			if ok && !got.Equal(tt.want) {
				t.Errorf("date = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeLink(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://mrxwlb.com/2025/01/07/post/", "http://mrxwlb.com/2025/01/07/post"},
		{"http://mrxwlb.com/2025/01/07/post/?ref=home", "http://mrxwlb.com/2025/01/07/post"},
		{"http://mrxwlb.com/2025/01/07/post", "http://mrxwlb.com/2025/01/07/post"},
	}

	for _, tt := range tests {
		if got := NormalizeLink(tt.in); got != tt.want {
			t.Errorf("NormalizeLink(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
