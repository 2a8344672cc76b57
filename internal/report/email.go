package report

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// summaryLength caps each news section's teaser in the email body.
const summaryLength = 280

var (
	dateLineRe  = regexp.MustCompile(`\*\*日期\*\*:\s*(.+)`)
	crawlTimeRe = regexp.MustCompile(`\*\*爬取时间\*\*:\s*(.+)`)
	sourceURLRe = regexp.MustCompile(`\*URL:\s*(.+?)\*`)
	sectionRe   = regexp.MustCompile(`(?m)^## (\d+)\.\s+(.+)$`)
)

// NewsSection is one numbered story extracted from a saved transcript file.
type NewsSection struct {
	Number  int
	Title   string
	Summary string
	Content string
}

// ParsedNews is the digest-relevant content of one saved transcript file.
type ParsedNews struct {
	Title     string
	Date      string
	CrawlTime string
	SourceURL string
	Sections  []NewsSection
}

// ParseNewsFile extracts title, metadata and the numbered news sections from
// a persisted transcript document. Files without numbered sections yield an
// empty section list; the caller decides whether that is worth mailing.
func ParseNewsFile(content string) ParsedNews {
	p := ParsedNews{Date: "未知", CrawlTime: "未知"}

	lines := strings.SplitN(content, "\n", 2)
	p.Title = strings.TrimSpace(strings.TrimPrefix(lines[0], "# "))

	if m := dateLineRe.FindStringSubmatch(content); m != nil {
		p.Date = strings.TrimSpace(m[1])
	}

	if m := crawlTimeRe.FindStringSubmatch(content); m != nil {
		p.CrawlTime = strings.TrimSpace(m[1])
	}

	if m := sourceURLRe.FindStringSubmatch(content); m != nil {
		p.SourceURL = strings.TrimSpace(m[1])
	}

	matches := sectionRe.FindAllStringSubmatchIndex(content, -1)

	for i, m := range matches {
		title := content[m[4]:m[5]]

		bodyStart := m[1]
		bodyEnd := len(content)

		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		}

		body := content[bodyStart:bodyEnd]
		// Cut at the section separator; for the last section this also
		// drops the file's source footer.
		if idx := strings.Index(body, "\n---\n"); idx >= 0 {
			body = body[:idx]
		}

		body = strings.TrimSpace(body)

		p.Sections = append(p.Sections, NewsSection{
			Number:  i + 1,
			Title:   title,
			Summary: truncateRunes(body, summaryLength),
			Content: body,
		})
	}

	return p
}

// RenderEmail produces the self-contained HTML digest for one parsed
// transcript.
func RenderEmail(p ParsedNews) string {
	var items strings.Builder

	for _, section := range p.Sections {
		items.WriteString(`            <div class="news-item">
                <span class="news-number">`)
		items.WriteString(strconv.Itoa(section.Number))
		items.WriteString(`</span>
                <div class="news-body">
                    <div class="news-title">`)
		items.WriteString(html.EscapeString(section.Title))
		items.WriteString(`</div>
                    <div class="news-content">`)
		items.WriteString(html.EscapeString(section.Summary))
		items.WriteString(`</div>
                </div>
            </div>
`)
	}

	out := strings.ReplaceAll(emailTemplate, "{DATE}", html.EscapeString(p.Date))
	out = strings.ReplaceAll(out, "{CRAWL_TIME}", html.EscapeString(p.CrawlTime))
	out = strings.ReplaceAll(out, "{SOURCE_URL}", html.EscapeString(p.SourceURL))
	out = strings.ReplaceAll(out, "{NEWS_ITEMS}", items.String())

	return out
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max]) + "..."
}

// emailTemplate is the digest layout; placeholders are replaced verbatim.
const emailTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
    <meta charset="UTF-8">
    <title>新闻联播 {DATE}</title>
    <style>
        body { font-family: "PingFang SC", "Microsoft YaHei", sans-serif; background: #f5f5f5; margin: 0; }
        .container { max-width: 680px; margin: 0 auto; background: #fff; }
        .header { background: #c0392b; color: #fff; padding: 24px; }
        .header h1 { margin: 0; font-size: 22px; }
        .meta { color: #f8d7d3; font-size: 13px; margin-top: 8px; }
        .news-item { display: flex; align-items: flex-start; padding: 16px 24px; border-bottom: 1px solid #eee; }
        .news-number { background: #c0392b; color: #fff; border-radius: 50%; width: 24px; height: 24px; line-height: 24px; text-align: center; font-size: 13px; flex-shrink: 0; margin-right: 12px; }
        .news-body { flex: 1; }
        .news-title { font-weight: bold; font-size: 15px; margin-bottom: 6px; }
        .news-content { color: #555; font-size: 14px; line-height: 1.6; }
        .footer { padding: 16px 24px; color: #999; font-size: 12px; }
        .footer a { color: #c0392b; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>新闻联播 {DATE}</h1>
            <div class="meta">爬取时间: {CRAWL_TIME}</div>
        </div>
{NEWS_ITEMS}
        <div class="footer">
            来源: <a href="{SOURCE_URL}">{SOURCE_URL}</a>
        </div>
    </div>
</body>
</html>
`
