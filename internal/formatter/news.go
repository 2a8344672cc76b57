// Package formatter reshapes raw transcript text into structured markdown.
//
// The source sites render each semantic paragraph and heading on its own
// line without marking which is which. The scanner below reconstructs the
// structure from length, punctuation and Chinese-language convention cues.
// It is best-effort: ambiguous input degrades to one paragraph per line.
package formatter

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Section banner markers. Matched by substring, emitted verbatim.
var (
	summaryMarkers = []string{"今日新闻联播主要内容", "新闻联播主要内容"}
	detailMarkers  = []string{"以下为详细的文字版全文", "以下为详细"}
)

var (
	sentenceEndRe = regexp.MustCompile(`[。！？；]$`)
	cnEnumRe      = regexp.MustCompile(`^[一二三四五六七八九十]+[、.]`)
	arabicEnumRe  = regexp.MustCompile(`^\d+[、.]`)
	bracketRe     = regexp.MustCompile(`^(【.*】|「.*」)`)
	parenRe       = regexp.MustCompile(`^[（(].*[）)]$`)
	monthDayRe    = regexp.MustCompile(`\d+月\d+日`)
	timeWordRe    = regexp.MustCompile(`当地时间|今天\(|昨日\(`)
	// contextRe marks a line as paragraph-like: a heading candidate above it
	// is confirmed when the following line matches this or is long.
	contextRe = regexp.MustCompile(`\d+月\d+日|当地时间|今天\(|国家|国务院|中共中央|全国|教育部|工业和信息化部|市场监管总局`)
)

// isHeadingShape reports whether a line has the shape of a news heading:
// moderate length, no sentence-final punctuation, no enumerator prefix.
func isHeadingShape(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < 8 || n > 60 {
		return false
	}

	if sentenceEndRe.MatchString(line) {
		return false
	}

	return !cnEnumRe.MatchString(line) && !arabicEnumRe.MatchString(line)
}

func containsAny(line string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return true
		}
	}

	return false
}

// rule pairs a predicate with its action. The scanner evaluates rules
// top-to-bottom per non-blank line and applies the first match.
type rule struct {
	name    string
	applies func(line string) bool
	apply   func(line string)
}

type scanner struct {
	lines     []string // all lines, trimmed, for lookahead
	idx       int
	out       []string
	paragraph []string

	inSummary         bool
	inDetail          bool
	nextLineIsHeading bool
	prevLine          string

	rules []rule
}

func newScanner(lines []string) *scanner {
	s := &scanner{lines: lines}

	s.rules = []rule{
		{
			name: "summary banner",
			applies: func(line string) bool {
				return containsAny(line, summaryMarkers)
			},
			apply: func(line string) {
				s.flush()
				s.emitBlock(line)
				s.inSummary = true
				s.prevLine = line
			},
		},
		{
			name: "detail banner",
			applies: func(line string) bool {
				return containsAny(line, detailMarkers)
			},
			apply: func(line string) {
				s.flush()
				if s.inSummary {
					s.out = append(s.out, "")
				}
				s.emitBlock(line)
				s.inSummary = false
				s.inDetail = true
				s.nextLineIsHeading = true
				s.prevLine = line
			},
		},
		{
			name: "summary bullet",
			applies: func(string) bool {
				return s.inSummary && !s.inDetail
			},
			apply: func(line string) {
				s.out = append(s.out, "* "+line)
			},
		},
		{
			name: "armed heading",
			applies: func(line string) bool {
				return s.inDetail && s.nextLineIsHeading && isHeadingShape(line)
			},
			apply: func(line string) {
				s.flush()
				s.emitBlock("### " + line)
				s.nextLineIsHeading = false
				s.prevLine = line
			},
		},
		{
			name: "duplicate line",
			applies: func(line string) bool {
				// The legacy site renders some lines twice in a row.
				return s.inDetail && line == s.prevLine
			},
			apply: func(string) {},
		},
		{
			name: "bracket heading",
			applies: func(line string) bool {
				return s.inDetail && bracketRe.MatchString(line)
			},
			apply: func(line string) {
				s.flush()
				s.emitBlock("## " + line)
				s.prevLine = line
			},
		},
		{
			name: "enumerated heading",
			applies: func(line string) bool {
				return s.inDetail && (arabicEnumRe.MatchString(line) || parenRe.MatchString(line))
			},
			apply: func(line string) {
				s.flush()
				s.emitBlock("### " + line)
				s.prevLine = line
			},
		},
		{
			name: "lookahead heading",
			applies: func(line string) bool {
				if !s.inDetail || !isHeadingShape(line) {
					return false
				}

				if monthDayRe.MatchString(line) || timeWordRe.MatchString(line) {
					return false
				}

				next := s.nextNonBlank()

				return next != "" && (contextRe.MatchString(next) || utf8.RuneCountInString(next) > 50)
			},
			apply: func(line string) {
				s.flush()
				s.emitBlock("### " + line)
				s.prevLine = line
			},
		},
		{
			name: "detail paragraph",
			applies: func(string) bool {
				return s.inDetail
			},
			apply: func(line string) {
				s.flush()
				s.emitBlock(line)
				s.prevLine = line
			},
		},
		{
			name: "generic paragraph",
			applies: func(string) bool {
				return true
			},
			apply: func(line string) {
				s.flush()
				s.emitBlock(line)
			},
		},
	}

	return s
}

// flush joins buffered fragments into one paragraph line and emits it.
func (s *scanner) flush() {
	if len(s.paragraph) == 0 {
		return
	}

	s.out = append(s.out, strings.Join(s.paragraph, " "), "")
	s.paragraph = nil
}

// emitBlock emits a line followed by a blank separator.
func (s *scanner) emitBlock(line string) {
	s.out = append(s.out, line, "")
}

// nextNonBlank returns the next non-blank line after the current one.
func (s *scanner) nextNonBlank() string {
	for i := s.idx + 1; i < len(s.lines); i++ {
		if s.lines[i] != "" {
			return s.lines[i]
		}
	}

	return ""
}

// FormatNews converts raw extracted transcript text into markdown with
// blank-line-separated blocks, headings and summary bullets. It never fails:
// formatting is deterministic and empty input yields empty output.
func FormatNews(content string) string {
	raw := strings.Split(content, "\n")

	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}

	s := newScanner(lines)

	for i, line := range lines {
		s.idx = i

		if line == "" {
			s.flush()

			continue
		}

		for _, r := range s.rules {
			if r.applies(line) {
				r.apply(line)

				break
			}
		}
	}

	// Final paragraph has no trailing separator.
	if len(s.paragraph) > 0 {
		s.out = append(s.out, strings.Join(s.paragraph, " "))
	}

	return collapseBlankLines(s.out)
}

// collapseBlankLines reduces runs of blank lines to a single one and drops
// leading/trailing blanks.
func collapseBlankLines(lines []string) string {
	var result []string

	prevEmpty := false

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !prevEmpty && len(result) > 0 {
				result = append(result, "")
				prevEmpty = true
			}

			continue
		}

		result = append(result, line)
		prevEmpty = false
	}

	for len(result) > 0 && result[len(result)-1] == "" {
		result = result[:len(result)-1]
	}

	return strings.Join(result, "\n")
}
