// Package validator checks persisted transcript documents against the
// expected file shape before they are merged or mailed.
package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"xwlb/internal/config"
	"xwlb/pkg/cndate"
	"xwlb/pkg/metadata"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Line    int
}

// Result contains the outcome of validating one document.
type Result struct {
	Errors   []ValidationError
	Warnings []string
	IsValid  bool
}

var (
	headingRe   = regexp.MustCompile(`^# (\d{4}年\d{2}月\d{2}日) 新闻联播$`)
	dateLineRe  = regexp.MustCompile(`^\*\*日期\*\*:\s*(.+)$`)
	crawlLineRe = regexp.MustCompile(`^\*\*爬取时间\*\*:\s*(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})$`)
)

// TranscriptValidator validates persisted transcript files.
type TranscriptValidator struct {
	cfg *config.Config
}

// New creates a validator using the content rules from cfg.
func New(cfg *config.Config) *TranscriptValidator {
	return &TranscriptValidator{cfg: cfg}
}

// Validate checks a transcript document: title heading, metadata lines,
// the separator frame and a plausible body.
func (v *TranscriptValidator) Validate(content string) *Result {
	result := &Result{
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
	}

	lines := strings.Split(content, "\n")

	headingDate := v.checkHeading(lines, result)
	v.checkMetadataLines(lines, headingDate, result)
	v.checkFrame(content, result)
	v.checkBody(content, result)

	result.IsValid = len(result.Errors) == 0

	return result
}

// ValidateIntegrity checks a signed document against its embedded hash.
// Used for merged monthly archives, which carry a metadata block.
func (v *TranscriptValidator) ValidateIntegrity(content string) *Result {
	result := &Result{IsValid: true}

	if ok, err := metadata.Verify(content); !ok {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "integrity",
			Message: fmt.Sprintf("integrity check failed: %v", err),
		})
	}

	return result
}

// checkHeading validates the first line and returns the heading date for
// cross-checking, or "" when the heading is malformed.
func (v *TranscriptValidator) checkHeading(lines []string, result *Result) string {
	if len(lines) == 0 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "heading",
			Message: "document is empty",
		})

		return ""
	}

	m := headingRe.FindStringSubmatch(lines[0])
	if m == nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "heading",
			Value:   truncate(lines[0], 50),
			Line:    1,
			Message: "first line is not a transcript title heading",
		})

		return ""
	}

	if _, err := cndate.Parse(m[1]); err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "heading",
			Value:   m[1],
			Line:    1,
			Message: "heading date is not a valid calendar date",
		})

		return ""
	}

	return m[1]
}

func (v *TranscriptValidator) checkMetadataLines(lines []string, headingDate string, result *Result) {
	var dateLine, crawlLine bool

	for i, line := range lines {
		if m := dateLineRe.FindStringSubmatch(line); m != nil {
			dateLine = true

			if headingDate != "" && strings.TrimSpace(m[1]) != headingDate {
				result.Errors = append(result.Errors, ValidationError{
					Field:   "date",
					Value:   m[1],
					Line:    i + 1,
					Message: fmt.Sprintf("date line disagrees with heading date %s", headingDate),
				})
			}
		}

		if crawlLineRe.MatchString(line) {
			crawlLine = true
		}
	}

	if !dateLine {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "date",
			Message: "missing 日期 metadata line",
		})
	}

	if !crawlLine {
		result.Warnings = append(result.Warnings, "missing or malformed 爬取时间 metadata line")
	}
}

func (v *TranscriptValidator) checkFrame(content string, result *Result) {
	if strings.Count(content, "\n---\n") < 2 {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "frame",
			Message: "body is not framed by two horizontal rules",
		})
	}

	if !strings.Contains(content, "*来源:") {
		result.Warnings = append(result.Warnings, "missing source footer")
	}
}

func (v *TranscriptValidator) checkBody(content string, result *Result) {
	first := strings.Index(content, "\n---\n")
	last := strings.LastIndex(content, "\n---\n")

	if first < 0 || last <= first {
		return
	}

	body := strings.TrimSpace(content[first+len("\n---\n") : last])

	if body == "" {
		result.Errors = append(result.Errors, ValidationError{
			Field:   "body",
			Message: "transcript body is empty",
		})

		return
	}

	if utf8.RuneCountInString(body) < v.cfg.Content.MinLength {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("body is suspiciously short: %d characters", utf8.RuneCountInString(body)))
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max]) + "..."
}

// String returns a one-line summary of the result.
func (r *Result) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf("%s | Errors: %d | Warnings: %d", status, len(r.Errors), len(r.Warnings))
}

// PrintErrors prints validation errors in readable format.
func (r *Result) PrintErrors() {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Println("❌ Validation Errors:")

	for _, err := range r.Errors {
		if err.Line > 0 {
			fmt.Printf("  Line %d [%s]: %s\n", err.Line, err.Field, err.Message)
		} else {
			fmt.Printf("  [%s]: %s\n", err.Field, err.Message)
		}

		if err.Value != "" {
			fmt.Printf("    Found: %q\n", err.Value)
		}
	}
}

// PrintWarnings prints validation warnings.
func (r *Result) PrintWarnings() {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Println("⚠️  Validation Warnings:")

	for _, warn := range r.Warnings {
		fmt.Printf("  %s\n", warn)
	}
}
