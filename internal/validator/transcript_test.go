package validator

import (
	"strings"
	"testing"
	"time"

	"xwlb/internal/config"
	"xwlb/internal/models"
	"xwlb/pkg/metadata"
)

func validTranscript() string {
	item := models.NewsItem{
		Title:     "2025年01月07日新闻联播文字版",
		Content:   "今天的新闻内容覆盖了多项议题，每一项都有详细的报道和说明。",
		Date:      time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
		URL:       "http://mrxwlb.com/2025/01/07/post/",
		CrawledAt: time.Date(2025, 1, 7, 20, 30, 0, 0, time.Local),
	}

	return item.ToMarkdown()
}

func newValidator() *TranscriptValidator {
	cfg := config.Default()
	cfg.Content.MinLength = 10

	return New(cfg)
}

func TestValidateWellFormedTranscript(t *testing.T) {
	result := newValidator().Validate(validTranscript())

	if !result.IsValid {
		t.Fatalf("well-formed transcript should pass: %s, errors: %+v", result, result.Errors)
	}

	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestValidateRejectsBadHeading(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty document", ""},
		{"not a heading", "随便一行文字\n"},
		{"wrong heading shape", "# 新闻联播 2025-01-07\n"},
		{"impossible date", "# 2025年13月40日 新闻联播\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := newValidator().Validate(tt.content); result.IsValid {
				t.Error("malformed heading should fail validation")
			}
		})
	}
}

func TestValidateDateDisagreement(t *testing.T) {
	content := strings.Replace(validTranscript(), "**日期**: 2025年01月07日", "**日期**: 2025年01月08日", 1)

	result := newValidator().Validate(content)
	if result.IsValid {
		t.Fatal("date line disagreeing with heading should fail")
	}

	found := false

	for _, e := range result.Errors {
		if e.Field == "date" {
			found = true
		}
	}

	if !found {
		t.Errorf("expected a date field error, got %+v", result.Errors)
	}
}

func TestValidateMissingFrame(t *testing.T) {
	content := "# 2025年01月07日 新闻联播\n\n**日期**: 2025年01月07日\n\n正文但没有分隔线。\n"

	result := newValidator().Validate(content)
	if result.IsValid {
		t.Error("missing horizontal rules should fail")
	}
}

func TestValidateShortBodyWarns(t *testing.T) {
	item := models.NewsItem{
		Content:   "短",
		Date:      time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
		CrawledAt: time.Now(),
	}

	result := newValidator().Validate(item.ToMarkdown())

	if len(result.Warnings) == 0 {
		t.Error("short body should produce a warning")
	}
}

func TestValidateIntegrity(t *testing.T) {
	v := newValidator()

	signed := metadata.Sign("# 2025年01月新闻汇总\n\n内容", 1)

	if result := v.ValidateIntegrity(signed); !result.IsValid {
		t.Errorf("signed document should verify: %s", result)
	}

	if result := v.ValidateIntegrity("没有签名的文档"); result.IsValid {
		t.Error("unsigned document should fail integrity check")
	}

	tampered := strings.Replace(signed, "内容", "改动", 1)
	if result := v.ValidateIntegrity(tampered); result.IsValid {
		t.Error("tampered document should fail integrity check")
	}
}

func TestResultString(t *testing.T) {
	valid := &Result{IsValid: true}
	if !strings.Contains(valid.String(), "VALID") {
		t.Errorf("unexpected summary: %s", valid.String())
	}

	invalid := &Result{IsValid: false, Errors: []ValidationError{{Message: "x"}}}
	if !strings.Contains(invalid.String(), "INVALID") {
		t.Errorf("unexpected summary: %s", invalid.String())
	}
}
