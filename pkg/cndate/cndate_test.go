package cndate

import (
	"errors"
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	d := time.Date(2025, 11, 2, 0, 0, 0, 0, time.Local)

	if got := Format(d); got != "2025年11月02日" {
		t.Errorf("Format() = %s, want 2025年11月02日", got)
	}

	if got := FormatMonth(d); got != "2025年11月" {
		t.Errorf("FormatMonth() = %s, want 2025年11月", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "transcript title",
			input: "2025年11月02日新闻联播文字版",
			want:  time.Date(2025, 11, 2, 0, 0, 0, 0, time.Local),
		},
		{
			name:  "single digit month and day",
			input: "2025年1月7日新闻联播文字版",
			want:  time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
		},
		{
			name:  "embedded in decoded URL",
			input: "http://mrxwlb.com/2025/01/07/2025年01月07日新闻联播文字版/",
			want:  time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local),
		},
		{
			name:    "no date",
			input:   "新闻联播文字版",
			wantErr: true,
		},
		{
			name:    "impossible date",
			input:   "2025年13月40日",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoDate) {
					t.Errorf("Parse(%q) error = %v, want ErrNoDate", tt.input, err)
				}

				return
			}

			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}

			if !got.Equal(tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	if !Contains("2025年1月7日新闻联播") {
		t.Error("Contains should find a Chinese date")
	}

	if Contains("新闻联播文字版") {
		t.Error("Contains should return false without a date")
	}
}
