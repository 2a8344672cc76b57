package metadata

import (
	"errors"
	"strings"
	"testing"
)

const sampleDoc = "# 2025年01月新闻汇总\n\n总计新闻日期：2 天\n\n---\n正文内容\n"

func TestSignAndVerify(t *testing.T) {
	signed := Sign(sampleDoc, 2)

	if !strings.Contains(signed, TagStart) || !strings.Contains(signed, TagEnd) {
		t.Fatalf("signed document missing block tags:\n%s", signed)
	}

	ok, err := Verify(signed)
	if !ok || err != nil {
		t.Errorf("Verify = %v, %v", ok, err)
	}

	block, clean := Extract(signed)
	if block == nil {
		t.Fatal("Extract should find the block")
	}

	if block.Files != 2 {
		t.Errorf("Files = %d, want 2", block.Files)
	}

	if block.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}

	if strings.Contains(clean, TagStart) {
		t.Error("clean content should not contain the block")
	}
}

func TestSignReplacesExistingBlock(t *testing.T) {
	signed := Sign(Sign(sampleDoc, 1), 3)

	if got := strings.Count(signed, TagStart); got != 1 {
		t.Fatalf("re-signing should leave exactly one block, found %d", got)
	}

	block, _ := Extract(signed)
	if block.Files != 3 {
		t.Errorf("Files = %d, want 3 after re-sign", block.Files)
	}

	if ok, err := Verify(signed); !ok {
		t.Errorf("re-signed document should verify: %v", err)
	}
}

func TestVerifyFailures(t *testing.T) {
	if _, err := Verify(sampleDoc); !errors.Is(err, ErrNoBlock) {
		t.Errorf("unsigned document should return ErrNoBlock, got %v", err)
	}

	tampered := strings.Replace(Sign(sampleDoc, 1), "正文内容", "篡改内容", 1)
	if _, err := Verify(tampered); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("tampered document should return ErrHashMismatch, got %v", err)
	}
}

func TestHashIgnoresBlock(t *testing.T) {
	if Hash(sampleDoc) != Hash(Sign(sampleDoc, 1)) {
		t.Error("hash should be independent of the integrity block")
	}
}
