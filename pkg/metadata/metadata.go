// Package metadata embeds and verifies an integrity block in generated
// markdown archives. The block is an HTML comment, so renderers ignore it,
// and it carries a SHA-256 hash of the document without the block itself.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// TagStart opens the integrity block.
	TagStart = "<!-- ARCHIVE_META_START"
	// TagEnd closes the integrity block.
	TagEnd = "ARCHIVE_META_END -->"
)

// Verification errors.
var (
	ErrNoBlock      = errors.New("no integrity block found")
	ErrNoHash       = errors.New("no hash found in integrity block")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Block is the parsed integrity block of an archive document.
type Block struct {
	GeneratedAt time.Time
	Hash        string
	Files       int
}

var blockRe = regexp.MustCompile(`(?s)<!--\s*ARCHIVE_META_START\s*\n(.*?)\n\s*ARCHIVE_META_END\s*-->`)

// Extract splits a document into its integrity block and the clean content
// the hash covers. Documents without a block return a nil Block.
func Extract(content string) (*Block, string) {
	match := blockRe.FindStringSubmatch(content)

	clean := blockRe.ReplaceAllString(content, "")
	clean = strings.TrimRight(clean, "\n")

	if len(match) < 2 {
		return nil, clean
	}

	block := &Block{}

	for _, line := range strings.Split(match[1], "\n") {
		parts := strings.SplitN(strings.TrimSpace(line), ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])

		switch key {
		case "GENERATED_AT":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				block.GeneratedAt = t
			}
		case "HASH":
			block.Hash = val
		case "FILES":
			fmt.Sscanf(val, "%d", &block.Files)
		}
	}

	return block, clean
}

// Hash computes the SHA-256 hash of the document without its block.
func Hash(content string) string {
	_, clean := Extract(content)
	sum := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(sum[:])
}

// Sign appends or replaces the integrity block with a fresh hash and
// timestamp. fileCount records how many source files the archive merges.
func Sign(content string, fileCount int) string {
	_, clean := Extract(content)

	block := fmt.Sprintf("\n\n%s\nGENERATED_AT: %s\nFILES: %d\nHASH: %s\n%s",
		TagStart,
		time.Now().UTC().Format(time.RFC3339),
		fileCount,
		Hash(clean),
		TagEnd,
	)

	return clean + block
}

// Verify reports whether the document still matches the hash in its block.
func Verify(content string) (bool, error) {
	block, clean := Extract(content)
	if block == nil {
		return false, ErrNoBlock
	}

	if block.Hash == "" {
		return false, ErrNoHash
	}

	if calculated := Hash(clean); calculated != block.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, block.Hash, calculated)
	}

	return true, nil
}
