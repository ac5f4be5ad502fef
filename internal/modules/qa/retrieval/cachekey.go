package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CacheKey derives a stable key from the normalized question and its
// learning context. Normalization is NFKC, lowercased, with whitespace
// collapsed, so trivially different spellings of the same question share
// an entry.
func CacheKey(question, lang, lessonID, courseID, chapterID string) string {
	parts := []string{
		NormalizeQuestion(question),
		lang,
		chapterID,
		courseID,
		lessonID,
	}
	h := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(h[:])
}

// NormalizeQuestion applies NFKC normalization, lowercases and collapses
// runs of whitespace to single spaces.
func NormalizeQuestion(question string) string {
	normalized := norm.NFKC.String(question)
	normalized = strings.ToLower(normalized)
	return strings.Join(strings.Fields(normalized), " ")
}
