package tasks

import (
	"strings"
	"unicode"

	"github.com/teamtrack/backend/internal/models"
)

// NormalizeStatus canonicalizes a client-supplied status string: hyphens
// become spaces, words are title-cased, and runs of whitespace collapse to a
// single space. Normalization is idempotent; "in-progress" and "IN PROGRESS"
// both become "In Progress".
func NormalizeStatus(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// ValidStatus reports whether s is one of the canonical status values.
// Callers normalize first; no other value may persist.
func ValidStatus(s string) bool {
	switch s {
	case models.StatusTodo, models.StatusInProgress, models.StatusDone:
		return true
	}
	return false
}
