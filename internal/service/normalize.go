package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeKey folds an email or display name into a comparison key:
// lowercase, trimmed, diacritics stripped, everything outside [a-z0-9]
// removed. "Nguyễn Văn A" and "nguyen van a" normalize identically.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	strip := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(strip, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
