package utils

import (
	"strings"
	"unicode/utf8"
)

// MaskEmail keeps the first character of the local part: "ops@acme.io"
// becomes "o***@acme.io".
func MaskEmail(addr string) string {
	local, domain, ok := strings.Cut(addr, "@")
	if !ok || domain == "" {
		return "***"
	}
	first, size := utf8.DecodeRuneInString(local)
	if size == 0 {
		return "***@" + domain
	}
	return string(first) + "***@" + domain
}

// Prefix returns at most n runes of s, marking a cut with "...".
// Used to log webhook signatures and external IDs without the full value.
func Prefix(s string, n int) string {
	if n <= 0 {
		return "..."
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
