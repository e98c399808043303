package http

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength bounds inbound text before classification; WhatsApp
// caps text bodies at 4096 bytes anyway.
const MaxMessageLength = 4096

// SanitizeString removes null bytes and invalid UTF-8 from inbound text.
func SanitizeString(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for _, r := range s {
			if r != utf8.RuneError {
				v = append(v, r)
			}
		}
		s = string(v)
	}
	return s
}

// TruncateString safely truncates a string to max length
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
