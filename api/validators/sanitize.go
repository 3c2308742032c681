package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString trims surrounding whitespace, drops control characters and
// caps the result at maxLen runes. Product names are often Korean, so the
// cut never lands inside a multi-byte character. maxLen <= 0 disables the cap.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == utf8.RuneError || (unicode.IsControl(r) && r != '\t') {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	cleaned = strings.TrimSpace(cleaned)

	if maxLen <= 0 || utf8.RuneCountInString(cleaned) <= maxLen {
		return cleaned
	}
	runes := []rune(cleaned)
	return strings.TrimRightFunc(string(runes[:maxLen]), unicode.IsSpace)
}
