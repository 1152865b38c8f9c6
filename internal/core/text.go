package core

import "unicode/utf8"

// TruncateBytes caps s at n bytes, backing up to the nearest rune boundary so
// a multi-byte character is never split mid-sequence.
func TruncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
