package core

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateBytes(t *testing.T) {
	tests := []struct {
		name string
		s    string
		n    int
		want string
	}{
		{"shorter than cap", "hello", 10, "hello"},
		{"exactly at cap", "hello", 5, "hello"},
		{"ascii cut", "hello world", 5, "hello"},
		{"rupee backs off", "ab₹cd", 4, "ab"},   // ₹ is 3 bytes starting at offset 2
		{"rupee fits", "ab₹cd", 5, "ab₹"},
		{"devanagari backs off", "नमस्ते", 4, "न"}, // each rune is 3 bytes
		{"zero cap", "₹", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateBytes(tt.s, tt.n)
			if got != tt.want {
				t.Errorf("TruncateBytes(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("TruncateBytes(%q, %d) = %q is not valid UTF-8", tt.s, tt.n, got)
			}
		})
	}
}

func TestTruncateBytes_LongMultiByte(t *testing.T) {
	s := strings.Repeat("₹", 100)
	got := TruncateBytes(s, 200)
	if len(got) > 200 {
		t.Errorf("len = %d, want <= 200", len(got))
	}
	if !utf8.ValidString(got) {
		t.Error("result splits a rune mid-sequence")
	}
}
