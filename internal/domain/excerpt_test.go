package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter than limit", "hello", 200, "hello"},
		{"exactly at limit", strings.Repeat("a", 200), 200, strings.Repeat("a", 200)},
		{"truncated", strings.Repeat("Y", 300), 200, strings.Repeat("Y", 200)},
		{"empty", "", 200, ""},
		{"zero limit", "hello", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Excerpt(tt.in, tt.n)
			if got != tt.want {
				t.Errorf("Excerpt(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
			}
		})
	}
}

func TestExcerpt_MultibyteSafe(t *testing.T) {
	in := strings.Repeat("é", 300)
	got := Excerpt(in, ExcerptLength)
	if !utf8.ValidString(got) {
		t.Fatal("excerpt split a UTF-8 sequence")
	}
	if n := utf8.RuneCountInString(got); n != ExcerptLength {
		t.Errorf("rune count = %d, want %d", n, ExcerptLength)
	}
}
