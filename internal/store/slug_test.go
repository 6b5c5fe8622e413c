package store

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Introduction", "introduction"},
		{"  Getting Started: Setup!  ", "getting-started-setup"},
		{"snake_case  and   spaces", "snake-case-and-spaces"},
		{"סעיף 1", "סעיף-1"},
		{"!!!", "chunk"},
		{"", "chunk"},
		{"already-dashed", "already-dashed"},
		{"Cafe\u0301 Menu", "caf\u00e9-menu"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	long := ""
	for range 30 {
		long += "ab "
	}
	got := Slugify(long)
	if n := len([]rune(got)); n != maxSlugLen {
		t.Errorf("expected %d runes, got %d (%q)", maxSlugLen, n, got)
	}
}

func TestPlainTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Plain title", "Plain title"},
		{"**Bold** and `code`", "Bold and code"},
		{"See [the docs](https://example.com)", "See the docs"},
		{"1. Numbered", "1. Numbered"},
		{"  spaced  ", "spaced"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := PlainTitle(tt.in); got != tt.want {
				t.Errorf("PlainTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
