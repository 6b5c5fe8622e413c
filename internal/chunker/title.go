package chunker

import (
	"strings"
	"unicode/utf8"
)

const (
	titleHeadingScan = 5
	titleLineScan    = 10
	titleMaxLine     = 100
	titleMaxLen      = 80
)

// DeriveTitle picks a title for arbitrary content: a heading in the first few
// lines, else the first short plain line, else fallback, else "Untitled".
func DeriveTitle(content, fallback string) string {
	lines := splitLines(content)
	for _, line := range lines[:min(len(lines), titleHeadingScan)] {
		if _, title, ok := matchHeading(line); ok {
			return title
		}
	}
	for _, line := range lines[:min(len(lines), titleLineScan)] {
		s := strings.TrimSpace(line)
		if s == "" || strings.HasPrefix(s, "#") || utf8.RuneCountInString(s) >= titleMaxLine {
			continue
		}
		if utf8.RuneCountInString(s) > titleMaxLen {
			s = string([]rune(s)[:titleMaxLen])
		}
		return s
	}
	if fallback != "" {
		return fallback
	}
	return "Untitled"
}
