package chunker

import (
	"regexp"
	"strings"
)

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)

// splitLines splits text after every LF, CRLF or CR, keeping terminators so
// the lines concatenate back to text. Empty text has no lines.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// trimEOL removes a trailing line terminator.
func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// matchHeading reports the level and trimmed title of a heading line.
func matchHeading(line string) (level int, title string, ok bool) {
	m := headingRe.FindStringSubmatch(trimEOL(line))
	if m == nil {
		return 0, "", false
	}
	return len(m[1]), strings.TrimSpace(m[2]), true
}

// ParseHeading reports the level and title of a Markdown heading line.
func ParseHeading(line string) (level int, title string, ok bool) {
	return matchHeading(line)
}

// fenceTracker follows fenced code blocks so comment lines inside them are
// not mistaken for headings.
type fenceTracker struct {
	marker byte
}

// observe consumes a line and reports whether it is inside (or delimits) a fence.
func (f *fenceTracker) observe(line string) bool {
	trimmed := strings.TrimLeft(trimEOL(line), " \t")
	if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
		switch {
		case f.marker == 0:
			f.marker = trimmed[0]
		case f.marker == trimmed[0]:
			f.marker = 0
		}
		return true
	}
	return f.marker != 0
}

type headingLine struct {
	line  int
	level int
	title string
}

// scanHeadings returns heading lines outside fenced code blocks.
func scanHeadings(lines []string) []headingLine {
	var out []headingLine
	var fence fenceTracker
	for i, line := range lines {
		if fence.observe(line) {
			continue
		}
		if level, title, ok := matchHeading(line); ok {
			out = append(out, headingLine{line: i, level: level, title: title})
		}
	}
	return out
}
