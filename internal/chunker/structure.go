package chunker

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// ExtractStructure builds the heading outline of a Markdown document.
func ExtractStructure(text string, est Estimator) doctree.Structure {
	if est == nil {
		est = HeuristicEstimator{}
	}
	lines := splitLines(text)
	found := scanHeadings(lines)

	s := doctree.Structure{
		TotalTokens: est.Estimate(text),
		TotalLines:  len(lines),
	}
	if len(found) == 0 {
		return s
	}

	s.HasStructure = true
	s.MinLevel, s.MaxLevel = found[0].level, found[0].level
	for i, h := range found {
		end := len(lines)
		for _, next := range found[i+1:] {
			if next.level <= h.level {
				end = next.line
				break
			}
		}
		s.Headings = append(s.Headings, doctree.Heading{
			Level:        h.level,
			Title:        h.title,
			Line:         h.line,
			SectionStart: h.line,
			SectionEnd:   end,
			Tokens:       est.Estimate(joinTrimmed(lines[h.line:end])),
		})
		s.MinLevel = min(s.MinLevel, h.level)
		s.MaxLevel = max(s.MaxLevel, h.level)
	}
	return s
}

func joinTrimmed(lines []string) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = trimEOL(l)
	}
	return strings.Join(parts, "\n")
}

// Hierarchy renders the outline as indented text, one heading per line.
func Hierarchy(s doctree.Structure) string {
	var sb strings.Builder
	sb.WriteString("Document Structure:")
	if len(s.Headings) == 0 {
		sb.WriteString("\n  (No headings found)")
		return sb.String()
	}
	for _, h := range s.Headings {
		fmt.Fprintf(&sb, "\n%s%s %s (%d tokens)",
			strings.Repeat("  ", max(0, h.Level-1)),
			strings.Repeat("#", h.Level),
			h.Title,
			h.Tokens,
		)
	}
	return sb.String()
}

// SectionPreview returns up to maxChars characters of the section a heading opens.
func SectionPreview(text string, h doctree.Heading, maxChars int) (string, error) {
	if maxChars < 0 {
		return "", fmt.Errorf("max chars must be non-negative, got %d", maxChars)
	}
	if maxChars == 0 {
		return "", nil
	}
	lines := splitLines(text)
	start := max(0, h.SectionStart)
	end := h.SectionEnd
	if end < 0 || end > len(lines) {
		end = len(lines)
	}
	if start > end {
		start = end
	}
	section := strings.TrimSpace(joinTrimmed(lines[start:end]))
	if utf8.RuneCountInString(section) <= maxChars {
		return section, nil
	}
	runes := []rune(section)
	return strings.TrimRight(string(runes[:maxChars]), " \t\r\n") + "…", nil
}
