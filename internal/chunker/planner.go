package chunker

import (
	"slices"
	"strings"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// PlanSegments partitions a document at its natural heading level: the
// shallowest level present, or one below it when deeper headings exist.
func PlanSegments(text string, s doctree.Structure) []doctree.Segment {
	if !s.HasStructure {
		return wholeDocument(text)
	}
	base := s.MinLevel
	if s.MaxLevel > s.MinLevel {
		base++
	}
	return partitionByLevel(text, s.Headings, base)
}

// partitionByLevel cuts at every heading with level <= base.
func partitionByLevel(text string, headings []doctree.Heading, base int) []doctree.Segment {
	lines := splitLines(text)
	bounds := []int{0, len(lines)}
	for _, h := range headings {
		if h.Level <= base && h.Line >= 0 && h.Line <= len(lines) {
			bounds = append(bounds, h.Line)
		}
	}
	return buildSegments(lines, bounds, headingsByLine(headings), func(prev *doctree.Segment, content string) (string, int) {
		if prev != nil {
			return prev.Title, prev.Level
		}
		return DeriveTitle(previewLines(content), ""), 0
	}, text)
}

// buildSegments turns boundary lines into segments. A range starting on a
// heading takes its title and level; others ask inherit.
func buildSegments(
	lines []string,
	bounds []int,
	byLine map[int]doctree.Heading,
	inherit func(prev *doctree.Segment, content string) (string, int),
	text string,
) []doctree.Segment {
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	var segs []doctree.Segment
	for i := 0; i+1 < len(bounds); i++ {
		start, end := bounds[i], bounds[i+1]
		if start >= end {
			continue
		}
		content := strings.Join(lines[start:end], "")
		seg := doctree.Segment{ID: len(segs) + 1, Content: content}
		if h, ok := byLine[start]; ok {
			seg.Title, seg.Level = h.Title, h.Level
		} else {
			var prev *doctree.Segment
			if len(segs) > 0 {
				prev = &segs[len(segs)-1]
			}
			seg.Title, seg.Level = inherit(prev, content)
		}
		segs = append(segs, seg)
	}
	if len(segs) == 0 {
		return wholeDocument(text)
	}
	return segs
}

func headingsByLine(headings []doctree.Heading) map[int]doctree.Heading {
	m := make(map[int]doctree.Heading, len(headings))
	for _, h := range headings {
		m[h.Line] = h
	}
	return m
}

func wholeDocument(text string) []doctree.Segment {
	return []doctree.Segment{{ID: 1, Title: DeriveTitle(text, ""), Level: 0, Content: text}}
}

// previewLines returns the first titleLineScan lines of content.
func previewLines(content string) string {
	lines := splitLines(content)
	return strings.Join(lines[:min(len(lines), titleLineScan)], "")
}
