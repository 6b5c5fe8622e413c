package chunker

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docchunk/internal/doctree"
)

var (
	// Markers start a line after LF, CRLF or a lone CR; group 1 is the marker.
	numberedItemRe   = regexp.MustCompile(`(?m)(?:^|\r)([ \t]*\d+\.[ \t]+)`)
	boldLeadRe       = regexp.MustCompile(`(?m)(?:^|\r)([ \t]*\*\*[^*\r\n]+\*\*)`)
	paragraphBreakRe = regexp.MustCompile(`(?:\r\n?|\n)\s*(?:\r\n?|\n)`)
)

// SplitOversized decomposes a segment that exceeds cfg.MaxTokens. The
// returned segments concatenate back to seg.Content exactly.
func SplitOversized(seg doctree.Segment, cfg Config) []doctree.Segment {
	return newSplitter(cfg.withDefaults()).split(seg, 0)
}

type splitter struct {
	est      Estimator
	max      int
	maxDepth int
}

func newSplitter(cfg Config) splitter {
	return splitter{est: cfg.Estimator, max: cfg.MaxTokens, maxDepth: cfg.MaxDepth}
}

// split tries subheadings, then list/bold markers, then paragraphs, then
// fixed-size slices. depth counts recursive calls from the top-level segment.
func (sp splitter) split(seg doctree.Segment, depth int) []doctree.Segment {
	if sp.est.Estimate(seg.Content) <= sp.max {
		return []doctree.Segment{seg}
	}
	if depth >= sp.maxDepth {
		return sp.slice(seg)
	}
	if parts, ok := sp.bySubheadings(seg, depth); ok {
		return parts
	}
	if parts, ok := sp.byMarkers(seg, depth); ok {
		return parts
	}
	if parts, ok := sp.byParagraphs(seg, depth); ok {
		return parts
	}
	return sp.slice(seg)
}

func (sp splitter) bySubheadings(seg doctree.Segment, depth int) ([]doctree.Segment, bool) {
	lines := splitLines(seg.Content)
	var cuts []headingLine
	for _, h := range scanHeadings(lines) {
		if h.level > seg.Level {
			cuts = append(cuts, h)
		}
	}
	if len(cuts) == 0 {
		return nil, false
	}

	var out []doctree.Segment
	emit := func(start, end int, title string) {
		part := doctree.Segment{
			ID:      seg.ID,
			Title:   title,
			Level:   seg.Level + 1,
			Content: strings.Join(lines[start:end], ""),
		}
		out = append(out, sp.split(part, depth+1)...)
	}

	start, title := 0, seg.Title
	for _, h := range cuts {
		if h.line > start {
			emit(start, h.line, title)
		}
		start, title = h.line, h.title
	}
	emit(start, len(lines), title)
	return out, true
}

func (sp splitter) byMarkers(seg doctree.Segment, depth int) ([]doctree.Segment, bool) {
	content := seg.Content
	points := []int{0, len(content)}
	for _, re := range []*regexp.Regexp{numberedItemRe, boldLeadRe} {
		for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
			if loc[2] > 0 {
				points = append(points, loc[2])
			}
		}
	}
	slices.Sort(points)
	points = slices.Compact(points)
	if len(points) <= 2 {
		return nil, false
	}

	var out []doctree.Segment
	for i := 0; i+1 < len(points); i++ {
		part := content[points[i]:points[i+1]]
		out = append(out, sp.split(doctree.Segment{
			ID:      seg.ID,
			Title:   DeriveTitle(part, seg.Title),
			Level:   seg.Level,
			Content: part,
		}, depth+1)...)
	}
	return out, true
}

type paragraph struct {
	text string
	sep  string // separator that followed the paragraph in the source
}

func splitParagraphs(content string) []paragraph {
	locs := paragraphBreakRe.FindAllStringIndex(content, -1)
	if len(locs) == 0 {
		return nil
	}
	paras := make([]paragraph, 0, len(locs)+1)
	prev := 0
	for _, loc := range locs {
		paras = append(paras, paragraph{text: content[prev:loc[0]], sep: content[loc[0]:loc[1]]})
		prev = loc[1]
	}
	if prev < len(content) {
		paras = append(paras, paragraph{text: content[prev:]})
	}
	return paras
}

func (sp splitter) byParagraphs(seg doctree.Segment, depth int) ([]doctree.Segment, bool) {
	paras := splitParagraphs(seg.Content)
	if len(paras) == 0 {
		return nil, false
	}

	var out []doctree.Segment
	var group strings.Builder
	flush := func() {
		if group.Len() == 0 {
			return
		}
		text := group.String()
		out = append(out, doctree.Segment{
			ID:      seg.ID,
			Title:   DeriveTitle(text, seg.Title),
			Level:   seg.Level,
			Content: text,
		})
		group.Reset()
	}

	for _, p := range paras {
		if sp.est.Estimate(p.text) > sp.max {
			flush()
			subs := sp.split(doctree.Segment{
				ID:      seg.ID,
				Title:   DeriveTitle(p.text, seg.Title),
				Level:   seg.Level,
				Content: p.text,
			}, depth+1)
			subs[len(subs)-1].Content += p.sep
			out = append(out, subs...)
			continue
		}
		piece := p.text + p.sep
		if group.Len() > 0 && sp.est.Estimate(group.String()+piece) > sp.max {
			flush()
		}
		group.WriteString(piece)
	}
	flush()
	return out, true
}

// slice cuts content every max*4 characters. Content within one step is
// returned unchanged as an unsplittable unit.
func (sp splitter) slice(seg doctree.Segment) []doctree.Segment {
	step := max(1, sp.max*charsPerToken)
	if utf8.RuneCountInString(seg.Content) <= step {
		return []doctree.Segment{seg}
	}

	var out []doctree.Segment
	rest := seg.Content
	for rest != "" {
		cut := runeOffset(rest, step)
		title := seg.Title
		if len(out) > 0 {
			title = fmt.Sprintf("%s (part %d)", seg.Title, len(out)+1)
		}
		out = append(out, doctree.Segment{ID: seg.ID, Title: title, Level: seg.Level, Content: rest[:cut]})
		rest = rest[cut:]
	}
	return out
}

// runeOffset returns the byte offset after n runes of s, or len(s).
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
