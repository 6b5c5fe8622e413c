package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files. Content is kept byte for byte except
// that setext headings (underlined with === or ---) are rewritten as # headings
// so the chunker sees them.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(src) {
		return "", fmt.Errorf("%s: not valid UTF-8 markdown", filename)
	}
	return rewriteSetextHeadings(src), nil
}

func rewriteSetextHeadings(src []byte) string {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var out strings.Builder
	last := 0
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		h, ok := n.(*ast.Heading)
		if !ok || h.Lines().Len() == 0 {
			continue
		}
		lines := h.Lines()
		first, final := lines.At(0), lines.At(lines.Len()-1)

		start := bytes.LastIndexByte(src[:first.Start], '\n') + 1
		if bytes.HasPrefix(bytes.TrimLeft(src[start:first.Start], " \t"), []byte("#")) {
			continue // already ATX
		}
		end := lineEnd(src, lineEnd(src, final.Start))

		parts := make([]string, 0, lines.Len())
		for i := range lines.Len() {
			seg := lines.At(i)
			parts = append(parts, strings.TrimSpace(string(seg.Value(src))))
		}
		out.Write(src[last:start])
		out.WriteString(headingMarker(h.Level))
		out.WriteString(strings.Join(parts, " "))
		out.WriteString("\n")
		last = end
	}
	out.Write(src[last:])
	return out.String()
}

// lineEnd returns the offset just past the newline ending the line containing i.
func lineEnd(src []byte, i int) int {
	if i >= len(src) {
		return len(src)
	}
	if idx := bytes.IndexByte(src[i:], '\n'); idx >= 0 {
		return i + idx + 1
	}
	return len(src)
}
