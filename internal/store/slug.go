package store

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/text/unicode/norm"
)

const maxSlugLen = 50

func isHebrew(r rune) bool {
	return r >= 0x0590 && r <= 0x05FF
}

// Slugify lowercases text and keeps letters, digits, Hebrew and dashes.
// Whitespace and underscore runs become a single dash. Input is NFC
// normalized first so decomposed accents survive as letters.
func Slugify(s string) string {
	var sb strings.Builder
	sep := false
	for _, r := range strings.ToLower(norm.NFC.String(strings.TrimSpace(s))) {
		switch {
		case unicode.IsSpace(r) || r == '_':
			sep = true
		case unicode.IsLetter(r) || unicode.IsDigit(r) || isHebrew(r) || r == '-':
			if sep {
				sb.WriteByte('-')
				sep = false
			}
			sb.WriteRune(r)
		}
	}
	if sep && sb.Len() > 0 {
		sb.WriteByte('-')
	}
	slug := []rune(sb.String())
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	if len(slug) == 0 {
		return "chunk"
	}
	return string(slug)
}

// PlainTitle strips inline Markdown (emphasis, code spans, links) from a
// heading title. Titles that parse as anything but a paragraph are returned
// trimmed but otherwise unchanged.
func PlainTitle(title string) string {
	src := []byte(title)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))
	para, ok := doc.FirstChild().(*ast.Paragraph)
	if !ok || para.NextSibling() != nil {
		return strings.TrimSpace(title)
	}

	var sb strings.Builder
	_ = ast.Walk(para, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(n.Value)
		case *ast.AutoLink:
			sb.Write(n.Label(src))
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if plain := strings.TrimSpace(sb.String()); plain != "" {
		return plain
	}
	return strings.TrimSpace(title)
}
