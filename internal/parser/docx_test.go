package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestDOCXParser_HeadingsAndTables(t *testing.T) {
	d := docx.New().WithDefaultTheme()
	d.AddParagraph().Style("Heading1").AddText("Handbook")
	d.AddParagraph().AddText("Welcome aboard.   ")
	d.AddParagraph().Style("heading 2").AddText("Benefits")
	d.AddParagraph().AddText("Dental and vision.")
	tbl := d.AddTable(2, 2, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("Plan")
	tbl.TableRows[0].TableCells[1].AddParagraph().AddText("Cost")
	tbl.TableRows[1].TableCells[0].AddParagraph().AddText("Basic")
	tbl.TableRows[1].TableCells[1].AddParagraph().AddText("0")

	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	p := &DOCXParser{}
	got, err := p.Parse(bytes.NewReader(buf.Bytes()), "handbook.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"# Handbook\n\nWelcome aboard.\n", "## Benefits\n", "| Plan | Cost |\n| --- | --- |\n| Basic | 0 |\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "\n") || strings.HasSuffix(got, "\n\n") {
		t.Errorf("expected exactly one trailing newline, got %q", got)
	}
}

func TestDOCXHeadingLevel(t *testing.T) {
	tests := map[string]int{"Heading1": 1, "heading 3": 3, "Heading6": 6, "Heading7": 0, "Title": 1, "BodyText": 0}
	for style, want := range tests {
		para := &docx.Paragraph{}
		para.Style(style)
		if got := docxHeadingLevel(para); got != want {
			t.Errorf("%q: expected %d, got %d", style, want, got)
		}
	}
}
