package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_PassesATXThrough(t *testing.T) {
	input := "# Title\r\n\r\nIntro text.  \n\n## Section A\n\n```\n# not a heading\n```\n"
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != input {
		t.Errorf("expected byte-exact passthrough, got %q", got)
	}
}

func TestMarkdownParser_RewritesSetextHeadings(t *testing.T) {
	input := "Title\n=====\n\nIntro text.\n\nSection A\n---------\n\nBody.\n"
	p := &MarkdownParser{}
	got, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "# Title\n\nIntro text.\n\n## Section A\n\nBody.\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdownParser_RejectsBinary(t *testing.T) {
	p := &MarkdownParser{}
	if _, err := p.Parse(strings.NewReader("\xff\xfe\x00bin"), "doc.md"); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"crlf", "a\r\nb\r\n", "a\nb\n"},
		{"trailing spaces", "a  \nb\t\n", "a\nb\n"},
		{"surrounding blank lines", "\n\n  a\n\n\n", "a\n"},
		{"empty", "", "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestForFile(t *testing.T) {
	for _, name := range []string{"a.md", "b.MARKDOWN", "c.txt", "d.csv", "e.htm", "f.html", "g.pdf", "h.docx"} {
		if _, err := ForFile(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if !IsSupportedExtension(name) {
			t.Errorf("%s: expected supported", name)
		}
	}
	if _, err := ForFile("x.exe"); err == nil {
		t.Error("expected error for unsupported extension")
	}
	if TitleFromFilename("/tmp/dir/report.final.docx") != "report.final" {
		t.Error("unexpected title from filename")
	}
}
