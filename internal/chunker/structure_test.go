package chunker

import (
	"strings"
	"testing"
)

func TestExtractStructure(t *testing.T) {
	text := "# Top\nintro\n## Sub\nbody\n### Deep\nmore\n# Next\nend\n"
	s := ExtractStructure(text, nil)
	if !s.HasStructure {
		t.Fatal("expected structure")
	}
	if len(s.Headings) != 4 {
		t.Fatalf("expected 4 headings, got %d", len(s.Headings))
	}
	if s.MinLevel != 1 || s.MaxLevel != 3 {
		t.Errorf("expected levels 1..3, got %d..%d", s.MinLevel, s.MaxLevel)
	}
	if s.TotalLines != 8 {
		t.Errorf("expected 8 lines, got %d", s.TotalLines)
	}

	ends := []int{6, 6, 6, 8}
	for i, h := range s.Headings {
		if h.SectionStart != h.Line {
			t.Errorf("heading %d: section start %d != line %d", i, h.SectionStart, h.Line)
		}
		if h.SectionEnd != ends[i] {
			t.Errorf("heading %q: expected end %d, got %d", h.Title, ends[i], h.SectionEnd)
		}
		if h.Tokens < 1 {
			t.Errorf("heading %q: expected positive tokens", h.Title)
		}
	}
}

func TestExtractStructure_HeadingRecognition(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		count int
	}{
		{"plain", "# A\n", 1},
		{"six hashes", "###### Six\n", 1},
		{"seven hashes", "####### Seven\n", 0},
		{"no space", "#NoSpace\n", 0},
		{"hashes only", "######\n", 0},
		{"indented", "  # Indented\n", 0},
		{"in backtick fence", "```\n# comment\n```\n", 0},
		{"in tilde fence", "~~~\n# comment\n```\n# still code\n~~~\n# After\n", 1},
		{"unterminated fence", "```\n# comment\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ExtractStructure(tt.text, nil)
			if len(s.Headings) != tt.count {
				t.Fatalf("expected %d headings, got %d", tt.count, len(s.Headings))
			}
			if s.HasStructure != (tt.count > 0) {
				t.Errorf("HasStructure = %v", s.HasStructure)
			}
		})
	}
}

func TestExtractStructure_TrimsTitle(t *testing.T) {
	s := ExtractStructure("##   Spaced out   \n", nil)
	if len(s.Headings) != 1 || s.Headings[0].Title != "Spaced out" {
		t.Fatalf("unexpected headings %+v", s.Headings)
	}
}

func TestHierarchy(t *testing.T) {
	empty := Hierarchy(ExtractStructure("no headings", nil))
	if empty != "Document Structure:\n  (No headings found)" {
		t.Errorf("unexpected empty hierarchy %q", empty)
	}

	out := Hierarchy(ExtractStructure("# A\ntext\n## B\ntext\n", nil))
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", out)
	}
	if !strings.HasPrefix(lines[1], "# A (") {
		t.Errorf("unexpected top line %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "  ## B (") || !strings.HasSuffix(lines[2], " tokens)") {
		t.Errorf("unexpected nested line %q", lines[2])
	}
}

func TestSectionPreview(t *testing.T) {
	text := "# A\nfirst line of the section\n# B\nother\n"
	s := ExtractStructure(text, nil)
	h := s.Headings[0]

	if _, err := SectionPreview(text, h, -1); err == nil {
		t.Error("expected error for negative max chars")
	}
	if got, _ := SectionPreview(text, h, 0); got != "" {
		t.Errorf("expected empty preview, got %q", got)
	}
	if got, _ := SectionPreview(text, h, 1000); got != "# A\nfirst line of the section" {
		t.Errorf("unexpected full preview %q", got)
	}
	got, _ := SectionPreview(text, h, 10)
	if got != "# A\nfirst…" {
		t.Errorf("unexpected truncated preview %q", got)
	}
}

func TestDeriveTitle(t *testing.T) {
	long := strings.Repeat("y", 90)
	tests := []struct {
		name, content, fallback, want string
	}{
		{"heading", "intro\n## Heading Here\nbody", "", "Heading Here"},
		{"first short line", "\n\nShort line\nmore", "", "Short line"},
		{"skips long line", strings.Repeat("x", 150) + "\nnext", "", "next"},
		{"truncates", long, "", long[:80]},
		{"fallback", strings.Repeat("z", 200), "Parent", "Parent"},
		{"untitled", "", "", "Untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.content, tt.fallback); got != tt.want {
				t.Errorf("DeriveTitle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEstimateTokens(t *testing.T) {
	if EstimateTokens("") != 1 {
		t.Error("expected minimum of 1")
	}
	if EstimateTokens(strings.Repeat("a", 40)) != 10 {
		t.Error("expected 10 tokens for 40 chars")
	}
	if EstimateTokens(strings.Repeat("ש", 40)) != 10 {
		t.Error("expected characters, not bytes, to be counted")
	}
	if _, ok := NewEstimator("", nil).(HeuristicEstimator); !ok {
		t.Error("expected heuristic for empty model")
	}
}
