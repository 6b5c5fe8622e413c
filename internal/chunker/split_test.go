package chunker

import (
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/doctree"
)

func splitCfg(max int) Config {
	return Config{MinTokens: 1, MaxTokens: max}
}

func TestSplitOversized_FitsUnchanged(t *testing.T) {
	seg := doctree.Segment{ID: 4, Title: "T", Level: 2, Content: "small"}
	out := SplitOversized(seg, splitCfg(100))
	if len(out) != 1 || out[0] != seg {
		t.Fatalf("expected segment unchanged, got %+v", out)
	}
}

func TestSplitOversized_BySubheadings(t *testing.T) {
	content := "# Top\n" + strings.Repeat("a", 300) + "\n## Left\n" + strings.Repeat("b", 300) + "\n## Right\n" + strings.Repeat("c", 300) + "\n"
	seg := doctree.Segment{ID: 1, Title: "Top", Level: 1, Content: content}

	out := SplitOversized(seg, splitCfg(100))
	if len(out) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(out))
	}
	for i, want := range []string{"Top", "Left", "Right"} {
		if out[i].Title != want {
			t.Errorf("part %d: expected title %q, got %q", i, want, out[i].Title)
		}
		if out[i].Level != 2 {
			t.Errorf("part %d: expected level 2, got %d", i, out[i].Level)
		}
	}
	if joinContent(out) != content {
		t.Error("content not reconstructed exactly")
	}
}

func TestSplitOversized_IgnoresFencedSubheadings(t *testing.T) {
	content := "```\n## not a heading\n```\n" + strings.Repeat("z", 900)
	out := SplitOversized(doctree.Segment{Title: "Code", Level: 1, Content: content}, splitCfg(100))
	for _, s := range out {
		if s.Title == "not a heading" {
			t.Fatal("split at a heading inside a code fence")
		}
	}
	if joinContent(out) != content {
		t.Error("content not reconstructed exactly")
	}
}

func TestSplitOversized_ByMarkers(t *testing.T) {
	content := "Intro\n1. " + strings.Repeat("a", 200) + "\n**Note** " + strings.Repeat("b", 200) + "\n"
	seg := doctree.Segment{ID: 1, Title: "List", Level: 0, Content: content}

	out := SplitOversized(seg, splitCfg(60))
	if len(out) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(out))
	}
	if out[0].Content != "Intro\n" || out[0].Title != "Intro" {
		t.Errorf("unexpected first part %+v", out[0])
	}
	if !strings.HasPrefix(out[1].Content, "1. ") || out[1].Title != "List" {
		t.Errorf("unexpected numbered part %+v", out[1])
	}
	if !strings.HasPrefix(out[2].Content, "**Note**") {
		t.Errorf("unexpected bold part %q", out[2].Content)
	}
	if joinContent(out) != content {
		t.Error("content not reconstructed exactly")
	}
}

func TestSplitOversized_ByMarkersAfterLoneCR(t *testing.T) {
	content := "Intro\r1. " + strings.Repeat("a", 200) + "\r**Note** " + strings.Repeat("b", 200) + "\r"
	seg := doctree.Segment{ID: 1, Title: "List", Level: 0, Content: content}

	out := SplitOversized(seg, splitCfg(60))
	if len(out) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(out))
	}
	if out[0].Content != "Intro\r" {
		t.Errorf("unexpected first part %q", out[0].Content)
	}
	if !strings.HasPrefix(out[1].Content, "1. ") || !strings.HasPrefix(out[2].Content, "**Note**") {
		t.Errorf("marker parts not cut at line starts: %q, %q", out[1].Content[:8], out[2].Content[:8])
	}
	if joinContent(out) != content {
		t.Error("content not reconstructed exactly")
	}
}

func TestSplitOversized_GroupsParagraphs(t *testing.T) {
	para := strings.Repeat("p", 150)
	content := strings.Join([]string{para, para, para, para, para}, "\n\n")
	out := SplitOversized(doctree.Segment{Title: "Prose", Content: content}, splitCfg(100))
	if len(out) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(out))
	}
	for i, s := range out {
		if n := EstimateTokens(s.Content); n > 100 {
			t.Errorf("group %d: %d tokens exceeds ceiling", i, n)
		}
	}
	if joinContent(out) != content {
		t.Error("content not reconstructed exactly")
	}
}

func TestSplitOversized_PartTitles(t *testing.T) {
	content := strings.Repeat("q", 1000)
	out := SplitOversized(doctree.Segment{Title: "Blob", Content: content}, splitCfg(100))
	if len(out) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(out))
	}
	if out[0].Title != "Blob" || out[1].Title != "Blob (part 2)" || out[2].Title != "Blob (part 3)" {
		t.Errorf("unexpected titles %q %q %q", out[0].Title, out[1].Title, out[2].Title)
	}
}

func TestSplitOversized_SlicesOnRuneBoundaries(t *testing.T) {
	content := strings.Repeat("ש", 1000)
	out := SplitOversized(doctree.Segment{Title: "Hebrew", Content: content}, splitCfg(100))
	for i, s := range out {
		if !strings.HasPrefix(s.Content, "ש") {
			t.Errorf("slice %d does not start on a character boundary", i)
		}
	}
	if joinContent(out) != content {
		t.Error("content not reconstructed exactly")
	}
}
