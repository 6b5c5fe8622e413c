package commands

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/doctree"
)

func TestChunkCmd_PrintsRecords(t *testing.T) {
	in := writeFiles(t, map[string]string{"guide.md": twoSections})

	out, err := execute(t, "chunk", filepath.Join(in, "guide.md"), "--min-tokens", "1", "--max-tokens", "1000")
	if err != nil {
		t.Fatal(err)
	}
	var records []doctree.Record
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("output is not JSON records: %v\n%s", err, out)
	}
	if len(records) != 2 || records[0].Title != "A" || records[1].Title != "B" {
		t.Fatalf("unexpected records: %+v", records)
	}
	if records[0].Content+records[1].Content != twoSections {
		t.Error("records do not reproduce the document")
	}
	if records[0].Checksum != doctree.ContentHash(records[0].Content) {
		t.Error("checksum does not match content")
	}
}

func TestChunkCmd_NoContent(t *testing.T) {
	in := writeFiles(t, map[string]string{"guide.md": twoSections})

	out, err := execute(t, "chunk", filepath.Join(in, "guide.md"), "--min-tokens", "1", "--no-content")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "alpha text") {
		t.Errorf("content should be omitted:\n%s", out)
	}
}

func TestStructureCmd(t *testing.T) {
	in := writeFiles(t, map[string]string{"guide.md": "# A\n\n## A1\n\ntext\n"})

	out, err := execute(t, "structure", filepath.Join(in, "guide.md"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Document Structure:", "# A (", "  ## A1 (", "heading levels 1-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("structure output missing %q:\n%s", want, out)
		}
	}
}
