package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
)

func testDocument(t *testing.T, name, markdown string) doctree.Document {
	t.Helper()
	segs, err := chunker.Chunk(markdown, chunker.Config{MinTokens: 1, MaxTokens: 1000})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	return doctree.Document{
		Name:        name,
		Filename:    name + ".docx",
		ContentHash: doctree.ContentHash(markdown),
		Markdown:    markdown,
		Strategy:    "heuristic",
		Records:     chunker.Records(segs, nil),
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// readChunk splits a chunk file into its front matter and body.
func readChunk(t *testing.T, path string) (map[string]any, string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	rest, ok := strings.CutPrefix(string(data), "---\n")
	if !ok {
		t.Fatalf("%s: missing front matter", path)
	}
	front, body, ok := strings.Cut(rest, "---\n")
	if !ok {
		t.Fatalf("%s: unterminated front matter", path)
	}
	var meta map[string]any
	if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
		t.Fatalf("%s: %v", path, err)
	}
	return meta, body
}

func chunkFiles(t *testing.T, root, name string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(root, name, "chunks", "*.md"))
	if err != nil {
		t.Fatal(err)
	}
	return files
}

func TestFileStore_SaveWritesFrontMatter(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root, nil)
	md := "# Introduction\nHello\n# סעיף 1\nתוכן\n"
	doc := testDocument(t, "contract", md)

	if err := fs.Save(context.Background(), doc); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := os.ReadFile(fs.MarkdownPath("contract"))
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if string(got) != md {
		t.Errorf("expected markdown to round trip, got %q", got)
	}

	files := chunkFiles(t, root, "contract")
	if len(files) != 2 {
		t.Fatalf("expected 2 chunk files, got %v", files)
	}
	if filepath.Base(files[0]) != "001_introduction.md" || filepath.Base(files[1]) != "002_סעיף-1.md" {
		t.Errorf("unexpected file names: %v", files)
	}

	meta, body := readChunk(t, files[0])
	if meta["id"] != 1 || meta["level"] != 1 || meta["title"] != "Introduction" {
		t.Errorf("unexpected front matter: %v", meta)
	}
	if n, _ := meta["token_count"].(int); n <= 0 {
		t.Errorf("expected positive token_count, got %v", meta["token_count"])
	}
	if sum, _ := meta["checksum"].(string); len(sum) != 64 {
		t.Errorf("expected sha256 checksum, got %v", meta["checksum"])
	}
	if body != "# Introduction\nHello\n" {
		t.Errorf("unexpected body %q", body)
	}

	raw, _ := os.ReadFile(files[0])
	if !strings.HasPrefix(string(raw), "---\nchecksum: ") {
		t.Errorf("expected sorted front matter keys, got %q", raw)
	}
}

func TestFileStore_SaveClearsOldChunks(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root, nil)
	ctx := context.Background()

	if err := fs.Save(ctx, testDocument(t, "doc", "# A\none\n# B\ntwo\n# C\nthree\n")); err != nil {
		t.Fatal(err)
	}
	if err := fs.Save(ctx, testDocument(t, "doc", "# A\none\n# B\ntwo\n")); err != nil {
		t.Fatal(err)
	}
	if files := chunkFiles(t, root, "doc"); len(files) != 2 {
		t.Errorf("expected stale chunk files to be removed, got %v", files)
	}
}

func TestFileStore_SingleChunkSplitsAtSection(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root, nil)
	md := "# Guide\nIntro line.\n## Details\nMore text.\n"
	doc := testDocument(t, "guide", md)
	doc.Records = chunker.Records([]doctree.Segment{{ID: 1, Title: "Guide", Level: 1, Content: md}}, nil)

	if err := fs.Save(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	files := chunkFiles(t, root, "guide")
	if len(files) != 2 {
		t.Fatalf("expected fallback split into 2 files, got %v", files)
	}
	meta, body1 := readChunk(t, files[1])
	if meta["title"] != "Details" || meta["level"] != 2 || meta["id"] != 2 {
		t.Errorf("unexpected second chunk meta: %v", meta)
	}
	_, body0 := readChunk(t, files[0])
	if body0+body1 != md {
		t.Errorf("split lost content: %q + %q", body0, body1)
	}
}

func TestFileStore_SingleChunkWithoutSectionKept(t *testing.T) {
	rec := doctree.Record{ID: 1, Title: "Notes", Content: "## Only heading\nbody\n"}
	if got := splitSingle(rec, chunker.HeuristicEstimator{}); len(got) != 1 {
		t.Errorf("expected no split when the heading is the first line, got %d", len(got))
	}
}

func TestFileStore_ListExistsDelete(t *testing.T) {
	root := t.TempDir()
	fs := NewFileStore(root, nil)
	ctx := context.Background()

	a := testDocument(t, "alpha", "# Alpha\ntext\n")
	b := testDocument(t, "beta", "# Beta\nother text\n")
	for _, d := range []doctree.Document{b, a} {
		if err := fs.Save(ctx, d); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := fs.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || docs[0].Name != "alpha" || docs[1].Name != "beta" {
		t.Fatalf("unexpected listing: %+v", docs)
	}
	if docs[0].Chunks != 1 || docs[0].ContentHash != a.ContentHash || !docs[0].CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("unexpected info: %+v", docs[0])
	}

	name, ok, err := fs.Exists(ctx, b.ContentHash)
	if err != nil || !ok || name != "beta" {
		t.Errorf("Exists = %q, %v, %v", name, ok, err)
	}
	if _, ok, _ := fs.Exists(ctx, "nope"); ok {
		t.Error("expected unknown hash to be absent")
	}

	if err := fs.Delete(ctx, "alpha"); err != nil {
		t.Fatal(err)
	}
	if fs.HasOutput("alpha") {
		t.Error("expected alpha to be removed")
	}
	if err := fs.Delete(ctx, "alpha"); !errors.Is(err, doctree.ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
	if err := fs.Delete(ctx, "../etc"); err == nil {
		t.Error("expected invalid name to be rejected")
	}
}

func TestFileStore_ListMissingRoot(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "missing"), nil)
	docs, err := fs.List(context.Background())
	if err != nil || len(docs) != 0 {
		t.Errorf("expected empty listing, got %v, %v", docs, err)
	}
}
