package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
)

const (
	metaFile  = "meta.yaml"
	chunksDir = "chunks"
)

// FileStore keeps chunked documents on disk:
//
//	<root>/<name>/<name>.md             converted Markdown
//	<root>/<name>/meta.yaml             document summary
//	<root>/<name>/chunks/NNN_<slug>.md  one file per chunk, YAML front matter
type FileStore struct {
	root string
	est  chunker.Estimator

	mu sync.Mutex
}

// NewFileStore returns a store rooted at dir. est recomputes token counts
// when a single chunk is split on write; nil means the heuristic.
func NewFileStore(dir string, est chunker.Estimator) *FileStore {
	if est == nil {
		est = chunker.HeuristicEstimator{}
	}
	return &FileStore{root: dir, est: est}
}

// Root returns the output directory.
func (s *FileStore) Root() string {
	return s.root
}

// MarkdownPath is where the converted Markdown for name is written.
func (s *FileStore) MarkdownPath(name string) string {
	return filepath.Join(s.root, name, name+".md")
}

// HasOutput reports whether converted Markdown for name already exists.
func (s *FileStore) HasOutput(name string) bool {
	_, err := os.Stat(s.MarkdownPath(name))
	return err == nil
}

// WriteMarkdown writes the converted document text.
func (s *FileStore) WriteMarkdown(name, markdown string) error {
	if err := checkName(name); err != nil {
		return err
	}
	path := s.MarkdownPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}

// Save writes the document, replacing any chunk files from an earlier run.
func (s *FileStore) Save(ctx context.Context, doc doctree.Document) error {
	if err := checkName(doc.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.WriteMarkdown(doc.Name, doc.Markdown); err != nil {
		return err
	}
	dir := filepath.Join(s.root, doc.Name, chunksDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chunks dir: %w", err)
	}
	old, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return fmt.Errorf("list old chunks: %w", err)
	}
	for _, f := range old {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("remove old chunk: %w", err)
		}
	}

	records := doc.Records
	if len(records) == 1 {
		records = splitSingle(records[0], s.est)
	}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := chunkFile(rec)
		if err != nil {
			return err
		}
		name := fmt.Sprintf("%03d_%s.md", i+1, Slugify(PlainTitle(rec.Title)))
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("write chunk %d: %w", rec.ID, err)
		}
	}

	info := doc.Info()
	info.Chunks = len(records)
	meta, err := yaml.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.root, doc.Name, metaFile), meta, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

// chunkFile renders a record as YAML front matter followed by its content.
func chunkFile(rec doctree.Record) ([]byte, error) {
	// A map so keys come out sorted.
	front, err := yaml.Marshal(map[string]any{
		"id":          rec.ID,
		"title":       rec.Title,
		"level":       rec.Level,
		"token_count": rec.TokenCount,
		"checksum":    rec.Checksum,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.Write(front)
	sb.WriteString("---\n")
	sb.WriteString(rec.Content)
	return []byte(sb.String()), nil
}

// splitSingle cuts a lone chunk at its first level-2 heading after the first
// line, so a document is never stored as one file when it has sections.
func splitSingle(rec doctree.Record, est chunker.Estimator) []doctree.Record {
	lines := strings.SplitAfter(rec.Content, "\n")
	cut := -1
	for i, line := range lines {
		if level, _, ok := chunker.ParseHeading(line); ok && level == 2 {
			cut = i
			break
		}
	}
	if cut <= 0 {
		return []doctree.Record{rec}
	}

	starts := []int{0, cut}
	parts := []string{strings.Join(lines[:cut], ""), strings.Join(lines[cut:], "")}
	out := make([]doctree.Record, len(parts))
	for i, content := range parts {
		title, level := rec.Title, rec.Level
		if l, t, ok := chunker.ParseHeading(lines[starts[i]]); ok {
			title, level = t, l
		}
		seg := doctree.Segment{ID: i + 1, Title: title, Level: level, Content: content}
		out[i] = doctree.Record{
			ID:         seg.ID,
			Title:      seg.Title,
			Level:      seg.Level,
			TokenCount: est.Estimate(content),
			Checksum:   seg.Checksum(),
			Content:    content,
		}
	}
	return out
}

// Exists returns the name of a stored document with the given content hash.
func (s *FileStore) Exists(ctx context.Context, contentHash string) (string, bool, error) {
	docs, err := s.List(ctx)
	if err != nil {
		return "", false, err
	}
	for _, d := range docs {
		if d.ContentHash == contentHash {
			return d.Name, true, nil
		}
	}
	return "", false, nil
}

// List returns stored documents sorted by name. Directories without a
// readable summary are skipped.
func (s *FileStore) List(ctx context.Context) ([]doctree.DocumentInfo, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read output dir: %w", err)
	}

	var docs []doctree.DocumentInfo
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, e.Name(), metaFile))
		if err != nil {
			continue
		}
		var info doctree.DocumentInfo
		if err := yaml.Unmarshal(data, &info); err != nil {
			continue
		}
		if info.Name == "" {
			info.Name = e.Name()
		}
		docs = append(docs, info)
	}
	slices.SortFunc(docs, func(a, b doctree.DocumentInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return docs, nil
}

// Delete removes everything stored for name.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", doctree.ErrDocumentNotFound, name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// checkName rejects names that would escape the output directory.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}
