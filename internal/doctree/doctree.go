package doctree

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrDocumentNotFound is returned by persistence collaborators for unknown names.
var ErrDocumentNotFound = errors.New("document not found")

// Segment is a contiguous, exact span of source text with structural context.
type Segment struct {
	ID      int    // 1-based sequence number, reassigned after every transformation
	Title   string // Section title (may be empty until normalized)
	Level   int    // Heading depth the segment was cut at, 0 = no heading context
	Content string // Exact source bytes, line terminators included
}

// Checksum returns the SHA-256 hex digest of the segment content.
func (s Segment) Checksum() string {
	return ContentHash(s.Content)
}

// Heading is a heading line found in a document.
type Heading struct {
	Level        int    // 1-6
	Title        string // Trimmed heading text
	Line         int    // Line index of the heading
	SectionStart int    // Equal to Line
	SectionEnd   int    // Exclusive end line of the section the heading opens
	Tokens       int    // Size estimate of the section
}

// Structure is the heading outline of one document.
type Structure struct {
	Headings     []Heading
	TotalTokens  int
	TotalLines   int
	MinLevel     int
	MaxLevel     int
	HasStructure bool
}

// Record is a segment prepared for a persistence collaborator.
type Record struct {
	ID         int    `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Level      int    `json:"level" yaml:"level"`
	TokenCount int    `json:"token_count" yaml:"token_count"`
	Checksum   string `json:"checksum" yaml:"checksum"`
	Content    string `json:"content" yaml:"-"`
}

// SchemaEntry describes a segment to the advisory collaborator without its content.
type SchemaEntry struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Level      int    `json:"level"`
	TokenCount int    `json:"token_count"`
}

// Document is a chunked document handed to a persistence collaborator.
type Document struct {
	Name        string // Output name, usually the source filename without extension
	Filename    string
	ContentHash string // SHA-256 of Markdown
	Markdown    string
	Strategy    string // How the chunks were produced
	Records     []Record
	CreatedAt   time.Time
}

// DocumentInfo summarizes a stored document.
type DocumentInfo struct {
	Name        string    `json:"name" yaml:"name"`
	Filename    string    `json:"filename" yaml:"filename"`
	ContentHash string    `json:"content_hash" yaml:"content_hash"`
	Strategy    string    `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Chunks      int       `json:"chunks" yaml:"chunks"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Info returns the summary stored alongside the document.
func (d Document) Info() DocumentInfo {
	return DocumentInfo{
		Name:        d.Name,
		Filename:    d.Filename,
		ContentHash: d.ContentHash,
		Strategy:    d.Strategy,
		Chunks:      len(d.Records),
		CreatedAt:   d.CreatedAt,
	}
}

// ContentHash returns the SHA-256 hex digest of text.
func ContentHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
