package pathstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dgallion1/docchunk/internal/doctree"
)

const listLimit = 1000

// Sink stores chunked documents as pathstore nodes:
//
//	<prefix>/documents/<name>/meta
//	<prefix>/documents/<name>/chunks/NNN
//	<prefix>/documents/by_hash/<hash>/<name>
//
// Consecutive chunks are linked so readers can walk a document in order.
type Sink struct {
	client *Client
	prefix string
}

// NewSink returns a sink writing under prefix (for example "docchunk").
func NewSink(client *Client, prefix string) *Sink {
	return &Sink{client: client, prefix: strings.Trim(prefix, "/")}
}

// keyName maps a document name onto a single key segment.
func keyName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}

func (s *Sink) docPrefix(name string) string {
	return fmt.Sprintf("%s/documents/%s", s.prefix, keyName(name))
}

func (s *Sink) hashPrefix(hash string) string {
	return fmt.Sprintf("%s/documents/by_hash/%s", s.prefix, hash)
}

func (s *Sink) source(name string) string {
	return "docchunk:" + name
}

// Save writes chunk nodes first, then the summary and the hash index, so a
// document only shows up in List once all of its chunks are stored.
func (s *Sink) Save(ctx context.Context, doc doctree.Document) error {
	if doc.Name == "" || strings.ContainsAny(doc.Name, `/\`) {
		return fmt.Errorf("invalid document name %q", doc.Name)
	}
	base := s.docPrefix(doc.Name)

	prev := ""
	for _, rec := range doc.Records {
		key := fmt.Sprintf("%s/chunks/%03d", base, rec.ID)
		err := s.client.PutNode(ctx, key, NodeRequest{
			Value:      rec,
			MemoryType: "semantic",
			Salience:   0.3,
			Source:     s.source(doc.Name),
		})
		if err != nil {
			return fmt.Errorf("store chunk %d: %w", rec.ID, err)
		}
		if prev != "" {
			err := s.client.PutLink(ctx, LinkRequest{From: prev, To: key, Weight: 1, Summary: "next chunk"})
			if err != nil {
				return fmt.Errorf("link chunk %d: %w", rec.ID, err)
			}
		}
		prev = key
	}

	err := s.client.PutNode(ctx, base+"/meta", NodeRequest{
		Value:      doc.Info(),
		MemoryType: "metacognitive",
		Salience:   0.5,
		Source:     s.source(doc.Name),
	})
	if err != nil {
		return fmt.Errorf("store meta: %w", err)
	}

	err = s.client.PutNode(ctx, s.hashPrefix(doc.ContentHash)+"/"+keyName(doc.Name), NodeRequest{
		Value:      map[string]any{"filename": doc.Filename},
		MemoryType: "metacognitive",
		Salience:   0.1,
		Source:     s.source(doc.Name),
	})
	if err != nil {
		return fmt.Errorf("store hash index: %w", err)
	}
	return nil
}

// Exists returns the name of a document stored with contentHash.
func (s *Sink) Exists(ctx context.Context, contentHash string) (string, bool, error) {
	children, err := s.client.ListChildren(ctx, s.hashPrefix(contentHash), 1)
	if err != nil {
		return "", false, err
	}
	if len(children) == 0 {
		return "", false, nil
	}
	return lastKeyPart(children[0].Key), true, nil
}

// List returns the summaries of all stored documents.
func (s *Sink) List(ctx context.Context) ([]doctree.DocumentInfo, error) {
	children, err := s.client.ListChildren(ctx, s.prefix+"/documents", listLimit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	var docs []doctree.DocumentInfo
	for _, child := range children {
		if lastKeyPart(child.Key) != "meta" {
			continue
		}
		var info doctree.DocumentInfo
		if err := json.Unmarshal(child.Value, &info); err != nil {
			continue
		}
		docs = append(docs, info)
	}
	return docs, nil
}

// Delete removes a document, its chunks and its hash index entry.
func (s *Sink) Delete(ctx context.Context, name string) error {
	base := s.docPrefix(name)
	meta, err := s.client.GetNode(ctx, base+"/meta")
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("%w: %s", doctree.ErrDocumentNotFound, name)
	}
	var info doctree.DocumentInfo
	if err := json.Unmarshal(meta.Value, &info); err != nil {
		return fmt.Errorf("decode meta: %w", err)
	}

	if err := s.client.DeleteNode(ctx, base, true); err != nil {
		return err
	}
	if info.ContentHash != "" {
		if err := s.client.DeleteNode(ctx, s.hashPrefix(info.ContentHash)+"/"+keyName(name), false); err != nil {
			return fmt.Errorf("delete hash index: %w", err)
		}
	}
	return nil
}

// Close releases the client's connections.
func (s *Sink) Close() {
	s.client.Close()
}

// lastKeyPart returns the final component of a dot- or slash-separated key.
func lastKeyPart(key string) string {
	if i := strings.LastIndexAny(key, "./"); i >= 0 {
		return key[i+1:]
	}
	return key
}
