package pipeline

import (
	"context"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// Sink persists chunked documents. Implemented by store.FileStore and
// pathstore.Sink.
type Sink interface {
	Save(ctx context.Context, doc doctree.Document) error
	// Exists returns the name of a stored document with the given content hash.
	Exists(ctx context.Context, contentHash string) (string, bool, error)
	List(ctx context.Context) ([]doctree.DocumentInfo, error)
	Delete(ctx context.Context, name string) error
}
