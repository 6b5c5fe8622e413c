package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
)

// Worker processes a single document job.
type Worker struct {
	chunker   *Chunker
	converter Converter
	sink      Sink
	opts      Options
	log       *slog.Logger
}

func NewWorker(ch *Chunker, conv Converter, sink Sink, opts Options, log *slog.Logger) *Worker {
	return &Worker{
		chunker:   ch,
		converter: conv,
		sink:      sink,
		opts:      opts,
		log:       log,
	}
}

// Process runs convert, dedup, chunk and store for a job. The job's final
// status is completed, failed or duplicate_skipped.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_name", job.DocName)
	defer job.release()
	defer func() {
		if r := recover(); r != nil {
			log.Error("chunking panicked", "panic", r)
			job.AddError(fmt.Sprintf("internal error: %v", r))
			job.SetStatus(StatusFailed, "chunking")
		}
	}()

	// Phase 1: Convert
	job.SetStatus(StatusConverting, "converting")
	markdown, err := w.converter.Convert(job.Filename, job.FileData())
	if err != nil {
		log.Error("conversion failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "converting")
		return
	}
	if strings.TrimSpace(markdown) == "" {
		log.Warn("no text extracted")
		job.AddError("no extractable content")
		job.SetStatus(StatusFailed, "converting")
		return
	}
	hash := doctree.ContentHash(markdown)
	job.SetContent(hash)

	// Phase 1.5: Dedup check
	if !job.Force {
		existing, exists, err := w.sink.Exists(ctx, hash)
		if err != nil {
			log.Warn("dedup check failed, proceeding", "error", err)
		} else if exists {
			log.Info("duplicate document, skipping", "existing", existing)
			job.SetStatus(StatusDupSkipped, "dedup")
			return
		}
	}

	// Phase 2: Chunk
	job.SetStatus(StatusChunking, "chunking")
	opts := job.options(w.opts)
	res, err := w.chunker.ChunkDocument(ctx, markdown, opts)
	if err != nil {
		log.Error("chunking failed", "error", err)
		job.AddError(fmt.Sprintf("chunk: %s", err))
		job.SetStatus(StatusFailed, "chunking")
		return
	}
	job.SetTotalChunks(len(res.Segments))
	job.SetStrategy(res.Strategy)
	log.Info("chunked document", "chunks", len(res.Segments), "strategy", res.Strategy)

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	doc := doctree.Document{
		Name:        job.DocName,
		Filename:    job.Filename,
		ContentHash: hash,
		Markdown:    markdown,
		Strategy:    res.Strategy,
		Records:     chunker.Records(res.Segments, opts.Config.Estimator),
		CreatedAt:   time.Now().UTC(),
	}
	if err := w.sink.Save(ctx, doc); err != nil {
		log.Error("store failed", "error", err)
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}
	job.SetChunksStored(len(doc.Records))
	log.Info("storage complete", "stored", len(doc.Records))
	job.SetStatus(StatusCompleted, "done")
}
