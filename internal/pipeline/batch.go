package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Input is one document for ProcessBatch.
type Input struct {
	Filename string
	Data     []byte
}

// Output is the outcome for one Input. Err is set when conversion or
// chunking failed; other documents are unaffected.
type Output struct {
	Filename string
	DocName  string
	Markdown string
	Result   Result
	Err      error
}

// ProcessBatch converts and chunks independent documents in parallel with at
// most workers running at once. Outputs are in input order. The returned
// error is only set when ctx is cancelled.
func (c *Chunker) ProcessBatch(ctx context.Context, conv Converter, inputs []Input, opts Options, workers int) ([]Output, error) {
	out := make([]Output, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, workers))

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := Output{Filename: in.Filename, DocName: DocName(in.Filename)}
			defer func() { out[i] = o }()

			md, err := conv.Convert(in.Filename, in.Data)
			if err != nil {
				o.Err = err
				return nil
			}
			o.Markdown = md
			res, err := c.ChunkDocument(gctx, md, opts)
			if err != nil {
				o.Err = fmt.Errorf("chunk %s: %w", in.Filename, err)
				return nil
			}
			o.Result = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
