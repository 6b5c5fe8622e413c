package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/docchunk/internal/advisor"
	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
)

// StrategyHeuristic names results produced without an advisor plan.
const StrategyHeuristic = "heuristic"

// Options selects the chunking bounds and the optional advisory steps.
type Options struct {
	Config   chunker.Config
	Strategy bool   // ask the advisor for a strategy before chunking
	Validate bool   // ask the advisor to review boundaries afterwards
	Language string // hint passed to the boundary review

	// Plan, when set, is applied instead of the heuristics or an advisor
	// strategy. Errors from an explicit plan are returned to the caller.
	Plan chunker.Strategy
}

// Result is a chunked document.
type Result struct {
	Segments  []doctree.Segment
	Structure doctree.Structure
	Strategy  string // StrategyHeuristic or the applied plan's description
	Reasoning string // advisor's explanation, when a plan was applied
	Validated bool   // boundary review changed or confirmed the segments
}

// Records converts the result for a persistence collaborator.
func (r Result) Records(est chunker.Estimator) []doctree.Record {
	return chunker.Records(r.Segments, est)
}

// Chunker runs the chunking core with optional advisory steps. Advisor
// failures never fail a document: each step falls back to the segments it
// was given.
type Chunker struct {
	advisor *advisor.Advisor
	log     *slog.Logger
}

// NewChunker returns a chunker. adv may be nil, which disables both advisory steps.
func NewChunker(adv *advisor.Advisor, log *slog.Logger) *Chunker {
	if log == nil {
		log = slog.Default()
	}
	return &Chunker{advisor: adv, log: log}
}

// ChunkDocument validates opts.Config, then chunks text.
func (c *Chunker) ChunkDocument(ctx context.Context, text string, opts Options) (Result, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{
		Structure: chunker.ExtractStructure(text, cfg.Estimator),
		Strategy:  StrategyHeuristic,
	}
	switch {
	case opts.Plan != nil:
		segs, err := chunker.ChunkByStrategy(text, res.Structure, opts.Plan, cfg)
		if err != nil {
			return Result{}, err
		}
		res.Segments = segs
		res.Strategy, res.Reasoning = opts.Plan.Describe(), reasoning(opts.Plan)
	case opts.Strategy && c.advisor != nil:
		c.applyStrategy(ctx, text, cfg, &res)
	}
	if res.Segments == nil {
		segs, err := chunker.Chunk(text, cfg)
		if err != nil {
			return Result{}, err
		}
		res.Segments = segs
	}
	if opts.Validate && c.advisor != nil {
		c.review(ctx, text, cfg, opts.Language, &res)
	}
	return res, nil
}

func (c *Chunker) applyStrategy(ctx context.Context, text string, cfg chunker.Config, res *Result) {
	strategy, err := c.advisor.DecideStrategy(ctx, text, res.Structure, cfg.MinTokens, cfg.MaxTokens)
	if err != nil {
		c.log.Warn("llm strategy selection failed, using heuristics", "error", err)
		return
	}
	segs, err := chunker.ChunkByStrategy(text, res.Structure, strategy, cfg)
	if err != nil {
		c.log.Warn("llm strategy could not be applied, using heuristics", "strategy", strategy.Describe(), "error", err)
		return
	}
	res.Segments = segs
	res.Strategy, res.Reasoning = strategy.Describe(), reasoning(strategy)
	c.log.Info("llm strategy applied", "strategy", res.Strategy, "segments", len(segs))
}

func reasoning(s chunker.Strategy) string {
	switch st := s.(type) {
	case chunker.ByLevel:
		return st.Reasoning
	case chunker.CustomBoundaries:
		return st.Reasoning
	}
	return ""
}

func (c *Chunker) review(ctx context.Context, text string, cfg chunker.Config, language string, res *Result) {
	schema := chunker.Schema(res.Segments, cfg.Estimator)
	ops, err := c.advisor.ProposeOperations(ctx, schema, cfg.MinTokens, cfg.MaxTokens, language)
	if err != nil {
		c.log.Warn("llm validation failed, keeping heuristic chunks", "error", err)
		return
	}
	// Merges may overshoot the ceiling, so the bounds are enforced again.
	segs := chunker.Finalize(chunker.ApplyOperations(text, res.Segments, ops), cfg)
	res.Segments = segs
	res.Validated = true
	c.log.Info("llm validation applied", "operations", len(ops), "segments", len(segs))
}
