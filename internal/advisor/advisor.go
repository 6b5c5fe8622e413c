package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
)

// Advisor asks a language model for chunking strategies and boundary fixes.
// It only proposes; applying a proposal is up to the caller.
type Advisor struct {
	provider Provider
	stats    *LLMStats
	log      *slog.Logger
}

// New wraps a provider. stats may be nil.
func New(p Provider, stats *LLMStats, log *slog.Logger) *Advisor {
	if log == nil {
		log = slog.Default()
	}
	return &Advisor{provider: p, stats: stats, log: log.With("llm_provider", p.Name())}
}

// Provider returns the underlying provider.
func (a *Advisor) Provider() Provider { return a.provider }

func (a *Advisor) complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	reply, err := a.provider.Complete(ctx, prompt)
	elapsed := time.Since(start).Milliseconds()
	if a.stats != nil {
		if err != nil {
			a.stats.RecordFailure(elapsed)
		} else {
			a.stats.Record(elapsed)
		}
	}
	a.log.Debug("llm call", "duration_ms", elapsed, "prompt_chars", len(prompt), "error", err)
	return reply, err
}

// DecideStrategy proposes how to partition text. The prompt carries section
// previews when they fit the context budget and only the outline otherwise.
func (a *Advisor) DecideStrategy(ctx context.Context, text string, s doctree.Structure, minTokens, maxTokens int) (chunker.Strategy, error) {
	var prompt string
	if fitsContext(text, s) {
		prompt = buildStrategyPrompt(text, s, minTokens, maxTokens)
	} else {
		prompt = buildStructureOnlyPrompt(s, minTokens, maxTokens)
	}

	reply, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("decide strategy: %w", err)
	}
	strategy, err := ParseStrategy(reply)
	if err != nil {
		a.log.Debug("unusable strategy reply", "reply", truncate(reply, 200))
		return nil, err
	}
	return strategy, nil
}

// ProposeOperations asks for merge operations over an existing segmentation.
// Only the schema is sent, never segment content.
func (a *Advisor) ProposeOperations(ctx context.Context, schema []doctree.SchemaEntry, minTokens, maxTokens int, language string) ([]chunker.Operation, error) {
	prompt, err := buildOperationsPrompt(schema, minTokens, maxTokens, language)
	if err != nil {
		return nil, err
	}
	reply, err := a.complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("propose operations: %w", err)
	}
	ops, err := ParseOperations(reply)
	if err != nil {
		a.log.Debug("unusable operations reply", "reply", truncate(reply, 200))
		return nil, err
	}
	return ops, nil
}
