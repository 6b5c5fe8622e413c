package chunker

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docchunk/internal/doctree"
)

var (
	// ErrInvalidConfig is returned when token bounds are out of order or not positive.
	ErrInvalidConfig = errors.New("invalid chunking configuration")
	// ErrInvalidLevel is returned for a by-level strategy outside 1..6.
	ErrInvalidLevel = errors.New("invalid heading level")
	// ErrUnsupportedStrategy is returned for unknown strategies or ones missing a required field.
	ErrUnsupportedStrategy = errors.New("unsupported or incomplete strategy")
)

// DefaultMaxDepth bounds recursion of the oversize splitter.
const DefaultMaxDepth = 10

// Config controls chunking behavior.
type Config struct {
	MinTokens int       // Segments below this are merged forward.
	MaxTokens int       // Segments above this are split.
	MaxDepth  int       // Split recursion limit; 0 means DefaultMaxDepth.
	Estimator Estimator // nil means HeuristicEstimator.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MinTokens: 200,
		MaxTokens: 1200,
		MaxDepth:  DefaultMaxDepth,
		Estimator: HeuristicEstimator{},
	}
}

// Validate checks the token bounds.
func (c Config) Validate() error {
	if c.MinTokens < 1 {
		return fmt.Errorf("%w: min tokens must be >= 1, got %d", ErrInvalidConfig, c.MinTokens)
	}
	if c.MaxTokens < c.MinTokens {
		return fmt.Errorf("%w: max tokens (%d) must be >= min tokens (%d)", ErrInvalidConfig, c.MaxTokens, c.MinTokens)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxDepth <= 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.Estimator == nil {
		c.Estimator = HeuristicEstimator{}
	}
	return c
}

// Chunk splits Markdown text into segments using the heading heuristics.
func Chunk(text string, cfg Config) ([]doctree.Segment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	structure := ExtractStructure(text, cfg.Estimator)
	segs := Finalize(PlanSegments(text, structure), cfg)
	assertCoverage(text, segs)
	return segs, nil
}

// Finalize enforces the size bounds on planned segments: undersized ones are
// merged forward, oversized ones split, empty titles derived, ids renumbered.
func Finalize(segs []doctree.Segment, cfg Config) []doctree.Segment {
	cfg = cfg.withDefaults()
	merged := MergeUndersized(segs, cfg.MinTokens, cfg.Estimator)

	sp := newSplitter(cfg)
	out := make([]doctree.Segment, 0, len(merged))
	for _, seg := range merged {
		if cfg.Estimator.Estimate(seg.Content) > cfg.MaxTokens {
			out = append(out, sp.split(seg, 0)...)
			continue
		}
		out = append(out, seg)
	}
	for i := range out {
		if out[i].Title == "" {
			out[i].Title = DeriveTitle(out[i].Content, "")
		}
	}
	Renumber(out)
	return out
}

// Renumber assigns ids 1..n in order.
func Renumber(segs []doctree.Segment) {
	for i := range segs {
		segs[i].ID = i + 1
	}
}

// Records prepares segments for a persistence collaborator.
func Records(segs []doctree.Segment, est Estimator) []doctree.Record {
	if est == nil {
		est = HeuristicEstimator{}
	}
	out := make([]doctree.Record, len(segs))
	for i, s := range segs {
		out[i] = doctree.Record{
			ID:         s.ID,
			Title:      s.Title,
			Level:      s.Level,
			TokenCount: est.Estimate(s.Content),
			Checksum:   s.Checksum(),
			Content:    s.Content,
		}
	}
	return out
}

// Schema describes segments without their content.
func Schema(segs []doctree.Segment, est Estimator) []doctree.SchemaEntry {
	if est == nil {
		est = HeuristicEstimator{}
	}
	out := make([]doctree.SchemaEntry, len(segs))
	for i, s := range segs {
		out[i] = doctree.SchemaEntry{
			ID:         s.ID,
			Title:      s.Title,
			Level:      s.Level,
			TokenCount: est.Estimate(s.Content),
		}
	}
	return out
}
