package chunker

import (
	"fmt"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// Strategy is a chunking plan, usually proposed by the advisor. It is either
// ByLevel or CustomBoundaries.
type Strategy interface {
	Describe() string
	isStrategy()
}

// ByLevel cuts at every heading whose level is at or above Level.
type ByLevel struct {
	Level     int
	Reasoning string
}

// CustomBoundaries cuts at explicit line numbers.
type CustomBoundaries struct {
	Boundaries []int
	Reasoning  string
}

func (ByLevel) isStrategy()          {}
func (CustomBoundaries) isStrategy() {}

func (s ByLevel) Describe() string {
	return fmt.Sprintf("split at heading level %d", s.Level)
}

func (s CustomBoundaries) Describe() string {
	return fmt.Sprintf("split at %d custom boundaries", len(s.Boundaries))
}

// ChunkByStrategy partitions text according to strategy and then applies
// the same size bounds as Chunk. Boundary lines outside the document are
// clamped to it.
func ChunkByStrategy(text string, structure doctree.Structure, strategy Strategy, cfg Config) ([]doctree.Segment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	var segs []doctree.Segment
	switch st := strategy.(type) {
	case ByLevel:
		if st.Level < 1 || st.Level > 6 {
			return nil, fmt.Errorf("%w: %d (must be 1-6)", ErrInvalidLevel, st.Level)
		}
		segs = partitionByLevel(text, structure.Headings, st.Level)
	case CustomBoundaries:
		if len(st.Boundaries) == 0 {
			return nil, fmt.Errorf("%w: custom boundaries need at least one line", ErrUnsupportedStrategy)
		}
		segs = partitionByBoundaries(text, structure.Headings, st.Boundaries)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedStrategy, strategy)
	}

	segs = Finalize(segs, cfg)
	assertCoverage(text, segs)
	return segs, nil
}

func partitionByBoundaries(text string, headings []doctree.Heading, boundaries []int) []doctree.Segment {
	lines := splitLines(text)
	total := len(lines)
	bounds := []int{0, total}
	for _, b := range boundaries {
		bounds = append(bounds, min(max(b, 0), total))
	}
	return buildSegments(lines, bounds, headingsByLine(headings), func(prev *doctree.Segment, content string) (string, int) {
		if prev != nil {
			return DeriveTitle(content, prev.Title), prev.Level
		}
		return DeriveTitle(content, ""), 0
	}, text)
}
