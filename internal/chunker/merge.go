package chunker

import "github.com/dgallion1/docchunk/internal/doctree"

// MergeUndersized folds each segment below minTokens into the segment that
// follows it. A trailing undersized segment is kept as is.
func MergeUndersized(segs []doctree.Segment, minTokens int, est Estimator) []doctree.Segment {
	if est == nil {
		est = HeuristicEstimator{}
	}
	out := make([]doctree.Segment, 0, len(segs))
	for _, seg := range segs {
		if n := len(out); n > 0 && est.Estimate(out[n-1].Content) < minTokens {
			out[n-1] = combine(out[n-1], seg)
			continue
		}
		out = append(out, seg)
	}
	return out
}

// combine joins b onto a, keeping a's id, the first non-empty title and the
// shallower level.
func combine(a, b doctree.Segment) doctree.Segment {
	title := a.Title
	if title == "" {
		title = b.Title
	}
	return doctree.Segment{
		ID:      a.ID,
		Title:   title,
		Level:   min(a.Level, b.Level),
		Content: a.Content + b.Content,
	}
}
