package chunker

import (
	"slices"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// Operation is an edit to a segment list, usually proposed by the advisor.
type Operation interface {
	isOperation()
}

// MergeOp joins segments Start through End, 1-based and inclusive.
type MergeOp struct {
	Start int
	End   int
}

func (MergeOp) isOperation() {}

// ApplyOperations applies ops in order to a copy of segs. Operations with a
// span outside the current list are skipped. Ids are renumbered afterwards.
func ApplyOperations(text string, segs []doctree.Segment, ops []Operation) []doctree.Segment {
	out := slices.Clone(segs)
	for _, op := range ops {
		switch op := op.(type) {
		case MergeOp:
			if op.Start < 1 || op.End > len(out) || op.Start >= op.End {
				continue
			}
			merged := out[op.Start-1]
			for _, s := range out[op.Start:op.End] {
				merged = combine(merged, s)
			}
			out = slices.Concat(out[:op.Start-1], []doctree.Segment{merged}, out[op.End:])
		}
	}
	Renumber(out)
	assertCoverage(text, out)
	return out
}
