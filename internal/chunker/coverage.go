package chunker

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docchunk/internal/doctree"
)

// CoverageError reports segments that no longer reproduce their source. It
// signals a defect in the chunker and is raised with panic.
type CoverageError struct {
	SourceLen int
	JoinedLen int
}

func (e *CoverageError) Error() string {
	return fmt.Sprintf("chunk coverage violated: source %d bytes, segments %d bytes", e.SourceLen, e.JoinedLen)
}

func joinContent(segs []doctree.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Content)
	}
	return sb.String()
}

// assertCoverage panics with *CoverageError unless the segments concatenate
// to text, ignoring leading and trailing whitespace.
func assertCoverage(text string, segs []doctree.Segment) {
	joined := joinContent(segs)
	if strings.TrimSpace(joined) != strings.TrimSpace(text) {
		panic(&CoverageError{SourceLen: len(text), JoinedLen: len(joined)})
	}
}
