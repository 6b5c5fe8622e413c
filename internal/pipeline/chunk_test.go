package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docchunk/internal/advisor"
	"github.com/dgallion1/docchunk/internal/chunker"
	"github.com/dgallion1/docchunk/internal/doctree"
)

func testOptions() Options {
	return Options{Config: chunker.Config{MinTokens: 1, MaxTokens: 1000}}
}

func joined(segs []doctree.Segment) string {
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.Content)
	}
	return sb.String()
}

func TestChunkDocument_InvalidConfig(t *testing.T) {
	c := NewChunker(nil, nil)
	_, err := c.ChunkDocument(context.Background(), sampleDoc, Options{Config: chunker.Config{MinTokens: 10, MaxTokens: 5}})
	if !errors.Is(err, chunker.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestChunkDocument_Heuristic(t *testing.T) {
	c := NewChunker(nil, nil)
	opts := testOptions()
	opts.Strategy, opts.Validate = true, true // ignored without an advisor

	res, err := c.ChunkDocument(context.Background(), sampleDoc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Strategy != StrategyHeuristic || res.Validated {
		t.Errorf("unexpected result metadata: %q validated=%v", res.Strategy, res.Validated)
	}
	if len(res.Segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(res.Segments))
	}
	if !res.Structure.HasStructure || res.Structure.MaxLevel != 2 {
		t.Errorf("unexpected structure: %+v", res.Structure)
	}
	if joined(res.Segments) != sampleDoc {
		t.Error("segments do not reproduce the document")
	}
}

func TestChunkDocument_StrategyApplied(t *testing.T) {
	p := &scriptedProvider{replies: []string{"```json\n{\"strategy\": \"by_level\", \"level\": 1, \"reasoning\": \"top level\"}\n```"}}
	c := NewChunker(advisor.New(p, nil, nil), nil)
	opts := testOptions()
	opts.Strategy = true

	res, err := c.ChunkDocument(context.Background(), sampleDoc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("expected 2 level-1 segments, got %d", len(res.Segments))
	}
	if res.Strategy != "split at heading level 1" || res.Reasoning != "top level" {
		t.Errorf("unexpected strategy %q / %q", res.Strategy, res.Reasoning)
	}
	if res.Segments[0].Title != "A" || res.Segments[1].Title != "B" {
		t.Errorf("unexpected titles: %q, %q", res.Segments[0].Title, res.Segments[1].Title)
	}
}

func TestChunkDocument_StrategyFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"provider error", "", errors.New("connection refused")},
		{"not json", "I would split by chapters.", nil},
		{"level out of range", `{"strategy": "by_level", "level": 9}`, nil},
		{"unknown strategy", `{"strategy": "semantic"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedProvider{replies: []string{tt.reply}, errs: []error{tt.err}}
			c := NewChunker(advisor.New(p, nil, nil), nil)
			opts := testOptions()
			opts.Strategy = true

			res, err := c.ChunkDocument(context.Background(), sampleDoc, opts)
			if err != nil {
				t.Fatalf("expected fallback, got error %v", err)
			}
			if res.Strategy != StrategyHeuristic || len(res.Segments) != 3 {
				t.Errorf("expected heuristic result, got %q with %d segments", res.Strategy, len(res.Segments))
			}
		})
	}
}

func TestChunkDocument_ValidationMerges(t *testing.T) {
	p := &scriptedProvider{replies: []string{`{"operations": [{"type": "merge", "range": [1, 2]}, {"type": "split", "range": [3, 3]}]}`}}
	c := NewChunker(advisor.New(p, nil, nil), nil)
	opts := testOptions()
	opts.Validate = true
	opts.Language = "en"

	res, err := c.ChunkDocument(context.Background(), sampleDoc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Validated || len(res.Segments) != 2 {
		t.Fatalf("expected merged result, got validated=%v with %d segments", res.Validated, len(res.Segments))
	}
	for i, s := range res.Segments {
		if s.ID != i+1 {
			t.Errorf("segment %d has id %d", i, s.ID)
		}
	}
	if joined(res.Segments) != sampleDoc {
		t.Error("validation lost content")
	}
	if strings.Contains(p.prompts[0], "alpha text") {
		t.Error("boundary review prompt must not include segment content")
	}
	if !strings.Contains(p.prompts[0], "Document language: en") {
		t.Error("expected language hint in prompt")
	}
}

func TestChunkDocument_ValidationMergeResplitsOversized(t *testing.T) {
	var sb strings.Builder
	for _, h := range []string{"A", "B", "C"} {
		sb.WriteString("# " + h + "\n\n" + strings.Repeat(strings.ToLower(h), 120) + "\n\n")
	}
	doc := sb.String()

	p := &scriptedProvider{replies: []string{`{"operations": [{"type": "merge", "range": [1, 3]}]}`}}
	c := NewChunker(advisor.New(p, nil, nil), nil)
	opts := Options{Config: chunker.Config{MinTokens: 1, MaxTokens: 50}, Validate: true}

	res, err := c.ChunkDocument(context.Background(), doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Validated || len(res.Segments) < 2 {
		t.Fatalf("expected the merged segment to be split again, got validated=%v with %d segments", res.Validated, len(res.Segments))
	}
	for i, s := range res.Segments {
		if s.ID != i+1 {
			t.Errorf("segment %d has id %d", i, s.ID)
		}
		if n := chunker.EstimateTokens(s.Content); n > 50 {
			t.Errorf("segment %d exceeds max: %d tokens", s.ID, n)
		}
	}
	if joined(res.Segments) != doc {
		t.Error("validation lost content")
	}
}

func TestChunkDocument_ValidationFailureKeepsSegments(t *testing.T) {
	p := &scriptedProvider{errs: []error{&advisor.RetryableError{StatusCode: 503, Message: "busy"}}}
	c := NewChunker(advisor.New(p, nil, nil), nil)
	opts := testOptions()
	opts.Validate = true

	res, err := c.ChunkDocument(context.Background(), sampleDoc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Validated || len(res.Segments) != 3 {
		t.Errorf("expected untouched heuristic segments, got validated=%v with %d", res.Validated, len(res.Segments))
	}
}

func TestChunkDocument_ExplicitPlan(t *testing.T) {
	c := NewChunker(nil, nil)
	opts := testOptions()
	opts.Plan = chunker.ByLevel{Level: 1, Reasoning: "caller"}

	res, err := c.ChunkDocument(context.Background(), sampleDoc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Segments) != 2 || res.Reasoning != "caller" {
		t.Fatalf("expected 2 segments from the plan, got %d (%q)", len(res.Segments), res.Reasoning)
	}
	if joined(res.Segments) != sampleDoc {
		t.Error("segments do not reproduce the document")
	}

	opts.Plan = chunker.ByLevel{Level: 9}
	if _, err := c.ChunkDocument(context.Background(), sampleDoc, opts); !errors.Is(err, chunker.ErrInvalidLevel) {
		t.Errorf("expected ErrInvalidLevel, got %v", err)
	}
}
