package advisor

import (
	"errors"
	"slices"
	"testing"

	"github.com/dgallion1/docchunk/internal/chunker"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"bare", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "Here you go:\n```json\n{\"a\": {\"b\": 2}}\n```\nthanks", `{"a": {"b": 2}}`},
		{"fenced no lang", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding prose", `Sure! {"a": 1} Hope it helps.`, `{"a": 1}`},
		{"none", "no json here", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseStrategy_Valid(t *testing.T) {
	st, err := ParseStrategy("```json\n{\"strategy\": \"by_level\", \"level\": 2, \"reasoning\": \"sections\"}\n```")
	if err != nil {
		t.Fatalf("ParseStrategy: %v", err)
	}
	bl, ok := st.(chunker.ByLevel)
	if !ok || bl.Level != 2 || bl.Reasoning != "sections" {
		t.Fatalf("unexpected strategy %#v", st)
	}

	st, err = ParseStrategy(`{"strategy": "custom_boundaries", "boundaries": [0, 150, 300]}`)
	if err != nil {
		t.Fatalf("ParseStrategy: %v", err)
	}
	cb, ok := st.(chunker.CustomBoundaries)
	if !ok || !slices.Equal(cb.Boundaries, []int{0, 150, 300}) {
		t.Fatalf("unexpected strategy %#v", st)
	}
}

func TestParseStrategy_Rejected(t *testing.T) {
	tests := []struct {
		name, reply string
	}{
		{"no json", "I think level two"},
		{"broken json", `{"strategy": "by_level", "level": }`},
		{"level zero", `{"strategy": "by_level", "level": 0}`},
		{"level seven", `{"strategy": "by_level", "level": 7}`},
		{"level string", `{"strategy": "by_level", "level": "2"}`},
		{"level float", `{"strategy": "by_level", "level": 2.5}`},
		{"level missing", `{"strategy": "by_level"}`},
		{"empty boundaries", `{"strategy": "custom_boundaries", "boundaries": []}`},
		{"negative boundary", `{"strategy": "custom_boundaries", "boundaries": [0, -3]}`},
		{"string boundary", `{"strategy": "custom_boundaries", "boundaries": ["10"]}`},
		{"unknown strategy", `{"strategy": "semantic"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseStrategy(tt.reply); !errors.Is(err, ErrNoProposal) {
				t.Fatalf("expected ErrNoProposal, got %v", err)
			}
		})
	}
}

func TestParseOperations(t *testing.T) {
	reply := `{"operations": [
		{"type": "merge", "range": [1, 2]},
		{"type": "split", "range": [3, 4]},
		{"type": "merge", "range": [5]},
		{"type": "merge", "range": ["a", 2]},
		{"type": "merge", "range": [4, 6]}
	]}`
	ops, err := ParseOperations(reply)
	if err != nil {
		t.Fatalf("ParseOperations: %v", err)
	}
	want := []chunker.Operation{chunker.MergeOp{Start: 1, End: 2}, chunker.MergeOp{Start: 4, End: 6}}
	if !slices.Equal(ops, want) {
		t.Fatalf("ParseOperations = %#v, want %#v", ops, want)
	}

	if _, err := ParseOperations("nothing"); !errors.Is(err, ErrNoProposal) {
		t.Errorf("expected ErrNoProposal, got %v", err)
	}
	ops, err = ParseOperations(`{"operations": []}`)
	if err != nil || len(ops) != 0 {
		t.Errorf("expected empty plan, got %v %v", ops, err)
	}
}
