package advisor

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/dgallion1/docchunk/internal/chunker"
)

// ErrNoProposal means the model gave no usable answer. Callers fall back to
// the heuristic result.
var ErrNoProposal = errors.New("no usable proposal from llm")

var fencedJSONRe = regexp.MustCompile("```(?:json)?\\s*(\\{)")

// extractJSON finds the JSON object in a model reply: a fenced block matched
// by brace counting, else the span from the first '{' to the last '}'.
func extractJSON(s string) string {
	if loc := fencedJSONRe.FindStringSubmatchIndex(s); loc != nil {
		start, depth := loc[2], 0
	scan:
		for i := start; i < len(s); i++ {
			switch s[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					rest := strings.TrimSpace(s[i+1:])
					if strings.HasPrefix(rest, "```") || !strings.HasPrefix(rest, "`") {
						return s[start : i+1]
					}
					break scan
				}
			}
		}
	}
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return ""
}

type strategyReply struct {
	Strategy   string            `json:"strategy"`
	Level      json.RawMessage   `json:"level"`
	Boundaries []json.RawMessage `json:"boundaries"`
	Reasoning  string            `json:"reasoning"`
}

// ParseStrategy converts a model reply into a chunker.Strategy.
func ParseStrategy(reply string) (chunker.Strategy, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return nil, ErrNoProposal
	}
	var r strategyReply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, ErrNoProposal
	}

	switch r.Strategy {
	case "by_level":
		level, ok := jsonInt(r.Level)
		if !ok || level < 1 || level > 6 {
			return nil, ErrNoProposal
		}
		return chunker.ByLevel{Level: level, Reasoning: r.Reasoning}, nil
	case "custom_boundaries":
		if len(r.Boundaries) == 0 {
			return nil, ErrNoProposal
		}
		bounds := make([]int, 0, len(r.Boundaries))
		for _, b := range r.Boundaries {
			n, ok := jsonInt(b)
			if !ok || n < 0 {
				return nil, ErrNoProposal
			}
			bounds = append(bounds, n)
		}
		return chunker.CustomBoundaries{Boundaries: bounds, Reasoning: r.Reasoning}, nil
	default:
		return nil, ErrNoProposal
	}
}

type operationReply struct {
	Type  string            `json:"type"`
	Range []json.RawMessage `json:"range"`
}

// ParseOperations converts a model reply into merge operations. Entries of
// unknown type or with a malformed range are dropped.
func ParseOperations(reply string) ([]chunker.Operation, error) {
	raw := extractJSON(reply)
	if raw == "" {
		return nil, ErrNoProposal
	}
	var plan struct {
		Operations []json.RawMessage `json:"operations"`
	}
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, ErrNoProposal
	}

	ops := make([]chunker.Operation, 0, len(plan.Operations))
	for _, item := range plan.Operations {
		var op operationReply
		if err := json.Unmarshal(item, &op); err != nil || op.Type != "merge" || len(op.Range) != 2 {
			continue
		}
		start, ok1 := jsonInt(op.Range[0])
		end, ok2 := jsonInt(op.Range[1])
		if !ok1 || !ok2 {
			continue
		}
		ops = append(ops, chunker.MergeOp{Start: start, End: end})
	}
	return ops, nil
}

// jsonInt accepts only integral JSON numbers; strings and floats are rejected.
func jsonInt(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return int(i), true
}
