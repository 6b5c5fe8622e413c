package chunker

import (
	"log/slog"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator maps a text span to a token-count estimate. Implementations
// always return at least 1.
type Estimator interface {
	Estimate(text string) int
}

// HeuristicEstimator estimates one token per four characters. The ratio is a
// lower bound chosen so right-to-left scripts are not undercounted.
type HeuristicEstimator struct{}

func (HeuristicEstimator) Estimate(text string) int {
	return EstimateTokens(text)
}

// EstimateTokens is the character-count heuristic used when no tokenizer is available.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text) / charsPerToken
	if n < 1 {
		return 1
	}
	return n
}

const charsPerToken = 4

// TiktokenEstimator counts BPE tokens for a model, falling back to the
// heuristic if encoding fails.
type TiktokenEstimator struct {
	model string
	enc   *tiktoken.Tiktoken
}

// NewEstimator returns a tokenizer-backed estimator for model, or the
// heuristic when model is empty or its encoding cannot be loaded.
func NewEstimator(model string, log *slog.Logger) Estimator {
	if model == "" {
		return HeuristicEstimator{}
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		if log != nil {
			log.Debug("tokenizer unavailable, using heuristic", "model", model, "error", err)
		}
		return HeuristicEstimator{}
	}
	return &TiktokenEstimator{model: model, enc: enc}
}

func (e *TiktokenEstimator) Estimate(text string) (n int) {
	defer func() {
		// The encoder panics on disallowed special tokens.
		if r := recover(); r != nil {
			n = EstimateTokens(text)
		}
	}()
	n = len(e.enc.Encode(text, nil, nil))
	if n < 1 {
		n = 1
	}
	return n
}

// Model returns the model name the encoding was resolved for.
func (e *TiktokenEstimator) Model() string {
	return e.model
}
