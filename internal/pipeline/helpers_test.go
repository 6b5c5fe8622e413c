package pipeline

import (
	"context"
	"errors"
	"sync"
)

// scriptedProvider replays a fixed sequence of replies and errors.
type scriptedProvider struct {
	mu      sync.Mutex
	replies []string
	errs    []error
	prompts []string
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := len(p.prompts)
	p.prompts = append(p.prompts, prompt)
	if i < len(p.errs) && p.errs[i] != nil {
		return "", p.errs[i]
	}
	if i < len(p.replies) {
		return p.replies[i], nil
	}
	return "", errors.New("no scripted reply")
}

func (p *scriptedProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

const sampleDoc = "# A\n\nalpha text\n\n## A1\n\nsub text\n\n# B\n\nbeta text\n"
