// Package llmtest provides an in-memory llm.Backend for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
)

// Call records one Generate invocation.
type Call struct {
	Model string
	Parts []llm.Part
}

// Prompt returns the text of the first text part.
func (c Call) Prompt() string {
	for _, p := range c.Parts {
		if p.Image == nil {
			return p.Text
		}
	}
	return ""
}

// HasImage reports whether the call carried an image part.
func (c Call) HasImage() bool {
	for _, p := range c.Parts {
		if p.Image != nil {
			return true
		}
	}
	return false
}

// Backend answers Generate through Respond, or with Text/Err when Respond is
// nil. It is safe for concurrent use.
type Backend struct {
	Models  []string
	ListErr error

	Text    string
	Err     error
	Respond func(call Call) (string, error)

	mu     sync.Mutex
	calls  []Call
	closed bool
}

func (b *Backend) ListModels(ctx context.Context) ([]string, error) {
	if b.ListErr != nil {
		return nil, b.ListErr
	}
	return b.Models, nil
}

func (b *Backend) Generate(ctx context.Context, model string, parts ...llm.Part) (string, error) {
	call := Call{Model: model, Parts: parts}
	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if b.Respond != nil {
		return b.Respond(call)
	}
	return b.Text, b.Err
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

// Calls returns a copy of every recorded call, in order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
