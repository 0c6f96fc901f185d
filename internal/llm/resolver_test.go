package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/llm/llmtest"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
)

func TestResolveModel(t *testing.T) {
	cases := []struct {
		name      string
		available []string
		listErr   error
		want      string
	}{
		{
			name:      "first priority available",
			available: []string{"models/gemini-pro", "models/gemini-1.5-flash"},
			want:      "models/gemini-1.5-flash",
		},
		{
			name:      "second priority available",
			available: []string{"models/gemini-pro", "models/gemini-1.5-flash-001"},
			want:      "models/gemini-1.5-flash-001",
		},
		{
			name:      "no priority entry available",
			available: []string{"models/gemini-2.0-flash", "models/gemini-2.5-pro"},
			want:      "models/gemini-2.0-flash",
		},
		{
			name:      "empty discovery",
			available: nil,
			want:      llm.DefaultFallbackModel,
		},
		{
			name:    "discovery failure",
			listErr: errors.New("permission denied"),
			want:    llm.DefaultFallbackModel,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &llmtest.Backend{Models: tc.available, ListErr: tc.listErr}
			sel := llm.ResolveModel(context.Background(), b, llm.DefaultPriority, llm.DefaultFallbackModel, 0, logger.Nop())
			if sel.Chosen != tc.want {
				t.Fatalf("chosen: got=%q want=%q", sel.Chosen, tc.want)
			}
			if len(sel.Priority) != len(llm.DefaultPriority) {
				t.Fatalf("priority not recorded: %v", sel.Priority)
			}
		})
	}
}

func TestResolveModelDoesNotAliasPriority(t *testing.T) {
	priority := []string{"a", "b"}
	sel := llm.ResolveModel(context.Background(), &llmtest.Backend{Models: []string{"b"}}, priority, "z", 0, logger.Nop())
	priority[0] = "mutated"
	if sel.Priority[0] != "a" {
		t.Fatalf("selection shares caller slice: %v", sel.Priority)
	}
	if sel.Chosen != "b" {
		t.Fatalf("chosen: got=%q want=%q", sel.Chosen, "b")
	}
}

// hangingLister never answers ListModels until its context ends.
type hangingLister struct {
	llmtest.Backend
	sawDeadline bool
}

func (h *hangingLister) ListModels(ctx context.Context) ([]string, error) {
	_, h.sawDeadline = ctx.Deadline()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestResolveModelBoundsDiscovery(t *testing.T) {
	b := &hangingLister{}
	start := time.Now()
	sel := llm.ResolveModel(context.Background(), b, llm.DefaultPriority, llm.DefaultFallbackModel, 50*time.Millisecond, logger.Nop())
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("discovery not bounded: took %s", elapsed)
	}
	if !b.sawDeadline {
		t.Fatal("ListModels called without a deadline")
	}
	if sel.Chosen != llm.DefaultFallbackModel || sel.Available != nil {
		t.Fatalf("got %+v", sel)
	}
}
