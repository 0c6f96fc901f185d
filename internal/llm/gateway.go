package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Lllllllleong/examdocumentflow/internal/logger"
)

// NotConfiguredText is returned in place of generated text when no backend
// credential is configured.
const NotConfiguredText = "Error: GEMINI_API_KEY not set."

// ErrNotConfigured means there is no backend to call. Its message is
// NotConfiguredText.
var ErrNotConfigured = errors.New(NotConfiguredText)

// DefaultCallTimeout bounds a single generation round-trip.
const DefaultCallTimeout = 60 * time.Second

type GatewayOptions struct {
	CallTimeout time.Duration
}

// Gateway sends prompts to the resolved model. It makes one attempt per
// call and never retries.
type Gateway struct {
	backend   Backend
	selection ModelSelection
	timeout   time.Duration
	log       *logger.Logger
}

// NewGateway wraps backend. A nil backend yields an unconfigured gateway
// whose calls return ErrNotConfigured.
func NewGateway(backend Backend, selection ModelSelection, opts GatewayOptions, log *logger.Logger) *Gateway {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	return &Gateway{
		backend:   backend,
		selection: selection,
		timeout:   opts.CallTimeout,
		log:       log.With("service", "llm.Gateway"),
	}
}

// Configured reports whether a backend credential is present.
func (g *Gateway) Configured() bool { return g.backend != nil }

// Model returns the model chosen at start-up.
func (g *Gateway) Model() string { return g.selection.Chosen }

// Selection returns the start-up model resolution.
func (g *Gateway) Selection() ModelSelection { return g.selection }

// Generate sends a text prompt and returns the trimmed response.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}
	return g.call(ctx, TextPart(prompt))
}

// GenerateWithImage sends a text prompt plus one image. The image bytes are
// decoded and, if needed, re-encoded into a format the backend accepts.
func (g *Gateway) GenerateWithImage(ctx context.Context, prompt string, image []byte) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}
	img, err := NormalizeImage(image)
	if err != nil {
		return "", err
	}
	return g.call(ctx, TextPart(prompt), ImagePart(img))
}

func (g *Gateway) call(ctx context.Context, parts ...Part) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	out, err := g.backend.Generate(callCtx, g.selection.Chosen, parts...)
	if err != nil {
		g.log.Error("Generation call failed",
			"model", g.selection.Chosen,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return "", fmt.Errorf("generate with %s: %w", g.selection.Chosen, err)
	}
	g.log.Debug("Generation call complete",
		"model", g.selection.Chosen,
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(out),
	)
	return strings.TrimSpace(out), nil
}

func (g *Gateway) Close() error {
	if g.backend == nil {
		return nil
	}
	return g.backend.Close()
}
