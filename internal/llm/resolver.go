package llm

import (
	"context"
	"slices"
	"time"

	"github.com/Lllllllleong/examdocumentflow/internal/logger"
)

// DefaultPriority lists the preferred models, best first.
var DefaultPriority = []string{
	"models/gemini-1.5-flash",
	"models/gemini-1.5-flash-001",
	"models/gemini-pro",
}

// DefaultFallbackModel is used when discovery fails or finds nothing.
const DefaultFallbackModel = "gemini-1.5-flash"

// DefaultDiscoveryTimeout bounds model listing when no timeout is given.
const DefaultDiscoveryTimeout = 10 * time.Second

// ModelSelection is resolved once at start-up and read-only afterwards.
type ModelSelection struct {
	Priority  []string
	Available []string
	Chosen    string
}

// ResolveModel picks the model to generate with. It never fails:
//  1. the first priority entry that is available,
//  2. otherwise the first available model,
//  3. otherwise (discovery error, timeout or nothing available) fallback.
//
// Listing is bounded by timeout, or DefaultDiscoveryTimeout when timeout <= 0.
func ResolveModel(ctx context.Context, b Backend, priority []string, fallback string, timeout time.Duration, log *logger.Logger) ModelSelection {
	sel := ModelSelection{Priority: slices.Clone(priority), Chosen: fallback}

	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}
	listCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	available, err := b.ListModels(listCtx)
	if err != nil {
		log.Warn("Model discovery failed, using fallback model", "error", err, "model", fallback)
		return sel
	}
	sel.Available = available
	log.Info("Discovered generation models", "available", available)

	for _, name := range priority {
		if slices.Contains(available, name) {
			sel.Chosen = name
			log.Info("Selected model", "model", name, "tier", "priority")
			return sel
		}
	}
	if len(available) > 0 {
		sel.Chosen = available[0]
		log.Info("Selected model", "model", sel.Chosen, "tier", "any-available")
		return sel
	}
	log.Warn("No generation models available, using fallback model", "model", fallback)
	return sel
}
