package services

import (
	"context"
	"errors"

	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

// Generator is the slice of *llm.Gateway the services depend on.
type Generator interface {
	Configured() bool
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, image []byte) (string, error)
}

var errRefusal = errors.New("model declined to transcribe the page")

// Outcome is the tagged result of one transcription.
type Outcome struct {
	Text   string
	Status models.Status
	Err    error
}

// Transcriber turns a page image into text with a vision-capable model.
type Transcriber struct {
	gen Generator
	log *logger.Logger
}

func NewTranscriber(gen Generator, log *logger.Logger) *Transcriber {
	return &Transcriber{gen: gen, log: log.With("service", "Transcriber")}
}

// Transcribe never fails loudly: a backend error, an undecodable image or a
// refusal all produce an outcome with empty Text.
func (t *Transcriber) Transcribe(ctx context.Context, image []byte) Outcome {
	if !t.gen.Configured() {
		return Outcome{Status: models.StatusNotConfigured, Err: llm.ErrNotConfigured}
	}

	text, err := t.gen.GenerateWithImage(ctx, gcp.TranscriberPrompt, image)
	if err != nil {
		t.log.Error("Transcription failed", "error", err, "imageBytes", len(image))
		return Outcome{Status: models.StatusFailed, Err: err}
	}
	if llm.LooksLikeRefusal(text) {
		t.log.Warn("LLM refusal detected", "response", text)
		return Outcome{Status: models.StatusFailed, Err: errRefusal}
	}
	if text == "" {
		t.log.Warn("No text recovered from image")
		return Outcome{Status: models.StatusEmpty}
	}
	return Outcome{Text: text, Status: models.StatusOK}
}
