package services

import (
	"context"

	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

// AnswerNotConfiguredText is shown in place of an answer when no credential
// is configured.
const AnswerNotConfiguredText = "Error: GEMINI_API_KEY not set in backend."

type AnswerGeneratorConfig struct {
	Subject string
}

// AnswerGenerator writes model answers sized to a question's marks.
type AnswerGenerator struct {
	cfg AnswerGeneratorConfig
	gen Generator
	log *logger.Logger
}

func NewAnswerGenerator(cfg AnswerGeneratorConfig, gen Generator, log *logger.Logger) *AnswerGenerator {
	if cfg.Subject == "" {
		cfg.Subject = gcp.DefaultSubject
	}
	return &AnswerGenerator{cfg: cfg, gen: gen, log: log.With("service", "AnswerGenerator")}
}

// LengthInstruction picks the answer-length directive for marks.
func LengthInstruction(marks models.Marks) string {
	if marks.Concise() {
		return gcp.ConciseAnswerInstruction
	}
	return gcp.DetailedAnswerInstruction
}

func (a *AnswerGenerator) Generate(ctx context.Context, question string, marks models.Marks) models.AnswerResult {
	if !a.gen.Configured() {
		return models.AnswerResult{Text: AnswerNotConfiguredText, Status: models.StatusNotConfigured, Error: llm.NotConfiguredText}
	}
	if !marks.Parsed {
		a.log.Debug("Unparseable marks, using default", "marks", marks.Raw, "default", marks.Value)
	}

	prompt := gcp.AnswerPrompt(a.cfg.Subject, question, marks.String(), LengthInstruction(marks))
	text, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.log.Error("Answer generation failed", "error", err)
		return models.AnswerResult{Text: "Error generating answer: " + err.Error(), Status: models.StatusFailed, Error: err.Error()}
	}
	if text == "" {
		return models.AnswerResult{Status: models.StatusEmpty}
	}
	return models.AnswerResult{Text: text, Status: models.StatusOK}
}
