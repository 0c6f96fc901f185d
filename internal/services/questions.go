package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

// DefaultQuestionTextLimit caps how much paper text is sent for question
// extraction.
const DefaultQuestionTextLimit = 3000

// missingKeyRecord is returned alone when no credential is configured.
var missingKeyRecord = models.QuestionRecord{
	ID:       "0",
	Question: "API Key missing. Please set GEMINI_API_KEY.",
	Marks:    "0",
	CO:       models.Placeholder,
	BL:       models.Placeholder,
}

type QuestionExtractorConfig struct {
	TextLimit int
}

// QuestionExtractor parses exam-paper text into structured question records.
type QuestionExtractor struct {
	cfg QuestionExtractorConfig
	gen Generator
	log *logger.Logger
}

func NewQuestionExtractor(cfg QuestionExtractorConfig, gen Generator, log *logger.Logger) *QuestionExtractor {
	if cfg.TextLimit <= 0 {
		cfg.TextLimit = DefaultQuestionTextLimit
	}
	return &QuestionExtractor{cfg: cfg, gen: gen, log: log.With("service", "QuestionExtractor")}
}

func (q *QuestionExtractor) Extract(ctx context.Context, text string) models.QuestionResult {
	if !q.gen.Configured() {
		return models.QuestionResult{
			Questions: []models.QuestionRecord{missingKeyRecord},
			Status:    models.StatusNotConfigured,
			Error:     llm.NotConfiguredText,
		}
	}

	input := truncateRunes(text, q.cfg.TextLimit)
	resp, err := q.gen.Generate(ctx, gcp.QuestionExtractorPrompt(input))
	if err != nil {
		q.log.Error("Question extraction call failed", "error", err)
		return models.QuestionResult{Questions: []models.QuestionRecord{}, Status: models.StatusFailed, Error: err.Error()}
	}

	questions, err := parseQuestions(resp)
	if err != nil {
		q.log.Error("Failed to parse question list", "error", err, "response", truncateRunes(resp, 200))
		return models.QuestionResult{Questions: []models.QuestionRecord{}, Status: models.StatusFailed, Error: err.Error()}
	}
	if len(questions) == 0 {
		return models.QuestionResult{Questions: questions, Status: models.StatusEmpty}
	}
	q.log.Info("Extracted questions", "count", len(questions), "inputRunes", len([]rune(input)))
	return models.QuestionResult{Questions: questions, Status: models.StatusOK}
}

// parseQuestions decodes a model response into normalized records. It
// accepts a fenced or bare JSON array, or an object wrapping one under
// "questions". Field names match case-insensitively and scalar values of
// any JSON type are coerced to strings.
func parseQuestions(resp string) ([]models.QuestionRecord, error) {
	body := llm.StripCodeFence(resp)
	if body == "" {
		return nil, fmt.Errorf("empty response")
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		var wrapped struct {
			Questions []map[string]any `json:"questions"`
		}
		if werr := json.Unmarshal([]byte(body), &wrapped); werr != nil || wrapped.Questions == nil {
			return nil, fmt.Errorf("response is not a JSON list of questions: %w", err)
		}
		items = wrapped.Questions
	}

	out := make([]models.QuestionRecord, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		fields := make(map[string]string, len(item))
		for k, v := range item {
			fields[strings.ToLower(strings.TrimSpace(k))] = stringify(v)
		}
		rec := models.QuestionRecord{
			ID:       fields["id"],
			Question: fields["question"],
			Marks:    fields["marks"],
			CO:       fields["co"],
			BL:       fields["bl"],
		}
		out = append(out, rec.Normalize())
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
