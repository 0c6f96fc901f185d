package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/Lllllllleong/examdocumentflow/internal/llm/llmtest"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

const osiJSON = `[{"id": "1", "question": "Explain OSI model", "marks": "10", "co": "CO1", "bl": "L2"}]`

func newQuestionExtractor(b *llmtest.Backend) *QuestionExtractor {
	return NewQuestionExtractor(QuestionExtractorConfig{}, newGateway(b), logger.Nop())
}

func TestExtractQuestionsOSIExample(t *testing.T) {
	b := &llmtest.Backend{Text: osiJSON}
	res := newQuestionExtractor(b).Extract(context.Background(), "Q1. Explain OSI model (10 marks) CO1 L2")

	want := []models.QuestionRecord{{ID: "1", Question: "Explain OSI model", Marks: "10", CO: "CO1", BL: "L2"}}
	if !reflect.DeepEqual(res.Questions, want) {
		t.Fatalf("got %+v", res.Questions)
	}
	if res.Status != models.StatusOK {
		t.Fatalf("status: %s", res.Status)
	}
	if p := b.Calls()[0].Prompt(); !strings.HasSuffix(p, "Text to process:\nQ1. Explain OSI model (10 marks) CO1 L2") {
		t.Fatalf("prompt does not end with the paper text: %q", p)
	}
}

func TestExtractQuestionsFencedEqualsBare(t *testing.T) {
	bare := newQuestionExtractor(&llmtest.Backend{Text: osiJSON}).Extract(context.Background(), "x")
	for _, fenced := range []string{
		"```json\n" + osiJSON + "\n```",
		"```\n" + osiJSON + "\n```",
	} {
		got := newQuestionExtractor(&llmtest.Backend{Text: fenced}).Extract(context.Background(), "x")
		if !reflect.DeepEqual(got, bare) {
			t.Fatalf("fenced %q: got %+v want %+v", fenced, got, bare)
		}
	}
}

func TestExtractQuestionsTruncatesInput(t *testing.T) {
	b := &llmtest.Backend{Text: "[]"}
	text := strings.Repeat("ü", DefaultQuestionTextLimit+500)
	newQuestionExtractor(b).Extract(context.Background(), text)

	p := b.Calls()[0].Prompt()
	_, sent, _ := strings.Cut(p, "Text to process:\n")
	if utf8.RuneCountInString(sent) != DefaultQuestionTextLimit || !utf8.ValidString(sent) {
		t.Fatalf("sent %d runes", utf8.RuneCountInString(sent))
	}
}

func TestExtractQuestionsNormalizesFields(t *testing.T) {
	b := &llmtest.Backend{Text: `[{"ID": 3, "Question": " What is ARP? ", "marks": 2, "co": null}, null]`}
	res := newQuestionExtractor(b).Extract(context.Background(), "x")

	want := []models.QuestionRecord{{ID: "3", Question: "What is ARP?", Marks: "2", CO: "-", BL: "-"}}
	if !reflect.DeepEqual(res.Questions, want) {
		t.Fatalf("got %+v", res.Questions)
	}
}

func TestExtractQuestionsWrappedObject(t *testing.T) {
	b := &llmtest.Backend{Text: `{"questions": ` + osiJSON + `}`}
	res := newQuestionExtractor(b).Extract(context.Background(), "x")
	if len(res.Questions) != 1 || res.Questions[0].Question != "Explain OSI model" {
		t.Fatalf("got %+v", res)
	}
}

func TestExtractQuestionsEmptyList(t *testing.T) {
	res := newQuestionExtractor(&llmtest.Backend{Text: "[]"}).Extract(context.Background(), "no questions here")
	if len(res.Questions) != 0 || res.Status != models.StatusEmpty {
		t.Fatalf("got %+v", res)
	}
}

func TestExtractQuestionsFailures(t *testing.T) {
	cases := map[string]*llmtest.Backend{
		"not json":    {Text: "Sure! Here are the questions: 1. OSI"},
		"object":      {Text: `{"id": "1"}`},
		"scalar list": {Text: `["Explain OSI"]`},
		"backend":     {Err: errors.New("deadline exceeded")},
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			res := newQuestionExtractor(b).Extract(context.Background(), "x")
			if res.Status != models.StatusFailed || res.Error == "" {
				t.Fatalf("got %+v", res)
			}
			if res.Questions == nil || len(res.Questions) != 0 {
				t.Fatalf("failure must yield an empty, non-nil list: %#v", res.Questions)
			}
		})
	}
}

func TestExtractQuestionsNotConfigured(t *testing.T) {
	res := newQuestionExtractor(nil).Extract(context.Background(), "x")
	if res.Status != models.StatusNotConfigured {
		t.Fatalf("status: %s", res.Status)
	}
	want := []models.QuestionRecord{{ID: "0", Question: "API Key missing. Please set GEMINI_API_KEY.", Marks: "0", CO: "-", BL: "-"}}
	if !reflect.DeepEqual(res.Questions, want) {
		t.Fatalf("got %+v", res.Questions)
	}
}
