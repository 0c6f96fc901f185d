package models

// Status tags the outcome of a core operation so that "nothing found" and
// "the call failed" stay distinguishable even when both carry empty payloads.
type Status string

const (
	StatusOK            Status = "ok"
	StatusEmpty         Status = "empty"
	StatusFailed        Status = "failed"
	StatusNotConfigured Status = "not_configured"
)

// Succeeded is true for ok and empty outcomes.
func (s Status) Succeeded() bool {
	return s == StatusOK || s == StatusEmpty
}

// ExtractionResult is the outcome of turning a document into text.
type ExtractionResult struct {
	Text   string
	Status Status
	Error  string
	Pages  []PageText
}

// Count returns how many pages came from the given source.
func (r ExtractionResult) Count(src PageSource) int {
	n := 0
	for _, p := range r.Pages {
		if p.Source == src {
			n++
		}
	}
	return n
}

// QuestionResult is the outcome of question extraction, in source order.
type QuestionResult struct {
	Questions []QuestionRecord
	Status    Status
	Error     string
}

// AnswerResult is the outcome of model-answer generation. Text always holds
// something to show the user; on failure it starts with "Error".
type AnswerResult struct {
	Text   string
	Status Status
	Error  string
}
