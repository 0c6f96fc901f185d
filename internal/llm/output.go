package llm

import "strings"

// StripCodeFence removes one surrounding Markdown code fence (```json, any
// casing, or a bare ```) from a model response. Text without a leading fence
// is returned trimmed but otherwise unchanged.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	body, ok := strings.CutPrefix(s, "```")
	if !ok {
		return s
	}
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	return strings.TrimSpace(body)
}

// refusalOpenings are how the model voices declining a task. They are only
// matched at the start of a response so student text quoting them survives.
var refusalOpenings = []string{
	"i am unable to transcribe",
	"i'm unable to transcribe",
	"i cannot transcribe",
	"i can't transcribe",
	"i cannot fulfill",
	"i can't fulfill",
	"i'm sorry, but i can",
	"as a large language model",
	"as an ai language model",
}

// refusalMaxLen caps what counts as a refusal; longer text is a transcription.
const refusalMaxLen = 300

// LooksLikeRefusal reports whether a short response opens with the model
// declining the task rather than doing it.
func LooksLikeRefusal(s string) bool {
	if len(s) > refusalMaxLen {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(s))
	for _, opening := range refusalOpenings {
		if strings.HasPrefix(lower, opening) {
			return true
		}
	}
	return false
}
