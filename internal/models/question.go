package models

import (
	"strconv"
	"strings"
)

// Placeholder stands in for any question field the model could not fill.
const Placeholder = "-"

// QuestionRecord is one question parsed out of an exam paper. ID is a display
// label as written in the paper and is not unique.
type QuestionRecord struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Marks    string `json:"marks"`
	CO       string `json:"co"`
	BL       string `json:"bl"`
}

// Normalize trims every field and replaces blanks with Placeholder so that
// consumers can rely on all five fields being present.
func (q QuestionRecord) Normalize() QuestionRecord {
	fill := func(s string) string {
		s = strings.TrimSpace(s)
		if s == "" {
			return Placeholder
		}
		return s
	}
	return QuestionRecord{
		ID:       fill(q.ID),
		Question: fill(q.Question),
		Marks:    fill(q.Marks),
		CO:       fill(q.CO),
		BL:       fill(q.BL),
	}
}

// DefaultMarks is used when a marks value cannot be parsed.
const DefaultMarks = 2

// ConciseMarksLimit is the highest mark value answered in a few lines.
const ConciseMarksLimit = 3

// Marks is a question's mark value. Raw is kept for display; Value is what
// the length policy uses.
type Marks struct {
	Raw    string
	Value  int
	Parsed bool
}

// ParseMarks converts raw to an integer, falling back to DefaultMarks.
func ParseMarks(raw string) Marks {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return Marks{Raw: raw, Value: DefaultMarks}
	}
	return Marks{Raw: raw, Value: n, Parsed: true}
}

// Concise reports whether the answer should be a short one.
func (m Marks) Concise() bool {
	return m.Value <= ConciseMarksLimit
}

func (m Marks) String() string {
	if m.Raw == "" {
		return strconv.Itoa(m.Value)
	}
	return m.Raw
}
