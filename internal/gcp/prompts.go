package gcp

import "fmt"

// --- Transcriber Prompts ---
const TranscriberPrompt = `Transcribe the handwritten text from this image page.
Output ONLY the text content.
Maintain the original structure (paragraphs, lists) as much as possible.
Do not include any introductory or concluding remarks like "Here is the text".
If the image contains diagrams, briefly describe them in [brackets].`

// --- Question Extractor Prompts ---
const questionExtractorTemplate = `Extract all questions from the following text.
For each question, identify:
- Question Number (id)
- Question Text (question)
- Marks (marks)
- Course Outcome (CO) e.g., CO1, CO2 (if present, else predict)
- Bloom's Level (BL) e.g., L1, L2, L3 (if present, else predict)

Return the result ONLY as a VALID JSON list of objects.
Example format:
[
    {"id": "1", "question": "What is...", "marks": "2", "co": "CO1", "bl": "L1"}
]

Text to process:
%s`

// QuestionExtractorPrompt embeds the (already truncated) paper text.
func QuestionExtractorPrompt(text string) string {
	return fmt.Sprintf(questionExtractorTemplate, text)
}

// --- Answer Generator Prompts ---
const (
	ConciseAnswerInstruction  = "Give a concise, direct answer in 3-5 lines."
	DetailedAnswerInstruction = "Give a detailed, elaborated answer with points, examples, or steps as appropriate."
)

const answerTemplate = `You are an expert evaluator for %s.
Write a perfect technical answer for the following question.

Question: %s
Marks: %s

Instructions:
- %s
- Include key technical terms.
- Use Bullet points for readability if needed.`

// DefaultSubject frames answer prompts when no subject is configured.
const DefaultSubject = "Computer Networks"

// AnswerPrompt builds the model-answer prompt.
func AnswerPrompt(subject, question, marks, lengthInstruction string) string {
	if subject == "" {
		subject = DefaultSubject
	}
	return fmt.Sprintf(answerTemplate, subject, question, marks, lengthInstruction)
}
