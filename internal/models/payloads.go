package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// These structs define the JSON payloads exchanged with the HTTP API.

// ProcessDocumentRequest references a document already uploaded to Cloud
// Storage. Multipart uploads do not use it.
type ProcessDocumentRequest struct {
	GCSUri  string `json:"gcsUri"`
	DocType string `json:"docType"`
}

// ProcessDocumentResponse is the output of /api/process-document.
type ProcessDocumentResponse struct {
	Filename      string     `json:"filename"`
	DocType       string     `json:"doc_type"`
	ExtractedText string     `json:"extracted_text"`
	Status        string     `json:"status"`
	Success       bool       `json:"success"`
	Error         string     `json:"error,omitempty"`
	Pages         []PageText `json:"pages,omitempty"`
}

// GenerateRequest is the input for both /api/extract-questions and
// /api/generate-answers. Marks is only read by the latter.
type GenerateRequest struct {
	Text  string     `json:"text"`
	Marks FlexString `json:"marks"`
}

// FlexString accepts a JSON string or number. Clients send marks both ways.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// ExtractQuestionsResponse is the output of /api/extract-questions.
type ExtractQuestionsResponse struct {
	Questions []QuestionRecord `json:"questions"`
	Status    Status           `json:"status"`
	Success   bool             `json:"success"`
	Error     string           `json:"error,omitempty"`
}

// GenerateAnswerResponse is the output of /api/generate-answers.
type GenerateAnswerResponse struct {
	IdealAnswer string `json:"ideal_answer"`
	Status      Status `json:"status"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
