package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
)

// ErrDiscoveryUnsupported is returned by backends that cannot list models.
var ErrDiscoveryUnsupported = errors.New("model discovery is not supported by this backend")

// VertexBackend generates through Vertex AI using application default
// credentials.
type VertexBackend struct {
	baseClient *genai.Client
}

// NewVertexBackend creates a Vertex AI backend for the given project and region.
func NewVertexBackend(ctx context.Context, projectID, region string) (*VertexBackend, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexBackend: projectID and region cannot be empty")
	}
	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &VertexBackend{baseClient: baseClient}, nil
}

// ListModels is not offered by the Vertex generative API.
func (v *VertexBackend) ListModels(ctx context.Context) ([]string, error) {
	return nil, ErrDiscoveryUnsupported
}

func (v *VertexBackend) Generate(ctx context.Context, model string, parts ...llm.Part) (string, error) {
	gm := v.baseClient.GenerativeModel(strings.TrimPrefix(model, "models/"))

	genParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Image != nil {
			genParts = append(genParts, genai.Blob{MIMEType: p.Image.MIMEType, Data: p.Image.Data})
			continue
		}
		genParts = append(genParts, genai.Text(p.Text))
	}

	resp, err := gm.GenerateContent(ctx, genParts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return vertexText(resp), nil
}

// vertexText concatenates the text parts of the first candidate.
func vertexText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}

func (v *VertexBackend) Close() error {
	if v.baseClient != nil {
		return v.baseClient.Close()
	}
	return nil
}
