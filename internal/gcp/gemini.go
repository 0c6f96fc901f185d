package gcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
)

const generateContentMethod = "generateContent"

// GeminiBackend calls the Gemini API (generativelanguage.googleapis.com)
// with an API key.
type GeminiBackend struct {
	client *genai.Client
}

// GeminiOptions tunes the client. BaseURL overrides the public endpoint.
type GeminiOptions struct {
	BaseURL string
}

// NewGeminiBackend creates a Gemini API backend.
func NewGeminiBackend(ctx context.Context, apiKey string, opts GeminiOptions) (*GeminiBackend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("NewGeminiBackend: apiKey cannot be empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &GeminiBackend{client: client}, nil
}

// ListModels pages through every base model and keeps those that can
// generate content.
func (g *GeminiBackend) ListModels(ctx context.Context) ([]string, error) {
	var names []string
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list gemini models: %w", err)
		}
		if m != nil && slices.Contains(m.SupportedActions, generateContentMethod) {
			names = append(names, m.Name)
		}
	}
	return names, nil
}

func (g *GeminiBackend) Generate(ctx context.Context, model string, parts ...llm.Part) (string, error) {
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}

	genParts := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.Image != nil {
			genParts = append(genParts, genai.NewPartFromBytes(p.Image.Data, p.Image.MIMEType))
			continue
		}
		genParts = append(genParts, genai.NewPartFromText(p.Text))
	}
	contents := []*genai.Content{genai.NewContentFromParts(genParts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return geminiText(resp)
}

// geminiText concatenates the text parts of the first candidate. A blocked
// prompt with no candidates is reported as an error.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", nil
	}
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
		}
		return "", nil
	}
	c := resp.Candidates[0]
	if c == nil || c.Content == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// Close is a no-op; the client holds no resources of its own.
func (g *GeminiBackend) Close() error { return nil }
