package llm

import "context"

// Backend is a generative model service.
type Backend interface {
	// ListModels returns the identifiers of models that support free-text
	// generation.
	ListModels(ctx context.Context) ([]string, error)
	// Generate sends parts to model and returns the concatenated text of the
	// first candidate.
	Generate(ctx context.Context, model string, parts ...Part) (string, error)
	Close() error
}

// Part is one piece of a prompt: either Text or an inline image.
type Part struct {
	Text  string
	Image *Image
}

// Image is raw image bytes tagged with their MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

func TextPart(s string) Part { return Part{Text: s} }

func ImagePart(img Image) Part { return Part{Image: &img} }
