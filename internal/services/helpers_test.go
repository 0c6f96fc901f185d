package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/llm/llmtest"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
	"github.com/Lllllllleong/examdocumentflow/internal/pdf"
)

func newGateway(b *llmtest.Backend) *llm.Gateway {
	if b == nil {
		return llm.NewGateway(nil, llm.ModelSelection{}, llm.GatewayOptions{}, logger.Nop())
	}
	return llm.NewGateway(b, llm.ModelSelection{Chosen: "models/gemini-1.5-flash"}, llm.GatewayOptions{}, logger.Nop())
}

// pngBytes encodes a 1x1 image whose red channel tags it with marker.
func pngBytes(t *testing.T, marker uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: marker, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// markerOf decodes an image produced by pngBytes.
func markerOf(data []byte) int {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return -1
	}
	r, _, _, _ := img.At(0, 0).RGBA()
	return int(r >> 8)
}

type fakePage struct {
	text      string
	textErr   error
	render    []byte
	renderErr error
}

type fakeSource struct {
	pages []fakePage

	mu       sync.Mutex
	rendered []int
	closed   bool
}

func (s *fakeSource) PageCount() int { return len(s.pages) }

func (s *fakeSource) ExtractText(ctx context.Context, index int) (string, error) {
	if index < 0 || index >= len(s.pages) {
		return "", pdf.ErrPageRange
	}
	return s.pages[index].text, s.pages[index].textErr
}

func (s *fakeSource) Render(ctx context.Context, index, dpi int) ([]byte, error) {
	if index < 0 || index >= len(s.pages) {
		return nil, pdf.ErrPageRange
	}
	s.mu.Lock()
	s.rendered = append(s.rendered, index)
	s.mu.Unlock()
	return s.pages[index].render, s.pages[index].renderErr
}

func (s *fakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type fakeOpener struct {
	src *fakeSource
	err error
}

func (o *fakeOpener) Open(ctx context.Context, data []byte) (pdf.Source, error) {
	if o.err != nil {
		return nil, o.err
	}
	if o.src == nil {
		return nil, errors.New("no source")
	}
	return o.src, nil
}
