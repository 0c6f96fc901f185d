package llm_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/llm/llmtest"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
)

func newGateway(b llm.Backend) *llm.Gateway {
	sel := llm.ModelSelection{Chosen: "models/gemini-1.5-flash"}
	return llm.NewGateway(b, sel, llm.GatewayOptions{CallTimeout: time.Second}, logger.Nop())
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	return img
}

func TestGatewayNotConfigured(t *testing.T) {
	g := newGateway(nil)
	if g.Configured() {
		t.Fatal("gateway without backend reports configured")
	}
	if _, err := g.Generate(context.Background(), "hi"); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("Generate: got err=%v want ErrNotConfigured", err)
	}
	if _, err := g.GenerateWithImage(context.Background(), "hi", []byte{1}); !errors.Is(err, llm.ErrNotConfigured) {
		t.Fatalf("GenerateWithImage: got err=%v want ErrNotConfigured", err)
	}
	if llm.ErrNotConfigured.Error() != llm.NotConfiguredText {
		t.Fatalf("sentinel text changed: %q", llm.ErrNotConfigured.Error())
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestGatewayGenerateTrimsAndUsesChosenModel(t *testing.T) {
	b := &llmtest.Backend{Text: "\n  answer text \n"}
	g := newGateway(b)

	got, err := g.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "answer text" {
		t.Fatalf("got=%q want=%q", got, "answer text")
	}
	calls := b.Calls()
	if len(calls) != 1 || calls[0].Model != "models/gemini-1.5-flash" || calls[0].Prompt() != "prompt" {
		t.Fatalf("unexpected calls: %+v", calls)
	}
}

func TestGatewayWrapsBackendError(t *testing.T) {
	boom := errors.New("quota exceeded")
	g := newGateway(&llmtest.Backend{Err: boom})
	_, err := g.Generate(context.Background(), "p")
	if !errors.Is(err, boom) {
		t.Fatalf("got err=%v want wrapped %v", err, boom)
	}
}

func TestGatewayAppliesCallTimeout(t *testing.T) {
	b := &llmtest.Backend{}
	var deadlineSet bool
	b.Respond = func(llmtest.Call) (string, error) { return "ok", nil }
	g := llm.NewGateway(&deadlineBackend{Backend: b, seen: &deadlineSet}, llm.ModelSelection{Chosen: "m"}, llm.GatewayOptions{}, logger.Nop())
	if _, err := g.Generate(context.Background(), "p"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !deadlineSet {
		t.Fatal("backend call ran without a deadline")
	}
}

type deadlineBackend struct {
	*llmtest.Backend
	seen *bool
}

func (d *deadlineBackend) Generate(ctx context.Context, model string, parts ...llm.Part) (string, error) {
	_, *d.seen = ctx.Deadline()
	return d.Backend.Generate(ctx, model, parts...)
}

func TestGatewayGenerateWithImagePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	b := &llmtest.Backend{Text: "transcribed"}
	g := newGateway(b)
	if _, err := g.GenerateWithImage(context.Background(), "read this", buf.Bytes()); err != nil {
		t.Fatalf("GenerateWithImage: %v", err)
	}
	calls := b.Calls()
	if len(calls) != 1 || !calls[0].HasImage() {
		t.Fatalf("expected one call with an image part: %+v", calls)
	}
	img := calls[0].Parts[1].Image
	if img.MIMEType != "image/png" || !bytes.Equal(img.Data, buf.Bytes()) {
		t.Fatalf("png should pass through unchanged, got mime=%q len=%d", img.MIMEType, len(img.Data))
	}
}

func TestGatewayGenerateWithImageRejectsGarbage(t *testing.T) {
	b := &llmtest.Backend{Text: "never"}
	g := newGateway(b)
	if _, err := g.GenerateWithImage(context.Background(), "p", []byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
	if n := len(b.Calls()); n != 0 {
		t.Fatalf("backend called %d times for undecodable image", n)
	}
}

func TestNormalizeImageConvertsBMP(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	img, err := llm.NormalizeImage(buf.Bytes())
	if err != nil {
		t.Fatalf("NormalizeImage: %v", err)
	}
	if img.MIMEType != "image/png" {
		t.Fatalf("mime: got=%q want=image/png", img.MIMEType)
	}
	if _, err := png.Decode(bytes.NewReader(img.Data)); err != nil {
		t.Fatalf("output is not a png: %v", err)
	}
}

func TestNormalizeImageEmpty(t *testing.T) {
	if _, err := llm.NormalizeImage(nil); !errors.Is(err, llm.ErrEmptyImage) {
		t.Fatalf("got err=%v want ErrEmptyImage", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{"[1]", "[1]"},
		{"```json\n[1]\n```", "[1]"},
		{"```\n[1]\n```", "[1]"},
		{"  ```json [1] ```  ", "[1]"},
		{"```json\n[1]", "[1]"},
		{"text ```json [1] ```", "text ```json [1] ```"},
		{"```JSON\n[1]\n```", "[1]"},
		{"```Json [1] ```", "[1]"},
	}
	for _, tc := range cases {
		if got := llm.StripCodeFence(tc.in); got != tc.want {
			t.Fatalf("StripCodeFence(%q): got=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestLooksLikeRefusal(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"I am unable to transcribe this image.", true},
		{"  I'm sorry, but I can't help with that.", true},
		{"As a large language model, I cannot read handwriting.", true},
		{"Q1. Define TCP.", false},
		{"Q4. I cannot answer this part, I ran out of time.", false},
		{"I am unable to finish question 3.", false},
		{"d) I cannot provide a proof but the claim holds.", false},
		{strings.Repeat("student answer ", 30), false},
	}
	for _, tc := range cases {
		if got := llm.LooksLikeRefusal(tc.in); got != tc.want {
			t.Fatalf("LooksLikeRefusal(%q): got=%v want=%v", tc.in, got, tc.want)
		}
	}
}
