package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/examdocumentflow/internal/logger"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
	"github.com/Lllllllleong/examdocumentflow/internal/pdf"
)

const (
	DefaultDigitalTextThreshold = 50
	DefaultRenderDPI            = 300
)

// PageTranscriber is satisfied by *Transcriber.
type PageTranscriber interface {
	Transcribe(ctx context.Context, image []byte) Outcome
}

// ExtractorConfig holds the page-routing knobs.
type ExtractorConfig struct {
	// DigitalTextThreshold is the trimmed rune count a page's embedded text
	// must exceed to skip transcription.
	DigitalTextThreshold int
	RenderDPI            int
	// TranscribeConcurrency bounds parallel page transcriptions. 1 keeps
	// pages strictly sequential.
	TranscribeConcurrency int
}

// Extractor recovers the text of an uploaded document, reading embedded PDF
// text where it exists and transcribing page images where it does not.
type Extractor struct {
	cfg         ExtractorConfig
	opener      pdf.Opener
	transcriber PageTranscriber
	log         *logger.Logger
}

func NewExtractor(cfg ExtractorConfig, opener pdf.Opener, transcriber PageTranscriber, log *logger.Logger) *Extractor {
	if cfg.DigitalTextThreshold <= 0 {
		cfg.DigitalTextThreshold = DefaultDigitalTextThreshold
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = DefaultRenderDPI
	}
	if cfg.TranscribeConcurrency <= 0 {
		cfg.TranscribeConcurrency = 1
	}
	return &Extractor{cfg: cfg, opener: opener, transcriber: transcriber, log: log.With("service", "Extractor")}
}

// ExtractText returns the document's text. The returned error is non-nil only
// for an unsupported content type; every other failure is reported through
// the result's Status.
func (e *Extractor) ExtractText(ctx context.Context, doc models.Document) (models.ExtractionResult, error) {
	switch {
	case doc.ContentType == models.ContentTypePDF:
		return e.extractPDF(ctx, doc), nil
	case doc.ContentType.IsImage():
		return e.extractImage(ctx, doc), nil
	}
	return models.ExtractionResult{}, fmt.Errorf("%w: %q", models.ErrUnsupportedContentType, doc.ContentType)
}

func (e *Extractor) extractImage(ctx context.Context, doc models.Document) models.ExtractionResult {
	out := e.transcriber.Transcribe(ctx, doc.Data)
	page := models.PageText{Index: 0, Text: out.Text, Source: sourceFor(out)}
	res := models.ExtractionResult{Text: out.Text, Status: out.Status, Pages: []models.PageText{page}}
	if out.Err != nil {
		res.Error = out.Err.Error()
	}
	return res
}

func (e *Extractor) extractPDF(ctx context.Context, doc models.Document) models.ExtractionResult {
	logCtx := e.log.With("filename", doc.Filename)

	src, err := e.opener.Open(ctx, doc.Data)
	if err != nil {
		logCtx.Error("Failed to open pdf", "error", err)
		return models.ExtractionResult{
			Status: models.StatusFailed,
			Error:  fmt.Sprintf("Error during PDF extraction: %v", err),
		}
	}
	defer src.Close()

	pageCount := src.PageCount()
	pages := make([]models.PageText, pageCount)
	var scanned []int

	for i := 0; i < pageCount; i++ {
		pages[i] = models.PageText{Index: i, Source: models.PageSourceNone}
		text, err := src.ExtractText(ctx, i)
		if err != nil {
			logCtx.Warn("Digital text extraction failed, falling back to transcription", "page", i, "error", err)
		}
		if utf8.RuneCountInString(strings.TrimSpace(text)) > e.cfg.DigitalTextThreshold {
			pages[i].Text = text
			pages[i].Source = models.PageSourceDigital
			continue
		}
		scanned = append(scanned, i)
	}
	logCtx.Info("Routed pdf pages", "pageCount", pageCount, "digital", pageCount-len(scanned), "scanned", len(scanned))

	// Each goroutine writes only its own slot, so page order survives.
	var eg errgroup.Group
	eg.SetLimit(e.cfg.TranscribeConcurrency)
	for _, i := range scanned {
		eg.Go(func() error {
			pages[i] = e.transcribePage(ctx, logCtx, src, i)
			return nil
		})
	}
	_ = eg.Wait()

	var sb strings.Builder
	failed := 0
	for _, p := range pages {
		if p.Source == models.PageSourceFailed {
			failed++
		}
		if p.Text != "" {
			sb.WriteString(p.Text)
			sb.WriteString("\n\n")
		}
	}

	res := models.ExtractionResult{Text: strings.TrimSpace(sb.String()), Pages: pages}
	switch {
	case res.Text != "":
		res.Status = models.StatusOK
	case failed > 0:
		res.Status = models.StatusFailed
		res.Error = fmt.Sprintf("no text recovered: %d of %d pages failed", failed, pageCount)
	default:
		res.Status = models.StatusEmpty
	}
	logCtx.Info("PDF extraction complete", "status", res.Status, "chars", len(res.Text), "failedPages", failed)
	return res
}

// transcribePage renders one page and transcribes it. Failures are confined
// to the page.
func (e *Extractor) transcribePage(ctx context.Context, logCtx *logger.Logger, src pdf.Source, index int) models.PageText {
	page := models.PageText{Index: index}
	img, err := src.Render(ctx, index, e.cfg.RenderDPI)
	if err != nil {
		logCtx.Error("Failed to render page", "page", index, "error", err)
		page.Source = models.PageSourceFailed
		return page
	}
	out := e.transcriber.Transcribe(ctx, img)
	page.Text = out.Text
	page.Source = sourceFor(out)
	return page
}

func sourceFor(out Outcome) models.PageSource {
	switch out.Status {
	case models.StatusOK:
		return models.PageSourceTranscribed
	case models.StatusEmpty:
		return models.PageSourceNone
	default:
		return models.PageSourceFailed
	}
}
