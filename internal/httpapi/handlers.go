package httpapi

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
	"github.com/Lllllllleong/examdocumentflow/internal/models"
)

const (
	defaultDocType = "question_paper"
	defaultMarks   = "2"

	unsupportedTypeMessage = "Unsupported file type. Upload PDF or Image."
)

// multipartSlack covers the multipart framing around the file part.
const multipartSlack = 1 << 20

type DocumentExtractor interface {
	ExtractText(ctx context.Context, doc models.Document) (models.ExtractionResult, error)
}

type QuestionExtractor interface {
	Extract(ctx context.Context, text string) models.QuestionResult
}

type AnswerWriter interface {
	Generate(ctx context.Context, question string, marks models.Marks) models.AnswerResult
}

// ObjectReader fetches documents by gs:// URI. gcp.GCSReader satisfies it.
type ObjectReader interface {
	Read(ctx context.Context, uri string, maxBytes int64) (*gcp.GCSObject, error)
}

type handler struct {
	extractor DocumentExtractor
	questions QuestionExtractor
	answers   AnswerWriter
	objects   ObjectReader
	maxUpload int64
	log       *logger.Logger
}

func (h *handler) root(c *gin.Context) {
	respondOK(c, gin.H{"message": "AI Answer Evaluator API is running"})
}

func (h *handler) healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *handler) processDocument(c *gin.Context) {
	var (
		doc     models.Document
		docType string
		ok      bool
	)
	if c.ContentType() == gin.MIMEJSON {
		doc, docType, ok = h.documentFromGCS(c)
	} else {
		doc, docType, ok = h.documentFromUpload(c)
	}
	if !ok {
		return
	}

	logCtx := h.log.With("filename", doc.Filename, "docType", docType, "request_id", c.GetString("request_id"))
	logCtx.Info("Processing document", "contentType", doc.ContentType, "bytes", len(doc.Data))

	res, err := h.extractor.ExtractText(c.Request.Context(), doc)
	if errors.Is(err, models.ErrUnsupportedContentType) {
		respondError(c, http.StatusBadRequest, "unsupported_file_type", unsupportedTypeMessage)
		return
	}
	if err != nil {
		logCtx.Error("Extraction failed", "error", err)
		respondError(c, http.StatusInternalServerError, "extraction_failed", err.Error())
		return
	}

	status := string(res.Status)
	if res.Status.Succeeded() {
		status = "success"
	}
	respondOK(c, models.ProcessDocumentResponse{
		Filename:      doc.Filename,
		DocType:       docType,
		ExtractedText: res.Text,
		Status:        status,
		Success:       res.Status.Succeeded(),
		Error:         res.Error,
		Pages:         res.Pages,
	})
}

// documentFromUpload reads the multipart "file" field. It writes the error
// response itself and reports false when the request cannot proceed.
func (h *handler) documentFromUpload(c *gin.Context) (models.Document, string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartSlack)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", "Uploaded file exceeds the size limit.")
			return models.Document{}, "", false
		}
		respondError(c, http.StatusBadRequest, "missing_file", "A multipart field named 'file' is required.")
		return models.Document{}, "", false
	}
	if fh.Size > h.maxUpload {
		respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", "Uploaded file exceeds the size limit.")
		return models.Document{}, "", false
	}

	ct, err := models.ParseContentType(declaredType(fh.Header.Get("Content-Type"), fh.Filename))
	if err != nil {
		respondError(c, http.StatusBadRequest, "unsupported_file_type", unsupportedTypeMessage)
		return models.Document{}, "", false
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable_file", "Uploaded file could not be read.")
		return models.Document{}, "", false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respondError(c, http.StatusBadRequest, "unreadable_file", "Uploaded file could not be read.")
		return models.Document{}, "", false
	}

	docType := c.PostForm("doc_type")
	if docType == "" {
		docType = c.DefaultQuery("doc_type", defaultDocType)
	}
	return models.Document{Filename: fh.Filename, ContentType: ct, Data: data}, docType, true
}

func (h *handler) documentFromGCS(c *gin.Context) (models.Document, string, bool) {
	if h.objects == nil {
		respondError(c, http.StatusNotImplemented, "gcs_unavailable", "Cloud Storage ingestion is not configured.")
		return models.Document{}, "", false
	}
	var req models.ProcessDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return models.Document{}, "", false
	}
	if _, _, err := gcp.ParseGCSUri(req.GCSUri); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_gcs_uri", err.Error())
		return models.Document{}, "", false
	}

	obj, err := h.objects.Read(c.Request.Context(), req.GCSUri, h.maxUpload)
	if errors.Is(err, gcp.ErrObjectTooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "file_too_large", err.Error())
		return models.Document{}, "", false
	}
	if err != nil {
		h.log.Error("Failed to read GCS object", "gcsUri", req.GCSUri, "error", err)
		respondError(c, http.StatusBadGateway, "gcs_read_failed", err.Error())
		return models.Document{}, "", false
	}

	ct, err := models.ParseContentType(declaredType(obj.ContentType, obj.Name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "unsupported_file_type", unsupportedTypeMessage)
		return models.Document{}, "", false
	}
	docType := req.DocType
	if docType == "" {
		docType = defaultDocType
	}
	return models.Document{Filename: path.Base(obj.Name), ContentType: ct, Data: obj.Data}, docType, true
}

// declaredType falls back to the file extension when the client sent no
// specific MIME type.
func declaredType(contentType, filename string) string {
	ct := strings.TrimSpace(contentType)
	if ct != "" && !strings.HasPrefix(ct, "application/octet-stream") {
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); byExt != "" {
		return byExt
	}
	return ct
}

func (h *handler) extractQuestions(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	res := h.questions.Extract(c.Request.Context(), req.Text)
	respondOK(c, models.ExtractQuestionsResponse{
		Questions: res.Questions,
		Status:    res.Status,
		Success:   res.Status.Succeeded(),
		Error:     res.Error,
	})
}

func (h *handler) generateAnswers(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	raw := string(req.Marks)
	if raw == "" {
		raw = defaultMarks
	}
	res := h.answers.Generate(c.Request.Context(), req.Text, models.ParseMarks(raw))
	respondOK(c, models.GenerateAnswerResponse{
		IdealAnswer: res.Text,
		Status:      res.Status,
		Success:     res.Status.Succeeded(),
		Error:       res.Error,
	})
}
