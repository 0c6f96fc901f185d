// Package httpapi exposes the extraction and generation services over HTTP.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/examdocumentflow/internal/logger"
)

const defaultMaxUploadBytes int64 = 32 << 20

type RouterConfig struct {
	Extractor DocumentExtractor
	Questions QuestionExtractor
	Answers   AnswerWriter
	// Objects enables JSON {"gcsUri"} requests on /api/process-document.
	Objects ObjectReader

	MaxUploadBytes int64
	AllowedOrigins []string
	Log            *logger.Logger
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUploadBytes
	}
	h := &handler{
		extractor: cfg.Extractor,
		questions: cfg.Questions,
		answers:   cfg.Answers,
		objects:   cfg.Objects,
		maxUpload: maxUpload,
		log:       log.With("service", "httpapi"),
	}

	router := gin.New()
	router.MaxMultipartMemory = maxUpload
	router.Use(gin.Recovery(), RequestID(), RequestLogger(log), CORS(cfg.AllowedOrigins))

	router.GET("/", h.root)
	router.GET("/healthz", h.healthz)

	api := router.Group("/api")
	{
		api.POST("/process-document", h.processDocument)
		api.POST("/extract-questions", h.extractQuestions)
		api.POST("/generate-answers", h.generateAnswers)
	}
	return router
}
