// Package app wires configuration, the generative backend, the extraction
// services and the HTTP router into one handler.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"google.golang.org/api/option"

	"github.com/Lllllllleong/examdocumentflow/internal/config"
	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/httpapi"
	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
	"github.com/Lllllllleong/examdocumentflow/internal/pdf"
	"github.com/Lllllllleong/examdocumentflow/internal/services"
)

// App owns every long-lived client. It is safe for concurrent requests.
type App struct {
	router  *gin.Engine
	gateway *llm.Gateway
	storage *storage.Client
	log     *logger.Logger
}

// New builds the application. A missing API key is not an error; the
// generation endpoints then report not_configured.
func New(ctx context.Context, cfg config.Config, log *logger.Logger) (*App, error) {
	backend, err := newBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return build(ctx, cfg, backend, log)
}

func newBackend(ctx context.Context, cfg config.Config, log *logger.Logger) (llm.Backend, error) {
	switch cfg.Backend {
	case config.BackendVertex:
		b, err := gcp.NewVertexBackend(ctx, cfg.ProjectID, cfg.VertexRegion)
		if err != nil {
			return nil, err
		}
		log.Info("Using Vertex AI backend", "projectId", cfg.ProjectID, "region", cfg.VertexRegion)
		return b, nil
	default:
		if cfg.GeminiAPIKey == "" {
			log.Warn("GEMINI_API_KEY not set; generation endpoints will report not_configured")
			return nil, nil
		}
		b, err := gcp.NewGeminiBackend(ctx, cfg.GeminiAPIKey, gcp.GeminiOptions{})
		if err != nil {
			return nil, err
		}
		log.Info("Using Gemini API backend")
		return b, nil
	}
}

func build(ctx context.Context, cfg config.Config, backend llm.Backend, log *logger.Logger) (*App, error) {
	var selection llm.ModelSelection
	if backend != nil {
		selection = llm.ResolveModel(ctx, backend, cfg.ModelPriority, cfg.FallbackModel, cfg.CallTimeout, log)
	}
	gateway := llm.NewGateway(backend, selection, llm.GatewayOptions{CallTimeout: cfg.CallTimeout}, log)

	poppler := pdf.NewPoppler(pdf.PopplerConfig{
		PdftotextPath: cfg.PdftotextPath,
		PdftoppmPath:  cfg.PdftoppmPath,
	}, nil, log)
	transcriber := services.NewTranscriber(gateway, log)
	extractor := services.NewExtractor(services.ExtractorConfig{
		DigitalTextThreshold:  cfg.DigitalTextThreshold,
		RenderDPI:             cfg.RenderDPI,
		TranscribeConcurrency: cfg.TranscribeConcurrency,
	}, poppler, transcriber, log)
	questions := services.NewQuestionExtractor(services.QuestionExtractorConfig{TextLimit: cfg.QuestionTextLimit}, gateway, log)
	answers := services.NewAnswerGenerator(services.AnswerGeneratorConfig{Subject: cfg.AnswerSubject}, gateway, log)

	a := &App{gateway: gateway, log: log}
	routerCfg := httpapi.RouterConfig{
		Extractor:      extractor,
		Questions:      questions,
		Answers:        answers,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Log:            log,
	}
	if cfg.GCSIngestion {
		client, err := storage.NewClient(ctx, option.WithScopes(storage.ScopeReadOnly))
		if err != nil {
			_ = gateway.Close()
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.storage = client
		routerCfg.Objects = gcp.GCSReader{Client: client}
	}
	a.router = httpapi.NewRouter(routerCfg)

	sel := gateway.Selection()
	log.Info("Exam API initialised",
		"model", sel.Chosen,
		"priority", sel.Priority,
		"available", len(sel.Available),
		"configured", gateway.Configured(),
		"gcsIngestion", cfg.GCSIngestion,
	)
	return a, nil
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Gateway exposes the generation gateway, mainly for diagnostics.
func (a *App) Gateway() *llm.Gateway { return a.gateway }

func (a *App) Close() error {
	var errs []error
	if err := a.gateway.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
