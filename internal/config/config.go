// Package config assembles service settings from defaults, an optional YAML
// file and the environment, in that order of precedence (last wins).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
	"github.com/Lllllllleong/examdocumentflow/internal/llm"
	"github.com/Lllllllleong/examdocumentflow/internal/services"
)

// FileEnv names the YAML file to layer under the environment.
const FileEnv = "EXAM_API_CONFIG"

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

const DefaultMaxUploadBytes int64 = 32 << 20

type Config struct {
	// GeminiAPIKey is read from the environment only.
	GeminiAPIKey string `yaml:"-"`

	Backend       string        `yaml:"backend"`
	ProjectID     string        `yaml:"project_id"`
	VertexRegion  string        `yaml:"vertex_region"`
	ModelPriority []string      `yaml:"model_priority"`
	FallbackModel string        `yaml:"fallback_model"`
	CallTimeout   time.Duration `yaml:"call_timeout"`
	AnswerSubject string        `yaml:"answer_subject"`

	DigitalTextThreshold  int `yaml:"digital_text_threshold"`
	RenderDPI             int `yaml:"render_dpi"`
	QuestionTextLimit     int `yaml:"question_text_limit"`
	TranscribeConcurrency int `yaml:"transcribe_concurrency"`

	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	PdftotextPath  string `yaml:"pdftotext_path"`
	PdftoppmPath   string `yaml:"pdftoppm_path"`
	// GCSIngestion enables {"gcsUri"} requests; it needs storage credentials.
	GCSIngestion bool `yaml:"gcs_ingestion"`

	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	LogMode            string   `yaml:"log_mode"`
	Port               string   `yaml:"port"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		Backend:               BackendGemini,
		VertexRegion:          "us-central1",
		ModelPriority:         append([]string(nil), llm.DefaultPriority...),
		FallbackModel:         llm.DefaultFallbackModel,
		CallTimeout:           llm.DefaultCallTimeout,
		AnswerSubject:         gcp.DefaultSubject,
		DigitalTextThreshold:  services.DefaultDigitalTextThreshold,
		RenderDPI:             services.DefaultRenderDPI,
		QuestionTextLimit:     services.DefaultQuestionTextLimit,
		TranscribeConcurrency: 1,
		MaxUploadBytes:        DefaultMaxUploadBytes,
		PdftotextPath:         "pdftotext",
		PdftoppmPath:          "pdftoppm",
		CORSAllowedOrigins:    []string{"*"},
		LogMode:               "dev",
		Port:                  "8080",
	}
}

// Load builds the configuration. A missing EXAM_API_CONFIG is fine; a file
// that is named but unreadable or malformed is an error.
func Load() (Config, error) {
	cfg := Defaults()
	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.Backend = strings.ToLower(gcp.GetEnv("GENAI_BACKEND", cfg.Backend))
	cfg.ProjectID = gcp.GetEnv("PROJECT_ID", cfg.ProjectID)
	cfg.VertexRegion = gcp.GetEnv("VERTEX_AI_REGION", cfg.VertexRegion)
	cfg.ModelPriority = gcp.GetEnvList("MODEL_PRIORITY", cfg.ModelPriority)
	cfg.FallbackModel = gcp.GetEnv("FALLBACK_MODEL", cfg.FallbackModel)
	cfg.CallTimeout = gcp.GetEnvDuration("GENAI_CALL_TIMEOUT", cfg.CallTimeout)
	cfg.AnswerSubject = gcp.GetEnv("ANSWER_SUBJECT", cfg.AnswerSubject)
	cfg.DigitalTextThreshold = gcp.GetEnvInt("DIGITAL_TEXT_THRESHOLD", cfg.DigitalTextThreshold)
	cfg.RenderDPI = gcp.GetEnvInt("RENDER_DPI", cfg.RenderDPI)
	cfg.QuestionTextLimit = gcp.GetEnvInt("QUESTION_TEXT_LIMIT", cfg.QuestionTextLimit)
	cfg.TranscribeConcurrency = gcp.GetEnvInt("TRANSCRIBE_CONCURRENCY", cfg.TranscribeConcurrency)
	cfg.MaxUploadBytes = int64(gcp.GetEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.PdftotextPath = gcp.GetEnv("PDFTOTEXT_PATH", cfg.PdftotextPath)
	cfg.PdftoppmPath = gcp.GetEnv("PDFTOPPM_PATH", cfg.PdftoppmPath)
	cfg.GCSIngestion = gcp.GetEnvBool("GCS_INGESTION", cfg.GCSIngestion)
	cfg.CORSAllowedOrigins = gcp.GetEnvList("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.LogMode = gcp.GetEnv("LOG_MODE", cfg.LogMode)
	cfg.Port = gcp.GetEnv("PORT", cfg.Port)
}

// Validate rejects settings that cannot work. A missing API key is not an
// error: the service starts and reports not_configured per request.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendGemini:
	case BackendVertex:
		if c.ProjectID == "" {
			return fmt.Errorf("PROJECT_ID is required when GENAI_BACKEND=%s", BackendVertex)
		}
	default:
		return fmt.Errorf("unknown GENAI_BACKEND %q", c.Backend)
	}
	if c.TranscribeConcurrency < 1 {
		return fmt.Errorf("TRANSCRIBE_CONCURRENCY must be at least 1, got %d", c.TranscribeConcurrency)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	return nil
}
