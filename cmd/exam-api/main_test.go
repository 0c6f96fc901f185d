package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/examdocumentflow/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func reset(t *testing.T) {
	for _, k := range []string{config.FileEnv, "GEMINI_API_KEY", "GENAI_BACKEND", "GCS_INGESTION", "LOG_MODE"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	once, appInstance, appLog, initErr = sync.Once{}, nil, nil, nil
	t.Cleanup(func() { once, appInstance, appLog, initErr = sync.Once{}, nil, nil, nil })
}

func TestHandleExamAPIInitialisesOnceThenShutsDown(t *testing.T) {
	reset(t)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handleExamAPI(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: %d %s", i, rec.Code, rec.Body.String())
		}
	}
	if appInstance == nil || appLog == nil {
		t.Fatal("initialise did not keep the app and logger")
	}
	shutdown()
}

func TestHandleExamAPIReportsConfigError(t *testing.T) {
	reset(t)
	t.Setenv("GENAI_BACKEND", "openai")

	rec := httptest.NewRecorder()
	handleExamAPI(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("got %d", rec.Code)
	}
	if appLog != nil {
		t.Fatal("logger built despite config error")
	}
	shutdown()
}

func TestShutdownBeforeInitialise(t *testing.T) {
	reset(t)
	shutdown()
}
