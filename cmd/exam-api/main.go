package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/GoogleCloudPlatform/functions-framework-go/funcframework"
	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/gin-gonic/gin"

	"github.com/Lllllllleong/examdocumentflow/internal/app"
	"github.com/Lllllllleong/examdocumentflow/internal/config"
	"github.com/Lllllllleong/examdocumentflow/internal/logger"
)

var (
	appInstance *app.App
	appLog      *logger.Logger
	port        = "8080"
	once        sync.Once
	initErr     error
)

func init() {
	// "HandleExamAPI" is the entry point name we'll see in GCP.
	functions.HTTP("HandleExamAPI", handleExamAPI)
}

// main runs the function locally. Set FUNCTION_TARGET=HandleExamAPI to serve
// it at the root path.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}
	port = cfg.Port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- funcframework.Start(port) }()

	select {
	case err := <-errc:
		shutdown()
		log.Fatalf("funcframework.Start: %v", err)
	case <-ctx.Done():
		shutdown()
	}
}

// shutdown closes the app and flushes buffered log entries. The no-op Do
// waits for an in-flight initialise.
func shutdown() {
	once.Do(func() {})
	if appInstance != nil {
		if err := appInstance.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}
	if appLog != nil {
		appLog.Sync()
	}
}

func initialise() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	appLog, err = logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	if cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	return app.New(context.Background(), cfg, appLog)
}

func handleExamAPI(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		appInstance, initErr = initialise()
	})
	if initErr != nil {
		log.Printf("CRITICAL: exam API initialization failed: %v", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	appInstance.ServeHTTP(w, r)
}
