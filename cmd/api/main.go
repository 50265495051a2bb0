package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/analysis"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/api/handlers"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/api/middleware"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/config"
	infraBQ "github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/infra/bigquery"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/jobs/inmemory"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New()
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	ctx := logger.WithContext(context.Background(), log)

	svc, cleanup, err := analysis.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build analysis service")
	}
	defer cleanup()

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Jobs.QueueSize, cfg.Jobs.Workers, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	log.Info().Int("workers", cfg.Jobs.Workers).Msg("Starting job workers")
	if err := jobQueue.Start(workerCtx, svc.HandleJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job workers")
	}

	if cfg.Jobs.Retention > 0 {
		go pruneJobs(workerCtx, jobStore, cfg.Jobs.Retention, log)
	}

	var runsHandler *handlers.RunsHandler
	if cfg.RecorderEnabled() {
		runRepo, err := infraBQ.NewRunRepository(ctx, cfg.Recorder.ProjectID, cfg.Recorder.Dataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create run repository")
		}
		defer runRepo.Close()
		runsHandler = handlers.NewRunsHandler(runRepo, log)
	}

	jobsHandler := handlers.NewJobsHandler(jobQueue, jobStore, log)

	// Apply middleware
	handler := middleware.RequestID(log)(
		middleware.Recovery(log)(
			middleware.Logger(log)(
				middleware.CORS(cfg.Server.AllowedOrigin)(
					newRouter(jobsHandler, runsHandler),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	shutdown(server, jobQueue, cancelWorker, log)
	log.Info().Msg("Server exited")
}

// shutdown stops accepting requests, then lets in-flight analyses finish.
func shutdown(server *http.Server, queue *inmemory.Queue, cancelWorker context.CancelFunc, log zerolog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := queue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	cancelWorker()

	if err := queue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}
}

// pruneJobs drops finished jobs older than retention until ctx ends.
func pruneJobs(ctx context.Context, store *inmemory.Store, retention time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(min(retention, 10*time.Minute))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.Prune(ctx, now.Add(-retention)); n > 0 {
				log.Debug().Int("removed", n).Msg("Pruned finished jobs")
			}
		}
	}
}

// newRouter maps the HTTP surface. runs may be nil when the run log is disabled.
func newRouter(jobsHandler *handlers.JobsHandler, runs *handlers.RunsHandler) *http.ServeMux {
	mux := http.NewServeMux()

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			jobsHandler.ListJobs(w, r)
		case http.MethodPost:
			jobsHandler.CreateJob(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
		if jobID == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
			return
		}
		jobsHandler.GetJob(w, r, jobID)
	})

	mux.HandleFunc("/api/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			handlers.CategoriesHandler(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if runs == nil {
			middleware.WriteError(w, http.StatusNotFound, "Run log is disabled")
			return
		}
		runs.ListRuns(w, r)
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return mux
}
