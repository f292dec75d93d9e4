package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/finance-insight/internal/api/handlers"
	"github.com/dvloznov/finance-insight/internal/api/middleware"
	"github.com/dvloznov/finance-insight/internal/config"
	"github.com/dvloznov/finance-insight/internal/gcs"
	infraBQ "github.com/dvloznov/finance-insight/internal/infra/bigquery"
	"github.com/dvloznov/finance-insight/internal/jobs"
	"github.com/dvloznov/finance-insight/internal/jobs/inmemory"
	"github.com/dvloznov/finance-insight/internal/logger"
	"github.com/dvloznov/finance-insight/internal/notionsync"
	"github.com/dvloznov/finance-insight/internal/pipeline"
	"github.com/dvloznov/finance-insight/internal/reasoner"
	"github.com/dvloznov/finance-insight/internal/taskgraph"
)

func main() {
	_ = godotenv.Load()

	cfg := config.FromEnvironment()

	log := logger.New()
	logger.SetLevel(cfg.LogLevel)

	ctx := context.Background()

	// Optional BigQuery run tracking and report storage.
	var repo infraBQ.RunRepository
	if cfg.BigQueryProject != "" {
		bqRepo, err := infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery repository")
		}
		defer bqRepo.Close()
		repo = bqRepo
	} else {
		log.Warn().Msg("No BigQuery project configured - run tracking disabled")
	}

	// Optional Notion report publishing.
	var notionClient notionsync.NotionService
	if cfg.NotionToken != "" && cfg.NotionDatabaseID != "" {
		notionClient = notionsync.NewNotionClient(cfg.NotionToken)
	}

	// Initialize job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	// Start worker in background to process jobs
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	p := pipeline.New(reasoner.NewGemini(cfg.GeminiModel), taskgraph.Config{
		DefaultPolicy: taskgraph.TaskPolicy{
			Timeout:     cfg.TaskTimeout,
			MaxAttempts: cfg.TaskMaxAttempts,
			Backoff:     cfg.TaskBackoff,
		},
	}, log)

	// Create job handler for processing analysis jobs
	jobHandler := func(ctx context.Context, job jobs.Job) error {
		analysisJob, ok := job.(*jobs.AnalysisJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", analysisJob.JobID).
			Int("transactions", len(analysisJob.Input.Transactions)).
			Msg("Processing analysis job")

		runCtx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
		runCtx = logger.WithContext(runCtx, log)

		var runID string
		if repo != nil {
			id, err := repo.StartAnalysisRun(runCtx, cfg.GeminiModel, len(analysisJob.Input.Transactions))
			if err != nil {
				log.Error().Err(err).Str("job_id", analysisJob.JobID).Msg("Failed to start analysis run")
			} else {
				runID = id
			}
		}

		report, err := p.Analyze(runCtx, analysisJob.Input)
		if err != nil {
			if repo != nil && runID != "" {
				repo.MarkAnalysisRunFailed(runCtx, runID, err)
			}
			log.Error().
				Err(err).
				Str("job_id", analysisJob.JobID).
				Msg("Analysis failed")
			return err
		}

		analysisJob.AnalysisID = report.AnalysisID
		analysisJob.Report = report

		if repo != nil && runID != "" {
			if err := repo.MarkAnalysisRunFinished(runCtx, runID, report); err != nil {
				log.Error().Err(err).Str("job_id", analysisJob.JobID).Msg("Failed to record run outcome")
			}
			if err := repo.InsertReport(runCtx, report, nil); err != nil {
				log.Error().Err(err).Str("job_id", analysisJob.JobID).Msg("Failed to store report")
			}
		}

		if notionClient != nil {
			if err := notionsync.PublishReport(runCtx, notionClient, cfg.NotionDatabaseID, report, false); err != nil {
				log.Error().Err(err).Str("analysis_id", report.AnalysisID).Msg("Failed to publish report to Notion")
			}
		}

		log.Info().
			Str("job_id", analysisJob.JobID).
			Str("analysis_id", report.AnalysisID).
			Str("status", string(report.Status)).
			Msg("Analysis job completed")

		return nil
	}

	// Start job consumer in background
	go func() {
		log.Info().Msg("Starting job worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Job worker stopped with error")
		}
	}()

	// Initialize handlers
	analysesHandler := handlers.NewAnalysesHandler(jobStore, jobQueue, repo, gcs.NewGCSStorageService(), log)
	jobsHandler := handlers.NewJobsHandler(jobStore, log)

	// Create router
	mux := http.NewServeMux()

	// Analyses endpoints
	mux.HandleFunc("/api/analyses", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			analysesHandler.SubmitAnalysis(w, r)
		case http.MethodGet:
			analysesHandler.ListAnalyses(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/analyses/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			id := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
			if id == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Analysis ID is required")
				return
			}
			analysesHandler.GetAnalysis(w, r, id)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Jobs endpoints
	mux.HandleFunc("/api/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobsHandler.ListJobs(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/jobs/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jobID := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
			if jobID == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Job ID is required")
				return
			}
			jobsHandler.GetJob(w, r, jobID)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Cancel worker context
	cancelWorker()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
