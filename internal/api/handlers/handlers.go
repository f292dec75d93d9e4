package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insight/internal/api/middleware"
	"github.com/dvloznov/finance-insight/internal/gcs"
	bq "github.com/dvloznov/finance-insight/internal/infra/bigquery"
	"github.com/dvloznov/finance-insight/internal/jobs"
	"github.com/dvloznov/finance-insight/internal/pipeline"
)

// AnalysesHandler handles analysis-related endpoints.
type AnalysesHandler struct {
	store     jobs.JobStore
	publisher jobs.Publisher
	repo      bq.RunRepository
	storage   gcs.StorageService
	log       zerolog.Logger
}

// NewAnalysesHandler creates a new analyses handler. repo and storage may be
// nil when the service runs without BigQuery or GCS.
func NewAnalysesHandler(store jobs.JobStore, publisher jobs.Publisher, repo bq.RunRepository, storage gcs.StorageService, log zerolog.Logger) *AnalysesHandler {
	return &AnalysesHandler{
		store:     store,
		publisher: publisher,
		repo:      repo,
		storage:   storage,
		log:       log,
	}
}

// submitRequest is the POST /api/analyses body. Callers either inline the
// financial data or point at a JSON object in GCS.
type submitRequest struct {
	GCSURI string `json:"gcs_uri,omitempty"`
	pipeline.Input
}

// SubmitAnalysis handles POST /api/analyses
func (h *AnalysesHandler) SubmitAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	input := req.Input

	if req.GCSURI != "" {
		if h.storage == nil {
			middleware.WriteError(w, http.StatusBadRequest, "gcs_uri is not supported by this deployment")
			return
		}

		data, err := h.storage.FetchFromGCS(ctx, req.GCSURI)
		if err != nil {
			h.log.Error().Err(err).Str("gcs_uri", req.GCSURI).Msg("Failed to fetch input from GCS")
			middleware.WriteError(w, http.StatusBadRequest, "Failed to fetch input from GCS")
			return
		}

		if err := json.Unmarshal(data, &input); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "GCS object is not valid analysis input")
			return
		}

		h.log.Info().
			Str("input_file", h.storage.ExtractFilenameFromGCSURI(req.GCSURI)).
			Int("bytes", len(data)).
			Msg("Fetched analysis input from GCS")
	}

	if len(input.Transactions) == 0 {
		middleware.WriteError(w, http.StatusBadRequest, "transactions are required")
		return
	}

	job := &jobs.AnalysisJob{
		Input: input,
	}

	if err := h.publisher.PublishAnalysis(ctx, job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue analysis job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis job")
		return
	}

	h.log.Info().
		Str("job_id", job.JobID).
		Int("transaction_count", len(input.Transactions)).
		Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetAnalysis handles GET /api/analyses/{id}
// The id may be either a job ID or an analysis ID of a stored report.
func (h *AnalysesHandler) GetAnalysis(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	if job, err := h.store.GetJob(ctx, id); err == nil {
		middleware.WriteJSON(w, http.StatusOK, job)
		return
	}

	if h.repo != nil {
		row, err := h.repo.FindReportByAnalysisID(ctx, id)
		if err != nil {
			h.log.Error().Err(err).Str("analysis_id", id).Msg("Failed to look up report")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to look up report")
			return
		}
		if row != nil {
			middleware.WriteJSON(w, http.StatusOK, row)
			return
		}
	}

	middleware.WriteError(w, http.StatusNotFound, "Analysis not found")
}

// ListAnalyses handles GET /api/analyses
func (h *AnalysesHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil {
			limit = n
		}
	}

	if h.repo == nil {
		// No report storage configured; list jobs instead.
		jobsList, err := h.store.ListJobs(ctx, jobs.JobFilter{Limit: limit})
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to list jobs")
			middleware.WriteError(w, http.StatusInternalServerError, "Failed to list analyses")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"jobs":  jobsList,
			"count": len(jobsList),
		})
		return
	}

	reports, err := h.repo.ListRecentReports(ctx, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list reports")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	if reports == nil {
		reports = []*bq.ReportRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": reports,
		"count":   len(reports),
	})
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	store jobs.JobStore
	log   zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		store: store,
		log:   log,
	}
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request, jobID string) {
	ctx := r.Context()

	job, err := h.store.GetJob(ctx, jobID)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query()
	filter := jobs.JobFilter{
		AnalysisID: query.Get("analysis_id"),
		Status:     jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(ctx, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
