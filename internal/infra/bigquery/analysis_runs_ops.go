package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insight/internal/logger"
	"github.com/google/uuid"
)

const (
	analysisRunsTable = "analysis_runs"
	reportsTable      = "analysis_reports"

	pipelineVersion = "v1"
)

// StartAnalysisRunWithClient inserts a new row into <dataset>.analysis_runs with
// status=RUNNING and returns the generated analysis_run_id. The analysis_id
// column starts empty and is backfilled when the run finishes.
func StartAnalysisRunWithClient(ctx context.Context, client *bigquery.Client, datasetID, reasonerModel string, transactionCount int) (string, error) {
	analysisRunID := uuid.NewString()
	started := time.Now()

	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			analysis_run_id,
			analysis_id,
			started_ts,
			reasoner_model,
			pipeline_version,
			status,
			transaction_count
		)
		VALUES (
			@analysis_run_id,
			"",
			@started_ts,
			@reasoner_model,
			@pipeline_version,
			@status,
			@transaction_count
		)
	`, datasetID, analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "analysis_run_id", Value: analysisRunID},
		{Name: "started_ts", Value: started},
		{Name: "reasoner_model", Value: reasonerModel},
		{Name: "pipeline_version", Value: pipelineVersion},
		{Name: "status", Value: "RUNNING"},
		{Name: "transaction_count", Value: int64(transactionCount)},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return "", fmt.Errorf("StartAnalysisRun: running insert query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("StartAnalysisRun: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return "", fmt.Errorf("StartAnalysisRun: job error: %w", err)
	}

	return analysisRunID, nil
}

// MarkAnalysisRunFailedWithClient sets status=FAILED, finished_ts and error_message.
// Failures to record are logged, not returned: run tracking must never mask
// the pipeline error that caused the failure.
func MarkAnalysisRunFailedWithClient(ctx context.Context, client *bigquery.Client, datasetID, analysisRunID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		const maxLen = 2000
		if len(errMsg) > maxLen {
			errMsg = errMsg[:maxLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE analysis_run_id = @analysis_run_id
	`, datasetID, analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: "FAILED"},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "analysis_run_id", Value: analysisRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("analysis_run_id", analysisRunID).
			Msg("MarkAnalysisRunFailed: running update query")
		return
	}

	status, err := job.Wait(ctx)
	if err != nil {
		log.Error().
			Err(err).
			Str("analysis_run_id", analysisRunID).
			Msg("MarkAnalysisRunFailed: waiting for job")
		return
	}
	if err := status.Err(); err != nil {
		log.Error().
			Err(err).
			Str("analysis_run_id", analysisRunID).
			Msg("MarkAnalysisRunFailed: job completed with error")
	}
}

// MarkAnalysisRunFinishedWithClient sets the terminal status (SUCCESS or
// PARTIAL), finished_ts and the number of tasks that succeeded, and clears
// error_message. The analysis_id is backfilled here because the pipeline
// assigns it when the snapshot is built, after the run row already exists.
func MarkAnalysisRunFinishedWithClient(ctx context.Context, client *bigquery.Client, datasetID, analysisRunID, analysisID, terminalStatus string, tasksSucceeded int) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    analysis_id = @analysis_id,
		    finished_ts = @finished_ts,
		    tasks_succeeded = @tasks_succeeded,
		    error_message = ""
		WHERE analysis_run_id = @analysis_run_id
	`, datasetID, analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: terminalStatus},
		{Name: "analysis_id", Value: analysisID},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "tasks_succeeded", Value: int64(tasksSucceeded)},
		{Name: "analysis_run_id", Value: analysisRunID},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("MarkAnalysisRunFinished: running update query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("MarkAnalysisRunFinished: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("MarkAnalysisRunFinished: job error: %w", err)
	}

	return nil
}
