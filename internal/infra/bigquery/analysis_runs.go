package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

type AnalysisRunRow struct {
	AnalysisRunID string `bigquery:"analysis_run_id"` // REQUIRED
	AnalysisID    string `bigquery:"analysis_id"`     // REQUIRED

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	ReasonerModel   string `bigquery:"reasoner_model"`   // NULLABLE
	PipelineVersion string `bigquery:"pipeline_version"` // NULLABLE

	Status       string `bigquery:"status"`        // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	TransactionCount bigquery.NullInt64 `bigquery:"transaction_count"` // NULLABLE
	TasksSucceeded   bigquery.NullInt64 `bigquery:"tasks_succeeded"`   // NULLABLE

	Metadata bigquery.NullJSON `bigquery:"metadata"` // NULLABLE
}
