package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// RunRepository provides an interface for analysis run tracking and report
// storage. The pipeline itself never touches BigQuery; callers wrap runs
// with these operations.
type RunRepository interface {
	// StartAnalysisRun inserts a new run with status=RUNNING and returns the analysis_run_id.
	StartAnalysisRun(ctx context.Context, reasonerModel string, transactionCount int) (string, error)

	// MarkAnalysisRunFailed sets status=FAILED, finished_ts and error_message for a run.
	MarkAnalysisRunFailed(ctx context.Context, analysisRunID string, runErr error)

	// MarkAnalysisRunFinished sets the terminal status and finished_ts for a run.
	MarkAnalysisRunFinished(ctx context.Context, analysisRunID string, report *domain.Report) error

	// InsertReport stores a finished report.
	InsertReport(ctx context.Context, report *domain.Report, snap *domain.Snapshot) error

	// FindReportByAnalysisID retrieves the latest stored report for an analysis.
	FindReportByAnalysisID(ctx context.Context, analysisID string) (*ReportRow, error)

	// ListRecentReports retrieves the most recent reports, newest first.
	ListRecentReports(ctx context.Context, limit int) ([]*ReportRow, error)
}

// Repository is the concrete implementation of RunRepository that interacts
// with BigQuery. It holds a shared client to avoid creating a new connection
// for each operation.
type Repository struct {
	client    *bigquery.Client
	datasetID string
}

// NewRepository creates a new Repository with a shared BigQuery client.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{
		client:    client,
		datasetID: datasetID,
	}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// StartAnalysisRun delegates to StartAnalysisRunWithClient with the shared client.
func (r *Repository) StartAnalysisRun(ctx context.Context, reasonerModel string, transactionCount int) (string, error) {
	return StartAnalysisRunWithClient(ctx, r.client, r.datasetID, reasonerModel, transactionCount)
}

// MarkAnalysisRunFailed delegates to MarkAnalysisRunFailedWithClient with the shared client.
func (r *Repository) MarkAnalysisRunFailed(ctx context.Context, analysisRunID string, runErr error) {
	MarkAnalysisRunFailedWithClient(ctx, r.client, r.datasetID, analysisRunID, runErr)
}

// MarkAnalysisRunFinished records the run's terminal status derived from the report.
func (r *Repository) MarkAnalysisRunFinished(ctx context.Context, analysisRunID string, report *domain.Report) error {
	succeeded := 0
	for _, payload := range report.Tasks {
		if payload != nil {
			succeeded++
		}
	}
	return MarkAnalysisRunFinishedWithClient(ctx, r.client, r.datasetID, analysisRunID, report.AnalysisID, terminalStatus(report.Status), succeeded)
}

// InsertReport delegates to InsertReportWithClient with the shared client.
func (r *Repository) InsertReport(ctx context.Context, report *domain.Report, snap *domain.Snapshot) error {
	return InsertReportWithClient(ctx, r.client, r.datasetID, NewReportRow(report, snap))
}

// FindReportByAnalysisID delegates to FindReportByAnalysisIDWithClient with the shared client.
func (r *Repository) FindReportByAnalysisID(ctx context.Context, analysisID string) (*ReportRow, error) {
	return FindReportByAnalysisIDWithClient(ctx, r.client, r.datasetID, analysisID)
}

// ListRecentReports delegates to ListRecentReportsWithClient with the shared client.
func (r *Repository) ListRecentReports(ctx context.Context, limit int) ([]*ReportRow, error) {
	return ListRecentReportsWithClient(ctx, r.client, r.datasetID, limit)
}

// terminalStatus maps a report status to the analysis_runs status column.
func terminalStatus(status domain.RunStatus) string {
	switch status {
	case domain.RunStatusComplete:
		return "SUCCESS"
	case domain.RunStatusPartial:
		return "PARTIAL"
	default:
		return "FAILED"
	}
}

// Ensure Repository implements RunRepository.
var _ RunRepository = (*Repository)(nil)
