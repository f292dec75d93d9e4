package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// InsertReportWithClient inserts a single ReportRow into <dataset>.analysis_reports.
func InsertReportWithClient(ctx context.Context, client *bigquery.Client, datasetID string, row *ReportRow) error {
	inserter := client.Dataset(datasetID).Table(reportsTable).Inserter()
	if err := inserter.Put(ctx, row); err != nil {
		return fmt.Errorf("InsertReport: inserting row: %w", err)
	}

	return nil
}

// FindReportByAnalysisIDWithClient retrieves a report by analysis ID.
// Returns nil if no report with the given analysis ID exists.
func FindReportByAnalysisIDWithClient(ctx context.Context, client *bigquery.Client, datasetID, analysisID string) (*ReportRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s.%s
		WHERE analysis_id = @analysis_id
		ORDER BY generated_ts DESC
		LIMIT 1
	`, datasetID, reportsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "analysis_id", Value: analysisID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindReportByAnalysisID: running query: %w", err)
	}

	var row ReportRow
	err = it.Next(&row)
	if err == iterator.Done {
		// No report stored for this analysis
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindReportByAnalysisID: reading row: %w", err)
	}

	return &row, nil
}

// ListRecentReportsWithClient retrieves the most recent reports, newest first.
func ListRecentReportsWithClient(ctx context.Context, client *bigquery.Client, datasetID string, limit int) ([]*ReportRow, error) {
	if limit <= 0 {
		limit = 20
	}

	q := client.Query(fmt.Sprintf(`
		SELECT *
		FROM %s.%s
		ORDER BY generated_ts DESC
		LIMIT @limit
	`, datasetID, reportsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "limit", Value: int64(limit)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecentReports: running query: %w", err)
	}

	var reports []*ReportRow
	for {
		var row ReportRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRecentReports: iterating: %w", err)
		}
		reports = append(reports, &row)
	}

	return reports, nil
}
