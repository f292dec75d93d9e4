package bigquery

import (
	"encoding/json"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// ReportRow represents a finished analysis report in BigQuery. The full
// report body is stored as JSON; the summary metrics are flattened into
// columns so dashboards can query them without unpacking the blob.
type ReportRow struct {
	AnalysisID string `bigquery:"analysis_id"` // REQUIRED
	Status     string `bigquery:"status"`      // REQUIRED

	PeriodStart bigquery.NullDate `bigquery:"period_start"` // NULLABLE
	PeriodEnd   bigquery.NullDate `bigquery:"period_end"`   // NULLABLE

	TransactionCount int64 `bigquery:"transaction_count"`
	DebtAccountCount int64 `bigquery:"debt_account_count"`

	TotalIncome   float64 `bigquery:"total_income"`
	TotalExpenses float64 `bigquery:"total_expenses"`
	NetCashFlow   float64 `bigquery:"net_cash_flow"`
	SavingsRate   float64 `bigquery:"savings_rate"`
	TotalDebt     float64 `bigquery:"total_debt"`

	WarningCount int64 `bigquery:"warning_count"`
	ErrorCount   int64 `bigquery:"error_count"`

	ReportJSON bigquery.NullJSON `bigquery:"report_json"` // NULLABLE

	GeneratedTS time.Time `bigquery:"generated_ts"` // REQUIRED
}

// NewReportRow flattens a report and its snapshot into a ReportRow.
func NewReportRow(report *domain.Report, snap *domain.Snapshot) *ReportRow {
	reportJSON, jsonErr := json.Marshal(report)
	row := &ReportRow{
		AnalysisID:       report.AnalysisID,
		Status:           string(report.Status),
		TransactionCount: int64(report.SnapshotSummary.TransactionCount),
		DebtAccountCount: int64(report.SnapshotSummary.DebtAccountCount),
		TotalIncome:      report.SnapshotSummary.TotalIncome,
		TotalExpenses:    report.SnapshotSummary.TotalExpenses,
		NetCashFlow:      report.SnapshotSummary.NetCashFlow,
		SavingsRate:      report.SnapshotSummary.SavingsRate,
		TotalDebt:        report.SnapshotSummary.TotalDebt,
		WarningCount:     int64(len(report.Warnings)),
		ErrorCount:       int64(len(report.Errors)),
		ReportJSON:       bigquery.NullJSON{JSONVal: string(reportJSON), Valid: jsonErr == nil},
		GeneratedTS:      report.GeneratedAt,
	}

	// Transactions in the snapshot are ordered by date.
	if snap != nil && len(snap.Transactions) > 0 {
		first := snap.Transactions[0].Date
		last := snap.Transactions[len(snap.Transactions)-1].Date
		row.PeriodStart = bigquery.NullDate{Date: civil.DateOf(first), Valid: true}
		row.PeriodEnd = bigquery.NullDate{Date: civil.DateOf(last), Valid: true}
	}

	return row
}
