package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/finance-insight/internal/config"
	"github.com/dvloznov/finance-insight/internal/domain"
	infraBQ "github.com/dvloznov/finance-insight/internal/infra/bigquery"
	"github.com/dvloznov/finance-insight/internal/logger"
	"github.com/dvloznov/finance-insight/internal/notionsync"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()

	reportPath := flag.String("report", "", "Path to a report JSON file")
	analysisID := flag.String("analysis-id", "", "Analysis ID of a report stored in BigQuery")
	notionToken := flag.String("notion-token", "", "Notion API token (default: NOTION_TOKEN env)")
	notionDBID := flag.String("notion-db-id", "", "Notion database ID (default: NOTION_DATABASE_ID env)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without publishing")
	flag.Parse()

	cfg := config.FromEnvironment()
	if *notionToken == "" {
		*notionToken = cfg.NotionToken
	}
	if *notionDBID == "" {
		*notionDBID = cfg.NotionDatabaseID
	}

	if *reportPath == "" && *analysisID == "" {
		log.Fatal().Msg("Error: either --report or --analysis-id is required")
	}
	if *reportPath != "" && *analysisID != "" {
		log.Fatal().Msg("Error: --report and --analysis-id are mutually exclusive")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	report, err := loadReport(ctx, cfg, *reportPath, *analysisID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load report")
	}

	log.Info().
		Str("analysis_id", report.AnalysisID).
		Str("status", string(report.Status)).
		Bool("dry_run", *dryRun).
		Msg("Publishing report to Notion")

	notionClient := notionsync.NewNotionClient(*notionToken)

	if err := notionsync.PublishReport(ctx, notionClient, *notionDBID, report, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Publish failed")
	}

	fmt.Println("Publish completed successfully.")
}

// loadReport reads the report from a local file or fetches it from BigQuery
// by analysis ID.
func loadReport(ctx context.Context, cfg *config.Config, reportPath, analysisID string) (*domain.Report, error) {
	if reportPath != "" {
		data, err := os.ReadFile(reportPath)
		if err != nil {
			return nil, err
		}

		var report domain.Report
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("parsing report JSON: %w", err)
		}
		return &report, nil
	}

	if cfg.BigQueryProject == "" {
		return nil, fmt.Errorf("--analysis-id requires BIGQUERY_PROJECT")
	}

	repo, err := infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
	if err != nil {
		return nil, fmt.Errorf("initializing BigQuery repository: %w", err)
	}
	defer repo.Close()

	row, err := repo.FindReportByAnalysisID(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("no report stored for analysis %s", analysisID)
	}

	// The full report body is stored as JSON alongside the flattened columns.
	data, err := json.Marshal(row.ReportJSON.JSONVal)
	if err != nil {
		return nil, fmt.Errorf("unpacking stored report: %w", err)
	}

	var report domain.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing stored report: %w", err)
	}

	return &report, nil
}
