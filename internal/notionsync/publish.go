package notionsync

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-insight/internal/domain"
	"github.com/dvloznov/finance-insight/internal/logger"
)

// PublishReport creates or updates the Notion page for a finished analysis
// report. The Analysis ID title property is used for idempotency: publishing
// the same analysis twice updates the existing page instead of duplicating it.
func PublishReport(ctx context.Context, notionClient NotionService, notionDBID string, report *domain.Report, dryRun bool) error {
	log := logger.FromContext(ctx)

	existingPageID, err := findReportPage(ctx, notionClient, notionDBID, report.AnalysisID)
	if err != nil {
		return fmt.Errorf("PublishReport: %w", err)
	}

	props := ReportToNotionProperties(report)

	if dryRun {
		if existingPageID != "" {
			log.Info().
				Str("analysis_id", report.AnalysisID).
				Str("page_id", existingPageID).
				Msg("[DRY RUN] Would update existing Notion page")
		} else {
			log.Info().
				Str("analysis_id", report.AnalysisID).
				Msg("[DRY RUN] Would create Notion page")
		}
		return nil
	}

	if existingPageID != "" {
		if _, err := notionClient.UpdatePage(ctx, existingPageID, props); err != nil {
			return fmt.Errorf("PublishReport: updating page: %w", err)
		}
		log.Info().
			Str("analysis_id", report.AnalysisID).
			Str("page_id", existingPageID).
			Msg("Updated Notion report page")
		return nil
	}

	page, err := notionClient.CreatePage(ctx, notionDBID, props)
	if err != nil {
		return fmt.Errorf("PublishReport: creating page: %w", err)
	}

	log.Info().
		Str("analysis_id", report.AnalysisID).
		Str("page_id", string(page.ID)).
		Msg("Created Notion report page")

	return nil
}

// findReportPage looks up the page whose Analysis ID title matches analysisID.
// Returns "" if no page exists yet.
func findReportPage(ctx context.Context, notionClient NotionService, notionDBID, analysisID string) (string, error) {
	req := &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Analysis ID",
			RichText: &notionapi.TextFilterCondition{
				Equals: analysisID,
			},
		},
		PageSize: 1,
	}

	resp, err := notionClient.QueryDatabase(ctx, notionDBID, req)
	if err != nil {
		return "", fmt.Errorf("querying for existing page: %w", err)
	}

	if len(resp.Results) == 0 {
		return "", nil
	}

	return string(resp.Results[0].ID), nil
}
