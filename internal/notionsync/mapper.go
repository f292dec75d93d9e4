package notionsync

import (
	"strings"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/finance-insight/internal/domain"
)

// ReportToNotionProperties converts a finished analysis report to Notion
// properties for the Analysis Reports database.
func ReportToNotionProperties(report *domain.Report) notionapi.Properties {
	props := notionapi.Properties{
		"Analysis ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: report.AnalysisID,
					},
				},
			},
		},
	}

	props["Status"] = notionapi.SelectProperty{
		Select: notionapi.Option{
			Name: string(report.Status),
		},
	}

	props["Generated At"] = notionapi.DateProperty{
		Date: &notionapi.DateObject{
			Start: func() *notionapi.Date {
				d := notionapi.Date(report.GeneratedAt)
				return &d
			}(),
		},
	}

	summary := report.SnapshotSummary
	props["Transactions"] = notionapi.NumberProperty{Number: float64(summary.TransactionCount)}
	props["Total Income"] = notionapi.NumberProperty{Number: summary.TotalIncome}
	props["Total Expenses"] = notionapi.NumberProperty{Number: summary.TotalExpenses}
	props["Net Cash Flow"] = notionapi.NumberProperty{Number: summary.NetCashFlow}
	props["Savings Rate"] = notionapi.NumberProperty{Number: summary.SavingsRate}
	props["Total Debt"] = notionapi.NumberProperty{Number: summary.TotalDebt}

	if len(report.Warnings) > 0 {
		props["Warnings"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: truncateForNotion(strings.Join(report.Warnings, "\n")),
					},
				},
			},
		}
	}

	if len(report.Errors) > 0 {
		props["Errors"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: truncateForNotion(strings.Join(report.Errors, "\n")),
					},
				},
			},
		}
	}

	if level := riskLevel(report); level != "" {
		props["Risk Level"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: level,
			},
		}
	}

	return props
}

// riskLevel pulls the risk task's level out of the report, or "" if the
// risk task did not succeed.
func riskLevel(report *domain.Report) string {
	payload, ok := report.Tasks["risk"].(map[string]any)
	if !ok || payload == nil {
		return ""
	}
	level, _ := payload["risk_level"].(string)
	return level
}

// Notion rich text blocks are capped at 2000 characters.
func truncateForNotion(s string) string {
	const maxLen = 2000
	if len(s) > maxLen {
		return s[:maxLen]
	}
	return s
}

// ExtractAnalysisID reads the Analysis ID title property back out of a
// Notion page. Returns "" if the property is missing or empty.
func ExtractAnalysisID(page notionapi.Page) string {
	prop, ok := page.Properties["Analysis ID"]
	if !ok {
		return ""
	}

	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}

	return title.Title[0].PlainText
}
