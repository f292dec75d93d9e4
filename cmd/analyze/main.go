package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dvloznov/finance-insight/internal/config"
	"github.com/dvloznov/finance-insight/internal/domain"
	"github.com/dvloznov/finance-insight/internal/gcs"
	infraBQ "github.com/dvloznov/finance-insight/internal/infra/bigquery"
	"github.com/dvloznov/finance-insight/internal/logger"
	"github.com/dvloznov/finance-insight/internal/pipeline"
	"github.com/dvloznov/finance-insight/internal/reasoner"
	"github.com/dvloznov/finance-insight/internal/taskgraph"
	"github.com/dvloznov/finance-insight/internal/validate"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	var (
		inputPath  = flag.String("input", "", "Path to the input JSON file, or a gs:// URI (required)")
		outputPath = flag.String("output", "", "Path or gs:// URI to write the report JSON (default: stdout)")
		model      = flag.String("model", "", "Reasoner model name (default: GEMINI_MODEL or gemini-2.5-flash)")
		track      = flag.Bool("track", false, "Record the run in BigQuery (requires BIGQUERY_PROJECT)")
	)
	flag.Parse()

	cfg := config.FromEnvironment()

	log := logger.New()
	logger.SetLevel(cfg.LogLevel)

	if *inputPath == "" {
		log.Fatal().Msg("Error: --input is required")
	}
	if *model != "" {
		cfg.GeminiModel = *model
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RunTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	input, err := readInput(ctx, *inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("input", *inputPath).Msg("Failed to read input")
	}

	log.Info().
		Str("input", *inputPath).
		Int("transactions", len(input.Transactions)).
		Int("debt_accounts", len(input.DebtAccounts)).
		Msg("Starting analysis")

	// Optional BigQuery run tracking.
	var repo infraBQ.RunRepository
	var runID string
	if *track {
		if cfg.BigQueryProject == "" {
			log.Fatal().Msg("Error: --track requires BIGQUERY_PROJECT")
		}
		bqRepo, err := infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
		}
		defer bqRepo.Close()
		repo = bqRepo

		runID, err = repo.StartAnalysisRun(ctx, cfg.GeminiModel, len(input.Transactions))
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start analysis run")
		}
	}

	p := pipeline.New(reasoner.NewGemini(cfg.GeminiModel), executorConfig(cfg), log)

	report, err := p.Analyze(ctx, *input)
	if err != nil {
		if repo != nil {
			repo.MarkAnalysisRunFailed(ctx, runID, err)
		}

		var verr *validate.ValidationError
		if errors.As(err, &verr) {
			log.Error().Strs("validation_errors", verr.Errs).Msg("Input rejected")
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	if repo != nil {
		if err := repo.MarkAnalysisRunFinished(ctx, runID, report); err != nil {
			log.Error().Err(err).Msg("Failed to record run outcome")
		}
		if err := repo.InsertReport(ctx, report, nil); err != nil {
			log.Error().Err(err).Msg("Failed to store report")
		}
	}

	if err := writeReport(ctx, report, *outputPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to write report")
	}

	log.Info().
		Str("analysis_id", report.AnalysisID).
		Str("status", string(report.Status)).
		Msg("Analysis finished")
}

// readInput loads the input from a local file or a GCS object.
func readInput(ctx context.Context, path string) (*pipeline.Input, error) {
	var data []byte
	var err error

	if strings.HasPrefix(path, "gs://") {
		data, err = gcs.FetchFromGCS(ctx, path)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var input pipeline.Input
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parsing input JSON: %w", err)
	}

	return &input, nil
}

// writeReport writes the report to stdout, a local file or a GCS object.
func writeReport(ctx context.Context, report *domain.Report, outputPath string) error {
	if strings.HasPrefix(outputPath, "gs://") {
		return gcs.UploadJSONToURI(ctx, outputPath, report)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}

	if outputPath == "" {
		fmt.Println(string(data))
		return nil
	}

	return os.WriteFile(outputPath, data, 0o644)
}

func executorConfig(cfg *config.Config) taskgraph.Config {
	return taskgraph.Config{
		DefaultPolicy: taskgraph.TaskPolicy{
			Timeout:     cfg.TaskTimeout,
			MaxAttempts: cfg.TaskMaxAttempts,
			Backoff:     cfg.TaskBackoff,
		},
	}
}
