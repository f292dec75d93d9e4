package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the runtime settings for the analysis service. Every field
// has a default so the service runs locally with no environment at all.
type Config struct {
	Port     string
	LogLevel string

	// GeminiModel selects the reasoner model.
	GeminiModel string

	// TaskTimeout bounds each reasoner call; TaskMaxAttempts and
	// TaskBackoff configure the bounded retry policy.
	TaskTimeout     time.Duration
	TaskMaxAttempts int
	TaskBackoff     time.Duration

	// RunTimeout is the run-level deadline across all tasks.
	RunTimeout time.Duration

	// BigQueryProject enables analysis-run tracking when set.
	BigQueryProject string
	BigQueryDataset string

	// NotionToken and NotionDatabaseID enable report publishing when set.
	NotionToken      string
	NotionDatabaseID string
}

// FromEnvironment builds a Config from environment variables, falling back
// to defaults for anything unset.
func FromEnvironment() *Config {
	cfg := &Config{
		Port:            "8080",
		LogLevel:        "info",
		GeminiModel:     "gemini-2.5-flash",
		TaskTimeout:     60 * time.Second,
		TaskMaxAttempts: 1,
		TaskBackoff:     2 * time.Second,
		RunTimeout:      5 * time.Minute,
		BigQueryDataset: "finance",
	}

	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.GeminiModel = v
	}
	if v := os.Getenv("TASK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TaskTimeout = d
		}
	}
	if v := os.Getenv("TASK_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TaskMaxAttempts = n
		}
	}
	if v := os.Getenv("TASK_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.TaskBackoff = d
		}
	}
	if v := os.Getenv("RUN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RunTimeout = d
		}
	}
	if v := os.Getenv("BIGQUERY_PROJECT"); v != "" {
		cfg.BigQueryProject = v
	}
	if v := os.Getenv("BIGQUERY_DATASET"); v != "" {
		cfg.BigQueryDataset = v
	}
	if v := os.Getenv("NOTION_TOKEN"); v != "" {
		cfg.NotionToken = v
	}
	if v := os.Getenv("NOTION_DATABASE_ID"); v != "" {
		cfg.NotionDatabaseID = v
	}

	return cfg
}
