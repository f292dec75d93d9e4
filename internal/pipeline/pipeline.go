// Package pipeline wires the analysis stages together: categorize, compute
// metrics, validate, build the snapshot, execute the task graph and
// aggregate the report.
package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-insight/internal/categorize"
	"github.com/dvloznov/finance-insight/internal/domain"
	"github.com/dvloznov/finance-insight/internal/metrics"
	"github.com/dvloznov/finance-insight/internal/reasoner"
	"github.com/dvloznov/finance-insight/internal/snapshot"
	"github.com/dvloznov/finance-insight/internal/taskgraph"
	"github.com/dvloznov/finance-insight/internal/tasks"
	"github.com/dvloznov/finance-insight/internal/validate"
)

// Input is the ingestion collaborator's contract: raw transactions and debt
// accounts, already parsed into field-level well-formed records. The
// pipeline still performs its own semantic validation.
type Input struct {
	Transactions []domain.Transaction `json:"transactions"`
	DebtAccounts []domain.DebtAccount `json:"debt_accounts"`

	// AvailableBalance is the liquid balance proxy for the liquidity
	// ratio; 0 when the caller has none.
	AvailableBalance float64 `json:"available_balance,omitempty"`
}

// Pipeline runs complete analyses. Safe for concurrent use; all per-run
// state is local to Analyze.
type Pipeline struct {
	executor *taskgraph.Executor
	log      zerolog.Logger
	now      func() time.Time
}

// New assembles a pipeline over the given reasoner and executor config.
func New(r reasoner.Reasoner, cfg taskgraph.Config, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		executor: taskgraph.NewExecutor(tasks.All(), r, cfg, log),
		log:      log,
		now:      time.Now,
	}
}

// Analyze runs the full pipeline for one input set.
//
// A *validate.ValidationError return means the input was rejected before
// any task started and there is no report. Any other outcome produces a
// report whose status field says whether to trust all, some, or none of
// the task map.
func (p *Pipeline) Analyze(ctx context.Context, input Input) (*domain.Report, error) {
	// 1. Categorize: assign category + classification to every transaction.
	categorized := categorize.All(input.Transactions)

	// 2. Compute deterministic metrics; clamp warnings ride on the report.
	m, metricWarnings := metrics.Compute(categorized, input.DebtAccounts, metrics.Options{
		AvailableBalance: input.AvailableBalance,
	})

	// 3. Pre-check gates the run: structurally invalid input never reaches
	// the snapshot builder or any task.
	if verr := validate.PreCheck(categorized, input.DebtAccounts, p.now()); verr != nil {
		p.log.Warn().Int("error_count", len(verr.Errs)).Msg("Input rejected by pre-check")
		return nil, verr
	}

	// 4. Build the immutable snapshot shared by every task.
	snap := snapshot.Build(categorized, input.DebtAccounts, m)

	p.log.Info().
		Str("analysis_id", snap.AnalysisID).
		Int("transactions", len(snap.Transactions)).
		Int("debt_accounts", len(snap.DebtAccounts)).
		Msg("Snapshot built")

	// 5. Execute the task graph.
	state := taskgraph.NewRunState(snap)
	for _, w := range metricWarnings {
		state.AddWarning(w)
	}
	if err := p.executor.Execute(ctx, state); err != nil {
		return nil, err
	}

	// 6. Aggregate into the final report (includes the post-check).
	report := Aggregate(state, p.now())

	p.log.Info().
		Str("analysis_id", snap.AnalysisID).
		Str("status", string(report.Status)).
		Int("warnings", len(report.Warnings)).
		Int("errors", len(report.Errors)).
		Msg("Analysis complete")

	return report, nil
}
