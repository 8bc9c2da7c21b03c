package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Aidan-B1409/engr103-autograder/internal/config"
	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// FormsProvider is the slice of the forms provider the pipeline needs. Both
// calls happen once per run; the returned snapshot is treated as immutable.
type FormsProvider interface {
	FetchSchema(ctx context.Context) (model.QuestionSchema, error)
	FetchSubmissions(ctx context.Context) ([]model.RawSubmission, error)
}

// Result is everything one grading run produces.
type Result struct {
	Decisions []model.Decision
	Flagged   []model.Record // validated records that need assistance follow-up
	Report    model.Report
	Records   []model.Record // validated, signal-extracted record table
	Stats     model.RunStats
}

// Run executes the reconciliation pipeline for one lecture date: normalize
// the submissions against the current schema, keep those inside the lecture
// window, validate the keyphrase, extract numeric signals, then reconcile the
// survivors against the full roster and submit a decision for every entry.
// Provider failures are fatal for the run except per-entry grade submissions,
// which are isolated and counted in Stats.
func Run(ctx context.Context, provider FormsProvider, gb Gradebook, cfg *config.Run) (*Result, error) {
	start, end, err := cfg.Window()
	if err != nil {
		return nil, err
	}

	schema, err := provider.FetchSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch question schema: %w", err)
	}
	subs, err := provider.FetchSubmissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}

	records, droppedFields := Normalize(subs, schema)
	inWindow, badTimestamps := FilterWindow(records, start, end)
	validated := ValidateKeyphrase(inWindow, cfg.ConceptQuestion, cfg.Keyphrase, cfg.FuzzThreshold)

	signalColumns := make([]string, 0, len(cfg.TimeColumns)+len(cfg.RatingColumns))
	signalColumns = append(signalColumns, cfg.TimeColumns...)
	signalColumns = append(signalColumns, cfg.RatingColumns...)
	validated = ExtractSignals(validated, signalColumns)

	flagged := FlagAssistance(validated, cfg.RatingColumns, cfg.NeedsHelpBelow)
	report := Aggregate(validated, signalColumns, cfg.Date)

	roster, err := gb.ListRoster(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	assignment, err := gb.GetAssignment(ctx, cfg.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("get assignment %d: %w", cfg.AssignmentID, err)
	}

	decisions := Reconcile(roster, validated)

	submitFailures := 0
	if cfg.DryRun {
		slog.Info("dry run, not submitting grades", "decisions", len(decisions))
	} else {
		submitFailures = SubmitDecisions(ctx, gb, assignment, decisions)
	}

	stats := model.RunStats{
		Fetched:        len(subs),
		InWindow:       len(inWindow),
		Validated:      len(validated),
		BadTimestamps:  badTimestamps,
		DroppedFields:  droppedFields,
		Flagged:        len(flagged),
		SubmitFailures: submitFailures,
	}
	for _, d := range decisions {
		if d.Score == 1 {
			stats.Present++
		} else {
			stats.Absent++
		}
	}

	return &Result{
		Decisions: decisions,
		Flagged:   flagged,
		Report:    report,
		Records:   validated,
		Stats:     stats,
	}, nil
}
