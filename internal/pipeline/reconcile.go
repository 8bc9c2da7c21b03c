package pipeline

import (
	"context"
	"log/slog"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// Gradebook is the slice of the gradebook provider the pipeline needs.
// Submitting the same score for the same entry twice is safe on the provider
// side; the pipeline itself never retries.
type Gradebook interface {
	ListRoster(ctx context.Context) ([]model.RosterEntry, error)
	GetAssignment(ctx context.Context, id int64) (model.AssignmentHandle, error)
	SubmitScore(ctx context.Context, assignment model.AssignmentHandle, entry model.RosterEntry, score int) error
}

// Reconcile produces exactly one decision per roster entry: present when a
// validated record carries the entry's login, absent otherwise. Identity
// matching is an exact, case-sensitive string comparison.
func Reconcile(roster []model.RosterEntry, records []model.Record) []model.Decision {
	byLogin := make(map[string]*model.Record, len(records))
	for i := range records {
		// First submission wins when a student submitted more than once.
		if _, ok := byLogin[records[i].Email]; !ok {
			byLogin[records[i].Email] = &records[i]
		}
	}

	decisions := make([]model.Decision, 0, len(roster))
	for _, entry := range roster {
		d := model.Decision{Entry: entry}
		if rec, ok := byLogin[entry.LoginID]; ok {
			d.Score = 1
			d.Evidence = rec
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// SubmitDecisions posts every decision to the gradebook in a single pass. A
// failure for one entry is logged and counted but never stops the rest; the
// return value is the failure count.
func SubmitDecisions(ctx context.Context, gb Gradebook, assignment model.AssignmentHandle, decisions []model.Decision) int {
	failures := 0
	for _, d := range decisions {
		mark := "present"
		if d.Score == 0 {
			mark = "absent"
		}
		slog.Info("marking "+mark, "student", d.Entry.Name, "login", d.Entry.LoginID)
		if err := gb.SubmitScore(ctx, assignment, d.Entry, d.Score); err != nil {
			failures++
			slog.Error("grade submission failed, continuing",
				"login", d.Entry.LoginID, "assignment", assignment.Name, "error", err)
		}
	}
	return failures
}
