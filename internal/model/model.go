package model

import "time"

// QuestionSchema maps a form-version question identifier to its question
// title. Identifiers are stable only within one version of the form; titles
// are the durable key submissions are reconciled under. Titles are unique
// within a snapshot.
type QuestionSchema map[string]string

// Metadata fields present on every flattened submission. They carry no
// embedded question identifier and pass through schema normalization
// unchanged.
const (
	FieldResponseID    = "responseId"
	FieldCreateTime    = "createTime"
	FieldLastSubmitted = "lastSubmittedTime"
	FieldEmail         = "respondentEmail"
)

// RawSubmission is one form response flattened into a single-level map: the
// four metadata fields plus answer fields whose keys embed the question
// identifier of the form version the response was submitted under.
type RawSubmission map[string]string

// Record is a submission after schema normalization: answers are keyed by
// their current question title and fields from deprecated questions are gone.
type Record struct {
	ID            string
	CreateTime    string
	LastSubmitted string
	Email         string

	// Answers holds the display value of each surviving question.
	Answers map[string]string

	// Signals holds the numeric-coerced values of signal columns. A column
	// whose value could not be parsed has no entry here: missing, not zero.
	Signals map[string]float64
}

// RosterEntry is one enrolled student from the gradebook roster. LoginID is
// the identity submissions are matched against.
type RosterEntry struct {
	ID      int64
	LoginID string
	Name    string
}

// AssignmentHandle identifies the gradebook assignment scores are posted to.
type AssignmentHandle struct {
	ID   int64
	Name string
}

// Decision is the present/absent outcome for one roster entry. Every entry
// gets exactly one decision per run.
type Decision struct {
	Entry RosterEntry
	Score int // 1 present, 0 absent
	// Evidence points at the validated record that matched, nil when absent.
	Evidence *Record
}

// SignalMean is the per-column summary the report is built from.
type SignalMean struct {
	Column string
	Mean   *float64 // nil when every value was missing
	Count  int      // values that contributed to the mean
}

// Report is the per-run summary: one mean per signal column for one date.
type Report struct {
	Date  string
	Means []SignalMean
}

// RunStats counts what happened at each pipeline stage. Nothing is dropped
// silently: every exclusion shows up in one of these counters.
type RunStats struct {
	Fetched        int
	InWindow       int
	Validated      int
	BadTimestamps  int
	DroppedFields  int
	Present        int
	Absent         int
	Flagged        int
	SubmitFailures int
}

// RunRecord is one grading run as persisted in the history store.
type RunRecord struct {
	ID           int64
	Date         string
	CourseID     int64
	AssignmentID int64
	Keyphrase    string
	Stats        RunStats
	DryRun       bool
	CreatedAt    time.Time
}

// StoredDecision is a decision as persisted in the history store, flattened
// to what the store keeps: identity, score, and the evidence submission id.
type StoredDecision struct {
	Login      string
	Name       string
	Score      int
	EvidenceID string
}
