package pipeline

import (
	"testing"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

func TestAggregate(t *testing.T) {
	const hours = "How many hours did you study?"
	const speed = "Rate the lecture Speed"

	records := []model.Record{
		{Answers: map[string]string{hours: "2"}, Signals: map[string]float64{hours: 2}},
		{Answers: map[string]string{hours: "", speed: ""}, Signals: map[string]float64{}},
		{Answers: map[string]string{hours: "4"}, Signals: map[string]float64{hours: 4}},
	}

	report := Aggregate(records, signalColumns, "2024-01-10")
	if report.Date != "2024-01-10" {
		t.Errorf("unexpected report date %q", report.Date)
	}
	if len(report.Means) != 2 {
		t.Fatalf("expected 2 signal columns, got %d: %v", len(report.Means), report.Means)
	}

	// Sorted by column name: hours before speed.
	h := report.Means[0]
	if h.Column != hours {
		t.Fatalf("expected %q first, got %q", hours, h.Column)
	}
	if h.Mean == nil || *h.Mean != 3 {
		t.Errorf("mean of [2, missing, 4] should be 3, got %v", h.Mean)
	}
	if h.Count != 2 {
		t.Errorf("expected 2 contributing values, got %d", h.Count)
	}

	s := report.Means[1]
	if s.Column != speed {
		t.Fatalf("expected %q second, got %q", speed, s.Column)
	}
	if s.Mean != nil {
		t.Errorf("all-missing column should have nil mean, got %v", *s.Mean)
	}
	if s.Count != 0 {
		t.Errorf("all-missing column should have count 0, got %d", s.Count)
	}
}

func TestAggregateIgnoresNonSignalColumns(t *testing.T) {
	records := []model.Record{
		{
			Answers: map[string]string{"What is the Concept of the Day?": "graphs"},
			Signals: map[string]float64{},
		},
	}
	report := Aggregate(records, signalColumns, "2024-01-10")
	if len(report.Means) != 0 {
		t.Errorf("non-signal columns must not appear in the report, got %v", report.Means)
	}
}

func TestAggregateEmpty(t *testing.T) {
	report := Aggregate(nil, signalColumns, "2024-01-10")
	if len(report.Means) != 0 {
		t.Errorf("expected empty report, got %v", report.Means)
	}
}
