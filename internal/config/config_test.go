package config

import (
	"testing"
	"time"
)

func validRun() *Run {
	return &Run{
		CourseID:        1958944,
		AssignmentID:    9,
		FormID:          "form",
		Date:            "2024-01-10",
		Keyphrase:       "graphs",
		LectureStart:    "13:00",
		LectureEnd:      "14:00",
		Timezone:        "America/Los_Angeles",
		FuzzThreshold:   70,
		ConceptQuestion: "What is the Concept of the Day?",
		RatingColumns:   []string{"Help"},
		TimeColumns:     []string{"hours"},
		NeedsHelpBelow:  2,
		CanvasURL:       "https://canvas.example.edu",
		CanvasToken:     "token",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Run)
		wantErr bool
	}{
		{"valid", func(r *Run) {}, false},
		{"missing course", func(r *Run) { r.CourseID = 0 }, true},
		{"missing assignment", func(r *Run) { r.AssignmentID = 0 }, true},
		{"missing form", func(r *Run) { r.FormID = "" }, true},
		{"missing keyphrase", func(r *Run) { r.Keyphrase = "" }, true},
		{"bad date", func(r *Run) { r.Date = "01/10/2024" }, true},
		{"threshold too high", func(r *Run) { r.FuzzThreshold = 101 }, true},
		{"threshold negative", func(r *Run) { r.FuzzThreshold = -1 }, true},
		{"threshold at bounds", func(r *Run) { r.FuzzThreshold = 100 }, false},
		{"no rating columns", func(r *Run) { r.RatingColumns = nil }, true},
		{"missing token", func(r *Run) { r.CanvasToken = "" }, true},
		{"bad timezone", func(r *Run) { r.Timezone = "Mars/Olympus" }, true},
		{"bad start time", func(r *Run) { r.LectureStart = "1pm" }, true},
		{"window inverted", func(r *Run) { r.LectureStart = "15:00" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRun()
			tt.mutate(r)
			err := r.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReportsConfigError(t *testing.T) {
	r := validRun()
	r.Date = "bad"
	err := r.Validate()
	if _, ok := err.(*Error); !ok {
		t.Fatalf("expected *config.Error, got %T", err)
	}
}

func TestWindowConvertsToUTC(t *testing.T) {
	r := validRun()
	// January 10 is PST (UTC-8): 13:00 local is 21:00 UTC.
	start, end, err := r.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	wantStart := time.Date(2024, 1, 10, 21, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2024, 1, 10, 22, 0, 0, 0, time.UTC)
	if !start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestWindowHonorsDST(t *testing.T) {
	r := validRun()
	// April 15 is PDT (UTC-7): 13:00 local is 20:00 UTC.
	r.Date = "2024-04-15"
	start, _, err := r.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	want := time.Date(2024, 4, 15, 20, 0, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
}
