package config

import (
	"fmt"
	"time"
)

// Error marks an invalid run configuration. It is always fatal and is raised
// before any provider call is made.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Errorf builds a configuration error.
func Errorf(format string, args ...any) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Run holds every parameter one grading run needs. Components receive what
// they need from here; nothing reads process-wide state.
type Run struct {
	CourseID     int64
	AssignmentID int64
	FormID       string

	Date         string // lecture date, YYYY-MM-DD
	Keyphrase    string
	LectureStart string // HH:MM in Timezone
	LectureEnd   string
	Timezone     string // IANA zone name the lecture window is expressed in

	FuzzThreshold   int
	ConceptQuestion string
	RatingColumns   []string
	TimeColumns     []string
	NeedsHelpBelow  float64

	CanvasURL   string
	CanvasToken string
	Credentials string // Google OAuth client secrets file
	TokenCache  string // cached Google OAuth token file

	DBPath string
	OutDir string
	DryRun bool
}

// Validate checks the run parameters. Any failure here aborts the run before
// a single provider call is made.
func (r *Run) Validate() error {
	if r.CourseID <= 0 {
		return Errorf("course-id is required")
	}
	if r.AssignmentID <= 0 {
		return Errorf("assignment-id is required")
	}
	if r.FormID == "" {
		return Errorf("form-id is required")
	}
	if r.Keyphrase == "" {
		return Errorf("keyphrase is required")
	}
	if _, err := time.Parse("2006-01-02", r.Date); err != nil {
		return Errorf("date %q is not in YYYY-MM-DD format", r.Date)
	}
	if r.FuzzThreshold < 0 || r.FuzzThreshold > 100 {
		return Errorf("fuzz-threshold %d is outside 0-100", r.FuzzThreshold)
	}
	if r.ConceptQuestion == "" {
		return Errorf("concept-question is required")
	}
	if len(r.RatingColumns) == 0 {
		return Errorf("at least one rating column substring is required")
	}
	if r.CanvasURL == "" {
		return Errorf("canvas-url is required")
	}
	if r.CanvasToken == "" {
		return Errorf("canvas token is not set (CANVAS_TOKEN)")
	}
	start, end, err := r.Window()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return Errorf("lecture window ends (%s) before it starts (%s)", r.LectureEnd, r.LectureStart)
	}
	return nil
}

// Window returns the lecture interval for the run date converted to UTC, the
// reference zone submission timestamps arrive in.
func (r *Run) Window() (start, end time.Time, err error) {
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return start, end, Errorf("unknown timezone %q", r.Timezone)
	}
	day, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return start, end, Errorf("date %q is not in YYYY-MM-DD format", r.Date)
	}
	start, err = clockOn(day, r.LectureStart, loc)
	if err != nil {
		return start, end, Errorf("lecture-start %q is not in HH:MM format", r.LectureStart)
	}
	end, err = clockOn(day, r.LectureEnd, loc)
	if err != nil {
		return start, end, Errorf("lecture-end %q is not in HH:MM format", r.LectureEnd)
	}
	return start.UTC(), end.UTC(), nil
}

func clockOn(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
