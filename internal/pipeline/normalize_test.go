package pipeline

import (
	"testing"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

func TestNormalize(t *testing.T) {
	schema := model.QuestionSchema{
		"1a2b3c4d": "What is the Concept of the Day?",
		"5e6f7a8b": "How many hours did you study?",
	}
	sub := model.RawSubmission{
		"responseId":                                   "r1",
		"createTime":                                   "2024-01-10T20:58:00Z",
		"lastSubmittedTime":                            "2024-01-10T21:00:00Z",
		"respondentEmail":                              "a@x.edu",
		"answers_1a2b3c4d_questionId":                  "1a2b3c4d",
		"answers_1a2b3c4d_textAnswers_answers_0_value": "Graphs",
		"answers_5e6f7a8b_questionId":                  "5e6f7a8b",
		"answers_5e6f7a8b_textAnswers_answers_0_value": "3",
		"answers_deadbeef_textAnswers_answers_0_value": "old question answer",
	}

	records, dropped := Normalize([]model.RawSubmission{sub}, schema)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped field, got %d", dropped)
	}

	rec := records[0]
	if rec.ID != "r1" || rec.Email != "a@x.edu" {
		t.Errorf("metadata fields not carried over: %+v", rec)
	}
	if rec.LastSubmitted != "2024-01-10T21:00:00Z" {
		t.Errorf("unexpected last submitted time %q", rec.LastSubmitted)
	}

	want := map[string]string{
		"What is the Concept of the Day?": "Graphs",
		"How many hours did you study?":   "3",
	}
	if len(rec.Answers) != len(want) {
		t.Fatalf("expected %d answers, got %d: %v", len(want), len(rec.Answers), rec.Answers)
	}
	for title, value := range want {
		if rec.Answers[title] != value {
			t.Errorf("answer %q = %q, want %q", title, rec.Answers[title], value)
		}
	}
}

func TestNormalizeDeterministicColumnSet(t *testing.T) {
	schema := model.QuestionSchema{"1a2b3c4d": "Q"}
	sub := model.RawSubmission{
		"responseId":                                   "r1",
		"answers_1a2b3c4d_textAnswers_answers_0_value": "x",
	}

	first, _ := Normalize([]model.RawSubmission{sub}, schema)
	second, _ := Normalize([]model.RawSubmission{sub}, schema)
	if len(first[0].Answers) != len(second[0].Answers) {
		t.Fatal("column set differs between identical runs")
	}
	for title := range first[0].Answers {
		if _, ok := second[0].Answers[title]; !ok {
			t.Errorf("column %q missing from second run", title)
		}
	}
}

func TestNormalizeEmptySchema(t *testing.T) {
	sub := model.RawSubmission{
		"responseId":                                   "r1",
		"respondentEmail":                              "a@x.edu",
		"answers_1a2b3c4d_textAnswers_answers_0_value": "x",
	}
	records, dropped := Normalize([]model.RawSubmission{sub}, model.QuestionSchema{})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if len(records[0].Answers) != 0 {
		t.Errorf("expected no surviving answers, got %v", records[0].Answers)
	}
	if dropped != 1 {
		t.Errorf("expected 1 dropped field, got %d", dropped)
	}
}
