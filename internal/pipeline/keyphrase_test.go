package pipeline

import (
	"testing"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

func TestScoreNormalization(t *testing.T) {
	if got, want := Score("Graphs", "  graphs  "), Score("graphs", "graphs"); got != want {
		t.Errorf("Score should ignore case and surrounding whitespace: %d != %d", got, want)
	}
	if got := Score("graphs", "graphs"); got != 100 {
		t.Errorf("identical strings should score 100, got %d", got)
	}
}

func TestScoreTolerance(t *testing.T) {
	// Extra tokens around the keyphrase should not hurt the score.
	if got := Score("the concept of the day is graphs", "graphs"); got < 70 {
		t.Errorf("extra tokens dropped score to %d", got)
	}
	// Word order should not matter.
	if got := Score("lists linked", "linked lists"); got != 100 {
		t.Errorf("reordered tokens scored %d, want 100", got)
	}
	if got := Score("completely unrelated", "recursion"); got >= 70 {
		t.Errorf("unrelated answer scored %d, should be below threshold", got)
	}
}

func TestValidateKeyphrase(t *testing.T) {
	const concept = "What is the Concept of the Day?"

	records := []model.Record{
		{ID: "r1", Answers: map[string]string{concept: "  Graphs "}},
		{ID: "r2", Answers: map[string]string{concept: "something else entirely"}},
		{ID: "r3", Answers: map[string]string{}},
	}
	kept := ValidateKeyphrase(records, concept, "graphs", 70)
	if len(kept) != 1 || kept[0].ID != "r1" {
		t.Fatalf("expected only r1 to validate, got %v", kept)
	}
	if kept[0].Answers[concept] != "graphs" {
		t.Errorf("concept answer should be normalized in place, got %q", kept[0].Answers[concept])
	}
}

func TestValidateKeyphraseThresholdZero(t *testing.T) {
	const concept = "What is the Concept of the Day?"
	records := []model.Record{
		{ID: "r1", Answers: map[string]string{concept: "anything"}},
	}
	kept := ValidateKeyphrase(records, concept, "graphs", 0)
	if len(kept) != 1 {
		t.Errorf("threshold 0 should keep every record, kept %d", len(kept))
	}
}
