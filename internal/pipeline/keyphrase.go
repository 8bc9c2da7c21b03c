package pipeline

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// Score computes the 0-100 similarity between a submitted answer and the
// expected keyphrase. Both sides are trimmed and lower-cased first, and the
// partial token set ratio keeps the comparison indifferent to word order,
// extra tokens, and partial substring matches.
func Score(answer, keyphrase string) int {
	return fuzzy.PartialTokenSetRatio(normalizeText(answer), normalizeText(keyphrase))
}

// ValidateKeyphrase retains the records whose concept answer scores at or
// above threshold against the keyphrase. The concept field is replaced with
// its normalized form; no later consumer needs the original casing.
func ValidateKeyphrase(records []model.Record, conceptQuestion, keyphrase string, threshold int) []model.Record {
	var kept []model.Record
	for _, rec := range records {
		answer := normalizeText(rec.Answers[conceptQuestion])
		rec.Answers[conceptQuestion] = answer
		if Score(answer, keyphrase) >= threshold {
			kept = append(kept, rec)
		}
	}
	return kept
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
