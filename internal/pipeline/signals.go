package pipeline

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// ExtractSignals parses the designated signal columns to numbers. A column
// qualifies when its title contains any of the configured substrings. A value
// that does not parse becomes missing: the record is kept, the cell is
// blanked, and no entry lands in Signals. Non-matching columns are untouched.
func ExtractSignals(records []model.Record, signalSubstrings []string) []model.Record {
	for i := range records {
		rec := &records[i]
		rec.Signals = make(map[string]float64)
		for title, value := range rec.Answers {
			if !matchesAny(title, signalSubstrings) {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				slog.Debug("signal value does not parse, treating as missing",
					"response_id", rec.ID, "column", title, "value", value)
				rec.Answers[title] = ""
				continue
			}
			rec.Signals[title] = f
		}
	}
	return records
}

// FlagAssistance returns the records where at least one rating signal falls
// below the threshold. A missing rating is never below the threshold: a
// record with only unparsed rating values cannot be flagged.
func FlagAssistance(records []model.Record, ratingSubstrings []string, below float64) []model.Record {
	var flagged []model.Record
	for _, rec := range records {
		if needsHelp(rec, ratingSubstrings, below) {
			flagged = append(flagged, rec)
		}
	}
	return flagged
}

func needsHelp(rec model.Record, ratingSubstrings []string, below float64) bool {
	// Missing values have no Signals entry at all, so they never compare.
	for title, v := range rec.Signals {
		if matchesAny(title, ratingSubstrings) && v < below {
			return true
		}
	}
	return false
}

func matchesAny(title string, substrings []string) bool {
	for _, s := range substrings {
		if strings.Contains(title, s) {
			return true
		}
	}
	return false
}
