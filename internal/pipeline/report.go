package pipeline

import (
	"sort"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// Aggregate computes the arithmetic mean of every signal column across the
// validated records, skipping missing values. A column that matched a signal
// substring but produced no parseable value at all is still reported, with a
// nil mean. Columns are sorted by name so the report is stable between runs.
func Aggregate(records []model.Record, signalSubstrings []string, date string) model.Report {
	columns := make(map[string]struct{})
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range records {
		for title := range rec.Answers {
			if matchesAny(title, signalSubstrings) {
				columns[title] = struct{}{}
			}
		}
		for title, v := range rec.Signals {
			columns[title] = struct{}{}
			sums[title] += v
			counts[title]++
		}
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	report := model.Report{Date: date}
	for _, name := range names {
		sm := model.SignalMean{Column: name, Count: counts[name]}
		if counts[name] > 0 {
			mean := sums[name] / float64(counts[name])
			sm.Mean = &mean
		}
		report.Means = append(report.Means, sm)
	}
	return report
}
