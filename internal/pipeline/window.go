package pipeline

import (
	"log/slog"
	"time"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// FilterWindow keeps the records whose last-submitted timestamp falls inside
// the closed interval [start, end]. Provider timestamps are RFC 3339 in UTC.
// Records with a missing or unparseable timestamp are excluded with a
// warning; the second return value counts them. Relative order of kept
// records is preserved.
func FilterWindow(records []model.Record, start, end time.Time) ([]model.Record, int) {
	bad := 0
	var kept []model.Record
	for _, rec := range records {
		ts, err := time.Parse(time.RFC3339, rec.LastSubmitted)
		if err != nil {
			bad++
			slog.Warn("excluding submission with unparseable timestamp",
				"response_id", rec.ID, "timestamp", rec.LastSubmitted, "error", err)
			continue
		}
		if ts.Before(start) || ts.After(end) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, bad
}
