// Package output writes the per-run CSV artifacts: the signal-mean summary
// report and the full validated record table.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// WriteReport writes the per-signal mean summary for one run date and returns
// the file path. A signal with no parsed values gets an empty mean cell.
func WriteReport(dir string, report model.Report) (string, error) {
	path := filepath.Join(dir, report.Date+"_report.csv")
	rows := [][]string{{"signal", "mean", "count"}}
	for _, m := range report.Means {
		mean := ""
		if m.Mean != nil {
			mean = strconv.FormatFloat(*m.Mean, 'f', -1, 64)
		}
		rows = append(rows, []string{m.Column, mean, strconv.Itoa(m.Count)})
	}
	return path, writeCSV(path, rows)
}

// WriteRecords writes the validated, signal-extracted record table for one
// run date and returns the file path. Columns are the four metadata fields
// followed by the question titles in sorted order; numeric-coerced cells show
// the parsed value.
func WriteRecords(dir, date string, records []model.Record) (string, error) {
	path := filepath.Join(dir, date+"_out.csv")

	titles := answerColumns(records)
	header := []string{model.FieldResponseID, model.FieldCreateTime, model.FieldLastSubmitted, model.FieldEmail}
	header = append(header, titles...)

	rows := [][]string{header}
	for _, rec := range records {
		row := []string{rec.ID, rec.CreateTime, rec.LastSubmitted, rec.Email}
		for _, title := range titles {
			if v, ok := rec.Signals[title]; ok {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
				continue
			}
			row = append(row, rec.Answers[title])
		}
		rows = append(rows, row)
	}
	return path, writeCSV(path, rows)
}

func answerColumns(records []model.Record) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for title := range rec.Answers {
			seen[title] = struct{}{}
		}
	}
	titles := make([]string, 0, len(seen))
	for title := range seen {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
