package pipeline

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// Flattened answer keys look like "answers_<questionId>_textAnswers_answers_0_value":
// the identifier sits between the first and second underscore.
var questionIDPattern = regexp.MustCompile(`_[^_]*_`)

// Normalize rewrites flattened submissions against the current question
// schema. Answer fields are renamed to their question title; fields whose
// identifier is no longer in the schema belong to deprecated questions and
// are dropped. The four metadata fields pass through untouched. The second
// return value counts dropped deprecated fields.
func Normalize(subs []model.RawSubmission, schema model.QuestionSchema) ([]model.Record, int) {
	dropped := 0
	records := make([]model.Record, 0, len(subs))
	for _, sub := range subs {
		rec := model.Record{
			ID:            sub[model.FieldResponseID],
			CreateTime:    sub[model.FieldCreateTime],
			LastSubmitted: sub[model.FieldLastSubmitted],
			Email:         sub[model.FieldEmail],
			Answers:       make(map[string]string),
		}
		for key, value := range sub {
			if isMetadataField(key) {
				continue
			}
			// The identifier itself also appears as a "...questionId" field;
			// it is bookkeeping, not an answer.
			if strings.HasSuffix(key, "questionId") {
				continue
			}
			match := questionIDPattern.FindString(key)
			if match == "" {
				continue
			}
			qid := strings.ReplaceAll(match, "_", "")
			title, ok := schema[qid]
			if !ok {
				dropped++
				slog.Debug("dropping field from deprecated question",
					"response_id", rec.ID, "key", key, "question_id", qid)
				continue
			}
			rec.Answers[title] = value
		}
		records = append(records, rec)
	}
	return records, dropped
}

func isMetadataField(key string) bool {
	switch key {
	case model.FieldResponseID, model.FieldCreateTime, model.FieldLastSubmitted, model.FieldEmail:
		return true
	}
	return false
}
