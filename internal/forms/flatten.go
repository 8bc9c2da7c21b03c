package forms

import (
	"fmt"
	"strconv"
)

// Flatten collapses a nested response document into a single-level map with
// underscore-joined keys, the shape the pipeline's schema normalizer expects.
// Array elements contribute their index as a path segment, so an answer ends
// up under a key like "answers_<questionId>_textAnswers_answers_0_value".
func Flatten(doc map[string]any) map[string]string {
	out := make(map[string]string)
	flattenInto(out, "", doc)
	return out
}

func flattenInto(out map[string]string, prefix string, v any) {
	switch t := v.(type) {
	case map[string]any:
		for key, child := range t {
			flattenInto(out, joinKey(prefix, key), child)
		}
	case []any:
		for i, child := range t {
			flattenInto(out, joinKey(prefix, strconv.Itoa(i)), child)
		}
	case nil:
		out[prefix] = ""
	case string:
		out[prefix] = t
	case float64:
		out[prefix] = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		out[prefix] = strconv.FormatBool(t)
	default:
		out[prefix] = fmt.Sprint(t)
	}
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "_" + key
}
