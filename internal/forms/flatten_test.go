package forms

import (
	"testing"
)

func TestFlatten(t *testing.T) {
	doc := map[string]any{
		"responseId":        "r1",
		"createTime":        "2024-01-10T20:58:00Z",
		"lastSubmittedTime": "2024-01-10T21:00:00Z",
		"respondentEmail":   "a@x.edu",
		"answers": map[string]any{
			"1a2b3c4d": map[string]any{
				"questionId": "1a2b3c4d",
				"textAnswers": map[string]any{
					"answers": []any{
						map[string]any{"value": "Graphs"},
					},
				},
			},
		},
	}

	got := Flatten(doc)

	want := map[string]string{
		"responseId":                  "r1",
		"createTime":                  "2024-01-10T20:58:00Z",
		"lastSubmittedTime":           "2024-01-10T21:00:00Z",
		"respondentEmail":             "a@x.edu",
		"answers_1a2b3c4d_questionId": "1a2b3c4d",
		"answers_1a2b3c4d_textAnswers_answers_0_value": "Graphs",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d: %v", len(want), len(got), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("key %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestFlattenScalars(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		key  string
		want string
	}{
		{"number", map[string]any{"n": float64(3)}, "n", "3"},
		{"fraction", map[string]any{"n": 2.5}, "n", "2.5"},
		{"bool", map[string]any{"b": true}, "b", "true"},
		{"nil", map[string]any{"x": nil}, "x", ""},
		{"array index", map[string]any{"a": []any{"x", "y"}}, "a_1", "y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Flatten(tt.doc)
			if got[tt.key] != tt.want {
				t.Errorf("key %q = %q, want %q", tt.key, got[tt.key], tt.want)
			}
		})
	}
}
