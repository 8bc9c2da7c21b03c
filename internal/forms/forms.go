// Package forms retrieves the attendance survey's question schema and
// submissions from the Google Forms API and flattens them into the shape the
// pipeline consumes.
package forms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	formsv1 "google.golang.org/api/forms/v1"
	"google.golang.org/api/option"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// Client fetches one attendance form's schema and responses.
type Client struct {
	svc    *formsv1.Service
	formID string
}

// New builds a forms client on top of an authorized HTTP client (see
// NewHTTPClient).
func New(ctx context.Context, formID string, httpClient *http.Client) (*Client, error) {
	svc, err := formsv1.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create forms service: %w", err)
	}
	return &Client{svc: svc, formID: formID}, nil
}

// FetchSchema returns the current question-identifier to question-title
// mapping from the form body. Items without a question (section headers,
// media) are skipped.
func (c *Client) FetchSchema(ctx context.Context) (model.QuestionSchema, error) {
	form, err := c.svc.Forms.Get(c.formID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get form %s: %w", c.formID, err)
	}
	schema := make(model.QuestionSchema)
	for _, item := range form.Items {
		if item.QuestionItem == nil || item.QuestionItem.Question == nil {
			continue
		}
		schema[item.QuestionItem.Question.QuestionId] = item.Title
	}
	return schema, nil
}

// FetchSubmissions returns every response to the form, each flattened into
// the RawSubmission shape.
func (c *Client) FetchSubmissions(ctx context.Context) ([]model.RawSubmission, error) {
	var subs []model.RawSubmission
	pageToken := ""
	for {
		call := c.svc.Forms.Responses.List(c.formID).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list responses for form %s: %w", c.formID, err)
		}
		for _, fr := range resp.Responses {
			doc, err := responseDoc(fr)
			if err != nil {
				return nil, fmt.Errorf("flatten response %s: %w", fr.ResponseId, err)
			}
			subs = append(subs, model.RawSubmission(Flatten(doc)))
		}
		pageToken = resp.NextPageToken
		if pageToken == "" {
			return subs, nil
		}
	}
}

// responseDoc round-trips the typed response through JSON to recover the raw
// nested document, so flattening sees exactly the wire field names.
func responseDoc(fr *formsv1.FormResponse) (map[string]any, error) {
	b, err := json.Marshal(fr)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
