// Package canvas is a minimal Canvas REST client covering what attendance
// grading needs: course lookup, the student roster, and grade submission.
package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/Aidan-B1409/engr103-autograder/internal/model"
)

// Client talks to the Canvas API for one course. Transient failures are
// retried here; callers treat any returned error as final.
type Client struct {
	baseURL  string
	token    string
	courseID int64
	http     *http.Client
}

// New creates a Canvas client with conservative timeouts and retries.
func New(baseURL, token string, courseID int64) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	rc.HTTPClient.Timeout = 30 * time.Second
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		courseID: courseID,
		http:     rc.StandardClient(),
	}
}

// Course is the course metadata Canvas returns.
type Course struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// GetCourse fetches the course the client is bound to.
func (c *Client) GetCourse(ctx context.Context) (Course, error) {
	var course Course
	if err := c.get(ctx, fmt.Sprintf("/api/v1/courses/%d", c.courseID), &course); err != nil {
		return Course{}, fmt.Errorf("get course %d: %w", c.courseID, err)
	}
	return course, nil
}

// ListRoster pages through the course's student enrollment and returns every
// enrolled student.
func (c *Client) ListRoster(ctx context.Context) ([]model.RosterEntry, error) {
	type user struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		LoginID string `json:"login_id"`
	}

	var roster []model.RosterEntry
	next := fmt.Sprintf("%s/api/v1/courses/%d/users?enrollment_type[]=student&per_page=100", c.baseURL, c.courseID)
	for next != "" {
		var users []user
		link, err := c.getPage(ctx, next, &users)
		if err != nil {
			return nil, fmt.Errorf("list course users: %w", err)
		}
		for _, u := range users {
			roster = append(roster, model.RosterEntry{ID: u.ID, LoginID: u.LoginID, Name: u.Name})
		}
		next = link
	}
	return roster, nil
}

// GetAssignment fetches the assignment grades will be posted to.
func (c *Client) GetAssignment(ctx context.Context, id int64) (model.AssignmentHandle, error) {
	var a struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/v1/courses/%d/assignments/%d", c.courseID, id), &a); err != nil {
		return model.AssignmentHandle{}, fmt.Errorf("get assignment %d: %w", id, err)
	}
	return model.AssignmentHandle{ID: a.ID, Name: a.Name}, nil
}

// SubmitScore posts one present/absent grade for a student. Canvas treats
// repeated submissions of the same grade as a no-op, so this is idempotent.
func (c *Client) SubmitScore(ctx context.Context, assignment model.AssignmentHandle, entry model.RosterEntry, score int) error {
	endpoint := fmt.Sprintf("%s/api/v1/courses/%d/assignments/%d/submissions/%d",
		c.baseURL, c.courseID, assignment.ID, entry.ID)
	form := url.Values{}
	form.Set("submission[posted_grade]", strconv.Itoa(score))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("submit grade for %s: %w", entry.LoginID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("submit grade for %s: %s: %s", entry.LoginID, resp.Status, readErrorBody(resp.Body))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	_, err := c.getPage(ctx, c.baseURL+path, out)
	return err
}

// getPage performs one GET, decodes the body into out, and returns the
// rel="next" URL from the Link header, if any.
func (c *Client) getPage(ctx context.Context, u string, out any) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %s", resp.Status, readErrorBody(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return nextLink(resp.Header.Get("Link")), nil
}

// nextLink extracts the rel="next" URL from a Canvas pagination Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		if strings.TrimSpace(sections[1]) == `rel="next"` {
			return strings.Trim(strings.TrimSpace(sections[0]), "<>")
		}
	}
	return ""
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
