package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ListTasks returns every task with the caller's unlock status.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// TaskDetail fetches the full content of one task. The payload is schema
// checked before decoding.
func (c *Client) TaskDetail(ctx context.Context, id int) (*TaskDetail, error) {
	path := fmt.Sprintf("/api/tasks/%d", id)
	raw, err := c.doRaw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if err := ValidateTaskDetail(path, raw); err != nil {
		return nil, err
	}
	var d TaskDetail
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, &ErrInvalidPayload{Path: path, Body: raw, Err: err}
	}
	return &d, nil
}

// SubmitTask reports a finished task.
func (c *Client) SubmitTask(ctx context.Context, id int, req SubmitRequest) (*SubmitResult, error) {
	var res SubmitResult
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/submit", id), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
