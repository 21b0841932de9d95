package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// AdminClient calls the operator endpoints with the admin credential.
type AdminClient struct {
	c *Client
}

// NewAdmin creates an AdminClient. creds should be the admin slot so a
// rejected admin token never logs the player out.
func NewAdmin(baseURL string, creds TokenSource, opts ...Option) *AdminClient {
	return &AdminClient{c: New(baseURL, creds, opts...)}
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges operator credentials for an admin token.
func (a *AdminClient) Login(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return &ValidationError{Field: "username", Reason: "required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Reason: "required"}
	}
	return a.c.login(ctx, "/api/admin/login", adminLoginRequest{Username: username, Password: password})
}

// Metrics returns the dashboard summary.
func (a *AdminClient) Metrics(ctx context.Context) (*AdminMetrics, error) {
	var m AdminMetrics
	if err := a.c.do(ctx, http.MethodGet, "/api/admin/metrics", nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Users lists every user.
func (a *AdminClient) Users(ctx context.Context) ([]AdminUser, error) {
	var users []AdminUser
	if err := a.c.do(ctx, http.MethodGet, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Tasks lists every task with its answer key.
func (a *AdminClient) Tasks(ctx context.Context) ([]AdminTask, error) {
	var tasks []AdminTask
	if err := a.c.do(ctx, http.MethodGet, "/api/admin/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask adds a task. Title, type and a positive reward are required.
func (a *AdminClient) CreateTask(ctx context.Context, in TaskInput) (*AdminTask, error) {
	in = in.normalized()
	if err := in.ValidateCreate(); err != nil {
		return nil, err
	}
	var t AdminTask
	if err := a.c.do(ctx, http.MethodPost, "/api/admin/tasks", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask changes the non-empty fields of in.
func (a *AdminClient) UpdateTask(ctx context.Context, id int, in TaskInput) (*AdminTask, error) {
	in = in.normalized()
	var t AdminTask
	if err := a.c.do(ctx, http.MethodPut, fmt.Sprintf("/api/admin/tasks/%d", id), in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteTask removes a task.
func (a *AdminClient) DeleteTask(ctx context.Context, id int) error {
	return a.c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/tasks/%d", id), nil, nil)
}

// Redeem marks a purchase as handed over.
func (a *AdminClient) Redeem(ctx context.Context, purchaseID string) (*RedeemResult, error) {
	purchaseID = strings.TrimSpace(purchaseID)
	if purchaseID == "" {
		return nil, &ValidationError{Field: "purchase_id", Reason: "required"}
	}
	var res RedeemResult
	body := map[string]string{"purchase_id": purchaseID}
	if err := a.c.do(ctx, http.MethodPost, "/api/admin/redeem", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ValidateCreate checks the fields the server requires on create.
func (in TaskInput) ValidateCreate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if strings.TrimSpace(in.Type) == "" {
		return &ValidationError{Field: "type", Reason: "required"}
	}
	if in.Reward <= 0 {
		return &ValidationError{Field: "reward", Reason: "must be positive"}
	}
	return nil
}

// normalized drops blank options.
func (in TaskInput) normalized() TaskInput {
	if in.Options == nil {
		return in
	}
	opts := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		if strings.TrimSpace(o) != "" {
			opts = append(opts, o)
		}
	}
	in.Options = opts
	return in
}
