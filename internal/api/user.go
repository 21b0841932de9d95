package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
)

// Me returns the caller's profile.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/user/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile changes the editable profile fields.
func (c *Client) UpdateProfile(ctx context.Context, p ProfileUpdate) error {
	return c.do(ctx, http.MethodPut, "/api/user/me", p, nil)
}

// UploadAvatar sends an image as the multipart field "avatar" and returns
// the new photo URL.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("avatar", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("build avatar upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build avatar upload: %w", err)
	}

	const path = "/api/user/avatar"
	raw, err := c.send(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	var res struct {
		PhotoURL string `json:"photo_url"`
	}
	if err := decode(path, raw, &res); err != nil {
		return "", err
	}
	return res.PhotoURL, nil
}

// Inventory lists the caller's purchases, newest first.
func (c *Client) Inventory(ctx context.Context) ([]InventoryItem, error) {
	var items []InventoryItem
	if err := c.do(ctx, http.MethodGet, "/api/user/inventory", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// UserMetrics returns the caller's free-form statistics map.
func (c *Client) UserMetrics(ctx context.Context) (map[string]any, error) {
	m := map[string]any{}
	if err := c.do(ctx, http.MethodGet, "/api/user/metrics", nil, &m); err != nil {
		return nil, err
	}
	return m, nil
}
