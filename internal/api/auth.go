package api

import (
	"context"
	"net/http"
	"strings"
	"unicode"
)

// Phone numbers are accepted with any punctuation; only the digit count
// is checked.
const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// Validate checks the form before it is sent.
func (p PhoneLogin) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return &ValidationError{Field: "first_name", Reason: "required"}
	}
	if strings.TrimSpace(p.LastName) == "" {
		return &ValidationError{Field: "last_name", Reason: "required"}
	}
	if strings.TrimSpace(p.PhoneNumber) == "" {
		return &ValidationError{Field: "phone_number", Reason: "required"}
	}
	n := 0
	for _, r := range p.PhoneNumber {
		if unicode.IsDigit(r) {
			n++
		}
	}
	if n < minPhoneDigits || n > maxPhoneDigits {
		return &ValidationError{Field: "phone_number", Reason: "must contain 10 to 15 digits"}
	}
	return nil
}

// LoginPhone signs in with the phone form and stores the issued token.
func (c *Client) LoginPhone(ctx context.Context, p PhoneLogin) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.PhoneNumber = strings.TrimSpace(p.PhoneNumber)
	return c.login(ctx, "/api/auth/phone", p)
}

// LoginTelegram signs in with a Telegram login widget payload.
func (c *Client) LoginTelegram(ctx context.Context, t TelegramLogin) error {
	if t.Hash == "" {
		return &ValidationError{Field: "hash", Reason: "required"}
	}
	if t.UserID == 0 {
		return &ValidationError{Field: "user_id", Reason: "required"}
	}
	return c.login(ctx, "/api/auth/telegram", t)
}

func (c *Client) login(ctx context.Context, path string, body any) error {
	var res authResponse
	if err := c.do(ctx, http.MethodPost, path, body, &res); err != nil {
		return err
	}
	if err := c.setToken(ctx, res.Token); err != nil {
		return err
	}
	// The leaderboard cache is keyed per token, but a fresh identity
	// should never see stale catalog data either.
	c.InvalidateCache()
	return nil
}
