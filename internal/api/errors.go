package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for statuses callers branch on. Every non-2xx response
// is returned as a *StatusError that unwraps to one of these when the
// status (and server message) matches.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrLocked              = errors.New("task is locked")
	ErrNotFound            = errors.New("not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrOutOfStock          = errors.New("item out of stock")
	ErrAlreadyRedeemed     = errors.New("purchase already redeemed")
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string // server-provided "error" field, if any
	Err     error  // matching sentinel, if any
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

func (e *StatusError) Unwrap() error { return e.Err }

// ErrInvalidPayload indicates a response body that does not match the
// expected shape.
type ErrInvalidPayload struct {
	Path string
	Body json.RawMessage
	Err  error
}

func (e *ErrInvalidPayload) Error() string {
	return fmt.Sprintf("invalid response from %s: %v", e.Path, e.Err)
}

func (e *ErrInvalidPayload) Unwrap() error { return e.Err }

// ValidationError is a request rejected before it was sent.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// errorBody is the server's error envelope.
type errorBody struct {
	Error string `json:"error"`
}

// newStatusError builds a StatusError from a failed response body.
func newStatusError(method, path string, status int, body []byte) *StatusError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	se := &StatusError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: eb.Error,
	}

	msg := strings.ToLower(eb.Error)
	switch {
	case status == http.StatusUnauthorized:
		se.Err = ErrUnauthorized
	case status == http.StatusForbidden && strings.Contains(msg, "locked"):
		se.Err = ErrLocked
	case status == http.StatusForbidden:
		se.Err = ErrForbidden
	case status == http.StatusNotFound:
		se.Err = ErrNotFound
	case strings.Contains(msg, "insufficient balance"):
		se.Err = ErrInsufficientBalance
	case strings.Contains(msg, "out of stock"):
		se.Err = ErrOutOfStock
	case strings.Contains(msg, "already redeemed"):
		se.Err = ErrAlreadyRedeemed
	}
	return se
}

// Message returns a short human-readable description of err suitable for
// a status line: the server's message when there is one.
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return err.Error()
}
