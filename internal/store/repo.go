package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	From      time.Time // timestamp >= From
	SessionID string    // session events only
}

// Credential slots.
const (
	SlotUser  = "user"
	SlotAdmin = "admin"
)

// CredentialRepo persists bearer tokens by slot.
type CredentialRepo interface {
	// Load returns the stored token for slot, or "" if none is stored.
	Load(ctx context.Context, slot string) (string, error)

	// Save stores token for slot, replacing any previous value.
	Save(ctx context.Context, slot, token string) error

	// Delete removes the token for slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, slot string) error
}

// RequestEventData captures one HTTP call against the remote API.
type RequestEventData struct {
	Method       string
	Path         string
	Status       int // 0 when no response was received
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// RequestEventRecord is a journaled RequestEventData.
type RequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	RequestEventData
}

// Session event actions.
const (
	SessionActionStart          = "start"
	SessionActionFinalize       = "finalize"
	SessionActionFinalizeFailed = "finalize_failed"
	SessionActionEnd            = "end"
	SessionActionAbandon        = "abandon"
)

// SessionEventData captures one lifecycle step of a task session.
type SessionEventData struct {
	SessionID     string
	TaskID        int
	Action        string
	QuestionCount int
	CorrectCount  int
	AnswerIndex   int
	Earned        int
	ErrorMessage  string
}

// SessionEventRecord is a journaled SessionEventData.
type SessionEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// SessionStats aggregates the session journal.
type SessionStats struct {
	Started          int
	Completed        int
	Abandoned        int
	FinalizeFailures int
	TotalQuestions   int
	TotalCorrect     int
	TotalEarned      int
}

// Accuracy returns the overall percentage of correct answers in completed
// sessions, rounded to the nearest integer. Zero when nothing was answered.
func (s SessionStats) Accuracy() int {
	if s.TotalQuestions == 0 {
		return 0
	}
	return int(float64(s.TotalCorrect)*100/float64(s.TotalQuestions) + 0.5)
}

// EventRepo provides append and query access to the local journal.
type EventRepo interface {
	// AppendRequestEvent records an API call.
	AppendRequestEvent(ctx context.Context, data RequestEventData) error

	// AppendSessionEvent records a task session lifecycle step.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QueryRequestEvents returns API call events, newest first.
	QueryRequestEvents(ctx context.Context, opts QueryOpts) ([]RequestEventRecord, error)

	// QuerySessionEvents returns session events, newest first.
	QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error)

	// SessionStats aggregates every journaled session event.
	SessionStats(ctx context.Context) (SessionStats, error)
}
