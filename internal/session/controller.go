// Package session drives a player through one task: it loads the task's
// questions, grades answers locally, and reports completion once the last
// question is done.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/metrics"
	"github.com/abhisek/skillquest/internal/store"
)

// ErrClosed is returned by Load when the session was closed before the
// task detail arrived. The late result is discarded.
var ErrClosed = errors.New("session closed")

// DetailFetcher returns the full content of a task.
type DetailFetcher interface {
	TaskDetail(ctx context.Context, id int) (*api.TaskDetail, error)
}

// Finalizer records a finished task with the server.
type Finalizer interface {
	Finalize(ctx context.Context, taskID, answerIndex int) (*api.SubmitResult, error)
}

// Config wires a Controller to its collaborators. EventRepo and Metrics
// may be nil.
type Config struct {
	TaskID    int
	Fetcher   DetailFetcher
	Finalizer Finalizer
	EventRepo store.EventRepo
	Metrics   *metrics.Metrics
}

// Controller owns the state of one task session. Its methods are safe to
// call from command goroutines while the UI reads State.
type Controller struct {
	id  string
	cfg Config
	rec recorder

	mu         sync.Mutex
	phase      Phase
	questions  []Question
	index      int
	outcomes   []bool
	status     Status
	selected   int
	text       string
	loading    bool
	finalizing bool
	closed     bool
	err        error
	summary    *Summary
}

// New creates a session for cfg.TaskID in PhaseLoading.
func New(cfg Config) *Controller {
	id := uuid.NewString()
	return &Controller{
		id:  id,
		cfg: cfg,
		rec: recorder{
			sessionID: id,
			taskID:    cfg.TaskID,
			eventRepo: cfg.EventRepo,
			metrics:   cfg.Metrics,
		},
		phase:    PhaseLoading,
		selected: NoSelection,
	}
}

// ID returns the session's journal id.
func (c *Controller) ID() string { return c.id }

// TaskID returns the task being played.
func (c *Controller) TaskID() int { return c.cfg.TaskID }

// Load fetches and normalizes the task. On failure the session moves to
// PhaseFailed and stays there; there is no retry. Only the first call
// fetches.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.loading || c.phase != PhaseLoading {
		c.mu.Unlock()
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	detail, err := c.cfg.Fetcher.TaskDetail(ctx, c.cfg.TaskID)

	c.mu.Lock()
	c.loading = false
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		c.phase = PhaseFailed
		c.err = fmt.Errorf("load task %d: %w", c.cfg.TaskID, err)
		c.mu.Unlock()
		c.rec.loadFailed()
		return c.err
	}
	c.questions = Normalize(detail)
	c.phase = PhaseIdle
	n := len(c.questions)
	c.mu.Unlock()

	c.rec.started(n)
	return nil
}

// SubmitChoice answers the current choice question with option index. It
// is a no-op (returning false) unless the session is idle on a choice
// question and index is in range.
func (c *Controller) SubmitChoice(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.acceptingLocked() {
		return false
	}
	q := c.questions[c.index]
	if q.Kind != KindChoice || index < 0 || index >= len(q.Options) {
		return false
	}

	c.selected = index
	if q.Grade(index) {
		c.status = StatusCorrect
	} else {
		c.status = StatusWrong
	}
	c.phase = PhaseEvaluated
	return true
}

// SubmitText answers the current text question. Any non-blank text is
// accepted as correct; the server is the authority on free text. Returns
// false when the submission was ignored.
func (c *Controller) SubmitText(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.acceptingLocked() || c.questions[c.index].Kind != KindText {
		return false
	}
	if strings.TrimSpace(text) == "" {
		return false
	}

	c.text = text
	c.status = StatusCorrect
	c.phase = PhaseEvaluated
	return true
}

// Advance moves past an evaluated question. On the last question it makes
// the single completion call, carrying the last selected option (0 when
// there is none), and then enters PhaseSummary whether or not the call
// succeeded. A failed call is journaled and kept on the Summary. Advance
// is a no-op outside PhaseEvaluated or while completion is in flight.
func (c *Controller) Advance(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.phase != PhaseEvaluated || c.finalizing {
		c.mu.Unlock()
		return
	}

	c.outcomes = append(c.outcomes, c.status == StatusCorrect)

	if c.index < len(c.questions)-1 {
		c.index++
		c.selected = NoSelection
		c.text = ""
		c.status = StatusUnanswered
		c.phase = PhaseIdle
		c.mu.Unlock()
		return
	}

	answerIndex := c.selected
	if answerIndex < 0 {
		answerIndex = 0
	}
	c.finalizing = true
	outcomes := append([]bool(nil), c.outcomes...)
	total := len(c.questions)
	c.mu.Unlock()

	res, err := c.cfg.Finalizer.Finalize(ctx, c.cfg.TaskID, answerIndex)

	s := &Summary{
		TaskID:   c.cfg.TaskID,
		Outcomes: outcomes,
		Correct:  countTrue(outcomes),
		Total:    total,
		Accuracy: Accuracy(outcomes, total),
	}
	if err != nil {
		s.FinalizeErr = err
	} else if res != nil {
		s.Earned = res.Earned
		s.NewBalance = res.NewBalance
		s.Accepted = res.Success
	}

	c.mu.Lock()
	c.finalizing = false
	c.summary = s
	c.phase = PhaseSummary
	c.mu.Unlock()

	c.rec.finalized(s, answerIndex)
}

// Close discards the session. Closing before the summary journals an
// abandoned session. Later calls to any method are no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	abandoned := c.phase != PhaseSummary && c.phase != PhaseFailed && !c.finalizing
	correct, total := countTrue(c.outcomes), len(c.questions)
	c.mu.Unlock()

	if abandoned {
		c.rec.abandoned(correct, total)
	}
}

// Closed reports whether Close was called.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// State returns a snapshot of the session.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Phase:      c.phase,
		Questions:  c.questions,
		Index:      c.index,
		Outcomes:   append([]bool(nil), c.outcomes...),
		Status:     c.status,
		Selected:   c.selected,
		Text:       c.text,
		Finalizing: c.finalizing,
		Err:        c.err,
		Summary:    c.summary,
	}
}

// Progress returns the completed fraction of the session.
func (c *Controller) Progress() float64 {
	return c.State().Progress()
}

// Accuracy returns the rounded percentage of correct answers over all
// questions, based on the outcomes recorded so far.
func (c *Controller) Accuracy() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Accuracy(c.outcomes, len(c.questions))
}

func (c *Controller) acceptingLocked() bool {
	return !c.closed && c.phase == PhaseIdle
}
