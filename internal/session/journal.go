package session

import (
	"context"
	"fmt"
	"os"

	"github.com/abhisek/skillquest/internal/metrics"
	"github.com/abhisek/skillquest/internal/store"
)

// Session outcomes reported to metrics.
const (
	OutcomeStarted   = "started"
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeAbandoned = "abandoned"
)

// recorder journals lifecycle steps and counts them. Both sinks are
// optional.
type recorder struct {
	sessionID string
	taskID    int
	eventRepo store.EventRepo
	metrics   *metrics.Metrics
}

func (r recorder) record(outcome string, data store.SessionEventData) {
	if outcome != "" {
		r.metrics.IncSession(outcome)
	}
	if data.Action == store.SessionActionFinalizeFailed {
		r.metrics.IncFinalizeFailure()
	}
	if r.eventRepo == nil || data.Action == "" {
		return
	}

	data.SessionID = r.sessionID
	data.TaskID = r.taskID
	// Log the event but don't fail the session if logging fails.
	if err := r.eventRepo.AppendSessionEvent(context.Background(), data); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to log session %s event: %v\n", data.Action, err)
	}
}

func (r recorder) started(questions int) {
	r.record(OutcomeStarted, store.SessionEventData{
		Action:        store.SessionActionStart,
		QuestionCount: questions,
	})
}

func (r recorder) loadFailed() {
	r.record(OutcomeFailed, store.SessionEventData{})
}

func (r recorder) finalized(s *Summary, answerIndex int) {
	if s.FinalizeErr != nil {
		r.record("", store.SessionEventData{
			Action:       store.SessionActionFinalizeFailed,
			AnswerIndex:  answerIndex,
			ErrorMessage: s.FinalizeErr.Error(),
		})
	} else {
		r.record("", store.SessionEventData{
			Action:      store.SessionActionFinalize,
			AnswerIndex: answerIndex,
			Earned:      s.Earned,
		})
	}
	r.record(OutcomeCompleted, store.SessionEventData{
		Action:        store.SessionActionEnd,
		QuestionCount: s.Total,
		CorrectCount:  s.Correct,
	})
}

func (r recorder) abandoned(correct, questions int) {
	r.record(OutcomeAbandoned, store.SessionEventData{
		Action:        store.SessionActionAbandon,
		QuestionCount: questions,
		CorrectCount:  correct,
	})
}
