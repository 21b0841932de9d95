package session

// Phase is the controller's position in the session lifecycle.
type Phase int

const (
	PhaseLoading   Phase = iota // Fetching task detail
	PhaseIdle                   // Waiting for an answer to the current question
	PhaseEvaluated              // Current question answered, waiting for continue
	PhaseSummary                // All questions done
	PhaseFailed                 // Task detail could not be loaded
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseIdle:
		return "idle"
	case PhaseEvaluated:
		return "evaluated"
	case PhaseSummary:
		return "summary"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Status is the interaction state of the current question.
type Status int

const (
	StatusUnanswered Status = iota
	StatusCorrect
	StatusWrong
)

// NoSelection is State.Selected when no option has been chosen.
const NoSelection = -1

// State is a snapshot of a session. It is a copy; mutating it has no
// effect on the controller.
type State struct {
	Phase     Phase
	Questions []Question
	Index     int    // current question, 0-based
	Outcomes  []bool // one entry per finished question
	Status    Status
	Selected  int    // chosen option, or NoSelection
	Text      string // submitted free-text answer

	// Finalizing is set while the completion call for the last question is
	// in flight.
	Finalizing bool

	// Err is the load failure in PhaseFailed.
	Err error

	// Summary is set in PhaseSummary.
	Summary *Summary
}

// Total returns the number of questions.
func (s State) Total() int {
	return len(s.Questions)
}

// Current returns the question being answered, or nil before load and
// after a failure.
func (s State) Current() *Question {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.Index]
}

// OnLastQuestion reports whether the current question is the final one.
func (s State) OnLastQuestion() bool {
	return len(s.Questions) > 0 && s.Index == len(s.Questions)-1
}

// Progress returns the completed fraction for a progress bar: the current
// index, plus one once the summary is reached, over the question count.
func (s State) Progress() float64 {
	if len(s.Questions) == 0 {
		return 0
	}
	done := s.Index
	if s.Phase == PhaseSummary {
		done++
	}
	return float64(done) / float64(len(s.Questions))
}
