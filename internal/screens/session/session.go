package session

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/screens/summary"
	sess "github.com/abhisek/skillquest/internal/session"
	"github.com/abhisek/skillquest/internal/ui/components"
	"github.com/abhisek/skillquest/internal/ui/layout"
)

// SessionScreen implements screen.Screen for one task session. All session
// rules live in the controller; the screen only maps keys onto it and
// renders its state.
type SessionScreen struct {
	ctrl      *sess.Controller
	taskTitle string

	choice components.MultiChoice
	input  components.TextInput

	// widgetIndex is the question the widgets were built for, or -1.
	widgetIndex int
	advancing   bool
	replaced    bool
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.Closer = (*SessionScreen)(nil)

// New creates a SessionScreen driving ctrl. taskTitle is shown in the
// header and on the summary.
func New(ctrl *sess.Controller, taskTitle string) *SessionScreen {
	return &SessionScreen{
		ctrl:        ctrl,
		taskTitle:   taskTitle,
		widgetIndex: -1,
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	ctrl := s.ctrl
	return func() tea.Msg {
		return loadedMsg{Err: ctrl.Load(context.Background())}
	}
}

func (s *SessionScreen) Title() string {
	return s.taskTitle
}

// Close discards the controller when the screen leaves the stack.
func (s *SessionScreen) Close() {
	s.ctrl.Close()
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	state := s.ctrl.State()
	switch state.Phase {
	case sess.PhaseFailed:
		return []layout.KeyHint{
			{Key: "any key", Description: "Back"},
		}
	case sess.PhaseEvaluated:
		label := "Next question"
		if state.OnLastQuestion() {
			label = "Finish"
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: label},
			{Key: "Esc", Description: "Quit"},
		}
	case sess.PhaseIdle:
		if q := state.Current(); q != nil && q.Kind == sess.KindChoice {
			return []layout.KeyHint{
				{Key: "↑↓", Description: "Choose"},
				{Key: "Enter", Description: "Answer"},
				{Key: "Esc", Description: "Quit"},
			}
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "Esc", Description: "Quit"},
	}
}

func (s *SessionScreen) View(width, height int) string {
	state := s.ctrl.State()
	switch state.Phase {
	case sess.PhaseLoading:
		return renderLoading(width)
	case sess.PhaseFailed:
		return renderError(width, state.Err)
	case sess.PhaseSummary:
		return renderFinishing(width)
	}
	return s.renderQuestionView(state, width)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if errors.Is(msg.Err, sess.ErrClosed) {
			return s, nil
		}
		return s, s.syncWidgets()

	case advancedMsg:
		s.advancing = false
		return s, s.showSummary()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Cursor blink and similar messages go to the text input.
	if s.textActive() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	state := s.ctrl.State()

	switch state.Phase {
	case sess.PhaseFailed:
		return s, func() tea.Msg { return router.PopScreenMsg{} }

	case sess.PhaseIdle:
		q := state.Current()
		if q == nil {
			return s, nil
		}
		if q.Kind == sess.KindText {
			return s.handleTextKey(msg, key)
		}
		return s.handleChoiceKey(msg)

	case sess.PhaseEvaluated:
		if key != "enter" && key != "space" {
			return s, nil
		}
		return s, s.advance(state)
	}

	return s, nil
}

func (s *SessionScreen) handleChoiceKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	s.choice, _ = s.choice.Update(msg)
	if !s.choice.Submitted {
		return s, nil
	}
	if !s.ctrl.SubmitChoice(s.choice.ChosenIndex) {
		s.choice.Reset()
		return s, nil
	}
	s.choice.Mark(s.ctrl.State().Status == sess.StatusCorrect)
	return s, nil
}

func (s *SessionScreen) handleTextKey(msg tea.KeyMsg, key string) (screen.Screen, tea.Cmd) {
	if key == "enter" {
		if s.ctrl.SubmitText(s.input.Value()) {
			s.input.Submit(true)
			s.input.Blur()
		}
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// advance moves past the evaluated question. Intermediate questions are
// local; the last one makes the completion call, so it runs as a command.
func (s *SessionScreen) advance(state sess.State) tea.Cmd {
	if s.advancing || state.Finalizing {
		return nil
	}
	if !state.OnLastQuestion() {
		s.ctrl.Advance(context.Background())
		return s.syncWidgets()
	}

	s.advancing = true
	ctrl := s.ctrl
	return func() tea.Msg {
		ctrl.Advance(context.Background())
		return advancedMsg{}
	}
}

func (s *SessionScreen) showSummary() tea.Cmd {
	state := s.ctrl.State()
	if state.Phase != sess.PhaseSummary || state.Summary == nil || s.replaced {
		return nil
	}
	s.replaced = true
	next := summary.New(state.Summary, s.taskTitle)
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

// syncWidgets rebuilds the answer widgets when the current question
// changed.
func (s *SessionScreen) syncWidgets() tea.Cmd {
	state := s.ctrl.State()
	q := state.Current()
	if q == nil || state.Index == s.widgetIndex {
		return nil
	}
	s.widgetIndex = state.Index

	if q.Kind == sess.KindText {
		s.input = components.NewTextInput("Type your answer...", false, 200)
		return s.input.Init()
	}
	s.choice = components.NewMultiChoice(q.Text, q.Options)
	return nil
}

func (s *SessionScreen) textActive() bool {
	state := s.ctrl.State()
	q := state.Current()
	return state.Phase == sess.PhaseIdle && q != nil && q.Kind == sess.KindText
}
