package session

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/api"
	sess "github.com/abhisek/skillquest/internal/session"
	"github.com/abhisek/skillquest/internal/ui/components"
	"github.com/abhisek/skillquest/internal/ui/theme"
)

// renderQuestionView renders the current question with its answer widget.
func (s *SessionScreen) renderQuestionView(state sess.State, width int) string {
	q := state.Current()
	if q == nil {
		return renderLoading(width)
	}

	var b strings.Builder

	// Progress line.
	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d of %d", state.Index+1, state.Total()))

	correct := 0
	for _, ok := range state.Outcomes {
		if ok {
			correct++
		}
	}
	infoRight := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%s %d  %s %d",
			lipgloss.NewStyle().Foreground(theme.Success).Render("✓"),
			correct,
			lipgloss.NewStyle().Foreground(theme.Error).Render("✗"),
			len(state.Outcomes)-correct,
		))

	infoLine := infoLeft
	rightPad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4
	if rightPad > 0 {
		infoLine += strings.Repeat(" ", rightPad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")

	bar := components.NewProgressBar("", state.Progress(), true, max(width-8, 10))
	b.WriteString("  " + bar.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	// Answer area.
	if q.Kind == sess.KindText {
		questionStyle := lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Text).
			Bold(true)
		b.WriteString(questionStyle.Render(q.Text))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Render("Answer: " + s.input.View()))
	} else if len(q.Options) == 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(q.Text)))
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("This question has no options. Press Esc to leave.")))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))
	}

	if state.Phase == sess.PhaseEvaluated {
		b.WriteString("\n\n")
		b.WriteString(renderFeedback(state, q, width))
	}

	return b.String()
}

// renderFeedback renders the verdict below an answered question.
func renderFeedback(state sess.State, q *sess.Question, width int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	switch {
	case q.Kind == sess.KindText:
		b.WriteString(theme.Correct.Width(width).Align(lipgloss.Center).Render("Answer recorded!"))
	case state.Status == sess.StatusCorrect:
		b.WriteString(theme.Correct.Width(width).Align(lipgloss.Center).Render("Correct!"))
	default:
		b.WriteString(theme.Incorrect.Width(width).Align(lipgloss.Center).Render("Not quite"))
		if q.CorrectAnswer != "" {
			b.WriteString("\n")
			b.WriteString(center.Foreground(theme.TextDim).
				Render(fmt.Sprintf("Correct answer: %s", q.CorrectAnswer)))
		}
	}

	b.WriteString("\n\n")
	hint := "Press Enter for the next question"
	switch {
	case state.Finalizing:
		hint = "Saving your result..."
	case state.OnLastQuestion():
		hint = "Press Enter to finish"
	}
	b.WriteString(center.Foreground(theme.TextDim).Render(hint))
	return b.String()
}

// renderLoading renders the loading state.
func renderLoading(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Loading quest...")
}

// renderFinishing is shown for the instant between the summary being
// reached and the summary screen replacing this one.
func renderFinishing(width int) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("\n\n\n  Quest complete!")
}

// renderError renders a load failure.
func renderError(width int, err error) string {
	msg := "unknown error"
	if err != nil {
		msg = api.Message(err)
	}
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Could not load this quest: %s\n\n  Press any key to go back.", msg))
}
