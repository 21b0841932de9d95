package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/session"
	"github.com/abhisek/skillquest/internal/ui/layout"
	"github.com/abhisek/skillquest/internal/ui/theme"
)

// SummaryScreen displays the result of a finished task session.
type SummaryScreen struct {
	summary   *session.Summary
	taskTitle string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(summary *session.Summary, taskTitle string) *SummaryScreen {
	return &SummaryScreen{summary: summary, taskTitle: taskTitle}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quest Summary"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back to map"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}

	center := func(style lipgloss.Style, text string) string {
		return style.Width(width).Align(lipgloss.Center).Render(text)
	}

	var b strings.Builder

	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "Quest complete!"))
	b.WriteString("\n")
	if s.taskTitle != "" {
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), s.taskTitle))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	// Stats line.
	statsLine := fmt.Sprintf("Correct: %d        Wrong: %d        Accuracy: %d%%",
		sum.Correct, sum.Wrong(), sum.Accuracy)
	b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Text), statsLine))
	b.WriteString("\n\n")

	// Per-question marks.
	var marks []string
	for i, ok := range sum.Outcomes {
		style := lipgloss.NewStyle().Foreground(theme.Error)
		mark := "✗"
		if ok {
			style = lipgloss.NewStyle().Foreground(theme.Success)
			mark = "✓"
		}
		marks = append(marks, style.Render(fmt.Sprintf("%d%s", i+1, mark)))
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(marks, "  ")))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	// Reward.
	switch {
	case sum.FinalizeErr != nil:
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
			"⚠ Your result could not be saved"))
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
			api.Message(sum.FinalizeErr)))
	case sum.Earned > 0:
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true),
			fmt.Sprintf("+%d coins", sum.Earned)))
		b.WriteString("\n")
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim),
			fmt.Sprintf("Balance: %d", sum.NewBalance)))
	case sum.Accepted:
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.Success), "Quest recorded"))
	default:
		b.WriteString(center(lipgloss.NewStyle().Foreground(theme.TextDim), "No reward this time"))
	}

	return b.String()
}
