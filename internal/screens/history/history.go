package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/store"
	"github.com/abhisek/skillquest/internal/ui/layout"
	"github.com/abhisek/skillquest/internal/ui/theme"
)

// maxEvents bounds how much of the journal the screen reads.
const maxEvents = 500

type historyLoadedMsg struct {
	Sessions []SessionRun
	Stats    store.SessionStats
	Err      error
}

// SessionRun is one task session reassembled from its journal events.
type SessionRun struct {
	SessionID string
	TaskID    int
	StartedAt time.Time
	Outcome   string // last lifecycle action: end, abandon or start
	Questions int
	Correct   int
	Earned    int
	Failed    bool // completion call failed
	Events    []store.SessionEventRecord
}

// HistoryScreen displays past task sessions from the local journal.
type HistoryScreen struct {
	eventRepo store.EventRepo
	sessions  []SessionRun
	stats     store.SessionStats
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.eventRepo
	return func() tea.Msg {
		ctx := context.Background()

		events, err := repo.QuerySessionEvents(ctx, store.QueryOpts{Limit: maxEvents})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		stats, err := repo.SessionStats(ctx)
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Sessions: GroupSessions(events), Stats: stats}
	}
}

// GroupSessions folds newest-first session events into runs, newest run
// first.
func GroupSessions(events []store.SessionEventRecord) []SessionRun {
	index := make(map[string]int)
	var runs []SessionRun

	// Walk oldest first so the last action wins.
	for i := len(events) - 1; i >= 0; i-- {
		ev := events[i]
		pos, ok := index[ev.SessionID]
		if !ok {
			pos = len(runs)
			index[ev.SessionID] = pos
			runs = append(runs, SessionRun{
				SessionID: ev.SessionID,
				TaskID:    ev.TaskID,
				StartedAt: ev.Timestamp,
				Outcome:   store.SessionActionStart,
			})
		}
		run := &runs[pos]
		run.Events = append(run.Events, ev)

		switch ev.Action {
		case store.SessionActionStart:
			run.Questions = ev.QuestionCount
		case store.SessionActionFinalize:
			run.Earned = ev.Earned
		case store.SessionActionFinalizeFailed:
			run.Failed = true
		case store.SessionActionEnd, store.SessionActionAbandon:
			run.Outcome = ev.Action
			run.Questions = ev.QuestionCount
			run.Correct = ev.CorrectCount
		}
	}

	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.sessions = msg.Sessions
			s.stats = msg.Stats
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
			return s, nil
		case "down", "j":
			if s.selected < len(s.sessions)-1 {
				s.selected++
			}
			return s, nil
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
			return s, nil
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(s.sessions) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No quests played on this machine yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	statsLine := fmt.Sprintf("%d completed  %d abandoned  %d%% accuracy  +%d coins",
		s.stats.Completed, s.stats.Abandoned, s.stats.Accuracy(), s.stats.TotalEarned)
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.ArcadeYellow).
		Render(statsLine))
	b.WriteString("\n\n")

	for i, run := range s.sessions {
		dateStr := run.StartedAt.Format("Jan 02, 2006 15:04")

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		result := outcomeLabel(run)
		line := fmt.Sprintf("%s%s  quest #%-4d %-10s %d/%d correct",
			prefix, dateStr, run.TaskID, result, run.Correct, run.Questions)
		if run.Earned > 0 {
			line += fmt.Sprintf("  +%d", run.Earned)
		}

		style := lipgloss.NewStyle().Foreground(outcomeColor(run))
		if i == s.selected {
			style = style.Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			style.Render(line)))
		b.WriteString("\n")

		// Show expanded event details.
		if s.expanded[i] {
			for _, ev := range run.Events {
				evLine := fmt.Sprintf("    %s  %s", ev.Timestamp.Format("15:04:05"), ev.Action)
				if ev.ErrorMessage != "" {
					evLine += ": " + ev.ErrorMessage
				}
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render(evLine)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func outcomeLabel(run SessionRun) string {
	switch {
	case run.Outcome == store.SessionActionAbandon:
		return "abandoned"
	case run.Outcome == store.SessionActionEnd && run.Failed:
		return "unsaved"
	case run.Outcome == store.SessionActionEnd:
		return "completed"
	}
	return "started"
}

func outcomeColor(run SessionRun) color.Color {
	switch outcomeLabel(run) {
	case "completed":
		return theme.Success
	case "unsaved":
		return theme.Accent
	case "abandoned":
		return theme.TextDim
	default:
		return theme.Text
	}
}
