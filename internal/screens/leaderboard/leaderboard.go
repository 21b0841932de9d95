package leaderboard

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/game"
	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/ui/layout"
	"github.com/abhisek/skillquest/internal/ui/theme"
)

type boardLoadedMsg struct {
	Board *api.Leaderboard
	Err   error
}

// LeaderboardScreen ranks players by balance.
type LeaderboardScreen struct {
	game   *game.Service
	board  *api.Leaderboard
	loaded bool
	errMsg string
}

var _ screen.Screen = (*LeaderboardScreen)(nil)
var _ screen.KeyHintProvider = (*LeaderboardScreen)(nil)

// New creates a new LeaderboardScreen.
func New(g *game.Service) *LeaderboardScreen {
	return &LeaderboardScreen{game: g}
}

func (s *LeaderboardScreen) Init() tea.Cmd {
	g := s.game
	return func() tea.Msg {
		board, err := g.Leaderboard(context.Background())
		return boardLoadedMsg{Board: board, Err: err}
	}
}

func (s *LeaderboardScreen) Title() string {
	return "Leaderboard"
}

func (s *LeaderboardScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *LeaderboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case boardLoadedMsg:
		s.loaded = true
		s.errMsg = ""
		if msg.Err != nil {
			s.errMsg = api.Message(msg.Err)
			return s, nil
		}
		s.board = msg.Board
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			return s, s.Init()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *LeaderboardScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading leaderboard...")
	}
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if s.board == nil || len(s.board.TopUsers) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  Nobody is ranked yet.")
	}

	me := 0
	if u := s.game.User(); u != nil {
		me = u.ID
	}

	var b strings.Builder
	b.WriteString("\n")
	header := fmt.Sprintf("  %-5s %-24s %8s %7s %7s", "RANK", "PLAYER", "COINS", "QUESTS", "STREAK")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render(header)))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", lipgloss.Width(header)))))
	b.WriteString("\n")

	maxRows := max(height-8, 3)
	listedMe := false
	for i, e := range s.board.TopUsers {
		if i >= maxRows {
			break
		}
		if e.UserID == me {
			listedMe = true
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderEntry(e, e.UserID == me)))
		b.WriteString("\n")
	}

	if cu := s.board.CurrentUser; cu != nil && !listedMe {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("  ⋮")))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderEntry(*cu, true)))
		b.WriteString("\n")
	}

	return b.String()
}

func renderEntry(e api.LeaderboardEntry, self bool) string {
	medal := "  "
	switch e.Rank {
	case 1:
		medal = "🥇"
	case 2:
		medal = "🥈"
	case 3:
		medal = "🥉"
	}
	name := e.Username
	if name == "" {
		name = fmt.Sprintf("player #%d", e.UserID)
	}
	line := fmt.Sprintf("%s%-5d %-24s %8d %7d %7d",
		medal, e.Rank, name, e.Balance, e.CompletedTasksCount, e.CurrentStreak)

	style := lipgloss.NewStyle().Foreground(theme.Text)
	switch {
	case self:
		style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	case e.Rank <= 3:
		style = lipgloss.NewStyle().Foreground(theme.ArcadeYellow)
	}
	return style.Render(line)
}
