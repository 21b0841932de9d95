package profile

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
	"github.com/abhisek/skillquest/internal/ui/components"
	"github.com/abhisek/skillquest/internal/ui/layout"
	"github.com/abhisek/skillquest/internal/ui/theme"
)

type profileLoadedMsg struct {
	Inventory []api.InventoryItem
	Err       error
}

// ProfileScreen shows the player's profile and purchased items.
type ProfileScreen struct {
	game      *game.Service
	inventory []api.InventoryItem
	scroll    int
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)

// New creates a new ProfileScreen.
func New(g *game.Service) *ProfileScreen {
	return &ProfileScreen{game: g}
}

func (s *ProfileScreen) Init() tea.Cmd {
	g := s.game
	return func() tea.Msg {
		ctx := context.Background()
		if err := g.RefreshUser(ctx); err != nil {
			return profileLoadedMsg{Err: err}
		}
		items, err := g.Inventory(ctx)
		return profileLoadedMsg{Inventory: items, Err: err}
	}
}

func (s *ProfileScreen) Title() string {
	return "Profile"
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = api.Message(msg.Err)
		}
		s.inventory = msg.Inventory
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.scroll > 0 {
				s.scroll--
			}
		case "down", "j":
			if s.scroll < len(s.inventory)-1 {
				s.scroll++
			}
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *ProfileScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading profile...")
	}

	cw := components.ContentWidth(width)
	var sections []string

	if u := s.game.User(); u != nil {
		sections = append(sections, components.ArcadeCard(renderUser(u), cw))
	}
	if s.errMsg != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(theme.Error).Render("Error: "+s.errMsg))
	}
	sections = append(sections, s.renderInventory(cw, height))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		strings.Join(sections, "\n\n"))
}

func renderUser(u *api.User) string {
	name := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(u.DisplayName())
	lines := []string{name}
	if u.Username != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextDim).Render("@"+u.Username))
	}
	stats := fmt.Sprintf("%s   %s   %s",
		lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Render(fmt.Sprintf("● %d coins", u.Balance)),
		lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("★ %d day streak", u.CurrentStreak)),
		lipgloss.NewStyle().Foreground(theme.Success).Render(fmt.Sprintf("✓ %d quests", u.CompletedTasksCount)),
	)
	lines = append(lines, "", stats)
	if u.Role != "" && u.Role != "user" {
		lines = append(lines, lipgloss.NewStyle().Foreground(theme.Secondary).Render("role: "+u.Role))
	}
	return strings.Join(lines, "\n")
}

func (s *ProfileScreen) renderInventory(cw, height int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("INVENTORY"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n")

	if len(s.inventory) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).
			Render("Nothing here yet. Visit the shop!"))
		return b.String()
	}

	maxVisible := max(height-16, 3)
	end := min(s.scroll+maxVisible, len(s.inventory))
	for _, item := range s.inventory[s.scroll:end] {
		status := lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Render("pending")
		if item.Status == "redeemed" {
			status = lipgloss.NewStyle().Foreground(theme.Success).Render("redeemed")
		}
		name := lipgloss.NewStyle().Foreground(theme.Text).Render(fmt.Sprintf("%-28s", item.ItemName))
		b.WriteString(name + " " + status + "\n")
	}
	if end < len(s.inventory) {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
			Render(fmt.Sprintf("... %d more", len(s.inventory)-end)))
	}
	return b.String()
}
