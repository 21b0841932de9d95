package shop

import (
	"context"
	"errors"
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

type itemsLoadedMsg struct {
	Items []api.ShopItem
	Err   error
}

type purchaseDoneMsg struct {
	Purchase *api.Purchase
	Err      error
}

type mode int

const (
	modeBrowse mode = iota
	modeEmail
	modeBuying
	modeReceipt
)

// ShopScreen lists the reward catalog and buys items with the player's
// coins.
type ShopScreen struct {
	game     *game.Service
	items    []api.ShopItem
	selected int
	mode     mode
	email    components.TextInput
	receipt  *api.Purchase
	loaded   bool
	errMsg   string
	status   string
}

var _ screen.Screen = (*ShopScreen)(nil)
var _ screen.KeyHintProvider = (*ShopScreen)(nil)
var _ screen.EscapeCapturer = (*ShopScreen)(nil)

// New creates a new ShopScreen.
func New(g *game.Service) *ShopScreen {
	return &ShopScreen{game: g}
}

func (s *ShopScreen) Init() tea.Cmd {
	return s.loadItems()
}

func (s *ShopScreen) Title() string {
	return "Shop"
}

// CapturesEscape keeps Esc inside the screen while a prompt or receipt is
// open.
func (s *ShopScreen) CapturesEscape() bool {
	return s.mode != modeBrowse
}

func (s *ShopScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeEmail:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Confirm purchase"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeReceipt:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
		}
	case modeBuying:
		return nil
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Buy"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ShopScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case itemsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = api.Message(msg.Err)
			return s, nil
		}
		s.errMsg = ""
		s.items = msg.Items
		if s.selected >= len(s.items) {
			s.selected = max(len(s.items)-1, 0)
		}
		return s, nil

	case purchaseDoneMsg:
		if msg.Err != nil {
			s.mode = modeBrowse
			s.status = purchaseError(msg.Err)
			return s, s.loadItems()
		}
		s.mode = modeReceipt
		s.receipt = msg.Purchase
		return s, nil

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.mode == modeEmail {
		var cmd tea.Cmd
		s.email, cmd = s.email.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ShopScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.mode {
	case modeBuying:
		return s, nil

	case modeReceipt:
		if key == "enter" || key == "esc" {
			s.mode = modeBrowse
			s.receipt = nil
			return s, s.loadItems()
		}
		return s, nil

	case modeEmail:
		switch key {
		case "esc":
			s.mode = modeBrowse
			s.status = ""
			return s, nil
		case "enter":
			return s, s.buy()
		}
		var cmd tea.Cmd
		s.email, cmd = s.email.Update(msg)
		return s, cmd
	}

	switch key {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
	case "down", "j":
		if s.selected < len(s.items)-1 {
			s.selected++
		}
	case "enter":
		if s.selected >= len(s.items) {
			return s, nil
		}
		item := s.items[s.selected]
		if reason := s.unavailable(item); reason != "" {
			s.status = reason
			return s, nil
		}
		s.status = ""
		s.mode = modeEmail
		s.email = components.NewTextInput("you@example.com", false, 120)
		return s, s.email.Init()
	case "q":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *ShopScreen) loadItems() tea.Cmd {
	g := s.game
	return func() tea.Msg {
		items, err := g.ShopItems(context.Background())
		return itemsLoadedMsg{Items: items, Err: err}
	}
}

func (s *ShopScreen) buy() tea.Cmd {
	email := strings.TrimSpace(s.email.Value())
	if email == "" {
		s.status = "An email is required to receive the item."
		return nil
	}
	item := s.items[s.selected]
	s.mode = modeBuying
	s.status = ""
	g := s.game
	return func() tea.Msg {
		p, err := g.Buy(context.Background(), item.ID, email)
		return purchaseDoneMsg{Purchase: p, Err: err}
	}
}

// unavailable explains why item cannot be bought, or returns "".
func (s *ShopScreen) unavailable(item api.ShopItem) string {
	if item.Stock <= 0 {
		return fmt.Sprintf("%s is out of stock.", item.Name)
	}
	if item.Price > s.game.Balance() {
		return fmt.Sprintf("You need %d more coins for %s.", item.Price-s.game.Balance(), item.Name)
	}
	return ""
}

func purchaseError(err error) string {
	var verr *api.ValidationError
	switch {
	case errors.Is(err, api.ErrInsufficientBalance):
		return "Not enough coins."
	case errors.Is(err, api.ErrOutOfStock):
		return "Sold out while you were shopping."
	case errors.As(err, &verr):
		return "Invalid " + verr.Field + ": " + verr.Reason
	}
	return "Purchase failed: " + api.Message(err)
}

func (s *ShopScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading shop...")
	}
	if s.mode == modeReceipt && s.receipt != nil {
		return s.renderReceipt(width, height)
	}

	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.ArcadeYellow).Bold(true).
		Render(fmt.Sprintf("\n● %d coins\n", s.game.Balance())))
	b.WriteString("\n")

	if s.errMsg != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("Error: " + s.errMsg))
		b.WriteString("\n\n")
	}

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(
		strings.Repeat("─", min(width-8, 60)))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	if len(s.items) == 0 && s.errMsg == "" {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("The shop is empty right now"))
		return b.String()
	}

	maxVisible := max(height-14, 3)
	start := 0
	if s.selected >= maxVisible {
		start = s.selected - maxVisible + 1
	}
	end := min(start+maxVisible, len(s.items))

	for i := start; i < end; i++ {
		item := s.items[i]
		prefix := "  "
		if i == s.selected {
			prefix = "▸ "
		}
		stock := fmt.Sprintf("%d left", item.Stock)
		if item.Stock <= 0 {
			stock = "sold out"
		}
		line := fmt.Sprintf("%s%-30s %6d ●  %8s", prefix, item.Name, item.Price, stock)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case s.unavailable(item) != "":
			style = theme.Disabled
		case i == s.selected:
			style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}

	if s.selected < len(s.items) && s.items[s.selected].Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render(s.items[s.selected].Description))
		b.WriteString("\n")
	}

	switch s.mode {
	case modeEmail:
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			"Email for delivery: "+s.email.View()))
		b.WriteString("\n")
	case modeBuying:
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("Purchasing..."))
		b.WriteString("\n")
	}

	if s.status != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Accent).
			Render(s.status))
	}

	return b.String()
}

func (s *ShopScreen) renderReceipt(width, height int) string {
	p := s.receipt
	name := fmt.Sprintf("item #%d", p.ItemID)
	for _, item := range s.items {
		if item.ID == p.ItemID {
			name = item.Name
			break
		}
	}

	content := lipgloss.NewStyle().Foreground(theme.Success).Bold(true).Render("Purchase complete!") +
		"\n\n" +
		lipgloss.NewStyle().Foreground(theme.Text).Render(name) +
		"\n\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Show this code to a staff member:") +
		"\n" +
		lipgloss.NewStyle().Foreground(theme.ArcadeYellow).Bold(true).Render(p.RedemptionCode()) +
		"\n\n" +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf("Balance: %d", s.game.Balance()))

	cw := components.ContentWidth(width)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		components.ArcadeCard(content, cw))
}
