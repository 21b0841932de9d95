package skillmap

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
	"github.com/abhisek/skillquest/internal/screens/notice"
	"github.com/abhisek/skillquest/internal/ui/layout"
	"github.com/abhisek/skillquest/internal/ui/theme"
)

type tasksLoadedMsg struct {
	Err error
}

// SessionFactory builds the screen that plays task.
type SessionFactory func(task api.Task) screen.Screen

// SkillMapScreen lists the player's quests in order with their unlock
// state.
type SkillMapScreen struct {
	game     *game.Service
	language string
	open     SessionFactory

	tasks        []api.Task
	cursor       int
	scrollOffset int
	loaded       bool
	errMsg       string
}

var _ screen.Screen = (*SkillMapScreen)(nil)
var _ screen.KeyHintProvider = (*SkillMapScreen)(nil)
var _ screen.Resumer = (*SkillMapScreen)(nil)

// New creates a new SkillMapScreen showing tasks for language.
func New(g *game.Service, language string, open SessionFactory) *SkillMapScreen {
	return &SkillMapScreen{
		game:     g,
		language: language,
		open:     open,
	}
}

func (s *SkillMapScreen) Init() tea.Cmd {
	return s.refresh()
}

// Resume re-reads the task list after a session. The completion already
// re-fetched it; only a failed re-fetch needs another round trip.
func (s *SkillMapScreen) Resume() tea.Cmd {
	if s.game.Stale() != nil {
		return s.refresh()
	}
	s.reload()
	return nil
}

func (s *SkillMapScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksLoadedMsg:
		s.loaded = true
		s.errMsg = ""
		if msg.Err != nil {
			s.errMsg = api.Message(msg.Err)
		}
		s.reload()
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			s.moveCursor(-1)
		case "down", "j":
			s.moveCursor(1)
		case "home", "g":
			s.cursor = 0
		case "end", "G":
			s.cursor = max(len(s.tasks)-1, 0)
		case "r":
			return s, s.refresh()
		case "enter":
			return s, s.selectTask()
		case "q":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
	}
	return s, nil
}

func (s *SkillMapScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading quests...")
	}

	var lines []string
	if s.errMsg != "" {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(theme.Error).
			Padding(0, 2).
			Render("Could not refresh quests: "+s.errMsg))
	}
	if len(s.tasks) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\nNo quests available yet."))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, s.renderHeader(width))

	// Leave room for the header and the description panel.
	listHeight := height - len(lines) - 4
	if listHeight < 1 {
		listHeight = 1
	}
	s.adjustScroll(listHeight)

	end := min(s.scrollOffset+listHeight, len(s.tasks))
	for i := s.scrollOffset; i < end; i++ {
		lines = append(lines, s.renderTaskRow(s.tasks[i], i == s.cursor, width))
	}

	lines = append(lines, "", s.renderDescription(width))
	return strings.Join(lines, "\n")
}

func (s *SkillMapScreen) Title() string {
	return "Quest Map"
}

// KeyHints returns the key binding hints for the footer.
func (s *SkillMapScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Play"},
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SkillMapScreen) refresh() tea.Cmd {
	g := s.game
	return func() tea.Msg {
		return tasksLoadedMsg{Err: g.RefreshTasks(context.Background())}
	}
}

// reload copies the visible tasks from the game state, keeping the cursor
// on the same task when it is still listed.
func (s *SkillMapScreen) reload() {
	selected := -1
	if s.cursor < len(s.tasks) {
		selected = s.tasks[s.cursor].ID
	}
	s.tasks = s.game.VisibleTasks(s.language)
	s.cursor = 0
	for i, t := range s.tasks {
		if t.ID == selected {
			s.cursor = i
			return
		}
	}
	// Start on the first quest that can be played.
	for i, t := range s.tasks {
		if t.Status == api.StatusAvailable {
			s.cursor = i
			return
		}
	}
}

func (s *SkillMapScreen) moveCursor(delta int) {
	next := s.cursor + delta
	if next >= 0 && next < len(s.tasks) {
		s.cursor = next
	}
}

// adjustScroll ensures the cursor is visible within the viewport.
func (s *SkillMapScreen) adjustScroll(height int) {
	if s.cursor < s.scrollOffset {
		s.scrollOffset = s.cursor
	}
	if s.cursor >= s.scrollOffset+height {
		s.scrollOffset = s.cursor - height + 1
	}
}

// selectTask opens the task under the cursor, or explains why it can't.
func (s *SkillMapScreen) selectTask() tea.Cmd {
	if s.cursor >= len(s.tasks) {
		return nil
	}
	task := s.tasks[s.cursor]

	var next screen.Screen
	switch task.Status {
	case api.StatusLocked:
		next = notice.New("Locked",
			fmt.Sprintf("%q is locked.\nComplete the previous quest to unlock it.", task.Title))
	case api.StatusCompleted:
		next = notice.New("Completed",
			fmt.Sprintf("You already completed %q.", task.Title))
	default:
		next = s.open(task)
	}
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: next}
	}
}

func (s *SkillMapScreen) renderHeader(width int) string {
	done := 0
	for _, t := range s.tasks {
		if t.Status == api.StatusCompleted {
			done++
		}
	}
	return lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Width(width).
		Padding(1, 0, 0, 2).
		Render(fmt.Sprintf("QUESTS  %d/%d COMPLETE", done, len(s.tasks)))
}

// statusIcon returns the glyph and color for a task status.
func statusIcon(status api.TaskStatus) (string, lipgloss.Style) {
	switch status {
	case api.StatusCompleted:
		return "✓", lipgloss.NewStyle().Foreground(theme.Success)
	case api.StatusAvailable:
		return "●", lipgloss.NewStyle().Foreground(theme.ArcadeYellow)
	default:
		return "○", lipgloss.NewStyle().Foreground(theme.Locked)
	}
}

// renderTaskRow renders a single quest row.
func (s *SkillMapScreen) renderTaskRow(t api.Task, selected bool, width int) string {
	icon, iconStyle := statusIcon(t.Status)
	reward := fmt.Sprintf("+%d", t.Reward)

	padding := 6
	rewardWidth := 6
	kindWidth := 14
	nameWidth := width - padding - rewardWidth - kindWidth - 4
	if nameWidth < 10 {
		nameWidth = 10
	}

	name := t.Title
	if lipgloss.Width(name) > nameWidth {
		name = string([]rune(name)[:nameWidth-1]) + "…"
	}

	var nameStyle, metaStyle lipgloss.Style
	switch {
	case selected:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
		metaStyle = lipgloss.NewStyle().Foreground(theme.Primary)
	case t.Status == api.StatusLocked:
		nameStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
		metaStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	case t.Status == api.StatusCompleted:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Success)
		metaStyle = lipgloss.NewStyle().Foreground(theme.TextDim)
	default:
		nameStyle = lipgloss.NewStyle().Foreground(theme.Text)
		metaStyle = lipgloss.NewStyle().Foreground(theme.ArcadeYellow)
	}

	cursor := "  "
	if selected {
		cursor = "▸ "
	}

	return fmt.Sprintf("  %s%s %s  %s  %s",
		cursor,
		iconStyle.Render(icon),
		nameStyle.Render(fmt.Sprintf("%-*s", nameWidth, name)),
		metaStyle.Render(fmt.Sprintf("%-*s", kindWidth, t.Type)),
		metaStyle.Render(fmt.Sprintf("%*s", rewardWidth, reward)),
	)
}

// renderDescription shows the selected quest's description.
func (s *SkillMapScreen) renderDescription(width int) string {
	if s.cursor >= len(s.tasks) {
		return ""
	}
	desc := s.tasks[s.cursor].Description
	if desc == "" {
		return ""
	}
	return lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Width(min(width-4, 76)).
		Padding(0, 4).
		Render(desc)
}
