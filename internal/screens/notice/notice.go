package notice

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/ui/components"
	"github.com/abhisek/skillquest/internal/ui/theme"
)

// NoticeScreen shows a short centered message, e.g. "this task is locked".
// Any key dismisses it.
type NoticeScreen struct {
	title   string
	message string
	ok      components.Button
}

var _ screen.Screen = (*NoticeScreen)(nil)

// New creates a new NoticeScreen.
func New(title, message string) *NoticeScreen {
	pop := func() tea.Cmd {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	return &NoticeScreen{title: title, message: message, ok: components.NewButton("OK", true, pop)}
}

func (n *NoticeScreen) Init() tea.Cmd {
	return nil
}

func (n *NoticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		if kmsg.String() == "enter" {
			var cmd tea.Cmd
			n.ok, cmd = n.ok.Update(msg)
			return n, cmd
		}
		return n, n.ok.OnPress()
	}
	return n, nil
}

func (n *NoticeScreen) View(width, height int) string {
	body := theme.Body.Render(n.message)
	hint := theme.Hint.Render("press any key to go back")

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render("╌╌ " + n.title + " ╌╌\n\n" + body + "\n\n" + n.ok.View() + "\n\n" + hint)
}

func (n *NoticeScreen) Title() string {
	return n.title
}
