// Package app wires the screens into the root Bubble Tea model.
package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/credentials"
	"github.com/abhisek/skillquest/internal/game"
	"github.com/abhisek/skillquest/internal/metrics"
	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/screens/home"
	"github.com/abhisek/skillquest/internal/screens/login"
	"github.com/abhisek/skillquest/internal/screens/welcome"
	"github.com/abhisek/skillquest/internal/store"
	"github.com/abhisek/skillquest/internal/ui/layout"
)

// Options holds the dependencies the TUI needs. EventRepo and Metrics may
// be nil.
type Options struct {
	Auth        login.Authenticator
	Game        *game.Service
	Creds       *credentials.Store
	EventRepo   store.EventRepo
	Metrics     *metrics.Metrics
	Language    string
	MetricsAddr string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	game   *game.Service
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the welcome screen.
func newAppModel(opts Options) AppModel {
	var loginScreen func() screen.Screen
	homeScreen := func() screen.Screen {
		return home.New(home.Deps{
			Game:      opts.Game,
			Creds:     opts.Creds,
			EventRepo: opts.EventRepo,
			Metrics:   opts.Metrics,
			Language:  opts.Language,
			Login:     loginScreen,
		})
	}
	loginScreen = func() screen.Screen {
		return login.New(opts.Auth, homeScreen)
	}

	next := loginScreen
	if opts.Creds != nil && opts.Creds.LoggedIn() {
		next = homeScreen
	}

	return AppModel{
		router: router.New(welcome.New(next)),
		game:   opts.Game,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if ec, ok := m.router.Active().(screen.EscapeCapturer); ok && ec.CapturesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	var stats *layout.HeaderStats
	if m.game != nil && m.game.User() != nil {
		stats = &layout.HeaderStats{Balance: m.game.Balance(), Streak: m.game.Streak()}
	}
	header := layout.RenderHeader(title, stats, m.width)

	var footerHints []layout.KeyHint
	if khp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = khp.KeyHints()
	} else if m.router.Depth() > 1 {
		footerHints = []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	} else {
		footerHints = []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Select"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program. When opts.MetricsAddr is set the
// metrics endpoint is served for the lifetime of the program.
func Run(opts Options) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if opts.Metrics != nil && opts.MetricsAddr != "" {
		go func() {
			if err := opts.Metrics.Serve(ctx, opts.MetricsAddr); err != nil {
				fmt.Fprintln(os.Stderr, "metrics server:", err)
			}
		}()
	}

	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
