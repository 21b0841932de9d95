package home

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/credentials"
	"github.com/abhisek/skillquest/internal/game"
	"github.com/abhisek/skillquest/internal/metrics"
	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/screens/history"
	"github.com/abhisek/skillquest/internal/screens/leaderboard"
	"github.com/abhisek/skillquest/internal/screens/profile"
	sessionscreen "github.com/abhisek/skillquest/internal/screens/session"
	"github.com/abhisek/skillquest/internal/screens/shop"
	"github.com/abhisek/skillquest/internal/screens/skillmap"
	"github.com/abhisek/skillquest/internal/session"
	"github.com/abhisek/skillquest/internal/store"
	"github.com/abhisek/skillquest/internal/ui/components"
	"github.com/abhisek/skillquest/internal/ui/layout"
)

type refreshedMsg struct {
	Err error
}

// Deps are the collaborators the home screen hands to the screens it
// opens. EventRepo and Metrics may be nil.
type Deps struct {
	Game      *game.Service
	Creds     *credentials.Store
	EventRepo store.EventRepo
	Metrics   *metrics.Metrics
	Language  string

	// Login builds the screen shown after logout or a rejected token.
	Login func() screen.Screen
}

// HomeScreen is the main menu shown to a logged-in player.
type HomeScreen struct {
	deps       Deps
	menu       components.Menu
	menuLabels []string
	disabled   map[int]bool
	refreshed  bool
	errMsg     string
	leaving    bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}

	openSession := func(task api.Task) screen.Screen {
		ctrl := session.New(session.Config{
			TaskID:    task.ID,
			Fetcher:   deps.Game,
			Finalizer: deps.Game,
			EventRepo: deps.EventRepo,
			Metrics:   deps.Metrics,
		})
		return sessionscreen.New(ctrl, task.Title)
	}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			next := build()
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}
	}

	items := []components.MenuItem{
		{Label: "PLAY MAP", Action: push(func() screen.Screen {
			return skillmap.New(deps.Game, deps.Language, openSession)
		})},
		{Label: "SHOP", Action: push(func() screen.Screen {
			return shop.New(deps.Game)
		})},
		{Label: "PROFILE", Action: push(func() screen.Screen {
			return profile.New(deps.Game)
		})},
		{Label: "LEADERBOARD", Action: push(func() screen.Screen {
			return leaderboard.New(deps.Game)
		})},
		{Label: "HISTORY", Disabled: deps.EventRepo == nil, Action: push(func() screen.Screen {
			return history.New(deps.EventRepo)
		})},
		{Label: "LOGOUT", Action: h.logout},
		{Label: "EXIT GAME", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}

	h.menu = components.NewMenu(items)
	h.disabled = make(map[int]bool)
	for i, item := range items {
		h.menuLabels = append(h.menuLabels, item.Label)
		if item.Disabled {
			h.disabled[i] = true
		}
	}
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.refresh()
}

// Resume refreshes the balance and quests when returning from a screen
// that may have changed them.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.refresh()
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(refreshedMsg); ok {
		h.refreshed = true
		h.errMsg = ""
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				return h, h.logout()
			}
			h.errMsg = api.Message(msg.Err)
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := layout.IsCompactHeight(termHeight) || layout.IsCompactWidth(width)

	// All sections share a uniform content width so they line up.
	cw := components.ContentWidth(width)

	var sections []string

	// 1. Title
	sections = append(sections, renderTitle(cw, compact))

	// 2. Mascot (full mode only)
	if !compact {
		sections = append(sections, renderMascotBox(h.mascotVariant(), cw))
	}

	// 3. Stats bar
	done, total := h.questCounts()
	sections = append(sections, renderStatsBar(
		h.deps.Game.Balance(), h.deps.Game.Streak(), done, total, cw, compact))

	if h.errMsg != "" {
		sections = append(sections, renderStaleNote(h.errMsg, cw))
	}

	// 4. Menu
	if compact {
		sections = append(sections, renderArcadeMenuCompact(
			h.menuLabels, h.menu.Selected, cw, h.disabled))
	} else {
		sections = append(sections, renderArcadeMenu(
			h.menuLabels, h.menu.Selected, cw, h.disabled))
	}

	content := strings.Join(sections, "\n\n")

	// Wrap in cabinet frame, centered in the full area
	return components.CabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	if u := h.deps.Game.User(); u != nil {
		return fmt.Sprintf("Hi, %s", u.DisplayName())
	}
	return "Home"
}

func (h *HomeScreen) refresh() tea.Cmd {
	g := h.deps.Game
	return func() tea.Msg {
		return refreshedMsg{Err: g.Refresh(context.Background())}
	}
}

// logout drops the stored token and cached game state and returns to the
// login screen.
func (h *HomeScreen) logout() tea.Cmd {
	if h.leaving {
		return nil
	}
	h.leaving = true
	if h.deps.Creds != nil {
		// The in-memory token is dropped even when the stored row is not.
		_ = h.deps.Creds.Clear(context.Background())
	}
	h.deps.Game.Reset()
	if h.deps.Login == nil {
		return tea.Quit
	}
	next := h.deps.Login()
	return func() tea.Msg { return router.ResetScreenMsg{Screen: next} }
}

func (h *HomeScreen) questCounts() (done, total int) {
	for _, t := range h.deps.Game.VisibleTasks(h.deps.Language) {
		total++
		if t.Status == api.StatusCompleted {
			done++
		}
	}
	return done, total
}

func (h *HomeScreen) mascotVariant() MascotVariant {
	done, total := h.questCounts()
	switch {
	case h.errMsg != "":
		return MascotAlert
	case total > 0 && done == total:
		return MascotCelebrating
	case h.deps.Game.Streak() >= 3:
		return MascotCelebrating
	}
	return MascotIdle
}
