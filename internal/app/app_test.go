package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/credentials"
	"github.com/abhisek/skillquest/internal/game"
	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/screens/notice"
)

type stubAuth struct{}

func (stubAuth) LoginPhone(context.Context, api.PhoneLogin) error { return nil }

type capturing struct {
	*notice.NoticeScreen
	captures bool
}

func (c capturing) CapturesEscape() bool { return c.captures }

func (c capturing) Update(tea.Msg) (screen.Screen, tea.Cmd) { return c, nil }

var _ screen.EscapeCapturer = capturing{}

func newModel(t *testing.T, loggedIn bool) AppModel {
	t.Helper()
	creds := credentials.New(nil, "user")
	if loggedIn {
		if err := creds.Set(context.Background(), "tok"); err != nil {
			t.Fatal(err)
		}
	}
	return newAppModel(Options{
		Auth:  stubAuth{},
		Game:  game.NewService(nil),
		Creds: creds,
	})
}

// skipWelcome presses a key on the welcome screen and applies the
// resulting navigation.
func skipWelcome(t *testing.T, m AppModel) AppModel {
	t.Helper()
	updated, cmd := m.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	m = updated.(AppModel)
	if cmd == nil {
		t.Fatal("key press on welcome should transition")
	}
	updated, _ = m.Update(cmd())
	return updated.(AppModel)
}

func TestLoggedOutStartsAtLogin(t *testing.T) {
	m := skipWelcome(t, newModel(t, false))
	if got := m.router.Active().Title(); got != "Sign In" {
		t.Errorf("active = %q, want Sign In", got)
	}
}

func TestLoggedInStartsAtHome(t *testing.T) {
	m := skipWelcome(t, newModel(t, true))
	if got := m.router.Active().Title(); got != "Home" {
		t.Errorf("active = %q, want Home", got)
	}
}

func TestEscapePopsUnlessCaptured(t *testing.T) {
	m := newModel(t, true)
	m.router.Push(capturing{NoticeScreen: notice.New("Prompt", "x"), captures: true})

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		if _, ok := cmd().(router.PopScreenMsg); ok {
			t.Error("esc should not pop a screen that captures it")
		}
	}

	m.router.Push(capturing{NoticeScreen: notice.New("Plain", "x")})
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("esc should pop")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
