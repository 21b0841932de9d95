package leaderboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/game"
)

type mockBackend struct {
	game.Backend
	board *api.Leaderboard
	err   error
	calls int
}

func (m *mockBackend) Me(context.Context) (*api.User, error) {
	return &api.User{ID: 42, Username: "me"}, nil
}

func (m *mockBackend) Leaderboard(context.Context) (*api.Leaderboard, error) {
	m.calls++
	return m.board, m.err
}

func loaded(t *testing.T, b *mockBackend) *LeaderboardScreen {
	t.Helper()
	g := game.NewService(b)
	if err := g.RefreshUser(context.Background()); err != nil {
		t.Fatal(err)
	}
	s := New(g)
	s.Update(s.Init()())
	return s
}

func TestLeaderboardShowsCurrentUserOutsideTop(t *testing.T) {
	b := &mockBackend{board: &api.Leaderboard{
		TopUsers: []api.LeaderboardEntry{
			{Rank: 1, UserID: 1, Username: "grace", Balance: 900},
			{Rank: 2, UserID: 2, Username: "linus", Balance: 700},
		},
		CurrentUser: &api.LeaderboardEntry{Rank: 17, UserID: 42, Username: "me", Balance: 40},
	}}
	view := loaded(t, b).View(100, 30)
	for _, want := range []string{"grace", "linus", "17", "me"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestLeaderboardDoesNotRepeatListedUser(t *testing.T) {
	b := &mockBackend{board: &api.Leaderboard{
		TopUsers:    []api.LeaderboardEntry{{Rank: 1, UserID: 42, Username: "me", Balance: 900}},
		CurrentUser: &api.LeaderboardEntry{Rank: 1, UserID: 42, Username: "me", Balance: 900},
	}}
	view := loaded(t, b).View(100, 30)
	if strings.Contains(view, "⋮") {
		t.Error("current user already in the top list should not be repeated")
	}
}

func TestLeaderboardErrorAndRefresh(t *testing.T) {
	b := &mockBackend{err: errors.New("boom")}
	s := loaded(t, b)
	if view := s.View(100, 30); !strings.Contains(view, "boom") {
		t.Errorf("expected error view:\n%s", view)
	}

	b.err = nil
	b.board = &api.Leaderboard{TopUsers: []api.LeaderboardEntry{{Rank: 1, UserID: 1, Username: "grace"}}}
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil {
		t.Fatal("r should refresh")
	}
	s.Update(cmd())
	if b.calls != 2 {
		t.Errorf("leaderboard calls = %d, want 2", b.calls)
	}
	if view := s.View(100, 30); !strings.Contains(view, "grace") {
		t.Error("refreshed board should be shown")
	}
}
