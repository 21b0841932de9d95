package skillmap

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/game"
	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/screens/notice"
)

// mockBackend serves a fixed task list.
type mockBackend struct {
	game.Backend
	tasks    []api.Task
	tasksErr error
	calls    int
}

func (m *mockBackend) ListTasks(context.Context) ([]api.Task, error) {
	m.calls++
	if m.tasksErr != nil {
		return nil, m.tasksErr
	}
	return m.tasks, nil
}

type stubScreen struct{ task api.Task }

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return s.task.Title }
func (s *stubScreen) Title() string                          { return "Session" }

func testTasks() []api.Task {
	return []api.Task{
		{ID: 3, Title: "Channels", Position: 3, Status: api.StatusLocked, Reward: 30},
		{ID: 1, Title: "Hello, Go", Position: 1, Status: api.StatusCompleted, Reward: 10},
		{ID: 2, Title: "Slices", Position: 2, Status: api.StatusAvailable, Reward: 20, Description: "Arrays, slices and append."},
		{ID: 4, Title: "Генерики", Position: 4, Status: api.StatusLocked, Language: "ru"},
	}
}

func loadedScreen(t *testing.T, b *mockBackend) *SkillMapScreen {
	t.Helper()
	s := New(game.NewService(b), "en", func(task api.Task) screen.Screen {
		return &stubScreen{task: task}
	})
	s.Update(s.Init()())
	return s
}

func key(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestTasksOrderedAndFiltered(t *testing.T) {
	s := loadedScreen(t, &mockBackend{tasks: testTasks()})

	if len(s.tasks) != 3 {
		t.Fatalf("visible tasks = %d, want 3", len(s.tasks))
	}
	for i, want := range []int{1, 2, 3} {
		if s.tasks[i].ID != want {
			t.Errorf("tasks[%d].ID = %d, want %d", i, s.tasks[i].ID, want)
		}
	}
	if s.cursor != 1 {
		t.Errorf("cursor = %d, want first available quest (1)", s.cursor)
	}

	view := s.View(100, 30)
	for _, want := range []string{"Slices", "1/3 COMPLETE", "Arrays, slices and append."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestEnterOnAvailableOpensSession(t *testing.T) {
	s := loadedScreen(t, &mockBackend{tasks: testTasks()})

	_, cmd := s.Update(key(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected push command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	stub, ok := push.Screen.(*stubScreen)
	if !ok || stub.task.ID != 2 {
		t.Errorf("pushed %#v, want session for task 2", push.Screen)
	}
}

func TestEnterOnLockedShowsNotice(t *testing.T) {
	s := loadedScreen(t, &mockBackend{tasks: testTasks()})
	s.Update(key(tea.KeyDown))

	_, cmd := s.Update(key(tea.KeyEnter))
	push := cmd().(router.PushScreenMsg)
	n, ok := push.Screen.(*notice.NoticeScreen)
	if !ok {
		t.Fatalf("pushed %T, want notice", push.Screen)
	}
	if n.Title() != "Locked" {
		t.Errorf("notice title = %q, want Locked", n.Title())
	}
}

func TestCursorBounds(t *testing.T) {
	s := loadedScreen(t, &mockBackend{tasks: testTasks()})
	for i := 0; i < 5; i++ {
		s.Update(key(tea.KeyUp))
	}
	if s.cursor != 0 {
		t.Errorf("cursor = %d, want 0", s.cursor)
	}
	for i := 0; i < 5; i++ {
		s.Update(key(tea.KeyDown))
	}
	if s.cursor != 2 {
		t.Errorf("cursor = %d, want 2", s.cursor)
	}
}

func TestRefreshErrorShown(t *testing.T) {
	s := loadedScreen(t, &mockBackend{tasksErr: errors.New("connection refused")})
	if view := s.View(100, 30); !strings.Contains(view, "connection refused") {
		t.Errorf("expected error in view:\n%s", view)
	}
}

func TestResumeKeepsCursorOnTask(t *testing.T) {
	b := &mockBackend{tasks: testTasks()}
	s := loadedScreen(t, b)
	s.Update(key(tea.KeyDown)) // Channels

	b.tasks[0].Status = api.StatusAvailable
	if err := s.game.RefreshTasks(context.Background()); err != nil {
		t.Fatal(err)
	}
	if cmd := s.Resume(); cmd != nil {
		t.Error("resume without a stale refresh should not fetch")
	}
	if s.tasks[s.cursor].ID != 3 {
		t.Errorf("cursor on task %d, want 3", s.tasks[s.cursor].ID)
	}
	if s.tasks[s.cursor].Status != api.StatusAvailable {
		t.Error("resume should pick up the refreshed status")
	}
}
