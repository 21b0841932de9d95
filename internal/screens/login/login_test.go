package login

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
)

type mockAuth struct {
	calls []api.PhoneLogin
	err   error
}

func (m *mockAuth) LoginPhone(_ context.Context, p api.PhoneLogin) error {
	m.calls = append(m.calls, p)
	return m.err
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "home" }
func (s *stubScreen) Title() string                          { return "Home" }

func enter() tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: tea.KeyEnter}
}

func filledScreen(auth *mockAuth, phone string) *LoginScreen {
	s := New(auth, func() screen.Screen { return &stubScreen{} })
	s.inputs[fieldFirstName].SetValue("Ada")
	s.inputs[fieldLastName].SetValue("Lovelace")
	s.inputs[fieldPhone].SetValue(phone)
	s.setFocus(fieldPhone)
	return s
}

func TestEnterMovesThroughFields(t *testing.T) {
	s := New(&mockAuth{}, func() screen.Screen { return &stubScreen{} })
	if s.focus != fieldFirstName {
		t.Fatalf("initial focus = %d, want first name", s.focus)
	}
	s.Update(enter())
	if s.focus != fieldLastName {
		t.Errorf("focus after Enter = %d, want last name", s.focus)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.focus != fieldPhone {
		t.Errorf("focus after Tab = %d, want phone", s.focus)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.focus != fieldFirstName {
		t.Errorf("focus should wrap to first name, got %d", s.focus)
	}
}

func TestInvalidPhoneIsRejectedLocally(t *testing.T) {
	auth := &mockAuth{}
	s := filledScreen(auth, "12-34")

	_, cmd := s.Update(enter())
	if cmd != nil {
		t.Fatal("invalid form should not produce a login command")
	}
	if !strings.Contains(s.errMsg, "phone_number") {
		t.Errorf("errMsg = %q, want phone validation message", s.errMsg)
	}
	if len(auth.calls) != 0 {
		t.Errorf("auth called %d times, want 0", len(auth.calls))
	}
}

func TestSuccessfulLoginResetsToNextScreen(t *testing.T) {
	auth := &mockAuth{}
	s := filledScreen(auth, "+1 (555) 010-0000")

	_, cmd := s.Update(enter())
	if cmd == nil {
		t.Fatal("expected login command")
	}
	if !s.pending {
		t.Error("screen should be pending while the login runs")
	}

	_, cmd = s.Update(cmd())
	if cmd == nil {
		t.Fatal("expected navigation after login")
	}
	msg, ok := cmd().(router.ResetScreenMsg)
	if !ok {
		t.Fatalf("expected ResetScreenMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "Home" {
		t.Errorf("next screen = %q, want Home", msg.Screen.Title())
	}
	if len(auth.calls) != 1 || auth.calls[0].FirstName != "Ada" {
		t.Errorf("auth calls = %+v", auth.calls)
	}
}

func TestServerErrorIsShown(t *testing.T) {
	auth := &mockAuth{err: &api.StatusError{Status: 400, Message: "Phone already linked"}}
	s := filledScreen(auth, "5550100000")

	_, cmd := s.Update(enter())
	_, next := s.Update(cmd())
	if next != nil {
		t.Error("failed login should not navigate")
	}
	if !strings.Contains(s.errMsg, "Phone already linked") {
		t.Errorf("errMsg = %q", s.errMsg)
	}
	if s.pending {
		t.Error("pending should clear after a failed login")
	}
}

func TestKeysIgnoredWhilePending(t *testing.T) {
	s := filledScreen(&mockAuth{}, "5550100000")
	s.Update(enter())

	_, cmd := s.Update(enter())
	if cmd != nil {
		t.Error("second Enter while pending should be ignored")
	}
}
