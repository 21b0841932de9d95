package login

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillquest/internal/api"
	"github.com/abhisek/skillquest/internal/router"
	"github.com/abhisek/skillquest/internal/screen"
	"github.com/abhisek/skillquest/internal/ui/components"
	"github.com/abhisek/skillquest/internal/ui/layout"
	"github.com/abhisek/skillquest/internal/ui/theme"
)

// Authenticator exchanges a phone login for a session token.
type Authenticator interface {
	LoginPhone(ctx context.Context, p api.PhoneLogin) error
}

type loginDoneMsg struct {
	Err error
}

const (
	fieldFirstName = iota
	fieldLastName
	fieldPhone
	fieldCount
)

var fieldLabels = [fieldCount]string{"First name", "Last name", "Phone"}

// LoginScreen is the phone login form shown when no token is stored.
type LoginScreen struct {
	auth     Authenticator
	next     func() screen.Screen
	inputs   [fieldCount]components.TextInput
	focus    int
	pending  bool
	errMsg   string
	finished bool
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. After a successful login the navigation stack
// is reset to the screen produced by next.
func New(auth Authenticator, next func() screen.Screen) *LoginScreen {
	s := &LoginScreen{auth: auth, next: next}
	s.inputs[fieldFirstName] = components.NewTextInput("Ada", false, 30)
	s.inputs[fieldLastName] = components.NewTextInput("Lovelace", false, 30)
	s.inputs[fieldPhone] = components.NewTextInput("+1 555 010 0000", false, 20)
	for i := 1; i < fieldCount; i++ {
		s.inputs[i].Blur()
	}
	return s
}

func (s *LoginScreen) Init() tea.Cmd {
	return s.inputs[s.focus].Init()
}

func (s *LoginScreen) Title() string {
	return "Sign In"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		s.pending = false
		if msg.Err != nil {
			s.errMsg = loginError(msg.Err)
			return s, nil
		}
		if s.finished {
			return s, nil
		}
		s.finished = true
		next := s.next()
		return s, func() tea.Msg { return router.ResetScreenMsg{Screen: next} }

	case tea.KeyMsg:
		if s.pending {
			return s, nil
		}
		switch msg.String() {
		case "tab", "down":
			return s, s.setFocus((s.focus + 1) % fieldCount)
		case "shift+tab", "up":
			return s, s.setFocus((s.focus + fieldCount - 1) % fieldCount)
		case "enter":
			if s.focus < fieldCount-1 {
				return s, s.setFocus(s.focus + 1)
			}
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	s.inputs[s.focus], cmd = s.inputs[s.focus].Update(msg)
	return s, cmd
}

func (s *LoginScreen) View(width, height int) string {
	var b strings.Builder

	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.ArcadeYellow).
		Bold(true).
		Render("Sign in with your phone"))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(theme.TextDim).Width(12)
	for i := range s.inputs {
		label := labelStyle.Render(fieldLabels[i])
		if i == s.focus {
			label = labelStyle.Foreground(theme.Primary).Bold(true).Render(fieldLabels[i])
		}
		b.WriteString(label + " " + s.inputs[i].View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(components.ArcadeButton("SIGN IN", s.focus == fieldCount-1 && !s.pending, 20))
	b.WriteString("\n")
	switch {
	case s.pending:
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("Signing in..."))
	case s.errMsg != "":
		b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	cw := components.ContentWidth(width)
	return components.CabinetFrame(components.ArcadeCard(b.String(), cw), width, height)
}

func (s *LoginScreen) setFocus(i int) tea.Cmd {
	s.inputs[s.focus].Blur()
	s.focus = i
	return s.inputs[s.focus].Focus()
}

// form returns the login payload from the current field values.
func (s *LoginScreen) form() api.PhoneLogin {
	return api.PhoneLogin{
		FirstName:   s.inputs[fieldFirstName].Value(),
		LastName:    s.inputs[fieldLastName].Value(),
		PhoneNumber: s.inputs[fieldPhone].Value(),
	}
}

func (s *LoginScreen) submit() tea.Cmd {
	p := s.form()
	if err := p.Validate(); err != nil {
		s.errMsg = loginError(err)
		return nil
	}
	s.errMsg = ""
	s.pending = true
	auth := s.auth
	return func() tea.Msg {
		return loginDoneMsg{Err: auth.LoginPhone(context.Background(), p)}
	}
}

func loginError(err error) string {
	var verr *api.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return "Sign in failed: " + api.Message(err)
}
