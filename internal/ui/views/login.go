package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/router"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

// RegisteredFlash is shown on the login screen after a successful registration
const RegisteredFlash = "Registration successful! Please log in."

// LoginView is the anonymous entry screen
type LoginView struct {
	base
	email      textinput.Model
	password   textinput.Model
	focusIdx   int // 0=email, 1=password, 2=sign in, 3=register link
	submitting bool
	flash      string
}

type loginDoneMsg struct {
	scope
	err error
}

func NewLoginView(deps Deps, mount int, flash string) *LoginView {
	email := textinput.New()
	email.Placeholder = "Email address"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &LoginView{
		base:     newBase(deps, mount),
		email:    email,
		password: password,
		flash:    flash,
	}
}

func (v *LoginView) Init() tea.Cmd {
	v.Session.ClearError()
	return v.email.Focus()
}

func (v *LoginView) Capturing() bool { return true }

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg)
		return v, nil

	case loginDoneMsg:
		v.submitting = false
		if msg.err != nil {
			v.password.Reset()
			return v, nil
		}
		return v, navigate(router.PathDashboard)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Save):
			return v, v.submit()

		case key.Matches(msg, v.keys.ShiftTab):
			v.focusIdx = cycle(v.focusIdx, -1, 4)
			return v, v.updateFocus()

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = cycle(v.focusIdx, 1, 4)
			return v, v.updateFocus()

		case key.Matches(msg, v.keys.Enter):
			switch v.focusIdx {
			case 0:
				v.focusIdx = 1
				return v, v.updateFocus()
			case 1, 2:
				return v, v.submit()
			case 3:
				return v, navigate(router.PathRegister)
			}
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.email, cmd = v.email.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

func (v *LoginView) canSubmit() bool {
	return !v.submitting && !v.Session.Snapshot().Loading
}

func (v *LoginView) submit() tea.Cmd {
	if !v.canSubmit() {
		return nil
	}
	v.submitting = true
	v.flash = ""
	email := strings.TrimSpace(v.email.Value())
	password := v.password.Value()
	sc := v.scope
	return func() tea.Msg {
		err := v.Session.Login(v.ctx(), email, password)
		return loginDoneMsg{scope: sc, err: err}
	}
}

func (v *LoginView) updateFocus() tea.Cmd {
	v.email.Blur()
	v.password.Blur()
	switch v.focusIdx {
	case 0:
		return v.email.Focus()
	case 1:
		return v.password.Focus()
	}
	return nil
}

func (v *LoginView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	emailStyle, passStyle := s.Input, s.Input
	btnStyle, linkStyle := s.Button, s.TitleMuted
	switch v.focusIdx {
	case 0:
		emailStyle = s.InputFocused
	case 1:
		passStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	case 3:
		linkStyle = s.HelpKey
	}

	label := " Sign In "
	if v.submitting || v.Session.Snapshot().Loading {
		label = " Signing in... "
		btnStyle = s.ButtonDisabled
	}

	rows := []string{
		s.Title.Render("Task Management System"),
		s.TitleMuted.Render("Sign In"),
		"",
	}
	if v.flash != "" {
		rows = append(rows, s.Success.Render(v.flash), "")
	}
	if errMsg := v.Session.Snapshot().Error; errMsg != "" {
		rows = append(rows, s.Error.Render(errMsg), "")
	}
	rows = append(rows,
		s.Label.Render("Email Address"),
		emailStyle.Width(inputWidth).Render(v.email.View()),
		s.Label.Render("Password"),
		passStyle.Width(inputWidth).Render(v.password.View()),
		"",
		btnStyle.Render(label),
		"",
		linkStyle.Render("Don't have an account? Sign up"),
		"",
		s.TitleMuted.Render("Tab: next • Enter/Ctrl+S: sign in • Ctrl+C: quit"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
