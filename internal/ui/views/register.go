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

const errPasswordMismatch = "Passwords do not match"

// RegisterView creates an account. It never logs the user in.
type RegisterView struct {
	base
	inputs     []textinput.Model // email, full name, password, confirm
	focusIdx   int               // len(inputs)=create, +1=sign in link
	submitting bool
	localErr   string
}

type registerDoneMsg struct {
	scope
	err error
}

func NewRegisterView(deps Deps, mount int) *RegisterView {
	placeholders := []string{"Email address", "Full name", "Password", "Confirm password"}
	inputs := make([]textinput.Model, len(placeholders))
	for i, p := range placeholders {
		in := textinput.New()
		in.Placeholder = p
		in.CharLimit = 254
		if i >= 2 {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		inputs[i] = in
	}

	return &RegisterView{
		base:   newBase(deps, mount),
		inputs: inputs,
	}
}

func (v *RegisterView) Init() tea.Cmd {
	v.Session.ClearError()
	return v.inputs[0].Focus()
}

func (v *RegisterView) Capturing() bool { return true }

func (v *RegisterView) fieldCount() int { return len(v.inputs) + 2 }

func (v *RegisterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg)
		return v, nil

	case registerDoneMsg:
		v.submitting = false
		if msg.err != nil {
			return v, nil
		}
		return v, func() tea.Msg {
			return Navigate{Path: router.PathLogin, Flash: RegisteredFlash}
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Save):
			return v, v.submit()

		case key.Matches(msg, v.keys.ShiftTab):
			v.focusIdx = cycle(v.focusIdx, -1, v.fieldCount())
			return v, v.updateFocus()

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = cycle(v.focusIdx, 1, v.fieldCount())
			return v, v.updateFocus()

		case key.Matches(msg, v.keys.Enter):
			switch {
			case v.focusIdx < len(v.inputs)-1:
				v.focusIdx++
				return v, v.updateFocus()
			case v.focusIdx <= len(v.inputs):
				return v, v.submit()
			default:
				return v, navigate(router.PathLogin)
			}
		}
	}

	if v.focusIdx < len(v.inputs) {
		var cmd tea.Cmd
		v.inputs[v.focusIdx], cmd = v.inputs[v.focusIdx].Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *RegisterView) canSubmit() bool {
	if v.submitting {
		return false
	}
	for _, in := range v.inputs {
		if strings.TrimSpace(in.Value()) == "" {
			return false
		}
	}
	return true
}

func (v *RegisterView) submit() tea.Cmd {
	if !v.canSubmit() {
		return nil
	}
	email := strings.TrimSpace(v.inputs[0].Value())
	fullName := strings.TrimSpace(v.inputs[1].Value())
	password := v.inputs[2].Value()
	if password != v.inputs[3].Value() {
		v.localErr = errPasswordMismatch
		return nil
	}

	v.localErr = ""
	v.submitting = true
	sc := v.scope
	return func() tea.Msg {
		err := v.Session.Register(v.ctx(), email, password, fullName)
		return registerDoneMsg{scope: sc, err: err}
	}
}

func (v *RegisterView) updateFocus() tea.Cmd {
	for i := range v.inputs {
		v.inputs[i].Blur()
	}
	if v.focusIdx < len(v.inputs) {
		return v.inputs[v.focusIdx].Focus()
	}
	return nil
}

func (v *RegisterView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	rows := []string{
		s.Title.Render("Task Management System"),
		s.TitleMuted.Render("Create an account"),
		"",
	}
	if v.localErr != "" {
		rows = append(rows, s.Error.Render(v.localErr), "")
	} else if errMsg := v.Session.Snapshot().Error; errMsg != "" {
		rows = append(rows, s.Error.Render(errMsg), "")
	}

	labels := []string{"Email Address", "Full Name", "Password", "Confirm Password"}
	for i, in := range v.inputs {
		style := s.Input
		if i == v.focusIdx {
			style = s.InputFocused
		}
		rows = append(rows, s.Label.Render(labels[i]), style.Width(inputWidth).Render(in.View()))
	}

	btnStyle := s.Button
	switch {
	case !v.canSubmit():
		btnStyle = s.ButtonDisabled
	case v.focusIdx == len(v.inputs):
		btnStyle = s.ButtonFocused
	}
	label := " Sign Up "
	if v.submitting {
		label = " Creating account... "
	}
	linkStyle := s.TitleMuted
	if v.focusIdx == len(v.inputs)+1 {
		linkStyle = s.HelpKey
	}

	rows = append(rows,
		"",
		btnStyle.Render(label),
		"",
		linkStyle.Render("Already have an account? Sign in"),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: create • Ctrl+C: quit"),
	)

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
