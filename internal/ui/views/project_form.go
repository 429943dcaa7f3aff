package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/router"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	errLoadProjectForm = "Failed to load project data"
	errSaveProject     = "Failed to save project"
)

// ProjectFormView creates a project, or edits one when mounted with an id
type ProjectFormView struct {
	base
	isEdit   bool
	rawID    string
	id       int64
	original models.Project

	loading    bool
	submitting bool
	err        string

	name     textinput.Model
	desc     textarea.Model
	focusIdx int // 0=name, 1=desc, 2=save, 3=cancel
}

type projectFormLoadedMsg struct {
	scope
	project *models.Project
	err     error
}

type projectSavedMsg struct {
	scope
	err error
}

// NewProjectFormView builds the form. An empty rawID means create mode.
func NewProjectFormView(deps Deps, mount int, rawID string) *ProjectFormView {
	name := textinput.New()
	name.Placeholder = "Project name"
	name.CharLimit = 100

	desc := textarea.New()
	desc.Placeholder = "Description (optional)"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	return &ProjectFormView{
		base:    newBase(deps, mount),
		isEdit:  rawID != "",
		rawID:   rawID,
		loading: rawID != "",
		name:    name,
		desc:    desc,
	}
}

func (v *ProjectFormView) Init() tea.Cmd {
	return tea.Batch(v.name.Focus(), v.load())
}

// load fetches the project being edited. Create mode loads nothing.
func (v *ProjectFormView) load() tea.Cmd {
	if !v.isEdit {
		return nil
	}
	sc := v.scope
	id, ok := parseID(v.rawID)
	if !ok {
		return func() tea.Msg {
			return projectFormLoadedMsg{scope: sc, err: fmt.Errorf("invalid project id %q", v.rawID)}
		}
	}
	v.id = id
	return func() tea.Msg {
		project, err := v.Services.Projects.Get(v.ctx(), id)
		return projectFormLoadedMsg{scope: sc, project: project, err: err}
	}
}

func (v *ProjectFormView) Capturing() bool { return true }

func (v *ProjectFormView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg)
		contentWidth := styles.ContentWidth(v.width)
		v.desc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case projectFormLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.Log.Error("load project form", "id", v.rawID, "err", msg.err)
			v.err = errLoadProjectForm
			return v, nil
		}
		v.err = ""
		v.original = *msg.project
		v.name.SetValue(msg.project.Name)
		v.desc.SetValue(msg.project.Description)
		return v, nil

	case projectSavedMsg:
		v.submitting = false
		if msg.err != nil {
			v.Log.Error("save project", "edit", v.isEdit, "id", v.id, "err", msg.err)
			v.err = errSaveProject
			return v, nil
		}
		return v, navigate(router.PathProjects)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, navigate(router.PathProjects)

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
			case 2:
				return v, v.submit()
			case 3:
				return v, navigate(router.PathProjects)
			}
			// Enter in the description inserts a newline
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.name, cmd = v.name.Update(msg)
	case 1:
		v.desc, cmd = v.desc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectFormView) canSubmit() bool {
	if v.submitting || v.loading || (v.isEdit && v.original.ID == 0) {
		return false
	}
	return strings.TrimSpace(v.name.Value()) != ""
}

func (v *ProjectFormView) submit() tea.Cmd {
	if !v.canSubmit() {
		return nil
	}
	v.submitting = true
	v.err = ""

	in := models.ProjectInput{
		Name:        strings.TrimSpace(v.name.Value()),
		Description: strings.TrimSpace(v.desc.Value()),
	}
	sc := v.scope
	if v.isEdit {
		id, patch := v.id, in.Diff(v.original)
		return func() tea.Msg {
			_, err := v.Services.Projects.Update(v.ctx(), id, patch)
			return projectSavedMsg{scope: sc, err: err}
		}
	}
	return func() tea.Msg {
		_, err := v.Services.Projects.Create(v.ctx(), in)
		return projectSavedMsg{scope: sc, err: err}
	}
}

func (v *ProjectFormView) updateFocus() tea.Cmd {
	v.name.Blur()
	v.desc.Blur()
	switch v.focusIdx {
	case 0:
		return v.name.Focus()
	case 1:
		return v.desc.Focus()
	}
	return nil
}

func (v *ProjectFormView) View() string {
	s := v.styles
	if v.loading {
		return v.place(s.TitleMuted.Render("Loading..."))
	}
	if v.isEdit && v.original.ID == 0 && v.err != "" {
		return v.place(s.Error.Render(v.err))
	}

	contentWidth := styles.ContentWidth(v.width)

	nameStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button
	cancelStyle := s.Button

	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	case 3:
		cancelStyle = s.ButtonFocused
	}
	if !v.canSubmit() {
		btnStyle = s.ButtonDisabled
	}

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-6, 20, 50)

	title, label := "New Project", " Create Project "
	if v.isEdit {
		title, label = "Edit Project", " Update Project "
	}
	if v.submitting {
		label = " Saving... "
	}

	rows := []string{s.Title.Render(title), ""}
	if v.err != "" {
		rows = append(rows, s.Error.Render(v.err), "")
	}
	rows = append(rows,
		s.Label.Render("Name *"),
		nameStyle.Width(inputWidth).Render(v.name.View()),
		"",
		s.Label.Render("Description"),
		descStyle.Render(v.desc.View()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			btnStyle.Render(label),
			"  ",
			cancelStyle.Render(" Cancel "),
		),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	return v.place(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
