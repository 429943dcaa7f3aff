package views

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/router"
	"github.com/tgienger/taskdeck/internal/ui/styles"
	"golang.org/x/sync/errgroup"
)

const (
	errLoadTaskForm = "Failed to load data"
	errSaveTask     = "Failed to save task"

	// DueDateLayout is how due dates are typed, in local time
	DueDateLayout = "2006-01-02 15:04"
)

// Field order in the form
const (
	fieldTitle = iota
	fieldDesc
	fieldStatus
	fieldPriority
	fieldProject
	fieldDue
	fieldAssignee
	fieldSave
	fieldCancel
	fieldCount
)

// TaskFormView creates a task, or edits one when mounted with an id
type TaskFormView struct {
	base
	isEdit   bool
	rawID    string
	id       int64
	original models.Task
	projects []models.Project

	loading    bool
	loadFailed bool
	submitting bool
	err        string

	title     textinput.Model
	desc      textarea.Model
	due       textinput.Model
	assignee  textinput.Model
	status    models.Status
	priority  models.Priority
	projectID *int64
	dueSeed   string // due text as seeded in edit mode
	focusIdx  int
}

type taskFormLoadedMsg struct {
	scope
	projects []models.Project
	task     *models.Task
	err      error
}

type taskSavedMsg struct {
	scope
	err error
}

// NewTaskFormView builds the form. An empty rawID means create mode, where a
// project_id query parameter presets the project.
func NewTaskFormView(deps Deps, mount int, rawID string, query url.Values) *TaskFormView {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	desc := textarea.New()
	desc.Placeholder = "Description"
	desc.CharLimit = 1000
	desc.SetWidth(50)
	desc.SetHeight(3)
	desc.ShowLineNumbers = false

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD HH:MM"
	due.CharLimit = len(DueDateLayout)

	assignee := textinput.New()
	assignee.Placeholder = "User ID"
	assignee.CharLimit = 12

	in := models.NewTaskInput()
	v := &TaskFormView{
		base:     newBase(deps, mount),
		isEdit:   rawID != "",
		rawID:    rawID,
		loading:  true,
		title:    title,
		desc:     desc,
		due:      due,
		assignee: assignee,
		status:   in.Status,
		priority: in.Priority,
	}
	if !v.isEdit {
		if id, ok := parseID(query.Get("project_id")); ok {
			v.projectID = &id
		}
	}
	return v
}

func (v *TaskFormView) Init() tea.Cmd {
	return tea.Batch(v.title.Focus(), v.load())
}

// load fetches the projects for the selector and, in edit mode, the task
func (v *TaskFormView) load() tea.Cmd {
	sc := v.scope

	var id int64
	if v.isEdit {
		var ok bool
		id, ok = parseID(v.rawID)
		if !ok {
			return func() tea.Msg {
				return taskFormLoadedMsg{scope: sc, err: fmt.Errorf("invalid task id %q", v.rawID)}
			}
		}
		v.id = id
	}

	isEdit := v.isEdit
	return func() tea.Msg {
		var (
			projects []models.Project
			task     *models.Task
		)
		g, ctx := errgroup.WithContext(v.ctx())
		g.Go(func() error {
			var err error
			projects, err = v.Services.Projects.List(ctx)
			return err
		})
		if isEdit {
			g.Go(func() error {
				var err error
				task, err = v.Services.Tasks.Get(ctx, id)
				return err
			})
		}
		err := g.Wait()
		return taskFormLoadedMsg{scope: sc, projects: projects, task: task, err: err}
	}
}

func (v *TaskFormView) Capturing() bool { return true }

func (v *TaskFormView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg)
		contentWidth := styles.ContentWidth(v.width)
		v.desc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case taskFormLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.Log.Error("load task form", "id", v.rawID, "err", msg.err)
			v.err = errLoadTaskForm
			v.loadFailed = true
			return v, nil
		}
		v.err = ""
		v.projects = msg.projects
		if msg.task != nil {
			v.seed(*msg.task)
		}
		return v, nil

	case taskSavedMsg:
		v.submitting = false
		if msg.err != nil {
			v.Log.Error("save task", "edit", v.isEdit, "id", v.id, "err", msg.err)
			v.err = errSaveTask
			return v, nil
		}
		return v, navigate(router.PathTasks)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, navigate(router.PathTasks)

		case key.Matches(msg, v.keys.Save):
			return v, v.submit()

		case key.Matches(msg, v.keys.ShiftTab):
			v.focusIdx = cycle(v.focusIdx, -1, fieldCount)
			return v, v.updateFocus()

		case key.Matches(msg, v.keys.Tab):
			v.focusIdx = cycle(v.focusIdx, 1, fieldCount)
			return v, v.updateFocus()

		case v.isSelector() && key.Matches(msg, v.keys.Left):
			v.step(-1)
			return v, nil

		case v.isSelector() && key.Matches(msg, v.keys.Right):
			v.step(1)
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			switch v.focusIdx {
			case fieldDesc:
				// newline in the textarea
			case fieldSave:
				return v, v.submit()
			case fieldCancel:
				return v, navigate(router.PathTasks)
			default:
				v.focusIdx++
				return v, v.updateFocus()
			}
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case fieldTitle:
		v.title, cmd = v.title.Update(msg)
	case fieldDesc:
		v.desc, cmd = v.desc.Update(msg)
	case fieldDue:
		v.due, cmd = v.due.Update(msg)
	case fieldAssignee:
		v.assignee, cmd = v.assignee.Update(msg)
	}
	return v, cmd
}

func (v *TaskFormView) seed(t models.Task) {
	v.original = t
	v.title.SetValue(t.Title)
	v.desc.SetValue(t.Description)
	v.status = t.Status
	v.priority = t.Priority
	v.projectID = t.ProjectID
	if t.DueDate != nil {
		v.dueSeed = t.DueDate.Local().Format(DueDateLayout)
	}
	v.due.SetValue(v.dueSeed)
	if t.AssignedUserID != nil {
		v.assignee.SetValue(strconv.FormatInt(*t.AssignedUserID, 10))
	}
}

func (v *TaskFormView) isSelector() bool {
	return v.focusIdx == fieldStatus || v.focusIdx == fieldPriority || v.focusIdx == fieldProject
}

// step moves the focused selector by dir, wrapping around
func (v *TaskFormView) step(dir int) {
	switch v.focusIdx {
	case fieldStatus:
		idx := 0
		for i, s := range models.Statuses {
			if s == v.status {
				idx = i
			}
		}
		v.status = models.Statuses[cycle(idx, dir, len(models.Statuses))]
	case fieldPriority:
		idx := 0
		for i, p := range models.Priorities {
			if p == v.priority {
				idx = i
			}
		}
		v.priority = models.Priorities[cycle(idx, dir, len(models.Priorities))]
	case fieldProject:
		// option 0 is "No Project"
		idx := 0
		if v.projectID != nil {
			for i, p := range v.projects {
				if p.ID == *v.projectID {
					idx = i + 1
				}
			}
		}
		idx = cycle(idx, dir, len(v.projects)+1)
		if idx == 0 {
			v.projectID = nil
			return
		}
		id := v.projects[idx-1].ID
		v.projectID = &id
	}
}

func (v *TaskFormView) canSubmit() bool {
	if v.submitting || v.loading || v.loadFailed {
		return false
	}
	return strings.TrimSpace(v.title.Value()) != ""
}

// input builds the request body from the fields
func (v *TaskFormView) input() (models.TaskInput, error) {
	in := models.NewTaskInput()
	in.Title = strings.TrimSpace(v.title.Value())
	in.Description = strings.TrimSpace(v.desc.Value())
	in.Status = v.status
	in.Priority = v.priority
	in.ProjectID = v.projectID

	dueText := strings.TrimSpace(v.due.Value())
	switch {
	case dueText == "":
	case v.isEdit && dueText == v.dueSeed:
		in.DueDate = v.original.DueDate
	default:
		due, err := time.ParseInLocation(DueDateLayout, dueText, time.Local)
		if err != nil {
			return in, fmt.Errorf("due date %q: %w", dueText, err)
		}
		in.DueDate = models.NewTimestamp(due)
	}

	if raw := strings.TrimSpace(v.assignee.Value()); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return in, fmt.Errorf("assigned user id %q is not a positive integer", raw)
		}
		in.AssignedUserID = &id
	}
	return in, nil
}

func (v *TaskFormView) submit() tea.Cmd {
	if !v.canSubmit() {
		return nil
	}
	in, err := v.input()
	if err != nil {
		v.Log.Warn("invalid task form", "err", err)
		v.err = errSaveTask
		return nil
	}

	v.submitting = true
	v.err = ""
	sc := v.scope
	if v.isEdit {
		id, patch := v.id, in.Diff(v.original)
		return func() tea.Msg {
			_, err := v.Services.Tasks.Update(v.ctx(), id, patch)
			return taskSavedMsg{scope: sc, err: err}
		}
	}
	return func() tea.Msg {
		_, err := v.Services.Tasks.Create(v.ctx(), in)
		return taskSavedMsg{scope: sc, err: err}
	}
}

func (v *TaskFormView) updateFocus() tea.Cmd {
	v.title.Blur()
	v.desc.Blur()
	v.due.Blur()
	v.assignee.Blur()
	switch v.focusIdx {
	case fieldTitle:
		return v.title.Focus()
	case fieldDesc:
		return v.desc.Focus()
	case fieldDue:
		return v.due.Focus()
	case fieldAssignee:
		return v.assignee.Focus()
	}
	return nil
}

func (v *TaskFormView) projectLabel() string {
	if v.projectID == nil {
		return "No Project"
	}
	return models.ProjectName(v.projects, *v.projectID)
}

func (v *TaskFormView) View() string {
	s := v.styles
	if v.loading {
		return v.place(s.TitleMuted.Render("Loading..."))
	}
	if v.loadFailed {
		return v.place(s.Error.Render(v.err))
	}

	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	fieldStyle := func(idx int) lipgloss.Style {
		if v.focusIdx == idx {
			return s.InputFocused
		}
		return s.Input
	}
	selector := func(idx int, text string, color lipgloss.Color) string {
		value := text
		if color != "" {
			value = s.ChipColored(text, color)
		}
		return fieldStyle(idx).Width(inputWidth).Render("◀ " + value + " ▶")
	}

	btnStyle, cancelStyle := s.Button, s.Button
	switch v.focusIdx {
	case fieldSave:
		btnStyle = s.ButtonFocused
	case fieldCancel:
		cancelStyle = s.ButtonFocused
	}
	if !v.canSubmit() {
		btnStyle = s.ButtonDisabled
	}

	title, label := "New Task", " Create Task "
	if v.isEdit {
		title, label = "Edit Task", " Update Task "
	}
	if v.submitting {
		label = " Saving... "
	}

	rows := []string{s.Title.Render(title), ""}
	if v.err != "" {
		rows = append(rows, s.Error.Render(v.err), "")
	}
	rows = append(rows,
		s.Label.Render("Title *"),
		fieldStyle(fieldTitle).Width(inputWidth).Render(v.title.View()),
		s.Label.Render("Description"),
		fieldStyle(fieldDesc).Render(v.desc.View()),
		s.Label.Render("Status"),
		selector(fieldStatus, v.status.Label(), styles.StatusColor(v.status)),
		s.Label.Render("Priority"),
		selector(fieldPriority, v.priority.Label(), styles.PriorityColor(v.priority)),
		s.Label.Render("Project"),
		selector(fieldProject, v.projectLabel(), ""),
		s.Label.Render("Due Date"),
		fieldStyle(fieldDue).Width(inputWidth).Render(v.due.View()),
		s.Label.Render("Assigned User ID"),
		fieldStyle(fieldAssignee).Width(inputWidth).Render(v.assignee.View()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			btnStyle.Render(label),
			"  ",
			cancelStyle.Render(" Cancel "),
		),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: change • Ctrl+S: save • Esc: cancel"),
	)

	return v.place(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
