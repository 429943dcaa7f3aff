package views

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/router"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	errLoadTaskDetail = "Failed to load task details"
	errTaskNotFound   = "Task not found"

	noDueDateText  = "No due date set"
	unassignedText = "Unassigned"
)

// TaskDetailView shows one task read-only
type TaskDetailView struct {
	base
	rawID   string
	loading bool
	err     string
	task    *models.Task
	project *models.Project

	confirmingDelete bool
	deleting         bool
}

type taskDetailLoadedMsg struct {
	scope
	task    *models.Task
	project *models.Project
	err     error
}

type taskDetailDeletedMsg struct {
	scope
	err error
}

func NewTaskDetailView(deps Deps, mount int, rawID string) *TaskDetailView {
	return &TaskDetailView{base: newBase(deps, mount), rawID: rawID, loading: true}
}

func (v *TaskDetailView) Init() tea.Cmd {
	sc := v.scope
	id, ok := parseID(v.rawID)
	if !ok {
		return func() tea.Msg {
			return taskDetailLoadedMsg{scope: sc, err: fmt.Errorf("invalid task id %q", v.rawID)}
		}
	}
	return func() tea.Msg {
		task, err := v.Services.Tasks.Get(v.ctx(), id)
		if err != nil {
			return taskDetailLoadedMsg{scope: sc, err: err}
		}
		var project *models.Project
		if task.ProjectID != nil {
			project, err = v.Services.Projects.Get(v.ctx(), *task.ProjectID)
			if err != nil {
				return taskDetailLoadedMsg{scope: sc, task: task, err: fmt.Errorf("load project: %w", err)}
			}
		}
		return taskDetailLoadedMsg{scope: sc, task: task, project: project}
	}
}

func (v *TaskDetailView) Capturing() bool { return v.confirmingDelete }

func (v *TaskDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg)
		return v, nil

	case taskDetailLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.Log.Error("load task detail", "id", v.rawID, "err", msg.err)
			// Only a 404 for the task itself renders as a missing task
			if msg.task != nil || !isNotFound(msg.err) {
				v.err = errLoadTaskDetail
			}
			return v, nil
		}
		v.err = ""
		v.task, v.project = msg.task, msg.project
		return v, nil

	case taskDetailDeletedMsg:
		v.deleting = false
		if msg.err != nil {
			v.Log.Error("delete task", "id", v.rawID, "err", msg.err)
			v.err = errDeleteTask
			return v, nil
		}
		return v, navigate(router.PathTasks)

	case tea.KeyMsg:
		if v.confirmingDelete {
			switch {
			case key.Matches(msg, v.keys.Confirm):
				v.confirmingDelete = false
				return v, v.delete()
			case key.Matches(msg, v.keys.Cancel):
				v.confirmingDelete = false
			}
			return v, nil
		}

		switch {
		case key.Matches(msg, v.keys.Back):
			return v, navigate(router.PathTasks)
		case key.Matches(msg, v.keys.Edit):
			if v.task != nil {
				return v, navigate(router.PathTasks + "/edit/" + strconv.FormatInt(v.task.ID, 10))
			}
		case key.Matches(msg, v.keys.Delete):
			if v.task != nil && !v.deleting {
				v.confirmingDelete = true
			}
		case key.Matches(msg, v.keys.OpenProject):
			if v.project != nil {
				return v, navigate(projectPath(v.project.ID))
			}
		}
	}
	return v, nil
}

func (v *TaskDetailView) delete() tea.Cmd {
	v.deleting = true
	id := v.task.ID
	sc := v.scope
	return func() tea.Msg {
		_, err := v.Services.Tasks.Delete(v.ctx(), id)
		return taskDetailDeletedMsg{scope: sc, err: err}
	}
}

func (v *TaskDetailView) View() string {
	s := v.styles
	switch {
	case v.loading:
		return v.place(s.TitleMuted.Render("Loading..."))
	case v.task == nil && v.err != "":
		return v.place(s.Error.Render(v.err))
	case v.task == nil:
		return v.place(s.Error.Render(errTaskNotFound))
	case v.confirmingDelete:
		return v.renderDeleteConfirm()
	}

	task := v.task
	maxContentWidth := styles.ContentWidth(v.width)
	textWidth := clamp(maxContentWidth-10, 20, 70)
	labelStyle := s.TitleMuted

	descText := task.Description
	if descText == "" {
		descText = s.TitleMuted.Render(noDescriptionText)
	}

	dueText := s.TitleMuted.Render(noDueDateText)
	if task.DueDate != nil {
		dueText = task.DueDate.Local().Format("Monday, January 2, 2006 3:04 PM")
	}

	assigneeText := s.TitleMuted.Render(unassignedText)
	if task.AssignedUserID != nil {
		assigneeText = "User #" + strconv.FormatInt(*task.AssignedUserID, 10)
	}

	projectText := s.TitleMuted.Render("No Project")
	if v.project != nil {
		projectText = s.ChipOutlined(v.project.Name)
	}

	rows := []string{
		s.Title.MarginBottom(1).Render(task.Title),
	}
	if v.err != "" {
		rows = append(rows, s.Error.Render(v.err), "")
	}
	rows = append(rows,
		lipgloss.JoinHorizontal(lipgloss.Top,
			s.ChipColored(task.Status.Label(), styles.StatusColor(task.Status)),
			s.ChipColored(task.Priority.Label()+" Priority", styles.PriorityColor(task.Priority)),
		),
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("Project"),
		projectText,
		"",
		labelStyle.Render("Due Date"),
		dueText,
		"",
		labelStyle.Render("Assigned To"),
		assigneeText,
	)
	if task.CreatedAt != nil {
		rows = append(rows, "", labelStyle.Render("Created"), formatLongDate(task.CreatedAt.Time))
	}
	if task.UpdatedAt != nil {
		rows = append(rows, "", labelStyle.Render("Last Updated"), formatLongDate(task.UpdatedAt.Time))
	}

	help := fmt.Sprintf("%s edit • %s delete • %s back",
		s.HelpKey.Render("e"),
		s.HelpKey.Render("d"),
		s.HelpKey.Render("esc"),
	)
	if v.project != nil {
		help += fmt.Sprintf(" • %s project", s.HelpKey.Render("p"))
	}
	rows = append(rows, "", s.Help.Render(help))

	// Padded rather than vertically centered, horizontally centered if wide
	padded := lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(padded, v.width, v.height)
}

func (v *TaskDetailView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Are you sure you want to delete %q?", v.task.Title)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return v.place(content)
}
