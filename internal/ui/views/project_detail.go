package views

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/router"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	errLoadProjectDetail = "Failed to load project details"
	errProjectNotFound   = "Project not found"
)

// ProjectDetailView shows one project and its tasks grouped by status
type ProjectDetailView struct {
	base
	rawID   string
	loading bool
	err     string
	project *models.Project
	tasks   []models.Task
	ordered []models.Task // tasks in display order, the cursor indexes this
	cursor  int
}

type projectDetailLoadedMsg struct {
	scope
	project *models.Project
	tasks   []models.Task
	err     error
}

func NewProjectDetailView(deps Deps, mount int, rawID string) *ProjectDetailView {
	return &ProjectDetailView{base: newBase(deps, mount), rawID: rawID, loading: true}
}

func (v *ProjectDetailView) Init() tea.Cmd {
	sc := v.scope
	id, ok := parseID(v.rawID)
	if !ok {
		return func() tea.Msg {
			return projectDetailLoadedMsg{scope: sc, err: fmt.Errorf("invalid project id %q", v.rawID)}
		}
	}
	return func() tea.Msg {
		project, err := v.Services.Projects.Get(v.ctx(), id)
		if err != nil {
			return projectDetailLoadedMsg{scope: sc, err: err}
		}
		tasks, err := v.Services.Tasks.List(v.ctx(), models.TaskFilter{ProjectID: &id})
		if err != nil {
			return projectDetailLoadedMsg{scope: sc, project: project, err: fmt.Errorf("load project tasks: %w", err)}
		}
		return projectDetailLoadedMsg{scope: sc, project: project, tasks: tasks}
	}
}

func (v *ProjectDetailView) Capturing() bool { return false }

func (v *ProjectDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg)
		return v, nil

	case projectDetailLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.Log.Error("load project detail", "id", v.rawID, "err", msg.err)
			// A 404 renders as a missing project rather than a load failure
			if msg.project != nil || !isNotFound(msg.err) {
				v.err = errLoadProjectDetail
			}
			return v, nil
		}
		v.err = ""
		v.project = msg.project
		v.tasks = msg.tasks
		v.ordered = v.ordered[:0]
		groups := models.GroupByStatus(v.tasks)
		for _, st := range models.Statuses {
			v.ordered = append(v.ordered, groups[st]...)
		}
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return v, navigate(router.PathProjects)
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.ordered)-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.Edit):
			if v.project != nil {
				return v, navigate(router.PathProjects + "/edit/" + strconv.FormatInt(v.project.ID, 10))
			}
		case key.Matches(msg, v.keys.New):
			if v.project != nil {
				return v, navigate(router.PathTasks + "/new?project_id=" + strconv.FormatInt(v.project.ID, 10))
			}
		case key.Matches(msg, v.keys.Enter):
			if v.cursor < len(v.ordered) {
				return v, navigate(taskPath(v.ordered[v.cursor].ID))
			}
		}
	}
	return v, nil
}

func (v *ProjectDetailView) View() string {
	s := v.styles
	switch {
	case v.loading:
		return v.place(s.TitleMuted.Render("Loading..."))
	case v.err != "":
		return v.place(s.Error.Render(v.err))
	case v.project == nil:
		return v.place(s.Error.Render(errProjectNotFound))
	}

	contentWidth := styles.ContentWidth(v.width)
	rowWidth := max(contentWidth-4, 20)
	p := v.project

	var b strings.Builder
	b.WriteString(s.Title.Render(p.Name) + "\n")
	desc := p.Description
	if desc == "" {
		desc = noDescriptionText
	}
	b.WriteString(s.TitleMuted.Width(rowWidth).Render(desc) + "\n")
	if p.CreatedAt != nil {
		b.WriteString(s.Label.Render("Created "+formatLongDate(p.CreatedAt.Time)) + "\n")
	}
	b.WriteString("\n")

	groups := models.GroupByStatus(v.tasks)
	idx := 0
	for _, st := range models.Statuses {
		tasks := groups[st]
		b.WriteString(s.ChipColored(fmt.Sprintf("%s (%d)", st.Label(), len(tasks)), styles.StatusColor(st)) + "\n")
		if len(tasks) == 0 {
			b.WriteString(s.TitleMuted.Render("  No tasks in this status") + "\n")
		}
		for _, t := range tasks {
			line := t.Title + " " + s.ChipColored(t.Priority.Label(), styles.PriorityColor(t.Priority))
			if idx == v.cursor {
				b.WriteString(s.ListSelected.Width(rowWidth).Render(line) + "\n")
			} else {
				b.WriteString(s.ListItem.Width(rowWidth).Render(line) + "\n")
			}
			idx++
		}
		b.WriteString("\n")
	}

	b.WriteString(s.Help.Render(fmt.Sprintf("%s open task • %s edit • %s new task • %s back",
		s.HelpKey.Render("↵"),
		s.HelpKey.Render("e"),
		s.HelpKey.Render("n"),
		s.HelpKey.Render("esc"),
	)))
	return styles.CenterView(b.String(), v.width, v.height)
}

// isNotFound reports whether err is a 404 from the backend
func isNotFound(err error) bool {
	return api.IsStatus(err, http.StatusNotFound)
}
