package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/router"
	"github.com/tgienger/taskdeck/internal/ui/styles"
	"golang.org/x/sync/errgroup"
)

const (
	errLoadDashboard = "Failed to load dashboard data"

	recentProjectCount = 5
	dueSoonWindow      = 7 * 24 * time.Hour
)

// DashboardView summarises the user's projects and tasks
type DashboardView struct {
	base
	loading  bool
	err      string
	projects []models.Project
	tasks    []models.Task

	recent  []models.Project
	dueSoon []models.Task
	cursor  int // over recent then dueSoon
}

type dashboardLoadedMsg struct {
	scope
	projects []models.Project
	tasks    []models.Task
	err      error
}

func NewDashboardView(deps Deps, mount int) *DashboardView {
	return &DashboardView{base: newBase(deps, mount), loading: true}
}

func (v *DashboardView) Init() tea.Cmd {
	return v.load()
}

func (v *DashboardView) Capturing() bool { return false }

func (v *DashboardView) load() tea.Cmd {
	v.loading = true
	sc := v.scope
	return func() tea.Msg {
		var (
			projects []models.Project
			tasks    []models.Task
		)
		g, ctx := errgroup.WithContext(v.ctx())
		g.Go(func() error {
			var err error
			projects, err = v.Services.Projects.List(ctx)
			return err
		})
		g.Go(func() error {
			var err error
			tasks, err = v.Services.Tasks.List(ctx, models.TaskFilter{})
			return err
		})
		err := g.Wait()
		return dashboardLoadedMsg{scope: sc, projects: projects, tasks: tasks, err: err}
	}
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg)
		return v, nil

	case dashboardLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.Log.Error("load dashboard", "err", msg.err)
			v.err = errLoadDashboard
			v.projects, v.tasks = nil, nil
			v.recent, v.dueSoon = nil, nil
			return v, nil
		}
		v.err = ""
		v.projects, v.tasks = msg.projects, msg.tasks
		v.recent = models.RecentProjects(v.projects, recentProjectCount)
		v.dueSoon = models.DueSoon(v.tasks, v.now(), dueSoonWindow)
		v.cursor = clamp(v.cursor, 0, max(v.entryCount()-1, 0))
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
		case key.Matches(msg, v.keys.Down):
			if v.cursor < v.entryCount()-1 {
				v.cursor++
			}
		case key.Matches(msg, v.keys.Enter):
			if path, ok := v.selectedPath(); ok {
				return v, navigate(path)
			}
		}
	}
	return v, nil
}

func (v *DashboardView) entryCount() int {
	return len(v.recent) + len(v.dueSoon)
}

func (v *DashboardView) selectedPath() (string, bool) {
	switch {
	case v.cursor < len(v.recent):
		return router.PathProjects + "/" + strconv.FormatInt(v.recent[v.cursor].ID, 10), true
	case v.cursor < v.entryCount():
		t := v.dueSoon[v.cursor-len(v.recent)]
		return router.PathTasks + "/" + strconv.FormatInt(t.ID, 10), true
	}
	return "", false
}

func (v *DashboardView) View() string {
	s := v.styles
	if v.loading {
		return v.place(s.TitleMuted.Render("Loading..."))
	}
	if v.err != "" {
		return v.place(s.Error.Render(v.err))
	}

	contentWidth := styles.ContentWidth(v.width)
	rowWidth := max(contentWidth-4, 20)

	name := ""
	if u := v.Session.Snapshot().User; u != nil {
		name = u.DisplayName()
	}

	var b strings.Builder
	b.WriteString(s.Title.Render("Welcome, "+name) + "\n")
	b.WriteString(s.TitleMuted.Render(fmt.Sprintf("You have %d projects and %d tasks.", len(v.projects), len(v.tasks))) + "\n\n")

	counts := models.StatusCounts(v.tasks)
	var chips []string
	for _, st := range models.Statuses {
		chips = append(chips, s.ChipColored(fmt.Sprintf("%s %d", st.Label(), counts[st]), styles.StatusColor(st)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...) + "\n\n")

	row := func(idx int, text string) string {
		if idx == v.cursor {
			return s.ListSelected.Width(rowWidth).Render(text)
		}
		return s.ListItem.Width(rowWidth).Render(text)
	}

	b.WriteString(s.Title.Render("Recent Projects") + "\n")
	if len(v.recent) == 0 {
		b.WriteString(s.TitleMuted.Render("  No projects yet") + "\n")
	}
	for i, p := range v.recent {
		b.WriteString(row(i, p.Name) + "\n")
	}

	b.WriteString("\n" + s.Title.Render("Due This Week") + "\n")
	if len(v.dueSoon) == 0 {
		b.WriteString(s.TitleMuted.Render("  Nothing due in the next 7 days") + "\n")
	}
	for i, t := range v.dueSoon {
		line := fmt.Sprintf("%s  %s", t.Title, s.TitleMuted.Render(formatDate(t.DueDate.Time)))
		b.WriteString(row(len(v.recent)+i, line) + "\n")
	}

	b.WriteString(s.Help.Render(fmt.Sprintf("%s move • %s open • %s projects • %s tasks",
		s.HelpKey.Render("↑/↓"),
		s.HelpKey.Render("↵"),
		s.HelpKey.Render("2"),
		s.HelpKey.Render("3"),
	)))

	return styles.CenterView(b.String(), v.width, v.height)
}
