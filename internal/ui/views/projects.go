package views

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/router"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	errLoadProjects   = "Failed to load projects"
	errDeleteProject  = "Failed to delete project"
	noDescriptionText = "No description provided"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string { return i.project.Name }
func (i projectItem) Description() string {
	if i.project.Description == "" {
		return noDescriptionText
	}
	return i.project.Description
}
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := titleStyle.Render(p.Title())
	if p.project.CreatedAt != nil {
		title = titleStyle.Render(p.Title() + "  " + d.styles.TitleMuted.Render(formatDate(p.project.CreatedAt.Time)))
	}
	desc := descStyle.Render(p.Description())

	fmt.Fprintf(w, "%s\n%s", title, desc)
}

// ProjectListView lists the user's projects
type ProjectListView struct {
	base
	list     list.Model
	delegate *projectDelegate
	projects []models.Project
	loading  bool
	err      string

	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

type projectsLoadedMsg struct {
	scope
	projects []models.Project
	err      error
}

type projectDeletedMsg struct {
	scope
	id  int64
	err error
}

func NewProjectListView(deps Deps, mount int) *ProjectListView {
	b := newBase(deps, mount)

	delegate := &projectDelegate{styles: b.styles, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = b.styles.Title
	l.SetShowHelp(false)
	// Navigation and deletion keys are owned by the view
	l.KeyMap.Quit.SetEnabled(false)

	return &ProjectListView{
		base:     b,
		list:     l,
		delegate: delegate,
		loading:  true,
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects()
}

// Capturing is true while the filter input, the help popup or the delete
// confirmation is open
func (v *ProjectListView) Capturing() bool {
	return v.list.SettingFilter() || v.showHelpPopup || v.confirmingDelete
}

func (v *ProjectListView) loadProjects() tea.Cmd {
	v.loading = true
	sc := v.scope
	return func() tea.Msg {
		projects, err := v.Services.Projects.List(v.ctx())
		return projectsLoadedMsg{scope: sc, projects: projects, err: err}
	}
}

// setProjects replaces the list items. The returned command refilters them
// when a name filter is applied.
func (v *ProjectListView) setProjects(projects []models.Project) tea.Cmd {
	v.projects = projects
	items := make([]list.Item, len(projects))
	for i, p := range projects {
		items[i] = projectItem{project: p}
	}
	return v.list.SetItems(items)
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg)
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.Log.Error("load projects", "err", msg.err)
			v.err = errLoadProjects
			return v, v.setProjects(nil)
		}
		v.err = ""
		return v, v.setProjects(msg.projects)

	case projectDeletedMsg:
		if msg.err != nil {
			v.Log.Error("delete project", "id", msg.id, "err", msg.err)
			v.err = errDeleteProject
		}
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.list.SettingFilter() {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Back):
			if v.list.IsFiltered() {
				v.list.ResetFilter()
			}
			return v, nil
		case key.Matches(msg, v.keys.New):
			return v, navigate(router.PathProjects + "/new")
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Refresh):
			return v, v.loadProjects()
		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, navigate(projectPath(item.project.ID))
			}
			return v, nil
		case key.Matches(msg, v.keys.Edit):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, navigate(router.PathProjects + "/edit/" + strconv.FormatInt(item.project.ID, 10))
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.project.ID
				v.deleteTargetName = item.project.Name
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		v.confirmingDelete = false
		id := v.deleteTargetID
		refilter := v.setProjects(optimisticRemove(v.projects, id, func(p models.Project) int64 { return p.ID }))
		sc := v.scope
		return v, tea.Batch(refilter, func() tea.Msg {
			_, err := v.Services.Projects.Delete(v.ctx(), id)
			return projectDeletedMsg{scope: sc, id: id, err: err}
		})
	case key.Matches(msg, v.keys.Cancel):
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func projectPath(id int64) string {
	return router.PathProjects + "/" + strconv.FormatInt(id, 10)
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.loading {
		return v.place(v.styles.TitleMuted.Render("Loading..."))
	}

	var errLine string
	if v.err != "" {
		errLine = v.styles.Error.Render(v.err) + "\n"
	}

	if len(v.list.Items()) == 0 {
		if v.err == errLoadProjects {
			return v.place(v.styles.Error.Render(v.err))
		}
		return errLine + v.renderEmpty()
	}

	content := errLine + v.list.View() + "\n" + v.renderHelp()
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectListView) renderEmpty() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)
	return v.place(content)
}

func (v *ProjectListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s del • %s filter",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
		),
	)
}

func (v *ProjectListView) renderHelpPopup() string {
	s := v.styles

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open project",
		s.HelpKey.Render("n") + "      new project",
		s.HelpKey.Render("e") + "      edit project",
		s.HelpKey.Render("d") + "      delete project",
		s.HelpKey.Render("/") + "      filter by name",
		s.HelpKey.Render("r") + "      reload",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return v.place(s.Popup.Render(content))
}

func (v *ProjectListView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Are you sure you want to delete %q?", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return v.place(content)
}
