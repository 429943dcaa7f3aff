package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/router"
	"github.com/tgienger/taskdeck/internal/ui/styles"
	"golang.org/x/sync/errgroup"
)

const (
	errLoadTasks  = "Failed to load tasks"
	errDeleteTask = "Failed to delete task"

	emptyTasksHint    = "No tasks yet. Press 'n' to create one."
	emptyFilteredHint = "No tasks match the current filters. Press 'x' to clear them."
	emptySearchHint   = "No tasks match your search. Press esc to clear it."
)

// filterKind names the dropdown that is open
type filterKind int

const (
	filterNone filterKind = iota
	filterStatus
	filterPriority
	filterProject
)

// TaskListView lists tasks with server-side filters and a local search
type TaskListView struct {
	base
	tasks    []models.Task
	projects []models.Project
	filter   models.TaskFilter
	loading  bool
	err      string

	// UI state
	cursor      int
	scrollY     int
	searching   bool
	searchInput textinput.Model
	grouped     bool

	// Filter dropdown state
	dropdown       filterKind
	dropdownCursor int

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   int64
	deleteTargetName string

	// Help popup (shown with ? at narrow widths)
	showHelpPopup bool
}

type tasksLoadedMsg struct {
	scope
	tasks    []models.Task
	projects []models.Project
	err      error
}

type taskDeletedMsg struct {
	scope
	id  int64
	err error
}

// NewTaskListView creates a new task list view
func NewTaskListView(deps Deps, mount int) *TaskListView {
	search := textinput.New()
	search.Placeholder = "Search..."
	search.CharLimit = 100

	return &TaskListView{
		base:        newBase(deps, mount),
		searchInput: search,
		loading:     true,
	}
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return v.loadTasks()
}

func (v *TaskListView) Capturing() bool {
	return v.searching || v.dropdown != filterNone || v.confirmingDelete || v.showHelpPopup
}

// loadTasks fetches the filtered tasks and the projects used to name them
func (v *TaskListView) loadTasks() tea.Cmd {
	v.loading = true
	sc := v.scope
	filter := v.filter
	return func() tea.Msg {
		var (
			tasks    []models.Task
			projects []models.Project
		)
		g, ctx := errgroup.WithContext(v.ctx())
		g.Go(func() error {
			var err error
			tasks, err = v.Services.Tasks.List(ctx, filter)
			return err
		})
		g.Go(func() error {
			var err error
			projects, err = v.Services.Projects.List(ctx)
			return err
		})
		err := g.Wait()
		return tasksLoadedMsg{scope: sc, tasks: tasks, projects: projects, err: err}
	}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg)
		return v, nil

	case tasksLoadedMsg:
		v.loading = false
		if msg.err != nil {
			v.Log.Error("load tasks", "filter", v.filter.Values().Encode(), "err", msg.err)
			v.err = errLoadTasks
			v.tasks, v.projects = nil, nil
			v.cursor, v.scrollY = 0, 0
			return v, nil
		}
		v.err = ""
		v.tasks, v.projects = msg.tasks, msg.projects
		v.clampCursor()
		return v, nil

	case taskDeletedMsg:
		if msg.err != nil {
			v.Log.Error("delete task", "id", msg.id, "err", msg.err)
			v.err = errDeleteTask
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

		if v.dropdown != filterNone {
			return v.updateDropdown(msg)
		}

		return v.updateNormal(msg)
	}

	if v.searching {
		var cmd tea.Cmd
		v.searchInput, cmd = v.searchInput.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle search input typing first - don't process hotkeys while typing
	if v.searching {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.searchInput.Reset()
			v.searchInput.Blur()
			v.searching = false
			v.clampCursor()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.searching = false
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.cursor, v.scrollY = 0, 0
			return v, cmd
		}
	}

	visible := v.visibleTasks()

	switch {
	case key.Matches(msg, v.keys.Back):
		if v.searchInput.Value() != "" {
			v.searchInput.Reset()
			v.clampCursor()
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(visible)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.cursor < len(visible) {
			return v, navigate(taskPath(visible[v.cursor].ID))
		}
		return v, nil

	case key.Matches(msg, v.keys.Edit):
		if v.cursor < len(visible) {
			return v, navigate(router.PathTasks + "/edit/" + strconv.FormatInt(visible[v.cursor].ID, 10))
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		path := router.PathTasks + "/new"
		if v.filter.ProjectID != nil {
			path += "?project_id=" + strconv.FormatInt(*v.filter.ProjectID, 10)
		}
		return v, navigate(path)

	case key.Matches(msg, v.keys.Delete):
		if v.cursor < len(visible) {
			v.confirmingDelete = true
			v.deleteTargetID = visible[v.cursor].ID
			v.deleteTargetName = visible[v.cursor].Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		return v, v.searchInput.Focus()

	case key.Matches(msg, v.keys.Group):
		v.grouped = !v.grouped
		v.cursor, v.scrollY = 0, 0
		return v, nil

	case key.Matches(msg, v.keys.Refresh):
		return v, v.loadTasks()

	case key.Matches(msg, v.keys.FilterStatus):
		v.openDropdown(filterStatus)
		return v, nil

	case key.Matches(msg, v.keys.FilterPriority):
		v.openDropdown(filterPriority)
		return v, nil

	case key.Matches(msg, v.keys.FilterProject):
		v.openDropdown(filterProject)
		return v, nil

	case key.Matches(msg, v.keys.ClearFilters):
		if !v.filter.Active() {
			return v, nil
		}
		v.filter = models.TaskFilter{}
		v.cursor, v.scrollY = 0, 0
		return v, v.loadTasks()

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

// dropdownOptions returns the labels of the open dropdown. Index 0 is "All".
func (v *TaskListView) dropdownOptions() []string {
	opts := []string{"All"}
	switch v.dropdown {
	case filterStatus:
		for _, s := range models.Statuses {
			opts = append(opts, s.Label())
		}
	case filterPriority:
		for _, p := range models.Priorities {
			opts = append(opts, p.Label())
		}
	case filterProject:
		for _, p := range v.projects {
			opts = append(opts, p.Name)
		}
	}
	return opts
}

func (v *TaskListView) openDropdown(kind filterKind) {
	v.dropdown = kind
	v.dropdownCursor = 0
	switch kind {
	case filterStatus:
		for i, s := range models.Statuses {
			if s == v.filter.Status {
				v.dropdownCursor = i + 1
			}
		}
	case filterPriority:
		for i, p := range models.Priorities {
			if p == v.filter.Priority {
				v.dropdownCursor = i + 1
			}
		}
	case filterProject:
		if v.filter.ProjectID != nil {
			for i, p := range v.projects {
				if p.ID == *v.filter.ProjectID {
					v.dropdownCursor = i + 1
				}
			}
		}
	}
}

func (v *TaskListView) updateDropdown(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.dropdown = filterNone
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.dropdownCursor > 0 {
			v.dropdownCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.dropdownCursor < len(v.dropdownOptions())-1 {
			v.dropdownCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		idx := v.dropdownCursor - 1 // -1 is "All"
		switch v.dropdown {
		case filterStatus:
			v.filter.Status = ""
			if idx >= 0 {
				v.filter.Status = models.Statuses[idx]
			}
		case filterPriority:
			v.filter.Priority = ""
			if idx >= 0 {
				v.filter.Priority = models.Priorities[idx]
			}
		case filterProject:
			v.filter.ProjectID = nil
			if idx >= 0 && idx < len(v.projects) {
				id := v.projects[idx].ID
				v.filter.ProjectID = &id
			}
		}
		v.dropdown = filterNone
		v.cursor, v.scrollY = 0, 0
		return v, v.loadTasks()
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Confirm):
		v.confirmingDelete = false
		id := v.deleteTargetID
		v.tasks = optimisticRemove(v.tasks, id, func(t models.Task) int64 { return t.ID })
		v.clampCursor()
		sc := v.scope
		return v, func() tea.Msg {
			_, err := v.Services.Tasks.Delete(v.ctx(), id)
			return taskDeletedMsg{scope: sc, id: id, err: err}
		}
	case key.Matches(msg, v.keys.Cancel):
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// visibleTasks applies the local search and, when grouping, the status order
func (v *TaskListView) visibleTasks() []models.Task {
	query := strings.ToLower(strings.TrimSpace(v.searchInput.Value()))
	var out []models.Task
	for _, t := range v.tasks {
		if query == "" ||
			strings.Contains(strings.ToLower(t.Title), query) ||
			strings.Contains(strings.ToLower(t.Description), query) {
			out = append(out, t)
		}
	}
	if !v.grouped {
		return out
	}
	groups := models.GroupByStatus(out)
	ordered := make([]models.Task, 0, len(out))
	for _, st := range models.Statuses {
		ordered = append(ordered, groups[st]...)
	}
	return ordered
}

func (v *TaskListView) clampCursor() {
	n := len(v.visibleTasks())
	if v.cursor >= n {
		v.cursor = max(0, n-1)
	}
	v.ensureVisible()
}

func (v *TaskListView) visibleItems() int {
	// Each task item is 2 lines (title + chips) + 1 margin = 3 lines
	availableHeight := max(v.height-12, 3)
	return max(availableHeight/3, 1)
}

func (v *TaskListView) ensureVisible() {
	visibleItems := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func taskPath(id int64) string {
	return router.PathTasks + "/" + strconv.FormatInt(id, 10)
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	var b strings.Builder

	// Header with search and filters
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.TitleMuted.Render("Loading..."))
	case v.err == errLoadTasks:
		b.WriteString(v.styles.Error.Render(v.err))
	default:
		if v.err != "" {
			b.WriteString(v.styles.Error.Render(v.err) + "\n\n")
		}
		b.WriteString(v.renderTaskList())
	}

	// Help
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) filterLabel(kind filterKind) string {
	switch kind {
	case filterStatus:
		if v.filter.Status != "" {
			return v.filter.Status.Label()
		}
	case filterPriority:
		if v.filter.Priority != "" {
			return v.filter.Priority.Label()
		}
	case filterProject:
		if v.filter.ProjectID != nil {
			return models.ProjectName(v.projects, *v.filter.ProjectID)
		}
	}
	return "All"
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	isNarrow := contentWidth < 60

	// Search input - dynamic width
	searchStyle := s.Input
	if v.searching {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 24)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	buttons := make([]string, 0, 3)
	for _, f := range []struct {
		kind  filterKind
		label string
	}{
		{filterStatus, "Status"},
		{filterPriority, "Priority"},
		{filterProject, "Project"},
	} {
		btnStyle := s.Button
		if v.dropdown == f.kind {
			btnStyle = s.ButtonFocused
		}
		label := v.filterLabel(f.kind)
		if !isNarrow {
			label = f.label + ": " + label
		}
		buttons = append(buttons, btnStyle.Render(label+" ▼"))
	}
	filters := lipgloss.JoinHorizontal(lipgloss.Center, buttons...)

	titleText := "Tasks"
	if v.grouped {
		titleText = "Tasks (by status)"
	}
	title := s.Title.Render(titleText)

	var header string
	if isNarrow {
		header = lipgloss.JoinVertical(lipgloss.Left, searchBox, filters)
	} else {
		header = lipgloss.JoinHorizontal(lipgloss.Center, searchBox, " ", filters)
	}

	dropdown := ""
	if v.dropdown != filterNone {
		dropdown = "\n" + v.renderDropdown()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, header+dropdown)
}

func (v *TaskListView) renderDropdown() string {
	s := v.styles
	var items []string
	for i, opt := range v.dropdownOptions() {
		itemStyle := s.ListItem
		if v.dropdownCursor == i {
			itemStyle = s.ListSelected
		}
		items = append(items, itemStyle.Render(opt))
	}
	return s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles
	visible := v.visibleTasks()

	if len(visible) == 0 {
		switch {
		case v.filter.Active():
			return s.TitleMuted.Render(emptyFilteredHint)
		case strings.TrimSpace(v.searchInput.Value()) != "":
			return s.TitleMuted.Render(emptySearchHint)
		}
		return s.TitleMuted.Render(emptyTasksHint)
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(visible))
	var lastStatus models.Status

	for i := v.scrollY; i < endIdx; i++ {
		task := visible[i]
		if v.grouped && (i == v.scrollY || task.Status != lastStatus) {
			items = append(items, s.ChipColored(task.Status.Label(), styles.StatusColor(task.Status)))
		}
		lastStatus = task.Status
		items = append(items, v.renderTaskItem(task, i == v.cursor && !v.searching))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	titleLine := task.Title
	if task.DueDate != nil {
		titleLine += "  " + s.TitleMuted.Render("due "+formatDate(task.DueDate.Time))
	}

	chips := []string{
		s.ChipColored(task.Status.Label(), styles.StatusColor(task.Status)),
		s.ChipColored(task.Priority.Label(), styles.PriorityColor(task.Priority)),
	}
	if task.ProjectID != nil {
		chips = append(chips, s.ChipOutlined(models.ProjectName(v.projects, *task.ProjectID)))
	}
	chipLine := strings.Join(chips, "")

	// Apply styling based on selection state
	var titleStyle, chipLineStyle lipgloss.Style
	if selected {
		titleStyle = s.ListSelected.Width(width)
		chipLineStyle = s.ListSelected.Width(width)
	} else {
		titleStyle = s.ListItem.Width(width)
		chipLineStyle = s.ListItem.Width(width)
	}

	// Return two-line item with margin
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(titleLine), chipLineStyle.Render(chipLine)) + "\n"
}

func (v *TaskListView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	groupLabel := "group"
	if v.grouped {
		groupLabel = "ungroup"
	}

	return v.styles.Help.Render(
		fmt.Sprintf("%s view • %s edit • %s new • %s del • %s search • %s/%s/%s filter • %s clear • %s %s",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("p"),
			v.styles.HelpKey.Render("o"),
			v.styles.HelpKey.Render("x"),
			v.styles.HelpKey.Render("g"),
			groupLabel,
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles

	helpItems := []string{
		s.HelpKey.Render("↵") + "      view task",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("s") + "      filter by status",
		s.HelpKey.Render("p") + "      filter by priority",
		s.HelpKey.Render("o") + "      filter by project",
		s.HelpKey.Render("x") + "      clear filters",
		s.HelpKey.Render("g") + "      group by status",
		s.HelpKey.Render("r") + "      reload",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return v.place(s.Popup.Render(content))
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
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
