package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/logging"
	"github.com/tgienger/taskdeck/internal/router"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
	"github.com/tgienger/taskdeck/internal/ui/views"
)

// maxRedirects bounds how many guard redirects one navigation may follow
const maxRedirects = 4

// navBarHeight is the nav bar line plus its bottom border
const navBarHeight = 2

type restoredMsg struct{}

// App routes between screens and owns the session lifecycle
type App struct {
	deps   views.Deps
	keys   keys.KeyMap
	styles *styles.Styles

	route    router.Route
	pending  string // path waiting for the session to settle
	restored bool
	mount    int
	screen   views.Screen

	width  int
	height int
}

// NewApp creates the application. startPath is the first route requested.
func NewApp(deps views.Deps, startPath string) *App {
	if startPath == "" {
		startPath = router.PathLogin
	}
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	return &App{
		deps:    deps,
		keys:    keys.DefaultKeyMap(),
		styles:  styles.NewStyles(),
		pending: startPath,
	}
}

func (a *App) Init() tea.Cmd {
	sess := a.deps.Session
	ctx := a.deps.Ctx
	return func() tea.Msg {
		sess.Restore(ctx)
		return restoredMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	if resume := a.resumePending(); resume != nil {
		cmd = tea.Batch(cmd, resume)
	}
	return a, cmd
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.screen != nil {
			_, cmd := a.screen.Update(a.screenSize())
			return cmd
		}
		return nil

	case restoredMsg:
		a.restored = true
		return nil

	case views.Navigate:
		return a.navigate(msg.Path, msg.Flash)

	case views.Scoped:
		if msg.MountID() != a.mount {
			a.deps.Log.Debug("dropping result for unmounted screen", "mount", msg.MountID(), "current", a.mount)
			return nil
		}

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return tea.Quit
		}
		if a.screen == nil {
			return nil
		}
		if !a.screen.Capturing() {
			if cmd, ok := a.handleGlobalKey(msg); ok {
				return cmd
			}
		}
	}

	if a.screen == nil {
		return nil
	}
	_, cmd := a.screen.Update(msg)
	return cmd
}

// resumePending retries a navigation the guard deferred, once the session
// has been restored and is no longer busy
func (a *App) resumePending() tea.Cmd {
	if !a.restored || a.pending == "" || a.deps.Session.Snapshot().Loading {
		return nil
	}
	path := a.pending
	a.pending = ""
	return a.navigate(path, "")
}

// handleGlobalKey runs the nav bar shortcuts. ok is false when the key is
// left to the screen.
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, a.keys.Quit) {
		return tea.Quit, true
	}
	if !a.deps.Session.Snapshot().IsAuthenticated {
		return nil, false
	}
	switch {
	case key.Matches(msg, a.keys.GoDashboard):
		return a.navigate(router.PathDashboard, ""), true
	case key.Matches(msg, a.keys.GoProjects):
		return a.navigate(router.PathProjects, ""), true
	case key.Matches(msg, a.keys.GoTasks):
		return a.navigate(router.PathTasks, ""), true
	case key.Matches(msg, a.keys.Logout):
		a.deps.Session.Logout()
		a.deps.Log.Info("logged out")
		return a.navigate(router.PathLogin, ""), true
	}
	return nil, false
}

// navigate guards path and mounts the screen it resolves to
func (a *App) navigate(path, flash string) tea.Cmd {
	for range maxRedirects {
		r := router.Parse(path)
		st := a.deps.Session.Snapshot()
		d := router.Guard(r, router.Auth{IsAuthenticated: st.IsAuthenticated, Loading: st.Loading})
		switch {
		case d.Pending:
			// The mounted screen stays interactive until the session settles
			a.pending = path
			return nil
		case d.Redirect != "":
			a.deps.Log.Debug("redirect", "from", path, "to", d.Redirect)
			path = d.Redirect
			continue
		}
		return a.mountRoute(r, flash)
	}
	a.deps.Log.Error("too many redirects", "path", path)
	return nil
}

func (a *App) mountRoute(r router.Route, flash string) tea.Cmd {
	a.mount++
	a.route = r
	a.pending = ""

	d := a.deps
	switch r.Name {
	case router.Login:
		a.screen = views.NewLoginView(d, a.mount, flash)
	case router.Register:
		a.screen = views.NewRegisterView(d, a.mount)
	case router.Dashboard:
		a.screen = views.NewDashboardView(d, a.mount)
	case router.ProjectList:
		a.screen = views.NewProjectListView(d, a.mount)
	case router.ProjectNew:
		a.screen = views.NewProjectFormView(d, a.mount, "")
	case router.ProjectEdit:
		a.screen = views.NewProjectFormView(d, a.mount, r.ID)
	case router.ProjectDetail:
		a.screen = views.NewProjectDetailView(d, a.mount, r.ID)
	case router.TaskList:
		a.screen = views.NewTaskListView(d, a.mount)
	case router.TaskNew:
		a.screen = views.NewTaskFormView(d, a.mount, "", r.Query)
	case router.TaskEdit:
		a.screen = views.NewTaskFormView(d, a.mount, r.ID, nil)
	case router.TaskDetail:
		a.screen = views.NewTaskDetailView(d, a.mount, r.ID)
	}
	a.deps.Log.Debug("mounted", "path", r.Path, "mount", a.mount)

	a.screen.Update(a.screenSize())
	return a.screen.Init()
}

// screenSize is the window minus the nav bar
func (a *App) screenSize() tea.WindowSizeMsg {
	h := a.height
	if a.deps.Session.Snapshot().IsAuthenticated {
		h = max(h-navBarHeight, 0)
	}
	return tea.WindowSizeMsg{Width: a.width, Height: h}
}

func (a *App) View() string {
	if a.screen == nil {
		return a.renderPending()
	}
	if !a.deps.Session.Snapshot().IsAuthenticated {
		return a.screen.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.renderNavBar(), a.screen.View())
}

func (a *App) renderPending() string {
	contentWidth := styles.ContentWidth(a.width)
	centered := lipgloss.Place(contentWidth, a.height,
		lipgloss.Center, lipgloss.Center,
		a.styles.TitleMuted.Render("Loading..."),
	)
	return styles.CenterView(centered, a.width, a.height)
}

func (a *App) renderNavBar() string {
	s := a.styles
	items := []struct {
		key, label string
		active     bool
	}{
		{"1", "Dashboard", a.route.Name == router.Dashboard},
		{"2", "Projects", a.route.Name >= router.ProjectList && a.route.Name <= router.ProjectDetail},
		{"3", "Tasks", a.route.Name >= router.TaskList && a.route.Name <= router.TaskDetail},
		{"L", "Logout", false},
	}
	var parts []string
	for _, it := range items {
		style := s.NavItem
		if it.active {
			style = s.NavActive
		}
		parts = append(parts, style.Render(s.HelpKey.Render(it.key)+" "+it.label))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)

	st := a.deps.Session.Snapshot()
	right := ""
	if st.User != nil {
		right = st.User.DisplayName()
	}
	if exp, ok := a.deps.Session.TokenExpiry(); ok {
		right += fmt.Sprintf(" · expires %s", exp.Local().Format("Jan 2 15:04"))
	}
	right = s.TitleMuted.Render(right)

	width := styles.ContentWidth(a.width) - 2
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return styles.CenterView(s.NavBar.Render(bar), a.width, navBarHeight)
}
