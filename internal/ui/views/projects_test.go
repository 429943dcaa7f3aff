package views

import (
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/taskdeck/internal/models"
)

func seedProjects(h *harness, names ...string) []models.Project {
	out := make([]models.Project, len(names))
	for i, name := range names {
		out[i] = h.backend.AddProject(models.Project{ID: int64(10 + i), Name: name})
	}
	return out
}

func TestDashboardSummary(t *testing.T) {
	h := newHarness(t, true)
	seedProjects(h, "P1", "P2", "P3", "P4", "P5", "P6")
	h.backend.AddTask(models.Task{ID: 100, Title: "soon", Status: models.StatusDone, DueDate: models.NewTimestamp(testNow.Add(48 * time.Hour))})
	h.backend.AddTask(models.Task{ID: 101, Title: "now", DueDate: models.NewTimestamp(testNow)})
	h.backend.AddTask(models.Task{ID: 102, Title: "late", DueDate: models.NewTimestamp(testNow.Add(-time.Hour))})
	h.backend.AddTask(models.Task{ID: 103, Title: "far", DueDate: models.NewTimestamp(testNow.Add(7 * 24 * time.Hour))})
	h.backend.AddTask(models.Task{ID: 104, Title: "none", Status: models.StatusInProgress})

	v := NewDashboardView(h.deps, 1)
	if !v.loading {
		t.Fatal("dashboard should start loading")
	}
	settle(t, v, v.Init())

	if v.loading || v.err != "" {
		t.Fatalf("loading = %v, err = %q", v.loading, v.err)
	}
	if len(v.projects) != 6 || len(v.tasks) != 5 {
		t.Errorf("loaded %d projects and %d tasks, want 6 and 5", len(v.projects), len(v.tasks))
	}
	if len(v.recent) != 5 || v.recent[0].Name != "P1" {
		t.Errorf("recent = %+v, want the first five in backend order", v.recent)
	}
	var due []string
	for _, task := range v.dueSoon {
		due = append(due, task.Title)
	}
	if !slices.Equal(due, []string{"soon", "now"}) {
		t.Errorf("due soon = %v, want [soon now]", due)
	}

	view := v.View()
	if !strings.Contains(view, "You have 6 projects and 5 tasks.") {
		t.Errorf("view is missing the totals:\n%s", view)
	}

	// Cursor walks the recent projects then the due tasks
	navs := press(t, v, keyEnter)
	if !slices.Equal(paths(navs), []string{"/projects/10"}) {
		t.Errorf("enter on first entry = %v", paths(navs))
	}
	navs = press(t, v, keyDown, keyDown, keyDown, keyDown, keyDown, keyEnter)
	if !slices.Equal(paths(navs), []string{"/tasks/100"}) {
		t.Errorf("enter on first due task = %v", paths(navs))
	}
}

func TestDashboardLoadFailure(t *testing.T) {
	h := newHarness(t, true)
	seedProjects(h, "P1")
	h.backend.Fail(http.MethodGet, "/api/tasks/", http.StatusInternalServerError, "boom")

	v := NewDashboardView(h.deps, 1)
	settle(t, v, v.Init())

	if v.err != errLoadDashboard {
		t.Errorf("err = %q, want %q", v.err, errLoadDashboard)
	}
	if v.loading {
		t.Error("loading should be false after a failure")
	}
	if len(v.projects) != 0 || len(v.recent) != 0 {
		t.Error("data should stay empty after a failure")
	}
}

func TestProjectListDelete(t *testing.T) {
	tests := []struct {
		name        string
		keys        []tea.KeyMsg
		fail        bool
		wantItems   int
		wantDeletes int
		wantErr     string
	}{
		{
			name:        "cancel sends nothing",
			keys:        []tea.KeyMsg{runes("d"), runes("n")},
			wantItems:   2,
			wantDeletes: 0,
		},
		{
			name:        "escape cancels",
			keys:        []tea.KeyMsg{runes("d"), keyEsc},
			wantItems:   2,
			wantDeletes: 0,
		},
		{
			name:        "confirm removes and deletes",
			keys:        []tea.KeyMsg{runes("d"), runes("y")},
			wantItems:   1,
			wantDeletes: 1,
		},
		{
			name:        "failed delete is not reverted",
			keys:        []tea.KeyMsg{runes("d"), runes("y")},
			fail:        true,
			wantItems:   1,
			wantDeletes: 1,
			wantErr:     errDeleteProject,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			seedProjects(h, "Alpha", "Beta")
			if tt.fail {
				h.backend.Fail(http.MethodDelete, "/api/projects/10", http.StatusInternalServerError, "boom")
			}

			v := NewProjectListView(h.deps, 1)
			v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
			settle(t, v, v.Init())
			if len(v.list.Items()) != 2 {
				t.Fatalf("loaded %d items, want 2", len(v.list.Items()))
			}

			press(t, v, tt.keys...)

			if got := len(v.list.Items()); got != tt.wantItems {
				t.Errorf("items = %d, want %d", got, tt.wantItems)
			}
			if got := len(h.backend.RequestsTo(http.MethodDelete, "/api/projects/10")); got != tt.wantDeletes {
				t.Errorf("delete requests = %d, want %d", got, tt.wantDeletes)
			}
			if v.err != tt.wantErr {
				t.Errorf("err = %q, want %q", v.err, tt.wantErr)
			}
		})
	}
}

func TestProjectListNavigation(t *testing.T) {
	h := newHarness(t, true)
	seedProjects(h, "Alpha")

	v := NewProjectListView(h.deps, 1)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	settle(t, v, v.Init())

	tests := []struct {
		key  tea.KeyMsg
		want string
	}{
		{keyEnter, "/projects/10"},
		{runes("e"), "/projects/edit/10"},
		{runes("n"), "/projects/new"},
	}
	for _, tt := range tests {
		navs := press(t, v, tt.key)
		if !slices.Equal(paths(navs), []string{tt.want}) {
			t.Errorf("%s navigated to %v, want %s", tt.key, paths(navs), tt.want)
		}
	}
}

func TestProjectListLoadFailure(t *testing.T) {
	h := newHarness(t, true)
	h.backend.Fail(http.MethodGet, "/api/projects/", http.StatusInternalServerError, "boom")

	v := NewProjectListView(h.deps, 1)
	settle(t, v, v.Init())

	if v.err != errLoadProjects || v.loading {
		t.Errorf("err = %q, loading = %v", v.err, v.loading)
	}
	if !strings.Contains(v.View(), errLoadProjects) {
		t.Error("view does not show the load error")
	}
}

func TestProjectDetail(t *testing.T) {
	t.Run("loads project then its tasks", func(t *testing.T) {
		h := newHarness(t, true)
		seedProjects(h, "Alpha")
		h.backend.AddTask(models.Task{ID: 100, Title: "in alpha", ProjectID: ptr(int64(10)), Status: models.StatusDone})
		h.backend.AddTask(models.Task{ID: 101, Title: "first", ProjectID: ptr(int64(10))})

		v := NewProjectDetailView(h.deps, 1, "10")
		settle(t, v, v.Init())

		if v.err != "" || v.project == nil {
			t.Fatalf("err = %q, project = %v", v.err, v.project)
		}
		reqs := h.backend.RequestsTo(http.MethodGet, "/api/tasks/")
		if len(reqs) != 1 || reqs[0].Query.Get("project_id") != "10" {
			t.Errorf("task requests = %+v, want one filtered by project_id=10", reqs)
		}
		// TODO group comes before DONE
		if navs := press(t, v, keyEnter); !slices.Equal(paths(navs), []string{"/tasks/101"}) {
			t.Errorf("enter = %v, want [/tasks/101]", paths(navs))
		}
		if navs := press(t, v, runes("n")); !slices.Equal(paths(navs), []string{"/tasks/new?project_id=10"}) {
			t.Errorf("new task = %v", paths(navs))
		}
		if !strings.Contains(v.View(), "No tasks in this status") {
			t.Error("empty status group is not labelled")
		}
	})

	t.Run("invalid id fails without a request", func(t *testing.T) {
		h := newHarness(t, true)
		v := NewProjectDetailView(h.deps, 1, "abc")
		settle(t, v, v.Init())

		if v.err != errLoadProjectDetail {
			t.Errorf("err = %q, want %q", v.err, errLoadProjectDetail)
		}
		if n := len(h.backend.RequestsTo(http.MethodGet, "/api/projects/abc")); n != 0 {
			t.Errorf("requests = %d, want 0", n)
		}
	})

	t.Run("missing project", func(t *testing.T) {
		h := newHarness(t, true)
		v := NewProjectDetailView(h.deps, 1, "99")
		settle(t, v, v.Init())

		if v.err != "" || v.project != nil {
			t.Errorf("err = %q, project = %v", v.err, v.project)
		}
		if !strings.Contains(v.View(), errProjectNotFound) {
			t.Error("view does not say the project is missing")
		}
	})

	t.Run("task fetch failure", func(t *testing.T) {
		h := newHarness(t, true)
		seedProjects(h, "Alpha")
		h.backend.Fail(http.MethodGet, "/api/tasks/", http.StatusNotFound, "gone")

		v := NewProjectDetailView(h.deps, 1, "10")
		settle(t, v, v.Init())

		if v.err != errLoadProjectDetail {
			t.Errorf("err = %q, want %q", v.err, errLoadProjectDetail)
		}
	})
}

func TestProjectFormCreate(t *testing.T) {
	h := newHarness(t, true)
	v := NewProjectFormView(h.deps, 1, "")
	settle(t, v, v.load())

	if v.canSubmit() {
		t.Error("submit should be disabled while the name is blank")
	}
	if navs := press(t, v, keySave); len(navs) != 0 {
		t.Errorf("blank name navigated to %v", paths(navs))
	}

	v.name.SetValue("  Launch  ")
	navs := press(t, v, keySave)

	if !slices.Equal(paths(navs), []string{"/projects"}) {
		t.Errorf("navigations = %v, want [/projects]", paths(navs))
	}
	reqs := h.backend.RequestsTo(http.MethodPost, "/api/projects/")
	if len(reqs) != 1 || string(reqs[0].Body) != `{"name":"Launch"}` {
		t.Errorf("create requests = %+v", reqs)
	}
}

func TestProjectFormEditSendsChangedFields(t *testing.T) {
	h := newHarness(t, true)
	h.backend.AddProject(models.Project{ID: 10, Name: "Alpha", Description: "keep"})

	v := NewProjectFormView(h.deps, 1, "10")
	settle(t, v, v.load())
	if v.name.Value() != "Alpha" || v.desc.Value() != "keep" {
		t.Fatalf("fields = %q, %q; want seeded from the project", v.name.Value(), v.desc.Value())
	}

	v.name.SetValue("Beta")
	navs := press(t, v, keySave)

	if !slices.Equal(paths(navs), []string{"/projects"}) {
		t.Errorf("navigations = %v", paths(navs))
	}
	reqs := h.backend.RequestsTo(http.MethodPatch, "/api/projects/10")
	if len(reqs) != 1 || string(reqs[0].Body) != `{"name":"Beta"}` {
		t.Errorf("patch requests = %+v", reqs)
	}
}

func TestProjectFormSaveFailureKeepsFields(t *testing.T) {
	h := newHarness(t, true)
	h.backend.Fail(http.MethodPost, "/api/projects/", http.StatusInternalServerError, "boom")

	v := NewProjectFormView(h.deps, 1, "")
	v.name.SetValue("Launch")
	navs := press(t, v, keySave)

	if len(navs) != 0 {
		t.Errorf("navigations = %v, want none", paths(navs))
	}
	if v.err != errSaveProject {
		t.Errorf("err = %q, want %q", v.err, errSaveProject)
	}
	if v.name.Value() != "Launch" || !v.canSubmit() {
		t.Error("fields should be kept and submit re-enabled")
	}
}

func TestProjectFormLoadFailure(t *testing.T) {
	h := newHarness(t, true)
	v := NewProjectFormView(h.deps, 1, "99")
	settle(t, v, v.load())

	if v.err != errLoadProjectForm {
		t.Errorf("err = %q, want %q", v.err, errLoadProjectForm)
	}
	if v.canSubmit() {
		t.Error("submit should stay disabled without the project")
	}
}

func TestProjectListFilteredDeleteAndReload(t *testing.T) {
	h := newHarness(t, true)
	h.backend.AddProject(models.Project{ID: 10, Name: "Alpha"})
	h.backend.AddProject(models.Project{ID: 11, Name: "Alpine"})
	h.backend.AddProject(models.Project{ID: 12, Name: "Beta"})

	v := NewProjectListView(h.deps, 1)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	settle(t, v, v.Init())

	press(t, v, runes("/"), runes("A"), runes("l"), runes("p"), keyEnter)
	if got := len(v.list.VisibleItems()); got != 2 {
		t.Fatalf("visible before delete = %d, want 2", got)
	}
	if v.Capturing() {
		t.Error("an applied filter should not capture keys")
	}

	selected := v.list.SelectedItem().(projectItem).project.Name
	want := "Alpine"
	if selected == "Alpine" {
		want = "Alpha"
	}
	press(t, v, runes("d"), runes("y"))

	visible := v.list.VisibleItems()
	if len(visible) != 1 || visible[0].(projectItem).project.Name != want {
		t.Errorf("visible after deleting %s = %v, want [%s]", selected, visible, want)
	}
	if len(v.list.Items()) != 2 {
		t.Errorf("items after delete = %d, want 2", len(v.list.Items()))
	}

	press(t, v, runes("r"))

	if got := len(v.list.VisibleItems()); got != 1 {
		t.Errorf("visible after reload = %d, want 1", got)
	}
	if v.list.FilterValue() != "Alp" {
		t.Errorf("filter = %q, want it kept across the reload", v.list.FilterValue())
	}
}

func TestProjectListCapturesWhileOverlaysOpen(t *testing.T) {
	h := newHarness(t, true)
	seedProjects(h, "Alpha")

	v := NewProjectListView(h.deps, 1)
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	settle(t, v, v.Init())

	if v.Capturing() {
		t.Fatal("list should not capture keys while browsing")
	}

	press(t, v, runes("d"))
	if !v.Capturing() {
		t.Error("delete confirmation should capture keys")
	}
	press(t, v, runes("n"))

	press(t, v, runes("?"))
	if !v.Capturing() {
		t.Error("help popup should capture keys")
	}
	press(t, v, runes("q"))
	if v.Capturing() || len(v.list.Items()) != 1 {
		t.Error("any key should only close the help popup")
	}
}
