package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding the screens share
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	Back     key.Binding
	Tab      key.Binding
	ShiftTab key.Binding
	Save     key.Binding
	Quit     key.Binding
	Help     key.Binding

	New     key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Search  key.Binding
	Refresh key.Binding
	Group   key.Binding

	FilterStatus   key.Binding
	FilterPriority key.Binding
	FilterProject  key.Binding
	ClearFilters   key.Binding
	OpenProject    key.Binding

	Confirm key.Binding
	Cancel  key.Binding

	// Navigation bar
	GoDashboard key.Binding
	GoProjects  key.Binding
	GoTasks     key.Binding
	Logout      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous")),
		Right:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next")),
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "select")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Tab:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		ShiftTab: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Save:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Quit:     key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),

		New:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		Edit:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		Delete:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Search:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Group:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "group by status")),

		FilterStatus:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		FilterPriority: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "priority filter")),
		FilterProject:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "project filter")),
		ClearFilters:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filters")),
		OpenProject:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "open project")),

		Confirm: key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		Cancel:  key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),

		GoDashboard: key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "dashboard")),
		GoProjects:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "projects")),
		GoTasks:     key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "tasks")),
		Logout:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	}
}
