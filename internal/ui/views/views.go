package views

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/logging"
	"github.com/tgienger/taskdeck/internal/session"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

// Deps is what every screen is built from
type Deps struct {
	Ctx      context.Context
	Services *api.Services
	Session  *session.Session
	Log      *slog.Logger
	Now      func() time.Time
}

// Screen is a mounted view
type Screen interface {
	tea.Model
	// Capturing reports whether key presses currently go to a text field
	Capturing() bool
}

// Navigate asks the app to show Path. Flash is handed to the login screen.
type Navigate struct {
	Path  string
	Flash string
}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return Navigate{Path: path} }
}

// Scoped is implemented by results of asynchronous work. The app drops them
// once the screen that started the work is no longer mounted.
type Scoped interface {
	MountID() int
}

type scope struct {
	mount int
}

func (s scope) MountID() int { return s.mount }

// base carries the fields every screen shares
type base struct {
	Deps
	scope
	styles *styles.Styles
	keys   keys.KeyMap
	width  int
	height int
}

func newBase(deps Deps, mount int) base {
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	return base{
		Deps:   deps,
		scope:  scope{mount: mount},
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

func (b *base) ctx() context.Context {
	if b.Ctx == nil {
		return context.Background()
	}
	return b.Ctx
}

func (b *base) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

func (b *base) resize(msg tea.WindowSizeMsg) {
	b.width = msg.Width
	b.height = msg.Height
}

// place centers content in the content column
func (b *base) place(content string) string {
	contentWidth := styles.ContentWidth(b.width)
	centered := lipgloss.Place(contentWidth, b.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, b.width, b.height)
}

// parseID validates a route parameter
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// optimisticRemove drops the item with id from items. It is applied before
// the backend confirms the delete and is not reverted if the delete fails.
func optimisticRemove[T any](items []T, id int64, idOf func(T) int64) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	return out
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// cycle moves idx by dir within [0, n)
func cycle(idx, dir, n int) int {
	if n == 0 {
		return 0
	}
	return ((idx+dir)%n + n) % n
}

func formatDate(t time.Time) string {
	return t.Local().Format("Jan 2, 2006")
}

func formatLongDate(t time.Time) string {
	return t.Local().Format("Monday, January 2, 2006")
}
