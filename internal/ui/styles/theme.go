package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/taskdeck/internal/models"
)

// Palette is the set of colors the views draw with
type Palette struct {
	Background    lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color
	Primary       lipgloss.Color
	Accent        lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Info    lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// Current is the palette in use. Dark background, blue highlights.
var Current = Palette{
	Background:    lipgloss.Color("#1a1b26"),
	Foreground:    lipgloss.Color("#c0caf5"),
	ForegroundDim: lipgloss.Color("#565f89"),
	Primary:       lipgloss.Color("#7aa2f7"),
	Accent:        lipgloss.Color("#7dcfff"),

	Success: lipgloss.Color("#9ece6a"),
	Warning: lipgloss.Color("#e0af68"),
	Error:   lipgloss.Color("#f7768e"),
	Info:    lipgloss.Color("#7aa2f7"),

	Border:      lipgloss.Color("#3b4261"),
	BorderFocus: lipgloss.Color("#7aa2f7"),
	Selection:   lipgloss.Color("#33467c"),
}

// MaxWidth caps the content column
const MaxWidth = 80

// ContentWidth clamps the terminal width to MaxWidth
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView places content in the middle of terminals wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Styles are built once per view from Current
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	NavBar    lipgloss.Style
	NavItem   lipgloss.Style
	NavActive lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style
	Popup        lipgloss.Style

	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonPrimary  lipgloss.Style
	ButtonDisabled lipgloss.Style

	Chip lipgloss.Style

	Label        lipgloss.Style
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Error   lipgloss.Style
	Success lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style
}

// boxed is a rounded border in the given color
func boxed(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(border)
}

func NewStyles() *Styles {
	p := Current
	fg := lipgloss.NewStyle().Foreground(p.Foreground)
	dim := lipgloss.NewStyle().Foreground(p.ForegroundDim)
	primary := lipgloss.NewStyle().Foreground(p.Primary).Bold(true)

	return &Styles{
		Title:      primary,
		TitleMuted: dim,

		NavBar: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Border),
		NavItem:   dim.Padding(0, 1),
		NavActive: primary.Padding(0, 1),

		ListItem:     fg.Padding(0, 2),
		ListSelected: primary.Background(p.Selection).Padding(0, 2),
		Popup:        boxed(p.Border).Padding(0, 1),

		Button:         boxed(p.Border).Foreground(p.Foreground).Padding(0, 2),
		ButtonFocused:  boxed(p.BorderFocus).Foreground(p.Primary).Bold(true).Padding(0, 2),
		ButtonPrimary:  lipgloss.NewStyle().Foreground(p.Background).Background(p.Primary).Bold(true).Padding(0, 2),
		ButtonDisabled: boxed(p.Border).Foreground(p.ForegroundDim).Padding(0, 2),

		Chip: lipgloss.NewStyle().Padding(0, 1).MarginRight(1),

		Label:        dim,
		Input:        boxed(p.Border).Foreground(p.Foreground).Padding(0, 1),
		InputFocused: boxed(p.BorderFocus).Foreground(p.Foreground).Padding(0, 1),

		Error:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		Success: lipgloss.NewStyle().Foreground(p.Success),

		Help:    dim.Padding(1, 2),
		HelpKey: primary,
	}
}

// StatusColor maps a task status to a palette color
func StatusColor(status models.Status) lipgloss.Color {
	switch status {
	case models.StatusTodo:
		return Current.Warning
	case models.StatusInProgress:
		return Current.Info
	case models.StatusDone:
		return Current.Success
	}
	return Current.ForegroundDim
}

// PriorityColor maps a task priority to a palette color
func PriorityColor(priority models.Priority) lipgloss.Color {
	switch priority {
	case models.PriorityLow:
		return Current.Success
	case models.PriorityMedium:
		return Current.Warning
	case models.PriorityHigh:
		return Current.Error
	}
	return Current.ForegroundDim
}

// ChipColored renders text on a colored background
func (s *Styles) ChipColored(text string, color lipgloss.Color) string {
	return s.Chip.Foreground(Current.Background).Background(color).Render(text)
}

// ChipOutlined renders text in brackets with no background
func (s *Styles) ChipOutlined(text string) string {
	return s.Chip.Foreground(Current.Accent).Render("[" + text + "]")
}
