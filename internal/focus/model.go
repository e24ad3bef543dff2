package focus

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"work-tracker/internal/domain"
)

// TickMsg carries the generation of the tick loop that produced it.
// Ticks from a loop that was stopped by a pause are dropped.
type TickMsg struct {
	Time time.Time
	Gen  int
}

// Palette holds the colours for one theme
type Palette struct {
	Accent lipgloss.Color
	Muted  lipgloss.Color
	Paused lipgloss.Color
}

// PaletteFor returns the palette matching theme
func PaletteFor(theme domain.Theme) Palette {
	if theme == domain.ThemeDark {
		return Palette{Accent: lipgloss.Color("205"), Muted: lipgloss.Color("245"), Paused: lipgloss.Color("214")}
	}
	return Palette{Accent: lipgloss.Color("62"), Muted: lipgloss.Color("240"), Paused: lipgloss.Color("166")}
}

// Model is the bubbletea model for the focus timer
type Model struct {
	timer   *Timer
	keys    KeyMap
	help    help.Model
	palette Palette
	label   string
	gen     int
	done    bool
	width   int
	height  int
}

// NewModel returns a model that starts timing as soon as it is run
func NewModel(timer *Timer, label string, theme domain.Theme) Model {
	return Model{
		timer:   timer,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		palette: PaletteFor(theme),
		label:   label,
	}
}

// Elapsed returns the time focused so far
func (m Model) Elapsed() time.Duration {
	return m.timer.Elapsed()
}

// Done reports whether the user finished the session
func (m Model) Done() bool {
	return m.done
}

func tick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, Gen: gen}
	})
}

func (m Model) Init() tea.Cmd {
	m.timer.Start()
	return tick(m.gen)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if msg.Gen != m.gen || !m.timer.Running() {
			return m, nil
		}
		return m, tick(m.gen)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.timer.Pause()
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.timer.Toggle()
			m.gen++
			if m.timer.Running() {
				return m, tick(m.gen)
			}
			return m, nil
		case key.Matches(msg, m.keys.Reset):
			m.timer.Reset()
			m.gen++
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.done {
		return ""
	}

	clockStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(1, 4).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.palette.Accent).
		Foreground(m.palette.Accent)

	state := "focusing"
	if !m.timer.Running() {
		state = "paused"
		clockStyle = clockStyle.Foreground(m.palette.Paused).BorderForeground(m.palette.Paused)
	}

	muted := lipgloss.NewStyle().Foreground(m.palette.Muted)
	content := lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Render(m.label),
		clockStyle.Render(FormatClock(m.timer.Elapsed())),
		muted.Render(state),
		"",
		m.help.View(m.keys),
	)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return content
}

// Run shows the timer until the user finishes and returns the time focused
func Run(label string, theme domain.Theme, opts ...tea.ProgramOption) (time.Duration, error) {
	model := NewModel(NewTimer(), label, theme)
	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return 0, fmt.Errorf("focus timer: %w", err)
	}
	return final.(Model).Elapsed(), nil
}
