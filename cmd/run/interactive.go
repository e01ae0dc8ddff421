package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/script-bridge/scene"
	"github.com/wippyai/script-bridge/scene/imui"
)

const consoleLines = 8

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	scriptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#666666")).
			Padding(0, 1)
)

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Pause key.Binding
	Step  key.Binding
	Click key.Binding
	Edit  key.Binding
	Reset key.Binding
	Help  key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Click, k.Edit, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Click, k.Edit},
		{k.Pause, k.Step, k.Reset},
		{k.Help, k.Quit},
	}
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "previous entity")),
	Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next entity")),
	Pause: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
	Step:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "step one frame")),
	Click: key.NewBinding(key.WithKeys("c", "enter"), key.WithHelp("c/enter", "click button")),
	Edit:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit button text")),
	Reset: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart scripts")),
	Help:  key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type interactiveModel struct {
	ctx      context.Context
	err      error
	app      *app
	log      *zap.Logger
	path     string
	help     help.Model
	input    textinput.Model
	dt       float32
	selected int
	editing  bool
	paused   bool
}

type loadedMsg struct {
	err error
	app *app
}

type tickMsg time.Time

func newInteractiveModel(ctx context.Context, path string, dt float32, log *zap.Logger) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "button text: "
	ti.Width = 40
	return &interactiveModel{
		ctx:   ctx,
		path:  path,
		dt:    dt,
		log:   log,
		help:  help.New(),
		input: ti,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	a, err := newApp(m.ctx, m.path, m.log)
	if err != nil {
		return loadedMsg{err: err}
	}
	a.start(m.ctx)
	return loadedMsg{app: a}
}

func (m *interactiveModel) tick() tea.Cmd {
	return tea.Tick(time.Duration(float64(m.dt)*float64(time.Second)), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.app = msg.app
		return m, m.tick()

	case tickMsg:
		if m.app == nil {
			return m, nil
		}
		if !m.paused {
			m.app.system.Tick(m.ctx, m.dt)
		}
		return m, m.tick()

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *interactiveModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		if m.app != nil {
			_ = m.app.close(context.Background())
		}
		return m, tea.Quit

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	if m.app == nil {
		return m, nil
	}
	entities := m.app.scene.Entities()

	switch {
	case key.Matches(msg, keys.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, keys.Down):
		if m.selected < len(entities)-1 {
			m.selected++
		}

	case key.Matches(msg, keys.Pause):
		m.paused = !m.paused

	case key.Matches(msg, keys.Step):
		m.paused = true
		m.app.system.Tick(m.ctx, m.dt)

	case key.Matches(msg, keys.Click):
		if e := m.current(entities); e != nil {
			m.app.scene.Click(e.ID)
		}

	case key.Matches(msg, keys.Edit):
		if e := m.current(entities); e != nil && e.Button != nil {
			m.editing = true
			m.input.SetValue(e.Button.Text)
			m.input.Focus()
			return m, textinput.Blink
		}

	case key.Matches(msg, keys.Reset):
		m.app.system.Stop()
		m.app.scene.Console().Clear()
		m.app.start(m.ctx)
	}
	return m, nil
}

func (m *interactiveModel) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if e := m.current(m.app.scene.Entities()); e != nil && e.Button != nil {
			e.Button.Text = m.input.Value()
		}
		fallthrough
	case "esc":
		m.editing = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) current(entities []*scene.Entity) *scene.Entity {
	if m.selected < 0 || m.selected >= len(entities) {
		return nil
	}
	return entities[m.selected]
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.app == nil {
		return "Loading scene..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Script Runner"))
	fmt.Fprintf(&b, " %s  frame %d", m.path, m.app.system.Ticks())
	if m.paused {
		b.WriteString(warnStyle.Render("  paused"))
	}
	b.WriteString("\n\n")

	left := panelStyle.Render(m.entityList())
	right := panelStyle.Render(m.consoleView())
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")

	if frame := m.app.scene.UI().Frame(); len(frame) > 0 {
		b.WriteString(imui.Render(frame))
		b.WriteString("\n")
	}

	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(keys))
	return b.String()
}

func (m *interactiveModel) entityList() string {
	var lines []string
	for i, e := range m.app.scene.Entities() {
		line := describe(e)
		if e.Script != nil && e.Script.Initialized {
			line = scriptStyle.Render("● ") + line
		} else {
			line = "  " + line
		}
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return "no entities"
	}
	return strings.Join(lines, "\n")
}

func (m *interactiveModel) consoleView() string {
	entries := m.app.scene.Console().Tail(consoleLines)
	if len(entries) == 0 {
		return infoStyle.Render("console is empty")
	}
	lines := make([]string, len(entries))
	for i, e := range entries {
		style := infoStyle
		switch {
		case e.Level >= zapcore.ErrorLevel:
			style = errorStyle
		case e.Level == zapcore.WarnLevel:
			style = warnStyle
		}
		lines[i] = style.Render(e.Message)
	}
	return strings.Join(lines, "\n")
}

func runInteractive(ctx context.Context, path string, dt float32, log *zap.Logger) error {
	p := tea.NewProgram(newInteractiveModel(ctx, path, dt, log), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
