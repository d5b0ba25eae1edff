package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pacerlabs/pacer/bridge"
	"github.com/pacerlabs/pacer/config"
	"github.com/pacerlabs/pacer/engine"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	runningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#90EE90"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFD700"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeLoadScript
	modeMonitor
	modeAddWatch
)

type logTab int

const (
	tabApp logTab = iota
	tabMonitor
)

type tuiModel struct {
	br     *bridge.Bridge
	events <-chan bridge.Event

	state    bridge.State
	flash    string
	appLines []string
	monLines []string

	mode     inputMode
	tab      logTab
	watches  table.Model
	logView  viewport.Model
	inputs   []textinput.Model
	focusIdx int
	width    int
	ready    bool

	initialScript string
}

type eventMsg struct{ ev bridge.Event }
type eventsClosedMsg struct{}

func newTUIModel(br *bridge.Bridge, events <-chan bridge.Event, script string) *tuiModel {
	columns := []table.Column{
		{Title: "Address", Width: 14},
		{Title: "Name", Width: 12},
		{Title: "Type", Width: 8},
		{Title: "Value", Width: 18},
		{Title: "Error", Width: 24},
	}
	w := table.New(
		table.WithColumns(columns),
		table.WithHeight(6),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color("#7D56F4"))
	w.SetStyles(styles)

	return &tuiModel{
		br:            br,
		events:        events,
		state:         br.State(),
		watches:       w,
		logView:       viewport.New(80, 10),
		initialScript: script,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitEvent}
	if m.initialScript != "" {
		script := m.initialScript
		cmds = append(cmds, func() tea.Msg {
			if err := m.br.RequestLoadScript(script); err != nil {
				return eventMsg{bridge.LogAppended{Entry: bridge.LogEntry{
					Source: bridge.SourceApp,
					Text:   fmt.Sprintf("load rejected: %v", err),
				}}}
			}
			return nil
		})
	}
	return tea.Batch(cmds...)
}

func (m *tuiModel) waitEvent() tea.Msg {
	ev, ok := <-m.events
	if !ok {
		return eventsClosedMsg{}
	}
	return eventMsg{ev}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.logView.Width = msg.Width - 2
		h := msg.Height - m.watches.Height() - 10
		if h < 3 {
			h = 3
		}
		m.logView.Height = h
		m.refreshLog()
		m.ready = true

	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)

	case eventMsg:
		m.apply(msg.ev)
		return m, m.waitEvent

	case eventsClosedMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.watches, cmd = m.watches.Update(msg)
	return m, cmd
}

func (m *tuiModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	switch msg.String() {
	case "ctrl+c", "q":
		m.br.Close()
		return m, tea.Quit

	case "l":
		m.prompt(modeLoadScript, prompts{{"script path: ", "boot.resc"}})

	case "s":
		m.request(m.br.RequestStart)

	case "p":
		m.request(m.br.RequestPause)

	case "r":
		m.request(m.br.RequestReset)

	case "a":
		m.prompt(modeAddWatch, prompts{
			{"address: ", "0x80001000"},
			{"name: ", "pc"},
			{"type: ", "uint32"},
		})

	case "d":
		if row := m.watches.SelectedRow(); row != nil {
			m.request(func() error { return m.br.RemoveWatch(row[1]) })
		}

	case "m", ":":
		m.prompt(modeMonitor, prompts{{"monitor> ", "help"}})

	case "tab":
		if m.tab == tabApp {
			m.tab = tabMonitor
		} else {
			m.tab = tabApp
		}
		m.refreshLog()

	default:
		var cmd tea.Cmd
		m.watches, cmd = m.watches.Update(msg)
		return m, cmd
	}
	return m, nil
}

type prompts [][2]string

func (m *tuiModel) prompt(mode inputMode, ps prompts) {
	m.mode = mode
	m.inputs = make([]textinput.Model, len(ps))
	for i, p := range ps {
		ti := textinput.New()
		ti.Prompt = p[0]
		ti.Placeholder = p[1]
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *tuiModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.inputs = nil
		return m, nil

	case "tab":
		if len(m.inputs) > 1 {
			m.inputs[m.focusIdx].Blur()
			m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
			m.inputs[m.focusIdx].Focus()
		}
		return m, nil

	case "enter":
		m.submitInput()
		return m, nil
	}

	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *tuiModel) submitInput() {
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = strings.TrimSpace(in.Value())
	}
	mode := m.mode
	m.mode = modeNormal
	m.inputs = nil

	switch mode {
	case modeLoadScript:
		m.request(func() error { return m.br.RequestLoadScript(values[0]) })

	case modeMonitor:
		m.request(func() error { return m.br.RequestMonitorCommand(values[0]) })
		m.tab = tabMonitor
		m.refreshLog()

	case modeAddWatch:
		m.request(func() error {
			typ, err := engine.ParseDataType(values[2])
			if err != nil {
				return err
			}
			return m.br.AddWatch(values[0], values[1], typ)
		})
	}
}

// request issues a non-blocking bridge call and surfaces its synchronous
// rejection, if any, in the status line.
func (m *tuiModel) request(fn func() error) {
	if err := fn(); err != nil {
		m.flash = err.Error()
	}
}

func (m *tuiModel) apply(ev bridge.Event) {
	switch ev := ev.(type) {
	case bridge.StateChanged:
		m.state = ev.New
		if ev.Err != nil {
			m.flash = ev.Err.Error()
		}

	case bridge.LogAppended:
		line := ev.Entry.Time.Format("15:04:05") + " " + ev.Entry.Text
		if ev.Entry.Source == bridge.SourceApp {
			m.appLines = append(m.appLines, line)
		} else {
			m.monLines = append(m.monLines, line)
		}
		m.refreshLog()

	case bridge.WatchUpdated, bridge.WatchesChanged:
		m.refreshWatches()
	}
}

func (m *tuiModel) refreshWatches() {
	snaps := m.br.Watches()
	rows := make([]table.Row, len(snaps))
	for i, w := range snaps {
		value := "n/a"
		if w.Value != nil {
			value = w.Value.String()
		}
		rows[i] = table.Row{
			fmt.Sprintf("0x%X", w.Address),
			w.Name,
			w.Type.String(),
			value,
			w.Err,
		}
	}
	m.watches.SetRows(rows)
}

func (m *tuiModel) refreshLog() {
	lines := m.appLines
	if m.tab == tabMonitor {
		lines = m.monLines
	}
	m.logView.SetContent(strings.Join(lines, "\n"))
	m.logView.GotoBottom()
}

func (m *tuiModel) statusLine() string {
	var styled string
	switch m.state {
	case bridge.StateRunning:
		styled = runningStyle.Render(m.state.String())
	case bridge.StatePaused, bridge.StateLoaded:
		styled = pausedStyle.Render(m.state.String())
	case bridge.StateError:
		styled = errorStyle.Render(m.state.String())
	default:
		styled = idleStyle.Render(m.state.String())
	}
	line := "Status: " + styled
	if m.flash != "" {
		line += "  " + errorStyle.Render(m.flash)
	}
	return line
}

func (m *tuiModel) View() string {
	if !m.ready {
		return "Starting..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Pacer"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	b.WriteString(m.watches.View())
	b.WriteString("\n\n")

	appTab := tabStyle.Render("App Logs")
	monTab := tabStyle.Render("Monitor")
	if m.tab == tabApp {
		appTab = activeTabStyle.Render("App Logs")
	} else {
		monTab = activeTabStyle.Render("Monitor")
	}
	b.WriteString(appTab + " " + monTab + "\n")
	b.WriteString(m.logView.View())
	b.WriteString("\n")

	if m.mode != modeNormal {
		for _, in := range m.inputs {
			b.WriteString(in.View())
			b.WriteString("  ")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter submit • tab next field • esc cancel"))
	} else {
		b.WriteString(helpStyle.Render(
			"l load • s start • p pause • r reset • a add watch • d delete watch • m monitor • tab logs • q quit"))
	}
	return b.String()
}

func runInteractive(cfg config.Config, script string) error {
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	br, err := bridge.New(eng,
		bridge.WithPollInterval(cfg.PollInterval),
		bridge.WithWorkers(cfg.Workers),
		bridge.WithCallTimeout(cfg.CallTimeout),
	)
	if err != nil {
		return err
	}
	events := br.Subscribe(256)

	p := tea.NewProgram(newTUIModel(br, events, script), tea.WithAltScreen())
	_, err = p.Run()
	br.Close()
	return err
}
