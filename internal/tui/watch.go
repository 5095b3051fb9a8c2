package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/multical/internal/meter"
)

// Messages for async operations
type pollStartMsg struct{}
type pollTickMsg struct{}
type pollCompleteMsg struct {
	results map[uint16]ReadResult
	at      time.Time
}

// ReadResult holds the outcome of one register read, either the decoded
// reading or the error that prevented it.
type ReadResult struct {
	Reading meter.Reading
	Err     error
}

// RegisterReader reads a single meter register. *meter.Reader satisfies it.
type RegisterReader interface {
	ReadVariable(register uint16) (meter.Reading, error)
}

// watchKeyMap defines key bindings for the watch screen
type watchKeyMap struct {
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k watchKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k watchKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Refresh, k.Quit},
	}
}

// WatchModel represents the live meter watch screen state
type WatchModel struct {
	reader    RegisterReader
	device    string
	registers []uint16
	interval  time.Duration

	// Poll state
	Results  map[uint16]ReadResult
	Polling  bool
	LastPoll time.Time
	Cycles   int

	// UI state
	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    watchKeyMap
}

// NewWatchModel creates a new watch screen model for the given reader.
// The registers slice determines the row order of the readings table.
func NewWatchModel(reader RegisterReader, device string, registers []uint16, interval time.Duration) WatchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	h := help.New()

	keys := watchKeyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh now"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc"),
			key.WithHelp("q", "quit"),
		),
	}

	return WatchModel{
		reader:    reader,
		device:    device,
		registers: registers,
		interval:  interval,
		Results:   make(map[uint16]ReadResult),
		Spinner:   s,
		Help:      h,
		Keys:      keys,
	}
}

// Init starts the first poll cycle immediately
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return pollStartMsg{} },
		m.poll(),
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit

		case "r":
			if !m.Polling {
				return m, tea.Batch(
					func() tea.Msg { return pollStartMsg{} },
					m.poll(),
					m.Spinner.Tick,
				)
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case pollStartMsg:
		m.Polling = true

	case pollCompleteMsg:
		m.Polling = false
		m.Cycles++
		m.LastPoll = msg.at
		for register, result := range msg.results {
			m.Results[register] = result
		}
		// Schedule the next cycle
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg {
			return pollTickMsg{}
		})

	case pollTickMsg:
		if !m.Polling {
			return m, tea.Batch(
				func() tea.Msg { return pollStartMsg{} },
				m.poll(),
				m.Spinner.Tick,
			)
		}

	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	return m, cmd
}

// poll is a command that reads every watched register in sequence.
// The serial exchange blocks, so it runs inside the command goroutine.
func (m WatchModel) poll() tea.Cmd {
	reader := m.reader
	registers := m.registers

	return func() tea.Msg {
		results := make(map[uint16]ReadResult, len(registers))
		for _, register := range registers {
			reading, err := reader.ReadVariable(register)
			results[register] = ReadResult{Reading: reading, Err: err}
		}
		return pollCompleteMsg{results: results, at: time.Now()}
	}
}

// View renders the watch screen
func (m WatchModel) View() string {
	width := m.Width
	if width == 0 {
		width = GetTerminalWidth()
	}
	height := m.Height
	if height == 0 {
		height = 24
	}

	var b strings.Builder

	// Title with spinner while a cycle is in flight
	if m.Polling {
		b.WriteString(TitleStyle.Render(fmt.Sprintf("%s READING METER", m.Spinner.View())))
	} else {
		b.WriteString(TitleStyle.Render("METER READINGS"))
	}
	b.WriteString("\n")

	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s • refresh every %s", m.device, m.interval)))
	b.WriteString("\n\n")

	b.WriteString(m.renderReadings())
	b.WriteString("\n")

	if !m.LastPoll.IsZero() {
		b.WriteString(StatusBarStyle.Render(fmt.Sprintf("Last update %s • cycle %d", m.LastPoll.Format("15:04:05"), m.Cycles)))
		b.WriteString("\n")
	}

	helpText := m.Help.View(m.Keys)

	return RenderApplicationContainer(b.String(), helpText, width, height)
}

// renderReadings renders the register table, one row per watched register
func (m WatchModel) renderReadings() string {
	var b strings.Builder

	b.WriteString("  ")
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-8s %-25s %12s %-6s %s", "REGISTER", "NAME", "VALUE", "UNIT", "AGE")))
	b.WriteString("\n")

	for _, register := range m.registers {
		name, ok := meter.RegisterName(register)
		if !ok {
			name = "(unknown)"
		}

		b.WriteString(fmt.Sprintf("  %-8s %-25s ", fmt.Sprintf("0x%04X", register), name))

		result, polled := m.Results[register]
		switch {
		case !polled:
			b.WriteString(SubtitleStyle.Render("waiting…"))

		case result.Err != nil:
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("read failed: %s", meter.Reason(result.Err))))

		default:
			reading := result.Reading
			b.WriteString(ValueStyle.Render(fmt.Sprintf("%12s", formatValue(reading.Value))))
			b.WriteString(" ")
			b.WriteString(UnitStyle.Render(fmt.Sprintf("%-6s", reading.Unit)))
			b.WriteString(" ")

			age := time.Since(reading.At).Round(time.Second)
			if age > 2*m.interval {
				// A value older than two cycles means recent reads failed
				b.WriteString(StaleStyle.Render(age.String()))
			} else {
				b.WriteString(StatusBarStyle.Render(age.String()))
			}
		}

		b.WriteString("\n")
	}

	return b.String()
}

// formatValue renders a reading value without trailing zero noise
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
