package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/harness"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/parser"
	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/stats"
)

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to refresh the elapsed clock.
type TickMsg time.Time

// EventMsg wraps a harness event.
type EventMsg struct {
	Event harness.Event
}

// =============================================================================
// Model
// =============================================================================

// Model represents the dashboard state.
type Model struct {
	// Configuration
	input string

	// Current trial
	index   int
	total   int
	label   string
	stats   parser.StatsLine
	running bool

	// Batch
	results   []stats.TestResult
	notices   []string
	err       error
	done      bool
	startTime time.Time

	// Display
	width    int
	height   int
	quitting bool
}

// New creates a dashboard model.
func New(input string) Model {
	return Model{
		input:     input,
		startTime: time.Now(),
		width:     80,
		height:    24,
	}
}

// NewProgram wraps the model in a Bubble Tea program on the alt screen.
func NewProgram(m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen())
}

// Forward returns a harness observer that feeds events into the program.
// Safe to call from the harness goroutine; Send is concurrency-safe.
func Forward(p *tea.Program) func(harness.Event) {
	return func(ev harness.Event) {
		p.Send(EventMsg{Event: ev})
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case EventMsg:
		return m.applyEvent(msg.Event), nil
	}

	return m, nil
}

func (m Model) applyEvent(ev harness.Event) Model {
	switch ev := ev.(type) {
	case harness.Notice:
		m.notices = append(m.notices, ev.Message)

	case harness.TestStarted:
		m.index = ev.Index
		m.total = ev.Total
		m.label = ev.Label
		m.stats = parser.StatsLine{}
		m.running = true

	case harness.TestProgress:
		m.stats = ev.Stats

	case harness.TestFinished:
		m.results = append(m.results, ev.Result)
		m.running = false

	case harness.BatchDone:
		m.err = ev.Err
		m.done = true
		m.running = false
	}
	return m
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 500ms.
func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Elapsed returns the time since the batch started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}
