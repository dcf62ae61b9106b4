package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"limbo/config"
	"limbo/dictation"
)

// TUI message types
type StateMsg dictation.StateEvent
type ChunkMsg dictation.ChunkEvent
type InjectionFailedMsg struct{ Err error }
type TranscriptMsg struct{ Text string } // final text of a finished session
type tickMsg time.Time

type tuiModel struct {
	recording     bool
	status        string
	started       time.Time
	elapsed       time.Duration
	modeLine      string
	deviceLine    string
	hotkey        string
	chunks        []string // text of the running streaming session
	lastText      string
	lastError     string
	sessions      int
	width, height int
}

var (
	tuiProgram *tea.Program
	tuiMu      sync.Mutex

	// events are forwarded by a single goroutine so they reach the model in
	// the order the orchestrator emitted them
	tuiQueue = make(chan tea.Msg, 256)
)

var (
	recStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	boldHelp     = helpStyle.Bold(true)
	textStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	liveStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func NewTUIProgram(cfg config.Config, deviceLine string) *tea.Program {
	m := tuiModel{
		status:     dictation.StatusIdle,
		modeLine:   modeLineText(cfg),
		deviceLine: deviceLine,
		hotkey:     cfg.Hotkey,
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		for msg := range tuiQueue {
			p.Send(msg)
		}
	}()
	return p
}

func tuiSend(msg tea.Msg) {
	tuiMu.Lock()
	running := tuiProgram != nil
	tuiMu.Unlock()
	if running {
		tuiQueue <- msg
	}
}

// tuiEvents forwards orchestrator events into the running program.
type tuiEvents struct{}

func (tuiEvents) RecordingState(ev dictation.StateEvent)   { tuiSend(StateMsg(ev)) }
func (tuiEvents) ChunkTranscribed(ev dictation.ChunkEvent) { tuiSend(ChunkMsg(ev)) }
func (tuiEvents) InjectionFailed(err error)                { tuiSend(InjectionFailedMsg{Err: err}) }

func tuiTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m tuiModel) Init() tea.Cmd {
	return tuiTick()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}

	case tickMsg:
		if m.recording {
			m.elapsed = time.Since(m.started)
		}
		return m, tuiTick()

	case StateMsg:
		m.status = msg.Status
		if msg.IsRecording && !m.recording {
			m.started = time.Now()
			m.elapsed = 0
			m.chunks = nil
			m.lastError = ""
		}
		m.recording = msg.IsRecording
		switch {
		case msg.Status == dictation.StatusComplete:
			m.sessions++
			if len(m.chunks) > 0 {
				m.lastText = strings.Join(m.chunks, " ")
			}
		case strings.HasPrefix(msg.Status, "Error: "):
			m.lastError = strings.TrimPrefix(msg.Status, "Error: ")
		}

	case ChunkMsg:
		m.chunks = append(m.chunks, msg.Text)

	case TranscriptMsg:
		m.lastText = msg.Text

	case InjectionFailedMsg:
		m.lastError = msg.Err.Error()
	}
	return m, nil
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	wrapWidth := max(m.width-4, 10)

	var b strings.Builder
	if m.recording {
		b.WriteString(recStyle.Render(fmt.Sprintf("● %s %.1fs", m.status, m.elapsed.Seconds())))
	} else {
		b.WriteString(idleStyle.Render("○ " + m.status))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.modeLine) + "\n")
	b.WriteString(idleStyle.Render(m.deviceLine) + "\n\n")

	if m.recording && len(m.chunks) > 0 {
		for _, line := range wrapText(strings.Join(m.chunks, " "), wrapWidth) {
			b.WriteString(liveStyle.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	if m.lastText != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Last transcription (#%d)", m.sessions)) + "\n")
		for _, line := range wrapText(m.lastText, wrapWidth) {
			b.WriteString(textStyle.Render(line) + "\n")
		}
		if m.lastError == "" && !m.recording {
			b.WriteString(successStyle.Render("[✓ delivered]") + "\n")
		}
	} else if !m.recording {
		b.WriteString(idleStyle.Render("No transcriptions yet") + "\n")
	}

	if m.lastError != "" {
		b.WriteString("\n")
		for _, line := range wrapText(m.lastError, wrapWidth) {
			b.WriteString(errorStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(boldHelp.Render(m.hotkey) + helpStyle.Render(" to record, q to quit") + "\n")
	b.WriteString(helpStyle.Render("limbo " + version))

	return lipgloss.NewStyle().Width(m.width).Height(m.height).PaddingLeft(1).Render(b.String())
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for len(text) > width {
		// break at the last space that fits
		splitAt := width
		for i := width; i > 0; i-- {
			if text[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, text[:splitAt])
		text = strings.TrimLeft(text[splitAt:], " ")
	}
	if len(text) > 0 {
		lines = append(lines, text)
	}
	return lines
}
