package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pixeldrift/pixeldrift/pkg/regress"
)

// TUI styles
var (
	tuiStemStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	tuiCountStyle = lipgloss.NewStyle().Foreground(colorGray)
	tuiBarStyle   = lipgloss.NewStyle().Foreground(colorCyan)
	tuiBarBgStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// spinnerFrames are shared with the plain-terminal spinner.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// =============================================================================
// Messages
// =============================================================================

type entryMsg struct {
	index int
	total int
	stem  string
}

type statusMsg struct {
	index  int
	stem   string
	status regress.Status
	ae     int
}

type doneMsg struct{}

type tickMsg time.Time

// =============================================================================
// RunModel - Live progress for a regression run
// =============================================================================

// RunModel is the bubbletea model showing live progress of a run.
type RunModel struct {
	Total   int
	Index   int
	Stem    string
	Counts  map[regress.Status]int
	LastAE  int
	frame   int
	width   int
	done    bool
	aborted bool
}

// NewRunModel creates a progress model for a run over total entries.
func NewRunModel() RunModel {
	return RunModel{Counts: make(map[regress.Status]int), width: 80}
}

func (m RunModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m RunModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case tickMsg:
		m.frame++
		return m, tick()
	case entryMsg:
		m.Index = msg.index
		m.Total = msg.total
		m.Stem = msg.stem
	case statusMsg:
		m.Counts[msg.status]++
		m.LastAE = msg.ae
	case doneMsg:
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m RunModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder

	b.WriteString(StyleTitle.Render("pixeldrift"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n\n")

	frame := spinnerFrames[m.frame%len(spinnerFrames)]
	b.WriteString(styleIconSpinner.Render(frame))
	b.WriteString(" ")
	b.WriteString(tuiStemStyle.Render(m.Stem))
	b.WriteString("\n\n")

	b.WriteString(m.progressBar())
	b.WriteString("\n\n")

	tally := []string{
		StyleSuccess.Render(fmt.Sprintf("%d accepted", m.Counts[regress.StatusAccepted])),
		tuiCountStyle.Render(fmt.Sprintf("%d unchanged", m.Counts[regress.StatusSkippedUnchanged])),
	}
	if n := m.Counts[regress.StatusSkippedAllowedCrash]; n > 0 {
		tally = append(tally, tuiCountStyle.Render(fmt.Sprintf("%d expected crashes", n)))
	}
	if n := m.Counts[regress.StatusRegressed]; n > 0 {
		tally = append(tally, StyleError.Render(fmt.Sprintf("%d regressed", n)))
	}
	if n := m.Counts[regress.StatusRenderFailed]; n > 0 {
		tally = append(tally, StyleError.Render(fmt.Sprintf("%d render failures", n)))
	}
	b.WriteString("  " + strings.Join(tally, StyleDim.Render(" · ")))
	b.WriteString("\n")

	return b.String()
}

// progressBar renders the position within the corpus as a fixed-width bar.
func (m RunModel) progressBar() string {
	barWidth := m.width - 16
	if barWidth > 60 {
		barWidth = 60
	}
	if barWidth < 10 {
		barWidth = 10
	}

	filled := 0
	if m.Total > 0 {
		filled = (m.Index + 1) * barWidth / m.Total
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := tuiBarStyle.Render(strings.Repeat("█", filled)) +
		tuiBarBgStyle.Render(strings.Repeat("░", barWidth-filled))
	return fmt.Sprintf("  %s %s", bar, tuiCountStyle.Render(fmt.Sprintf("[%d/%d]", m.Index+1, m.Total)))
}

// =============================================================================
// Event bridge
// =============================================================================

// teaEvents forwards engine events into a running bubbletea program.
type teaEvents struct {
	program *tea.Program
}

func (e *teaEvents) OnEntry(index, total int, stem string) {
	e.program.Send(entryMsg{index: index, total: total, stem: stem})
}

func (e *teaEvents) OnStatus(index int, stem string, status regress.Status, ae int) {
	e.program.Send(statusMsg{index: index, stem: stem, status: status, ae: ae})
}

func (e *teaEvents) OnDone(result *regress.Result) {
	e.program.Send(doneMsg{})
}

// runWithTUI executes the runner behind a full-screen progress display.
// The engine runs in its own goroutine; its events drive the model. Quitting
// the display cancels the run, which leaves durable state untouched.
func runWithTUI(ctx context.Context, runner *regress.Runner) (*regress.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewRunModel(), tea.WithContext(ctx))
	runner.Events = &teaEvents{program: program}

	var (
		result *regress.Result
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, runErr = runner.Run(ctx)
		program.Send(doneMsg{})
	}()

	final, err := program.Run()
	if m, ok := final.(RunModel); ok && m.aborted {
		cancel()
	}
	<-done

	if err != nil && runErr == nil && ctx.Err() == nil {
		return result, err
	}
	return result, runErr
}
