// Package ui renders build progress in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"demomark/internal/buildpipeline"
)

type pageState uint8

const (
	stateQueued pageState = iota
	stateCompiling
	stateGenerating
	stateWriting
	stateCached
	stateDone
	stateFailed
)

// label, color and share of the page's work each state stands for
var states = [...]struct {
	label  string
	color  lipgloss.Color
	weight float64
}{
	stateQueued:     {"queued", "7", 0},
	stateCompiling:  {"compiling", "6", 0.2},
	stateGenerating: {"generating", "6", 0.6},
	stateWriting:    {"writing", "6", 0.9},
	stateCached:     {"cached", "4", 0.8},
	stateDone:       {"done", "2", 1},
	stateFailed:     {"error", "1", 1},
}

func (s pageState) String() string { return states[s].label }

type pageRow struct {
	path  string
	state pageState
}

func (r pageRow) finished() bool { return r.state == stateDone || r.state == stateFailed }

type model struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []pageRow
	byPath  map[string]int
	width   int
	failed  bool
	done    bool
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows one line per page
// and an overall bar. It quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &model{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]pageRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.rows[i] = pageRow{path: f}
		m.byPath[f] = i
	}
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		next, cmd := m.bar.Update(msg)
		m.bar = next.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *model) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// applyEvent moves a page to the state the event describes. A failed page
// stays failed; events for unknown pages are dropped.
func (m *model) applyEvent(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == buildpipeline.StatusError {
			m.failed = true
		}
		return nil
	}
	idx, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	next, ok := stateFor(ev)
	if !ok || m.rows[idx].state == stateFailed {
		return nil
	}
	m.rows[idx].state = next
	return m.bar.SetPercent(m.fraction())
}

func stateFor(ev buildpipeline.Event) (pageState, bool) {
	switch ev.Status {
	case buildpipeline.StatusQueued:
		return stateQueued, true
	case buildpipeline.StatusCached:
		return stateCached, true
	case buildpipeline.StatusError:
		return stateFailed, true
	case buildpipeline.StatusDone:
		// страница готова только после записи
		if ev.Stage == buildpipeline.StageWrite {
			return stateDone, true
		}
	case buildpipeline.StatusWorking:
		switch ev.Stage {
		case buildpipeline.StageCompile:
			return stateCompiling, true
		case buildpipeline.StageGenerate:
			return stateGenerating, true
		case buildpipeline.StageWrite:
			return stateWriting, true
		}
	}
	return 0, false
}

func (m *model) fraction() float64 {
	if len(m.rows) == 0 {
		return 1
	}
	var sum float64
	for _, r := range m.rows {
		sum += states[r.state].weight
	}
	return sum / float64(len(m.rows))
}

func (m *model) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	finished := 0
	for _, r := range m.rows {
		if r.finished() {
			finished++
		}
	}
	header := fmt.Sprintf("%s [%d/%d]", m.title, finished, len(m.rows))
	switch {
	case m.done && m.failed:
		header = "failed: " + header
	case m.done:
		header = "done: " + header
	default:
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(header))
	b.WriteString("\n\n")
	nameWidth := max(m.width-16, 20)
	for _, r := range m.rows {
		st := lipgloss.NewStyle().Foreground(states[r.state].color)
		fmt.Fprintf(&b, "  %s %s\n", st.Render(fmt.Sprintf("%12s", r.state)), truncate(r.path, nameWidth))
	}
	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

// truncate shortens value to width terminal cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
