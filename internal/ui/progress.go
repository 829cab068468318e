package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tracereplay/internal/replay"
)

type progressModel struct {
	title   string
	events  <-chan replay.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool

	cancel     context.CancelFunc
	cancelling bool
}

type fileItem struct {
	path   string
	status replay.Status
	done   int
	total  int
	stats  replay.Stats
}

type eventMsg replay.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders replay progress
// for files, fed from events until the channel is closed. ctrl+c or q calls
// cancel and the view stays up until the replay stops; a second ctrl+c quits
// at once.
func NewProgressModel(title string, files []string, events <-chan replay.Event, cancel context.CancelFunc) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76 // Default width

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: replay.StatusQueued})
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
		cancel:  cancel,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(replay.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.cancelling && msg.Type == tea.KeyCtrlC {
				return m, tea.Quit
			}
			if !m.cancelling {
				m.cancelling = true
				if m.cancel != nil {
					m.cancel()
				}
			}
		}
		return m, nil
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
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	switch {
	case m.done && m.cancelling:
		header = fmt.Sprintf("cancelled: %s", header)
	case m.done:
		header = fmt.Sprintf("done: %s", header)
	case m.cancelling:
		header = fmt.Sprintf("%s %s (cancelling after the current group)", m.spinner.View(), header)
	default:
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	countWidth := 24
	nameWidth := m.width - statusWidth - countWidth - 6
	if nameWidth < 20 {
		nameWidth = 20
	}

	for _, item := range m.items {
		name := truncate(item.path, nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		line := fmt.Sprintf("  %s %s  %s", statusStyled, padRight(name, nameWidth), counts(item))
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func counts(item fileItem) string {
	if item.total == 0 {
		return ""
	}
	s := fmt.Sprintf("%d/%d", item.done, item.total)
	if item.stats.Failed > 0 || item.stats.Skipped > 0 {
		s += fmt.Sprintf(" (%d failed, %d skipped)", item.stats.Failed, item.stats.Skipped)
	}
	return s
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev replay.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	item.status = ev.Status
	if ev.Total > 0 {
		item.total = ev.Total
	}
	item.done = ev.Done
	item.stats = ev.Stats
	return m.prog.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0.0
	for _, item := range m.items {
		total += itemProgress(item)
	}
	return total / float64(len(m.items))
}

// itemProgress weighs loading as a tenth of a file.
func itemProgress(item fileItem) float64 {
	switch item.status {
	case replay.StatusDone, replay.StatusError:
		return 1.0
	case replay.StatusLoading:
		return 0.05
	case replay.StatusPlaying:
		if item.total == 0 {
			return 0.1
		}
		return 0.1 + 0.9*float64(item.done)/float64(item.total)
	default:
		return 0.0
	}
}

func styleStatus(status replay.Status) lipgloss.Style {
	switch status {
	case replay.StatusDone:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case replay.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case replay.StatusLoading, replay.StatusPlaying:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func padRight(value string, width int) string {
	if w := runewidth.StringWidth(value); w < width {
		return value + strings.Repeat(" ", width-w)
	}
	return value
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
