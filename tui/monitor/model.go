// Package monitor renders a live view of the reporter's activity.
package monitor

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/pulse/internal/daemon/store"
	"github.com/grovetools/pulse/internal/poller"
)

// maxEvents bounds the event list.
const maxEvents = 12

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(12)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	outcomeStyle = map[poller.Outcome]lipgloss.Style{
		poller.Sent:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		poller.Failed:    errorStyle,
		poller.Ignored:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		poller.Reporting: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
)

// updateMsg carries a store update into the model.
type updateMsg store.Update

// closedMsg reports that the update channel was closed.
type closedMsg struct{}

// Model is the monitor's bubbletea model.
type Model struct {
	store   *store.Store
	updates <-chan store.Update
	target  string

	keys     KeyMap
	help     help.Model
	spinner  spinner.Model
	events   []poller.Event
	status   store.Status
	inFlight bool
	width    int
	quitting bool
}

// New creates a monitor fed by updates from st.
func New(st *store.Store, updates <-chan store.Update, target string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	return Model{
		store:   st,
		updates: updates,
		target:  target,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		status:  st.Get(),
	}
}

func (m Model) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.updates
		if !ok {
			return closedMsg{}
		}
		return updateMsg(u)
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForUpdate())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.events = nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case updateMsg:
		m.status = m.store.Get()
		if msg.Type == store.UpdateEvent {
			m.record(msg.Event)
		}
		return m, m.waitForUpdate()

	case closedMsg:
		m.quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) record(e poller.Event) {
	switch e.Outcome {
	case poller.Reporting:
		m.inFlight = true
	case poller.Sent, poller.Failed:
		m.inFlight = false
	case poller.Unchanged, poller.Skipped:
		// Too frequent to list.
		return
	}
	m.events = append(m.events, e)
	if len(m.events) > maxEvents {
		m.events = m.events[len(m.events)-maxEvents:]
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	header := titleStyle.Render("pulse")
	if m.inFlight {
		header += " " + m.spinner.View() + mutedStyle.Render(" reporting")
	}
	b.WriteString(header + "\n\n")

	last := m.status.LastReported
	row := func(label, value string) {
		if value == "" {
			value = mutedStyle.Render("-")
		} else {
			value = valueStyle.Render(value)
		}
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("target", m.target)
	row("workspace", last.Workspace)
	row("file", last.FileName)
	row("language", last.Language)
	if last.FileName != "" {
		row("cursor", fmt.Sprintf("%d:%d", last.Row+1, last.Col+1))
	} else {
		row("cursor", "")
	}
	row("repository", m.status.Repository)
	row("counts", formatCounts(m.status.Counts))
	if m.status.LastError != "" {
		b.WriteString(labelStyle.Render("last error") + errorStyle.Render(m.status.LastError) + "\n")
	}

	b.WriteString("\n")
	if len(m.events) == 0 {
		b.WriteString(mutedStyle.Render("waiting for activity...") + "\n")
	}
	for i := len(m.events) - 1; i >= 0; i-- {
		b.WriteString(formatEvent(m.events[i]) + "\n")
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}

func formatEvent(e poller.Event) string {
	style, ok := outcomeStyle[e.Outcome]
	if !ok {
		style = mutedStyle
	}
	line := fmt.Sprintf("%s %-9s %s",
		mutedStyle.Render(e.Time.Format(time.TimeOnly)),
		style.Render(e.Outcome.String()),
		filepath.Base(e.State.FileName))
	if e.Err != nil {
		line += " " + errorStyle.Render(e.Err.Error())
	}
	return line
}
