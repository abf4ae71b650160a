package monitor

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/pulse/activity"
	"github.com/grovetools/pulse/internal/daemon/store"
	"github.com/grovetools/pulse/internal/poller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, m Model, st *store.Store, ch chan store.Update, e poller.Event) Model {
	t.Helper()
	st.Observe(e)
	u := <-ch
	next, cmd := m.Update(updateMsg(u))
	require.NotNil(t, cmd, "model keeps listening for updates")
	return next.(Model)
}

func TestMonitorRendersActivity(t *testing.T) {
	st := store.New()
	ch := st.Subscribe()
	m := New(st, ch, "https://collector.example/api")

	state := activity.State{Workspace: "proj", FileName: "/src/proj/main.go", Language: "go", Row: 9, Col: 2}
	m = feed(t, m, st, ch, poller.Event{Outcome: poller.Reporting, State: state, Time: time.Now()})
	assert.True(t, m.inFlight)

	m = feed(t, m, st, ch, poller.Event{Outcome: poller.Sent, State: state, Repository: "https://github.com/acme/proj", Time: time.Now()})
	assert.False(t, m.inFlight)

	m = feed(t, m, st, ch, poller.Event{Outcome: poller.Unchanged, State: state})
	assert.Len(t, m.events, 2, "unchanged ticks are counted but not listed")

	view := m.View()
	assert.Contains(t, view, "proj")
	assert.Contains(t, view, "main.go")
	assert.Contains(t, view, "10:3")
	assert.Contains(t, view, "https://github.com/acme/proj")
	assert.Contains(t, view, "sent=1")
}

func TestMonitorShowsErrors(t *testing.T) {
	st := store.New()
	ch := st.Subscribe()
	m := New(st, ch, "https://collector.example/api")

	m = feed(t, m, st, ch, poller.Event{Outcome: poller.Failed, Err: fmt.Errorf("status 500"), Time: time.Now()})
	assert.Contains(t, m.View(), "status 500")
}

func TestMonitorEventListIsBounded(t *testing.T) {
	st := store.New()
	ch := st.Subscribe()
	m := New(st, ch, "")
	for i := 0; i < maxEvents+5; i++ {
		m = feed(t, m, st, ch, poller.Event{Outcome: poller.Ignored, State: activity.State{FileName: fmt.Sprintf("/p/%d.env", i)}})
	}
	assert.Len(t, m.events, maxEvents)
	assert.Equal(t, "/p/16.env", m.events[len(m.events)-1].State.FileName)
}

func TestMonitorKeys(t *testing.T) {
	st := store.New()
	m := New(st, st.Subscribe(), "")
	m.events = []poller.Event{{Outcome: poller.Sent}}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	m = next.(Model)
	assert.Empty(t, m.events)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	m = next.(Model)
	assert.True(t, m.help.ShowAll)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = next.(Model)
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestMonitorStopsWhenUpdatesClose(t *testing.T) {
	st := store.New()
	ch := st.Subscribe()
	m := New(st, ch, "")

	st.Unsubscribe(ch)
	msg := m.waitForUpdate()()
	_, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
