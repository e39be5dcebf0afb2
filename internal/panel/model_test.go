package panel

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/musher-dev/twsdash/internal/client"
)

type fakeBackend struct {
	timeCalls   atomic.Int32
	statusCalls atomic.Int32

	timeResult *client.TimeResult
	timeErr    error
	status     *client.ConnectionStatus
	statusErr  error
}

func (f *fakeBackend) BaseURL() string { return "http://localhost:8000" }

func (f *fakeBackend) CurrentTime(context.Context) (*client.TimeResult, error) {
	f.timeCalls.Add(1)
	return f.timeResult, f.timeErr
}

func (f *fakeBackend) ConnectionStatus(context.Context) (*client.ConnectionStatus, error) {
	f.statusCalls.Add(1)
	return f.status, f.statusErr
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// collect runs cmd, expanding batches, and returns the panel's own
// resolution and mount messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}

		return out
	case timeResolvedMsg, statusResolvedMsg, mountMsg:
		return []tea.Msg{msg}
	default:
		return nil
	}
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)

	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}

	return model, cmd
}

// settle feeds every message produced by cmd back into the model.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()

	for _, msg := range collect(cmd) {
		var next tea.Cmd

		m, next = step(t, m, msg)
		m = settle(t, m, next)
	}

	return m
}

func TestModel_MountProbesConnection(t *testing.T) {
	backend := &fakeBackend{status: &client.ConnectionStatus{Connected: true, ClientID: 1, Host: "127.0.0.1", Port: 7497}}
	m := New(context.Background(), backend, WithLocation(time.UTC))

	m = settle(t, m, m.Init())

	if got := backend.statusCalls.Load(); got != 1 {
		t.Fatalf("connection probes on mount = %d, want 1", got)
	}

	if got := backend.timeCalls.Load(); got != 0 {
		t.Fatalf("time probes on mount = %d, want 0", got)
	}

	st := m.State()
	if st.Connection.Loading || st.Connection.Result == nil || !st.Connection.Result.Connected {
		t.Fatalf("connection state = %+v", st.Connection)
	}
}

func TestModel_TimeKeyIgnoredWhileLoading(t *testing.T) {
	backend := &fakeBackend{timeResult: &client.TimeResult{Success: true, CurrentTime: "2024-01-15T10:30:00"}}
	m := New(context.Background(), backend)

	m, first := step(t, m, key("t"))
	if first == nil {
		t.Fatal("time key should issue a request")
	}

	m, second := step(t, m, key("enter"))
	if second != nil {
		t.Fatal("time key should be ignored while a time request is in flight")
	}

	m = settle(t, m, first)

	if got := backend.timeCalls.Load(); got != 1 {
		t.Fatalf("time probes = %d, want 1", got)
	}

	if m.State().ResultPanel() != ResultTimeSuccess {
		t.Fatalf("ResultPanel() = %v, want success", m.State().ResultPanel())
	}
}

func TestModel_RefreshWhileLoadingKeepsLatest(t *testing.T) {
	backend := &fakeBackend{status: &client.ConnectionStatus{Connected: false, Host: "127.0.0.1", Port: 7497}}
	m := New(context.Background(), backend)

	m, first := step(t, m, key("r"))
	firstMsgs := collect(first)

	backend.status = &client.ConnectionStatus{Connected: true, Host: "127.0.0.1", Port: 7497}

	m, second := step(t, m, key("r"))
	if second == nil {
		t.Fatal("refresh should be allowed while loading")
	}

	m = settle(t, m, second)

	// The first request resolves last and must be discarded.
	for _, msg := range firstMsgs {
		m, _ = step(t, m, msg)
	}

	st := m.State()
	if st.Connection.Result == nil || !st.Connection.Result.Connected {
		t.Fatalf("stale status overwrote fresh one: %+v", st.Connection.Result)
	}
}

func TestModel_ProbeFailuresLeavePanelUsable(t *testing.T) {
	netErr := &client.APIError{Category: client.CategoryNetwork, Message: client.NetworkErrorMessage}
	backend := &fakeBackend{timeErr: netErr, statusErr: netErr}
	m := New(context.Background(), backend)

	m = settle(t, m, m.Init())
	m, cmd := step(t, m, key("t"))
	m = settle(t, m, cmd)

	st := m.State()
	if st.Connection.Err == nil || st.Time.Err == nil {
		t.Fatalf("errors not recorded: %+v", st)
	}

	if !st.CanRequestTime() {
		t.Fatal("time control should be re-enabled after a failure")
	}

	if _, cmd := step(t, m, key("t")); cmd == nil {
		t.Fatal("panel should accept a new time request after a failure")
	}
}

func TestModel_Quit(t *testing.T) {
	for _, k := range []string{"q", "ctrl+c"} {
		m := New(context.Background(), &fakeBackend{})

		m, cmd := step(t, m, key(k))
		if cmd == nil {
			t.Fatalf("%s: expected quit command", k)
		}

		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%s: expected tea.QuitMsg", k)
		}

		if m.View() != "" {
			t.Fatalf("%s: View() after quit = %q, want empty", k, m.View())
		}
	}
}

func TestModel_ViewShowsControlsAndResult(t *testing.T) {
	version := 176
	backend := &fakeBackend{
		status: &client.ConnectionStatus{Connected: true, ClientID: 1, Host: "127.0.0.1", Port: 7497},
		timeResult: &client.TimeResult{
			Success:       true,
			CurrentTime:   "2024-01-15T10:30:00",
			ServerVersion: &version,
		},
	}

	m := New(context.Background(), backend, WithLocation(time.UTC), WithWidth(80))
	m = settle(t, m, m.Init())

	view := m.View()
	for _, want := range []string{TitleConnection, "Status:", "Connected", "127.0.0.1:7497", ControlIdle, "http://localhost:8000"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q\n%s", want, view)
		}
	}

	m, cmd := step(t, m, key("t"))
	if view := m.View(); !strings.Contains(view, ControlLoading) {
		t.Errorf("View() while loading missing %q\n%s", ControlLoading, view)
	}

	m = settle(t, m, cmd)

	view = m.View()
	for _, want := range []string{TitleTimeSuccess, "2024-01-15T10:30:00", "1/15/2024, 10:30:00 AM", "176"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q\n%s", want, view)
		}
	}
}

func TestModel_ViewNetworkErrorPanel(t *testing.T) {
	netErr := &client.APIError{Category: client.CategoryNetwork, Message: client.NetworkErrorMessage}
	backend := &fakeBackend{
		status:  &client.ConnectionStatus{Connected: true, ClientID: 1, Host: "127.0.0.1", Port: 7497},
		timeErr: netErr,
	}

	m := New(context.Background(), backend, WithLocation(time.UTC), WithWidth(80))
	m = settle(t, m, m.Init())

	m, cmd := step(t, m, key("t"))
	m = settle(t, m, cmd)

	if got := m.State().ResultPanel(); got != ResultClientError {
		t.Fatalf("ResultPanel() = %v, want client error", got)
	}

	view := m.View()

	_, panel, ok := strings.Cut(view, TitleClientError)
	if !ok {
		t.Fatalf("View() missing %q\n%s", TitleClientError, view)
	}

	if strings.Contains(panel, "Status:") {
		t.Errorf("network error panel shows a Status row\n%s", panel)
	}

	// Long values wrap inside the box; compare the words with borders dropped.
	var words []string
	for _, w := range strings.Fields(ansi.Strip(panel)) {
		if w != "│" {
			words = append(words, w)
		}
	}

	if text := strings.Join(words, " "); !strings.Contains(text, client.NetworkErrorMessage) {
		t.Errorf("network error panel does not show the full guidance message\n%s", panel)
	}

	for _, line := range strings.Split(view, "\n") {
		if w := lipgloss.Width(line); w > MaxWidth {
			t.Errorf("line %q is %d cells wide, want <= %d", line, w, MaxWidth)
		}
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := New(context.Background(), &fakeBackend{})

	m, _ = step(t, m, tea.WindowSizeMsg{Width: 20, Height: 10})

	for _, line := range strings.Split(m.View(), "\n") {
		if w := lipgloss.Width(line); w > minWidth {
			t.Fatalf("line %q is %d cells wide, want <= %d", line, w, minWidth)
		}
	}
}
