package panel

import (
	"context"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/musher-dev/twsdash/internal/client"
	"github.com/musher-dev/twsdash/internal/observability"
)

// Backend is the subset of the API client the panel needs.
type Backend interface {
	BaseURL() string
	CurrentTime(ctx context.Context) (*client.TimeResult, error)
	ConnectionStatus(ctx context.Context) (*client.ConnectionStatus, error)
}

// Messages.
type mountMsg struct{}

type timeResolvedMsg struct {
	seq    uint64
	result *client.TimeResult
	err    error
}

type statusResolvedMsg struct {
	seq    uint64
	status *client.ConnectionStatus
	err    error
}

// Model is the Bubble Tea model of the status panel.
type Model struct {
	ctx      context.Context
	backend  Backend
	loc      *time.Location
	state    State
	spinner  spinner.Model
	spinning bool
	width    int
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithLocation sets the zone used for localized timestamps.
func WithLocation(loc *time.Location) Option {
	return func(m *Model) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// WithWidth sets the initial render width, before any resize event.
func WithWidth(width int) Option {
	return func(m *Model) {
		if width > 0 {
			m.width = width
		}
	}
}

// New creates a panel bound to backend. ctx carries the logger and tracing
// parent for every probe the panel issues.
func New(ctx context.Context, backend Backend, opts ...Option) Model {
	if ctx == nil {
		ctx = context.Background()
	}

	m := Model{
		ctx:     ctx,
		backend: backend,
		loc:     time.Local,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		width:   MaxWidth,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
}

// State returns the panel state for inspection.
func (m Model) State() State {
	return m.state
}

func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return mountMsg{} }
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "t", "enter":
			if !m.state.CanRequestTime() {
				return m, nil
			}

			return m, m.requestTime()
		case "r":
			return m, m.refreshStatus()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case mountMsg:
		return m, m.refreshStatus()

	case timeResolvedMsg:
		if !m.state.Time.Resolve(msg.seq, msg.result, msg.err) {
			m.logger().Debug("discarding superseded time result",
				slog.Uint64("seq", msg.seq), slog.Uint64("latest", m.state.Time.Seq()))
		}

		return m, nil

	case statusResolvedMsg:
		if !m.state.Connection.Resolve(msg.seq, msg.status, msg.err) {
			m.logger().Debug("discarding superseded connection status",
				slog.Uint64("seq", msg.seq), slog.Uint64("latest", m.state.Connection.Seq()))
		}

		return m, nil

	case spinner.TickMsg:
		if !m.loading() {
			m.spinning = false
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	return render(&m.state, m.view())
}

func (m *Model) view() viewOptions {
	return viewOptions{
		width:   m.width,
		loc:     m.loc,
		baseURL: m.backend.BaseURL(),
		spinner: m.spinner.View(),
	}
}

func (m *Model) loading() bool {
	return m.state.Time.Loading || m.state.Connection.Loading
}

// startSpinner returns a tick command unless the spinner is already running.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}

	m.spinning = true

	return m.spinner.Tick
}

func (m *Model) requestTime() tea.Cmd {
	seq := m.state.Time.Begin()
	ctx, backend := m.ctx, m.backend

	fetch := func() tea.Msg {
		ctx, span := observability.Tracer("twsdash/panel").Start(ctx, "panel.current_time")
		defer span.End()

		span.SetAttributes(attribute.Int64("panel.seq", int64(seq)))

		result, err := backend.CurrentTime(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return timeResolvedMsg{seq: seq, result: result, err: err}
	}

	return tea.Batch(fetch, m.startSpinner())
}

func (m *Model) refreshStatus() tea.Cmd {
	seq := m.state.Connection.Begin()
	ctx, backend := m.ctx, m.backend

	fetch := func() tea.Msg {
		ctx, span := observability.Tracer("twsdash/panel").Start(ctx, "panel.connection_status")
		defer span.End()

		span.SetAttributes(attribute.Int64("panel.seq", int64(seq)))

		status, err := backend.ConnectionStatus(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return statusResolvedMsg{seq: seq, status: status, err: err}
	}

	return tea.Batch(fetch, m.startSpinner())
}

func (m *Model) logger() *slog.Logger {
	return observability.FromContext(m.ctx).With(slog.String("component", "panel"))
}

// Run shows the panel on the alternate screen until the operator quits or
// ctx is cancelled.
func Run(ctx context.Context, backend Backend, opts ...Option) error {
	program := tea.NewProgram(New(ctx, backend, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()

	return err
}
