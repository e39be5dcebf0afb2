package panel

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// MaxWidth caps the rendered panel width.
const MaxWidth = 80

const minWidth = 40

// Colors.
var (
	green  = lipgloss.Color("2")
	red    = lipgloss.Color("1")
	yellow = lipgloss.Color("3")
	subtle = lipgloss.Color("8")
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(subtle)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(subtle)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.NormalBorder())
)

// toneFor maps a result panel to its accent color.
func toneFor(kind ResultKind) lipgloss.Color {
	switch kind {
	case ResultTimeSuccess:
		return green
	case ResultGatewayFailure:
		return yellow
	default:
		return red
	}
}

type viewOptions struct {
	width   int
	loc     *time.Location
	baseURL string
	spinner string
}

func render(s *State, opts viewOptions) string {
	width := min(opts.width, MaxWidth)
	width = max(width, minWidth)

	inner := width - 4 // border + padding

	blocks := []string{
		headerStyle.Render("TWS Time Request"),
		subtleStyle.Render(ansi.Truncate("Request current time from the Trader Workstation", width, "…")),
		"",
		renderConnection(s, opts, inner),
		renderControl(s, opts),
	}

	if result := renderResult(s, opts, inner); result != "" {
		blocks = append(blocks, result)
	}

	blocks = append(blocks, renderHelp(opts, width))

	return strings.Join(blocks, "\n") + "\n"
}

func renderConnection(s *State, opts viewOptions, inner int) string {
	probe := &s.Connection

	var glyph string

	switch {
	case probe.Loading:
		glyph = opts.spinner
	case probe.Result != nil && probe.Result.Connected:
		glyph = lipgloss.NewStyle().Foreground(green).Render("●")
	case probe.Result != nil || probe.Err != nil:
		glyph = lipgloss.NewStyle().Foreground(red).Render("●")
	default:
		glyph = subtleStyle.Render("○")
	}

	lines := []string{glyph + " " + headerStyle.Render(TitleConnection) + "  " + subtleStyle.Render("[r] Refresh")}

	if probe.Result != nil {
		lines = append(lines, styledFields(connectionFields(probe.Result, opts.loc), inner, lipgloss.NewStyle())...)
	}

	if probe.Err != nil {
		lines = append(lines, styledFields([]field{{"Error", probe.Err.Message}}, inner, lipgloss.NewStyle().Foreground(red))...)
	}

	return boxStyle.Width(inner).Render(strings.Join(lines, "\n"))
}

func renderControl(s *State, opts viewOptions) string {
	if !s.CanRequestTime() {
		return buttonStyle.BorderForeground(subtle).Foreground(subtle).
			Render(opts.spinner + " " + ControlLoading)
	}

	return buttonStyle.BorderForeground(green).Render("[t] " + ControlIdle)
}

func renderResult(s *State, opts viewOptions, inner int) string {
	sec, ok := resultSection(s, opts.loc)
	if !ok {
		return ""
	}

	tone := toneFor(sec.Kind)
	lines := []string{lipgloss.NewStyle().Bold(true).Foreground(tone).Render(sec.Title)}
	lines = append(lines, styledFields(sec.Fields, inner, lipgloss.NewStyle().Foreground(tone))...)

	return boxStyle.BorderForeground(tone).Width(inner).Render(strings.Join(lines, "\n"))
}

// styledFields renders "Label: value" lines. Values too long for the box's
// content area wrap onto continuation lines aligned under the first.
func styledFields(fields []field, inner int, valueStyle lipgloss.Style) []string {
	width := labelWidth(fields)
	content := inner - boxStyle.GetHorizontalPadding()
	avail := max(content-width-1, 1)
	indent := strings.Repeat(" ", width+1)
	lines := make([]string, 0, len(fields))

	for _, f := range fields {
		label := f.Label + ":"
		pad := strings.Repeat(" ", width-ansi.StringWidth(label)+1)

		for i, part := range strings.Split(ansi.Wrap(f.Value, avail, ""), "\n") {
			if i == 0 {
				lines = append(lines, labelStyle.Render(label)+pad+valueStyle.Render(part))
				continue
			}

			lines = append(lines, indent+valueStyle.Render(part))
		}
	}

	return lines
}

func renderHelp(opts viewOptions, width int) string {
	backend := ansi.Truncate("Ensure the backend is running at "+opts.baseURL+" and TWS is connected", width, "…")
	keys := "t time · r refresh · q quit"

	return subtleStyle.Render(backend) + "\n" + subtleStyle.Render(keys)
}
