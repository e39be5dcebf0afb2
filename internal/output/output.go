// Package output writes everything twsdash prints outside the status panel.
//
// Commands never touch os.Stdout directly. They take a *Writer from the
// command context so tests can capture output and so --json, --quiet and
// --no-color apply uniformly.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/musher-dev/twsdash/internal/terminal"
)

// Status symbols
const (
	CheckMark   = "\u2713"
	XMark       = "\u2717"
	WarningMark = "\u26A0"
	InfoMark    = "\u2139"
)

type contextKey struct{}

// Writer routes results to Out and diagnostics to Err.
type Writer struct {
	Out   io.Writer
	Err   io.Writer
	JSON  bool
	Quiet bool

	terminal *terminal.Info
	palette  palette
}

type palette struct {
	success *color.Color
	failure *color.Color
	warning *color.Color
	info    *color.Color
	muted   *color.Color
	label   *color.Color
}

// Default returns a Writer on stdout/stderr for the detected terminal.
func Default() *Writer {
	return NewWriter(os.Stdout, os.Stderr, terminal.Detect())
}

// NewWriter creates a Writer with custom sinks and terminal info.
func NewWriter(out, errOut io.Writer, term *terminal.Info) *Writer {
	if term == nil {
		term = &terminal.Info{Width: 80, Height: 24}
	}

	w := &Writer{
		Out:      out,
		Err:      errOut,
		terminal: term,
		palette: palette{
			success: color.New(color.FgGreen),
			failure: color.New(color.FgRed),
			warning: color.New(color.FgYellow),
			info:    color.New(color.FgCyan),
			muted:   color.New(color.FgHiBlack),
			label:   color.New(color.Bold),
		},
	}
	w.applyColorMode()

	return w
}

// WithContext stores the Writer in ctx.
func (w *Writer) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, w)
}

// FromContext returns the Writer stored in ctx, or Default().
func FromContext(ctx context.Context) *Writer {
	if ctx != nil {
		if w, ok := ctx.Value(contextKey{}).(*Writer); ok && w != nil {
			return w
		}
	}

	return Default()
}

// Terminal returns the terminal info the Writer was built with.
func (w *Writer) Terminal() *terminal.Info {
	return w.terminal
}

// SetNoColor forces plain output regardless of terminal detection.
func (w *Writer) SetNoColor(disabled bool) {
	w.terminal.ForceNoColor = disabled
	w.applyColorMode()
}

func (w *Writer) applyColorMode() {
	enabled := w.terminal.ColorEnabled()

	for _, c := range []*color.Color{
		w.palette.success, w.palette.failure, w.palette.warning,
		w.palette.info, w.palette.muted, w.palette.label,
	} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

// Print writes formatted text to Out unless quiet.
func (w *Writer) Print(format string, args ...any) {
	if w.Quiet {
		return
	}

	fmt.Fprintf(w.Out, format, args...)
}

// Println writes a line to Out unless quiet.
func (w *Writer) Println(args ...any) {
	if w.Quiet {
		return
	}

	fmt.Fprintln(w.Out, args...)
}

// Write implements io.Writer on Out, honoring quiet mode.
func (w *Writer) Write(p []byte) (int, error) {
	if w.Quiet {
		return len(p), nil
	}

	return w.Out.Write(p)
}

// PrintJSON writes v as indented JSON. Quiet mode does not apply: a caller
// that asked for JSON always gets it.
func (w *Writer) PrintJSON(v any) error {
	enc := json.NewEncoder(w.Out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// PrintYAML writes v as YAML.
func (w *Writer) PrintYAML(v any) error {
	enc := yaml.NewEncoder(w.Out)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return err
	}

	return enc.Close()
}

// Error writes formatted text to Err.
func (w *Writer) Error(format string, args ...any) {
	fmt.Fprintf(w.Err, format, args...)
}

// Errorln writes a line to Err.
func (w *Writer) Errorln(args ...any) {
	fmt.Fprintln(w.Err, args...)
}

func (w *Writer) status(dst io.Writer, tone *color.Color, symbol, msg string) {
	tone.Fprint(dst, symbol)
	fmt.Fprintln(dst, " "+msg)
}

// Success writes a checkmarked line to Out.
func (w *Writer) Success(format string, args ...any) {
	if w.Quiet {
		return
	}

	w.status(w.Out, w.palette.success, CheckMark, fmt.Sprintf(format, args...))
}

// Failure writes a crossed line to Err. Quiet mode does not silence it.
func (w *Writer) Failure(format string, args ...any) {
	w.status(w.Err, w.palette.failure, XMark, fmt.Sprintf(format, args...))
}

// Hint writes an informational line to Err, so machine-readable Out stays
// clean. Quiet mode does not silence it.
func (w *Writer) Hint(format string, args ...any) {
	w.status(w.Err, w.palette.info, InfoMark, fmt.Sprintf(format, args...))
}

// Warning writes a warning line to Out.
func (w *Writer) Warning(format string, args ...any) {
	if w.Quiet {
		return
	}

	w.status(w.Out, w.palette.warning, WarningMark, fmt.Sprintf(format, args...))
}

// Info writes an informational line to Out.
func (w *Writer) Info(format string, args ...any) {
	if w.Quiet {
		return
	}

	w.status(w.Out, w.palette.info, InfoMark, fmt.Sprintf(format, args...))
}

// Muted writes de-emphasized text to Out.
func (w *Writer) Muted(format string, args ...any) {
	if w.Quiet {
		return
	}

	w.palette.muted.Fprintln(w.Out, fmt.Sprintf(format, args...))
}

// Field writes an indented "label: value" line. Labels are padded to width
// so that a block of fields lines up.
func (w *Writer) Field(width int, label, value string) {
	if w.Quiet {
		return
	}

	pad := width - len(label)
	if pad < 0 {
		pad = 0
	}

	fmt.Fprint(w.Out, "  ")
	w.palette.label.Fprint(w.Out, label+":")
	fmt.Fprintln(w.Out, strings.Repeat(" ", pad+1)+value)
}

// Spinner returns a progress indicator for a blocking call, drawn on Err.
// Without a TTY it degrades to a plain "message... done" line; in quiet or
// JSON mode it prints nothing at all.
func (w *Writer) Spinner(message string) *Spinner {
	s := &Spinner{message: message, writer: w}

	switch {
	case w.Quiet || w.JSON:
		s.silent = true
		s.disabled = true

		return s
	case !w.terminal.SpinnersEnabled():
		s.disabled = true

		return s
	}

	s.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w.Err))
	s.spinner.Suffix = " " + message

	return s
}

// Spinner wraps briandowns/spinner with a non-TTY fallback.
type Spinner struct {
	spinner  *spinner.Spinner
	message  string
	writer   *Writer
	disabled bool
	silent   bool
}

// Start begins the animation, or prints the message when disabled.
func (s *Spinner) Start() {
	switch {
	case s.silent:
	case s.disabled:
		s.writer.Error("%s... ", s.message)
	default:
		s.spinner.Start()
	}
}

// Stop ends the animation without a status line.
func (s *Spinner) Stop() {
	switch {
	case s.silent:
	case s.disabled:
		s.writer.Errorln()
	default:
		s.spinner.Stop()
	}
}

// StopWithSuccess ends the animation and prints a success line.
func (s *Spinner) StopWithSuccess(message string) {
	s.finish("done", message, s.writer.Success)
}

// StopWithFailure ends the animation and prints a failure line.
func (s *Spinner) StopWithFailure(message string) {
	s.finish("failed", message, s.writer.Failure)
}

// StopWithWarning ends the animation and prints a warning line.
func (s *Spinner) StopWithWarning(message string) {
	s.finish("warning", message, s.writer.Warning)
}

func (s *Spinner) finish(word, message string, emit func(string, ...any)) {
	switch {
	case s.silent:
		return
	case s.disabled:
		s.writer.Errorln(word)
	default:
		s.spinner.Stop()
	}

	if message != "" {
		emit("%s", message)
	}
}

// UpdateMessage replaces the text shown next to the spinner.
func (s *Spinner) UpdateMessage(message string) {
	s.message = message
	if s.spinner != nil {
		s.spinner.Suffix = " " + message
	}
}
