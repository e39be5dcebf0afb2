// Package terminal detects what the attached terminal can do.
//
// It answers three questions for the rest of the CLI: is stdout a TTY, may
// we emit color (NO_COLOR, TERM=dumb, --no-color), and how wide is it.
package terminal

import (
	"os"

	"golang.org/x/term"
)

const (
	fallbackWidth  = 80
	fallbackHeight = 24
)

// Info holds terminal capability information.
type Info struct {
	IsTTY   bool
	NoColor bool
	Width   int
	Height  int

	// ForceNoColor is set by the --no-color flag and wins over detection.
	ForceNoColor bool
}

// Detect inspects stdout and the environment.
func Detect() *Info {
	return detect(int(os.Stdout.Fd()))
}

func detect(fd int) *Info {
	info := &Info{
		IsTTY:  term.IsTerminal(fd),
		Width:  fallbackWidth,
		Height: fallbackHeight,
	}

	if info.IsTTY {
		if w, h, err := term.GetSize(fd); err == nil && w > 0 {
			info.Width, info.Height = w, h
		}
	}

	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		info.NoColor = true
	}

	if os.Getenv("TERM") == "dumb" {
		info.NoColor = true
	}

	return info
}

// ColorEnabled reports whether styled output should be emitted.
func (t *Info) ColorEnabled() bool {
	if t.ForceNoColor {
		return false
	}

	return t.IsTTY && !t.NoColor
}

// InteractiveEnabled reports whether a full-screen panel may take over the terminal.
func (t *Info) InteractiveEnabled() bool {
	return t.IsTTY
}

// SpinnersEnabled reports whether animated spinners are appropriate.
func (t *Info) SpinnersEnabled() bool {
	return t.ColorEnabled()
}
