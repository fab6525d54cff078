// Package ui holds the terminal styles shared by the CLI commands.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const defaultWidth = 80

var renderer = lipgloss.NewRenderer(os.Stdout)

var (
	passStyle   = renderer.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = renderer.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle   = renderer.NewStyle().Foreground(lipgloss.Color("1"))
	accentStyle = renderer.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	mutedStyle  = renderer.NewStyle().Faint(true)
)

// SetColor turns ANSI colors on or off for every Render function.
func SetColor(enabled bool) {
	if enabled {
		renderer.SetColorProfile(termenv.ANSI)
	} else {
		renderer.SetColorProfile(termenv.Ascii)
	}
}

// ColorEnabled decides whether output to w should be colored: never with
// --no-color or NO_COLOR, otherwise only when w is a terminal.
func ColorEnabled(w io.Writer, noColorFlag bool) bool {
	if noColorFlag || termenv.EnvNoColor() {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns the width of w, or 80 when w is not a terminal.
func TerminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWidth
}

func RenderPass(s string) string   { return passStyle.Render(s) }
func RenderWarn(s string) string   { return warnStyle.Render(s) }
func RenderFail(s string) string   { return failStyle.Render(s) }
func RenderAccent(s string) string { return accentStyle.Render(s) }
func RenderMuted(s string) string  { return mutedStyle.Render(s) }

// RenderPriority colors s by task priority: 3 red, 2 yellow, 1 green.
func RenderPriority(priority int, s string) string {
	switch priority {
	case 3:
		return RenderFail(s)
	case 2:
		return RenderWarn(s)
	case 1:
		return RenderPass(s)
	default:
		return s
	}
}
