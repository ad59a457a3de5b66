package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Terminal renders Markdown for display in a terminal.
type Terminal struct {
	Width int
	TTY   bool

	renderer *glamour.TermRenderer
}

// NewTerminal inspects f and returns a renderer styled for it. Output that is
// not a terminal gets the plain "notty" style and DefaultWidth.
func NewTerminal(f *os.File) *Terminal {
	tty := f != nil && term.IsTerminal(int(f.Fd()))
	width := DefaultWidth
	if tty {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 20 {
			width = w
		}
	}
	return newTerminal(width, tty)
}

// NewPlainTerminal returns a renderer that never emits color.
func NewPlainTerminal(width int) *Terminal {
	if width <= 20 {
		width = DefaultWidth
	}
	return newTerminal(width, false)
}

func newTerminal(width int, tty bool) *Terminal {
	style := glamour.WithStandardStyle("notty")
	if tty {
		style = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		renderer = nil
	}
	return &Terminal{Width: width, TTY: tty, renderer: renderer}
}

// Markdown renders md, falling back to the input if rendering fails.
func (t *Terminal) Markdown(md string) string {
	if t == nil || t.renderer == nil {
		return md
	}
	out, err := t.renderer.Render(md)
	if err != nil {
		return md
	}
	return out
}

// Truncate shortens s to at most width runes on a single line, marking the
// cut with "...".
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 3 {
		width = 3
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
