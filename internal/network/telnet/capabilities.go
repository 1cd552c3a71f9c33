package telnet

import "strings"

// ColorDepth classifies how much color a client terminal can render.
type ColorDepth int

const (
	Monochrome ColorDepth = iota
	Basic8
	Color256
	TrueColor
)

func (d ColorDepth) String() string {
	switch d {
	case Basic8:
		return "8-color"
	case Color256:
		return "256-color"
	case TrueColor:
		return "true-color"
	default:
		return "monochrome"
	}
}

// Capabilities is a snapshot of what was learned about the client terminal
// through Terminal-Type and NAWS sub-negotiation. Width and Height are zero
// until the client reports them; TerminalType is empty until identified.
// Read-only to callers; the connection recomputes it as sub-negotiations land.
type Capabilities struct {
	Width        int
	Height       int
	TerminalType string
	ANSI         bool
	Color        bool
	Depth        ColorDepth
}

// HasSize reports whether the client has reported its window dimensions.
func (c Capabilities) HasSize() bool {
	return c.Width > 0 && c.Height > 0
}

// classifyTerminal derives rendering capabilities from a terminal type
// string using case-insensitive matching on known terminal family fragments.
// Unrecognized terminals get the conservative no-ANSI, no-color default.
func classifyTerminal(name string) (ansi, color bool, depth ColorDepth) {
	t := strings.ToLower(name)

	switch {
	case strings.Contains(t, "direct") || strings.Contains(t, "truecolor"):
		return true, true, TrueColor
	case strings.Contains(t, "256color"):
		return true, true, Color256
	case strings.Contains(t, "xterm"),
		strings.Contains(t, "screen"),
		strings.Contains(t, "tmux"),
		strings.Contains(t, "linux"),
		strings.Contains(t, "ansi"),
		strings.Contains(t, "syncterm"):
		return true, true, Basic8
	case strings.HasPrefix(t, "vt220"), strings.HasPrefix(t, "vt102"):
		return true, false, Monochrome
	default:
		return false, false, Monochrome
	}
}
