package ansi

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// BoxStyle is the set of characters used to frame a panel.
type BoxStyle struct {
	TopLeft     string
	TopRight    string
	BottomLeft  string
	BottomRight string
	Horizontal  string
	Vertical    string
	TeeLeft     string
	TeeRight    string
}

// AsciiBox draws with plain ASCII, safe on any terminal.
var AsciiBox = BoxStyle{
	TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
	Horizontal: "-", Vertical: "|", TeeLeft: "+", TeeRight: "+",
}

// DoubleBox draws with double-line box drawing characters, for terminals
// that render UTF-8.
var DoubleBox = BoxStyle{
	TopLeft: "╔", TopRight: "╗", BottomLeft: "╚", BottomRight: "╝",
	Horizontal: "═", Vertical: "║", TeeLeft: "╣", TeeRight: "╠",
}

// SingleBox draws with single-line box drawing characters.
var SingleBox = BoxStyle{
	TopLeft: "┌", TopRight: "┐", BottomLeft: "└", BottomRight: "┘",
	Horizontal: "─", Vertical: "│", TeeLeft: "┤", TeeRight: "├",
}

// BoxRenderer draws framed panels sized to the client's terminal. Style and
// color use are chosen from the negotiated capabilities: box drawing
// characters and color sequences only go to terminals that can show them.
type BoxRenderer struct {
	Style    BoxStyle
	UseColor bool
	Color    string // ANSI SGR sequence applied to the frame
}

// NewBoxRenderer picks a frame style and color policy for a terminal.
func NewBoxRenderer(utf8OK, colorOK bool) *BoxRenderer {
	style := AsciiBox
	if utf8OK {
		style = DoubleBox
	}
	return &BoxRenderer{
		Style:    style,
		UseColor: colorOK,
		Color:    "\x1b[36m", // cyan
	}
}

func (r *BoxRenderer) colorOn() string {
	if r.UseColor {
		return r.Color
	}
	return ""
}

func (r *BoxRenderer) colorOff() string {
	if r.UseColor {
		return ResetSeq
	}
	return ""
}

// TitleBox renders a one-line framed title, width characters wide.
func (r *BoxRenderer) TitleBox(w io.Writer, title string, width int) error {
	if width < 4 {
		width = 4
	}
	inner := width - 2

	var sb strings.Builder
	sb.WriteString(r.colorOn())
	sb.WriteString(r.Style.TopLeft)
	sb.WriteString(strings.Repeat(r.Style.Horizontal, inner))
	sb.WriteString(r.Style.TopRight)
	sb.WriteString("\r\n")

	sb.WriteString(r.Style.Vertical)
	sb.WriteString(center(title, inner))
	sb.WriteString(r.Style.Vertical)
	sb.WriteString("\r\n")

	sb.WriteString(r.Style.BottomLeft)
	sb.WriteString(strings.Repeat(r.Style.Horizontal, inner))
	sb.WriteString(r.Style.BottomRight)
	sb.WriteString(r.colorOff())
	sb.WriteString("\r\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// Panel renders a framed box with a title bar and body lines. Lines longer
// than the inner width are truncated rather than wrapped.
func (r *BoxRenderer) Panel(w io.Writer, title string, lines []string, width int) error {
	if width < 4 {
		width = 4
	}
	inner := width - 2

	var sb strings.Builder
	sb.WriteString(r.colorOn())
	sb.WriteString(r.Style.TopLeft)
	sb.WriteString(strings.Repeat(r.Style.Horizontal, inner))
	sb.WriteString(r.Style.TopRight)
	sb.WriteString("\r\n")

	if title != "" {
		sb.WriteString(r.Style.Vertical)
		sb.WriteString(r.colorOff())
		sb.WriteString(center(title, inner))
		sb.WriteString(r.colorOn())
		sb.WriteString(r.Style.Vertical)
		sb.WriteString("\r\n")

		sb.WriteString(r.Style.TeeRight)
		sb.WriteString(strings.Repeat(r.Style.Horizontal, inner))
		sb.WriteString(r.Style.TeeLeft)
		sb.WriteString("\r\n")
	}

	for _, line := range lines {
		sb.WriteString(r.Style.Vertical)
		sb.WriteString(r.colorOff())
		sb.WriteString(pad(line, inner))
		sb.WriteString(r.colorOn())
		sb.WriteString(r.Style.Vertical)
		sb.WriteString("\r\n")
	}

	sb.WriteString(r.Style.BottomLeft)
	sb.WriteString(strings.Repeat(r.Style.Horizontal, inner))
	sb.WriteString(r.Style.BottomRight)
	sb.WriteString(r.colorOff())
	sb.WriteString("\r\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return truncate(s, width)
	}
	left := (width - n) / 2
	right := width - n - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-n)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return string(runes[:1])
	}
	return fmt.Sprintf("%s~", string(runes[:width-1]))
}

// WrapText breaks text into lines no wider than width. Hard newlines are
// preserved; words are not split unless a single word exceeds the width.
func WrapText(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	var out []string
	for _, hard := range strings.Split(text, "\n") {
		words := strings.Fields(hard)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			switch {
			case line == "":
				line = word
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		out = append(out, line)
	}
	return out
}
