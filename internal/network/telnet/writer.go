package telnet

import (
	"bytes"
	"io"
)

// Writer escapes outgoing application data for the telnet wire: every literal
// 0xFF becomes IAC IAC so the peer's parser cannot mistake data for commands.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Write(p []byte) (n int, err error) {
	// Common case: nothing to escape, pass straight through.
	if bytes.IndexByte(p, IAC) == -1 {
		return w.w.Write(p)
	}

	var buf bytes.Buffer
	buf.Grow(len(p) + len(p)/8)
	for _, b := range p {
		buf.WriteByte(b)
		if b == IAC {
			buf.WriteByte(IAC)
		}
	}

	if _, err = w.w.Write(buf.Bytes()); err != nil {
		return 0, err
	}
	// Report bytes consumed from p, not bytes put on the wire.
	return len(p), nil
}

// WriteCommand sends a command sequence, prepending IAC.
// Example: WriteCommand(WILL, Echo) sends IAC WILL ECHO.
func (w *Writer) WriteCommand(cmds ...byte) error {
	data := make([]byte, 1+len(cmds))
	data[0] = IAC
	copy(data[1:], cmds)
	_, err := w.w.Write(data)
	return err
}

// WriteSubNegotiation wraps a payload in IAC SB <option> ... IAC SE, escaping
// any 0xFF bytes inside the payload.
func (w *Writer) WriteSubNegotiation(option byte, data []byte) error {
	buf := make([]byte, 0, 5+len(data))
	buf = append(buf, IAC, SB, option)
	for _, b := range data {
		buf = append(buf, b)
		if b == IAC {
			buf = append(buf, IAC)
		}
	}
	buf = append(buf, IAC, SE)

	_, err := w.w.Write(buf)
	return err
}
