package telnet

import (
	"encoding/binary"
	"fmt"
)

// OptionHandler interprets and produces sub-negotiation payloads for one
// option. Handlers are registered on a Connection; the engine routes incoming
// payloads to the matching handler once the option's enabling negotiation has
// completed, and drops payloads for options that are not enabled.
type OptionHandler interface {
	// Option returns the option code the handler manages.
	Option() byte
	// BuildRequest returns the payload this side sends to initiate an
	// exchange (e.g. the Terminal-Type SEND query), or nil when the option
	// has nothing to ask.
	BuildRequest() []byte
	// HandlePayload parses one incoming sub-negotiation body. A returned
	// error marks the payload malformed; prior state is left unchanged and
	// the connection continues.
	HandlePayload(data []byte) error
}

// echoHandler carries no payload at all: the Echo option's entire effect is
// the enable state of the option itself, which the session layer uses to
// suppress client-side echo during secret input.
type echoHandler struct{}

func (echoHandler) Option() byte         { return Echo }
func (echoHandler) BuildRequest() []byte { return nil }

func (echoHandler) HandlePayload(data []byte) error {
	return fmt.Errorf("echo: unexpected %d byte sub-negotiation payload", len(data))
}

// ttypeHandler implements RFC 1091 Terminal-Type: we send [SEND], the client
// answers [IS, name...]. The decoded name is classified into rendering
// capabilities on the parent connection.
type ttypeHandler struct {
	caps *Capabilities
}

func (ttypeHandler) Option() byte { return TType }

func (ttypeHandler) BuildRequest() []byte { return []byte{SEND} }

func (h ttypeHandler) HandlePayload(data []byte) error {
	if len(data) < 2 || data[0] != IS {
		return fmt.Errorf("ttype: malformed response of %d bytes", len(data))
	}
	name := string(data[1:])
	h.caps.TerminalType = name
	h.caps.ANSI, h.caps.Color, h.caps.Depth = classifyTerminal(name)
	return nil
}

// nawsHandler implements RFC 1073 NAWS: the client volunteers its window size
// as two big-endian 16-bit values. The server side never sends a size of its
// own, so BuildRequest is nil; enabling the option is the whole request.
type nawsHandler struct {
	caps *Capabilities
}

func (nawsHandler) Option() byte { return NAWS }

func (nawsHandler) BuildRequest() []byte { return nil }

func (h nawsHandler) HandlePayload(data []byte) error {
	if len(data) != 4 {
		return fmt.Errorf("naws: payload is %d bytes, want 4", len(data))
	}
	h.caps.Width = int(binary.BigEndian.Uint16(data[0:2]))
	h.caps.Height = int(binary.BigEndian.Uint16(data[2:4]))
	return nil
}
