package telnet

// Command is a single decoded protocol instruction. It is immutable once
// produced by the parser: either a simple command (Verb only), a negotiation
// (Verb is WILL/WONT/DO/DONT plus Option), or a sub-negotiation (Verb is SB,
// Option plus Data).
type Command struct {
	Verb   byte
	Option byte
	Data   []byte
}

// IsNegotiation reports whether the command is a WILL/WONT/DO/DONT exchange.
func (c Command) IsNegotiation() bool {
	return c.Verb == WILL || c.Verb == WONT || c.Verb == DO || c.Verb == DONT
}

// IsSubNegotiation reports whether the command carries a sub-negotiation payload.
func (c Command) IsSubNegotiation() bool {
	return c.Verb == SB
}

func (c Command) String() string {
	switch {
	case c.IsSubNegotiation():
		return "SB " + OptionName(c.Option)
	case c.IsNegotiation():
		return CommandName(c.Verb) + " " + OptionName(c.Option)
	default:
		return CommandName(c.Verb)
	}
}

type parseState int

const (
	stateData      parseState = iota // plain application bytes
	stateIAC                         // saw IAC, next byte decides
	stateVerb                        // saw WILL/WONT/DO/DONT, need option
	stateSubOption                   // saw IAC SB, need option
	stateSubData                     // accumulating sub-negotiation payload
	stateSubIAC                      // inside sub-negotiation, saw IAC
)

// Parser splits an inbound telnet byte stream into application data and
// protocol commands. State persists between Feed calls, so any command
// sequence may arrive split across read boundaries; a lone IAC at the end of
// one chunk pairs with the verb at the start of the next.
//
// One Parser belongs to exactly one connection and is not safe for concurrent
// use.
type Parser struct {
	state  parseState
	verb   byte
	subOpt byte
	subBuf []byte
}

// NewParser returns a parser in the plain-data state.
func NewParser() *Parser {
	return &Parser{}
}

// Feed consumes one inbound chunk and returns the application data bytes and
// the complete commands it contained. Incomplete trailing sequences are held
// until the next call; if the stream ends mid-sequence the fragment is simply
// discarded, since its meaning cannot be recovered.
//
// Escaping: IAC IAC decodes to one literal 0xFF data byte, both in plain data
// and inside sub-negotiation payloads. An SE with no open sub-negotiation is
// protocol noise and is dropped.
func (p *Parser) Feed(chunk []byte) (data []byte, cmds []Command) {
	for _, b := range chunk {
		switch p.state {
		case stateData:
			if b == IAC {
				p.state = stateIAC
			} else {
				data = append(data, b)
			}

		case stateIAC:
			switch b {
			case IAC:
				// Escaped literal 255.
				data = append(data, IAC)
				p.state = stateData
			case WILL, WONT, DO, DONT:
				p.verb = b
				p.state = stateVerb
			case SB:
				p.state = stateSubOption
			case SE:
				// Termination without a matching start: noise.
				p.state = stateData
			default:
				cmds = append(cmds, Command{Verb: b})
				p.state = stateData
			}

		case stateVerb:
			cmds = append(cmds, Command{Verb: p.verb, Option: b})
			p.state = stateData

		case stateSubOption:
			p.subOpt = b
			p.subBuf = nil
			p.state = stateSubData

		case stateSubData:
			if b == IAC {
				p.state = stateSubIAC
			} else {
				p.subBuf = append(p.subBuf, b)
			}

		case stateSubIAC:
			switch b {
			case SE:
				cmds = append(cmds, Command{Verb: SB, Option: p.subOpt, Data: p.subBuf})
				p.subBuf = nil
				p.state = stateData
			case IAC:
				// Escaped 255 inside the payload.
				p.subBuf = append(p.subBuf, IAC)
				p.state = stateSubData
			default:
				// Malformed sub-negotiation; drop the accumulated payload
				// and fall back to scanning plain data.
				p.subBuf = nil
				p.state = stateData
			}
		}
	}
	return data, cmds
}

// Pending reports whether the parser is holding an incomplete sequence.
func (p *Parser) Pending() bool {
	return p.state != stateData
}

// Reset discards any partial sequence and returns to the plain-data state.
func (p *Parser) Reset() {
	p.state = stateData
	p.subBuf = nil
}
