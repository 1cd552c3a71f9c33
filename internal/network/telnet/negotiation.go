package telnet

// RFC 1143 Q-method option negotiation.
//
// RFC 854's naive rules allow two implementations to volley WILL/WONT forever.
// The Q method prevents that with four states per option per side plus a
// one-slot queue: a request issued while a negotiation is in flight is never
// sent on the wire, it is remembered and issued when the in-flight round
// resolves.

// Side selects which half of an option's state a call refers to: Local is
// what this end performs (WILL/WONT), Remote is what the peer performs
// (DO/DONT).
type Side int

const (
	Local Side = iota
	Remote
)

func (s Side) String() string {
	if s == Local {
		return "local"
	}
	return "remote"
}

// optionState is one track of the Q-method state machine.
type optionState uint8

const (
	stateNo optionState = iota
	stateYes
	stateWantNo
	stateWantYes
)

// track holds the negotiation state for one option on one side. queued is the
// RFC 1143 queue bit: while in a want state it records that the application
// asked for the opposite of the in-flight negotiation.
type track struct {
	state  optionState
	queued bool
}

// AcceptPolicy decides whether a peer-initiated request to enable an option
// on the given side is honored.
type AcceptPolicy func(option byte, side Side) bool

// Result describes the outcome of processing one received negotiation verb.
type Result struct {
	// Reply holds the bytes to transmit in response, if any.
	Reply []byte
	// Side is the track the verb applied to.
	Side Side
	// Option is the option the verb applied to.
	Option byte
	// Resolved is true when the track reached a stable state (Yes or No)
	// as a consequence of this verb.
	Resolved bool
	// Enabled is the stable value reached when Resolved is true.
	Enabled bool
	// Violation names a peer protocol violation (e.g. a DONT answered by
	// WILL). The state machine recovers; this is for logging only.
	Violation string
}

// Engine is the per-connection RFC 1143 negotiation state machine. The state
// table is a fixed array indexed by option code, one entry per side.
//
// Engine owns no I/O: callers transmit whatever bytes its methods return.
// It is not safe for concurrent use; one Engine belongs to one connection.
type Engine struct {
	local  [256]track
	remote [256]track
	accept AcceptPolicy
}

// NewEngine returns an engine with every option disabled on both sides.
// The policy decides peer-initiated enable requests; a nil policy refuses all.
func NewEngine(policy AcceptPolicy) *Engine {
	if policy == nil {
		policy = func(byte, Side) bool { return false }
	}
	return &Engine{accept: policy}
}

// Enabled reports whether the option is in the stable enabled state on the
// given side.
func (e *Engine) Enabled(side Side, option byte) bool {
	return e.track(side, option).state == stateYes
}

// Pending reports whether a negotiation for the option is in flight on the
// given side.
func (e *Engine) Pending(side Side, option byte) bool {
	s := e.track(side, option).state
	return s == stateWantNo || s == stateWantYes
}

func (e *Engine) track(side Side, option byte) *track {
	if side == Local {
		return &e.local[option]
	}
	return &e.remote[option]
}

// verbs for a side: ask is what we send to request enable, refuse to request
// or confirm disable.
func sideVerbs(side Side) (ask, refuse byte) {
	if side == Local {
		return WILL, WONT
	}
	return DO, DONT
}

// Receive processes one negotiation verb from the peer and returns the reply
// bytes to send, if any. WILL/WONT drive the remote track, DO/DONT the local
// track; the transition table follows RFC 1143 section 7.
func (e *Engine) Receive(verb, option byte) Result {
	switch verb {
	case WILL:
		return e.receiveEnable(Remote, option)
	case WONT:
		return e.receiveDisable(Remote, option)
	case DO:
		return e.receiveEnable(Local, option)
	case DONT:
		return e.receiveDisable(Local, option)
	}
	return Result{Option: option}
}

// receiveEnable handles WILL (remote track) or DO (local track).
func (e *Engine) receiveEnable(side Side, option byte) Result {
	t := e.track(side, option)
	ask, refuse := sideVerbs(side)
	res := Result{Side: side, Option: option}

	switch t.state {
	case stateNo:
		if e.accept(option, side) {
			t.state = stateYes
			res.Reply = []byte{IAC, ask, option}
			res.Resolved = true
			res.Enabled = true
		} else {
			res.Reply = []byte{IAC, refuse, option}
			res.Resolved = true
		}

	case stateYes:
		// Already enabled; answering would start a loop.
		res.Resolved = true
		res.Enabled = true

	case stateWantNo:
		// We asked for disable and the peer answered with enable.
		res.Violation = "disable request answered by enable"
		if t.queued {
			t.state = stateYes
			t.queued = false
			res.Resolved = true
			res.Enabled = true
		} else {
			t.state = stateNo
			res.Resolved = true
		}

	case stateWantYes:
		if t.queued {
			// The application queued a disable meanwhile; open the
			// follow-up round immediately.
			t.state = stateWantNo
			t.queued = false
			res.Reply = []byte{IAC, refuse, option}
		} else {
			t.state = stateYes
			res.Resolved = true
			res.Enabled = true
		}
	}
	return res
}

// receiveDisable handles WONT (remote track) or DONT (local track).
func (e *Engine) receiveDisable(side Side, option byte) Result {
	t := e.track(side, option)
	ask, refuse := sideVerbs(side)
	res := Result{Side: side, Option: option}

	switch t.state {
	case stateNo:
		// Already disabled; stay silent.
		res.Resolved = true

	case stateYes:
		// Peer withdraws the option; confirm.
		t.state = stateNo
		res.Reply = []byte{IAC, refuse, option}
		res.Resolved = true

	case stateWantNo:
		if t.queued {
			// Queued enable request becomes the next round.
			t.state = stateWantYes
			t.queued = false
			res.Reply = []byte{IAC, ask, option}
		} else {
			t.state = stateNo
			res.Resolved = true
		}

	case stateWantYes:
		// Peer refused our enable. A queued disable lands on the same
		// answer, so it collapses here either way.
		t.state = stateNo
		t.queued = false
		res.Resolved = true
	}
	return res
}

// Request issues an application-initiated negotiation and returns the bytes
// to send, which may be empty: requesting the current stable state is
// idempotent, and requesting during an in-flight negotiation queues the
// change (one slot per track, last write wins) instead of putting a second
// request on the wire.
func (e *Engine) Request(side Side, option byte, enable bool) []byte {
	t := e.track(side, option)
	ask, refuse := sideVerbs(side)

	if enable {
		switch t.state {
		case stateNo:
			t.state = stateWantYes
			return []byte{IAC, ask, option}
		case stateYes:
			return nil
		case stateWantNo:
			t.queued = true
		case stateWantYes:
			t.queued = false
		}
		return nil
	}

	switch t.state {
	case stateNo:
		return nil
	case stateYes:
		t.state = stateWantNo
		return []byte{IAC, refuse, option}
	case stateWantNo:
		t.queued = false
	case stateWantYes:
		t.queued = true
	}
	return nil
}

// Reset returns every option on both sides to the disabled state.
func (e *Engine) Reset() {
	e.local = [256]track{}
	e.remote = [256]track{}
}
