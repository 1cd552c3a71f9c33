package telnet

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"lantern/internal/nodes"
)

// DefaultNegotiateTimeout bounds how long the blocking request helpers wait
// for a peer that never answers before settling for "capability unknown".
const DefaultNegotiateTimeout = 2 * time.Second

// Connection wraps a net.Conn and behaves as a plain duplex byte channel:
// Read returns only application data, transparently consuming and answering
// any interleaved protocol commands, and Write escapes IAC bytes before
// transmission. The higher-level helpers (SetEcho, QueryTerminalType,
// QueryWindowSize) perform a full request/await negotiation round.
//
// One Connection owns its net.Conn exclusively. All parsing and negotiation
// state belongs to the goroutine driving Read and the helpers; the only
// cross-goroutine access supported is the Capabilities snapshot, which is
// mutex guarded.
type Connection struct {
	conn   net.Conn
	parser *Parser
	engine *Engine
	writer *Writer
	log    *slog.Logger

	handlers map[byte]OptionHandler

	dataBuf bytes.Buffer // decoded application data awaiting Read
	scratch []byte

	mu   sync.RWMutex
	caps Capabilities

	timeout time.Duration
}

// NewConnection wraps conn with transparent telnet handling. The core option
// handlers (Echo, Terminal Type, NAWS) are registered; anything else is
// refused when the peer asks, except the stateless SGA and TransmitBinary.
func NewConnection(conn net.Conn, logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Connection{
		conn:     conn,
		parser:   NewParser(),
		writer:   NewWriter(conn),
		log:      logger,
		handlers: make(map[byte]OptionHandler),
		scratch:  make([]byte, 4096),
		timeout:  DefaultNegotiateTimeout,
	}
	c.engine = NewEngine(c.acceptOption)

	c.RegisterHandler(echoHandler{})
	c.RegisterHandler(ttypeHandler{caps: &c.caps})
	c.RegisterHandler(nawsHandler{caps: &c.caps})
	return c
}

// SetNegotiateTimeout adjusts the bounded wait used by the request helpers.
func (c *Connection) SetNegotiateTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// RegisterHandler adds or replaces the handler for an option. Registering a
// handler also makes peer-initiated enables for that option acceptable.
func (c *Connection) RegisterHandler(h OptionHandler) {
	c.handlers[h.Option()] = h
}

// acceptOption is the engine's policy: accept options we have a handler for,
// plus the stateless SGA and TransmitBinary. Everything else is refused.
func (c *Connection) acceptOption(option byte, _ Side) bool {
	if _, ok := c.handlers[option]; ok {
		return true
	}
	return option == SGA || option == TransmitBinary
}

func (c *Connection) Close() error {
	return c.conn.Close()
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Read blocks until at least one byte of application data is available or
// the channel fails. Protocol commands encountered along the way are acted
// on and never surface in the returned bytes.
func (c *Connection) Read(p []byte) (int, error) {
	for c.dataBuf.Len() == 0 {
		if err := c.pump(); err != nil {
			if c.dataBuf.Len() > 0 {
				break
			}
			return 0, err
		}
	}
	return c.dataBuf.Read(p)
}

// Write sends application bytes, escaping embedded IAC bytes, and blocks
// until fully sent.
func (c *Connection) Write(p []byte) (int, error) {
	return c.writer.Write(p)
}

// Send writes a string to the client. Satisfies the node manager's
// broadcast interface.
func (c *Connection) Send(msg string) error {
	_, err := c.Write([]byte(msg))
	return err
}

// pump performs one read on the underlying channel and routes the result:
// application data into the read buffer, commands into the engine and
// option handlers.
func (c *Connection) pump() error {
	n, err := c.conn.Read(c.scratch)
	if n > 0 {
		data, cmds := c.parser.Feed(c.scratch[:n])
		c.dataBuf.Write(data)
		for _, cmd := range cmds {
			c.dispatch(cmd)
		}
	}
	return err
}

// dispatch acts on one decoded command: negotiation verbs run the engine and
// transmit its replies, sub-negotiations route to the registered handler,
// simple commands get minimal handling.
func (c *Connection) dispatch(cmd Command) {
	switch {
	case cmd.IsNegotiation():
		c.log.Debug("Telnet command [IN]", "cmd", cmd.String())

		c.mu.Lock()
		res := c.engine.Receive(cmd.Verb, cmd.Option)
		c.mu.Unlock()

		if res.Violation != "" {
			c.log.Warn("Telnet protocol violation",
				"opt", OptionName(cmd.Option), "detail", res.Violation)
		}
		if len(res.Reply) > 0 {
			c.log.Debug("Telnet command [OUT]",
				"cmd", CommandName(res.Reply[1]), "opt", OptionName(cmd.Option))
			if _, err := c.conn.Write(res.Reply); err != nil {
				c.log.Debug("Telnet reply failed", "err", err)
			}
		}
		// A remote option that just switched on may have a query to send,
		// e.g. Terminal-Type wants its SEND immediately after the WILL.
		if res.Resolved && res.Enabled && res.Side == Remote {
			c.sendHandlerRequest(cmd.Option)
		}

	case cmd.IsSubNegotiation():
		c.log.Debug("Telnet sub-negotiation [IN]",
			"opt", OptionName(cmd.Option), "len", len(cmd.Data))

		c.mu.Lock()
		enabled := c.engine.Enabled(Remote, cmd.Option)
		c.mu.Unlock()
		if !enabled {
			c.log.Debug("Telnet sub-negotiation for disabled option dropped",
				"opt", OptionName(cmd.Option))
			return
		}
		handler, ok := c.handlers[cmd.Option]
		if !ok {
			c.log.Debug("Telnet sub-negotiation without handler dropped",
				"opt", OptionName(cmd.Option))
			return
		}

		c.mu.Lock()
		err := handler.HandlePayload(cmd.Data)
		c.mu.Unlock()
		if err != nil {
			// Malformed payload: capabilities keep their prior values and
			// the connection continues.
			c.log.Warn("Telnet sub-negotiation rejected",
				"opt", OptionName(cmd.Option), "err", err)
		}

	default:
		switch cmd.Verb {
		case AYT:
			c.Write([]byte("\r\n[Yes]\r\n"))
		case NOP:
			// Keepalive, nothing to do.
		case IP, AO, BRK:
			c.log.Info("Telnet interrupt command received", "cmd", CommandName(cmd.Verb))
		default:
			c.log.Debug("Telnet command ignored", "cmd", CommandName(cmd.Verb))
		}
	}
}

// sendHandlerRequest transmits the handler's opening payload for an option,
// when it has one.
func (c *Connection) sendHandlerRequest(option byte) {
	handler, ok := c.handlers[option]
	if !ok {
		return
	}
	payload := handler.BuildRequest()
	if len(payload) == 0 {
		return
	}
	c.log.Debug("Telnet sub-negotiation [OUT]",
		"opt", OptionName(option), "len", len(payload))
	if err := c.writer.WriteSubNegotiation(option, payload); err != nil {
		c.log.Debug("Telnet sub-negotiation send failed", "err", err)
	}
}

// request issues an engine request and transmits whatever it produced.
func (c *Connection) request(side Side, option byte, enable bool) error {
	c.mu.Lock()
	out := c.engine.Request(side, option, enable)
	c.mu.Unlock()
	if len(out) == 0 {
		return nil
	}
	c.log.Debug("Telnet command [OUT]",
		"cmd", CommandName(out[1]), "opt", OptionName(option))
	_, err := c.conn.Write(out)
	return err
}

// await pumps the inbound stream until cond holds or the negotiation timeout
// elapses. Timing out is not an error: the caller settles for whatever state
// was reached. Data read while waiting is buffered for later Read calls, not
// lost. Only a channel failure is returned.
func (c *Connection) await(cond func() bool) error {
	if cond() {
		return nil
	}
	deadline := time.Now().Add(c.timeout)
	defer c.conn.SetReadDeadline(time.Time{})

	for !cond() {
		if !time.Now().Before(deadline) {
			return nil
		}
		c.conn.SetReadDeadline(deadline)
		if err := c.pump(); err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return err
		}
	}
	return nil
}

func (c *Connection) resolved(side Side, option byte) func() bool {
	return func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return !c.engine.Pending(side, option)
	}
}

// SetEcho negotiates who echoes typed characters. Enabled means this side
// takes over echoing (the client stops), which is how secret input is masked;
// disabled hands echo back to the client. Blocks until the round resolves or
// the negotiation timeout elapses.
func (c *Connection) SetEcho(enabled bool) error {
	if err := c.request(Local, Echo, enabled); err != nil {
		return err
	}
	return c.await(c.resolved(Local, Echo))
}

// EchoSuppressed reports whether the Echo option is currently enabled on the
// local side, i.e. the client has agreed to stop echoing.
func (c *Connection) EchoSuppressed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Enabled(Local, Echo)
}

// QueryTerminalType negotiates the Terminal-Type option and asks the client
// to identify itself. Returns the terminal identifier, or "" when the client
// does not support the option or never answered within the timeout.
func (c *Connection) QueryTerminalType() (string, error) {
	if err := c.request(Remote, TType, true); err != nil {
		return "", err
	}
	if err := c.await(c.resolved(Remote, TType)); err != nil {
		return "", err
	}

	c.mu.RLock()
	enabled := c.engine.Enabled(Remote, TType)
	known := c.caps.TerminalType
	c.mu.RUnlock()
	if !enabled {
		return "", nil
	}
	if known == "" {
		// The SEND query went out when the option switched on; wait for
		// the IS response.
		if err := c.await(func() bool {
			c.mu.RLock()
			defer c.mu.RUnlock()
			return c.caps.TerminalType != ""
		}); err != nil {
			return "", err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caps.TerminalType, nil
}

// QueryWindowSize negotiates NAWS and waits for the client to report its
// dimensions. Returns zeros when the client does not support the option or
// never answered within the timeout.
func (c *Connection) QueryWindowSize() (width, height int, err error) {
	if err := c.request(Remote, NAWS, true); err != nil {
		return 0, 0, err
	}
	if err := c.await(c.resolved(Remote, NAWS)); err != nil {
		return 0, 0, err
	}

	c.mu.RLock()
	enabled := c.engine.Enabled(Remote, NAWS)
	c.mu.RUnlock()
	if enabled {
		if err := c.await(func() bool {
			c.mu.RLock()
			defer c.mu.RUnlock()
			return c.caps.HasSize()
		}); err != nil {
			return 0, 0, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caps.Width, c.caps.Height, nil
}

// Capabilities returns the current terminal capability snapshot without
// blocking.
func (c *Connection) Capabilities() Capabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.caps
}

// GetTerminalInfo satisfies nodes.Connection with the subset of negotiated
// state other nodes use.
func (c *Connection) GetTerminalInfo() nodes.TerminalInfo {
	caps := c.Capabilities()
	return nodes.TerminalInfo{
		Type:   caps.TerminalType,
		Width:  caps.Width,
		Height: caps.Height,
	}
}

// IsUTF8 reports whether output should be transcoded to UTF-8 rather than
// sent as raw CP437. Legacy BBS terminals (SyncTERM and friends) want the
// raw bytes; everything else gets UTF-8.
func (c *Connection) IsUTF8() bool {
	t := strings.ToLower(c.Capabilities().TerminalType)
	if t == "" {
		return true
	}
	return !strings.Contains(t, "syncterm") && !strings.Contains(t, "ansi-bbs")
}

// StartNegotiation sends the opening server-side requests: we take over echo
// suppression duty only on demand, but SGA, window size, and terminal type
// are asked for up front.
func (c *Connection) StartNegotiation() {
	c.request(Local, SGA, true)
	c.request(Remote, SGA, true)
	c.request(Remote, NAWS, true)
	c.request(Remote, TType, true)
}

// LogConnectionInfo logs a summary of what negotiation discovered.
func (c *Connection) LogConnectionInfo() {
	caps := c.Capabilities()

	ttype := caps.TerminalType
	if ttype == "" {
		ttype = "UNKNOWN"
	}
	dims := "UNKNOWN"
	if caps.HasSize() {
		dims = fmt.Sprintf("%dx%d", caps.Width, caps.Height)
	}

	c.log.Info("Telnet connection established",
		"addr", c.RemoteAddr(),
		"terminal", ttype,
		"window", dims,
		"depth", caps.Depth.String(),
	)
}
