package telnet

import (
	"fmt"
	"net"
	"time"

	"lantern/internal/app"
	"lantern/internal/config"
	"lantern/internal/nodes"
)

// Handler receives a fully negotiated connection bound to a node and blocks
// until the session ends.
type Handler func(conn *Connection, node *nodes.Node)

type Server struct {
	config  config.TelnetConfig
	handler Handler
	ln      net.Listener
}

func NewServer(handler Handler) *Server {
	return &Server{
		config:  app.Config.Listeners.Telnet,
		handler: handler,
	}
}

func (s *Server) ListenAndServe() error {
	app.Logger.Info("Telnet server listening", "port", s.config.Port)

	var err error
	s.ln, err = net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return err
	}
	defer s.ln.Close()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed
			if opErr, ok := err.(*net.OpError); ok && opErr.Err.Error() == "use of closed network connection" {
				return nil
			}
			app.Logger.Error("Telnet accept error", "err", err)
			continue
		}
		go s.handleConnection(conn)
	}
}

func (s *Server) Stop() error {
	if s.ln != nil {
		return s.ln.Close()
	}
	return nil
}

func (s *Server) handleConnection(conn net.Conn) {
	node, err := app.Nodes.Acquire()
	if err != nil {
		app.Logger.Warn("Connection rejected: system full", "addr", conn.RemoteAddr())
		fmt.Fprint(conn, "\r\nAll nodes are busy. Please try again later.\r\n")
		conn.Close()
		return
	}
	defer app.Nodes.Release(node.ID)

	logger := app.Logger.With("node", node.ID)

	// Wrap the connection with our Telnet Connection handler
	telnetConn := NewConnection(conn, logger)
	if s.config.NegotiateTimeoutMs > 0 {
		telnetConn.SetNegotiateTimeout(time.Duration(s.config.NegotiateTimeoutMs) * time.Millisecond)
	}

	// Assign connection to node for cross-node comms
	node.Conn = telnetConn

	defer telnetConn.Close()
	defer logger.Info("Telnet connection closed", "addr", telnetConn.RemoteAddr())

	logger.Debug("Telnet connection from", "addr", telnetConn.RemoteAddr())

	telnetConn.StartNegotiation()

	// Pull terminal type and window size before the first screen draws; a
	// silent client just gets defaults once the timeout passes.
	telnetConn.QueryTerminalType()
	telnetConn.QueryWindowSize()
	telnetConn.LogConnectionInfo()

	// Blocks until the user disconnects
	s.handler(telnetConn, node)
}
