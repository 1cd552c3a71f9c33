package nodes

import (
	"fmt"
	"net"

	"lantern/internal/store"
)

// TerminalInfo is the slice of negotiated terminal state other nodes care
// about, kept here so transports can depend on this package.
type TerminalInfo struct {
	Type   string
	Width  int
	Height int
}

// Connection is what a node needs from the transport that carries it: a way
// to push text at the user and a view of the negotiated terminal.
type Connection interface {
	Send(msg string) error
	RemoteAddr() net.Addr
	GetTerminalInfo() TerminalInfo
	IsUTF8() bool
}

type Node struct {
	ID   int
	Conn Connection
	User *store.User
}

// Username returns the logged-in name, or "Anonymous" before login.
func (n *Node) Username() string {
	if n.User != nil {
		return n.User.Username
	}
	return "Anonymous"
}

func (n *Node) String() string {
	if n.Conn == nil {
		return fmt.Sprintf("Node %d (Disconnected)", n.ID)
	}
	return fmt.Sprintf("Node %d (%s)", n.ID, n.Conn.RemoteAddr())
}
