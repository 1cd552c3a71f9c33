package telnet

import "fmt"

// Telnet command and option vocabulary.
//
// This implementation covers what is generally seen in the wild from BBS and
// MUD clients: RFC 854 command framing, RFC 1143 option negotiation, and the
// sub-negotiated options a board actually uses (Echo, Terminal Type, NAWS).
//
// RFCs of particular interest:
// - RFC 854  : Telnet Protocol Specification
// - RFC 857  : Telnet Echo Option
// - RFC 858  : Telnet Suppress Go Ahead Option
// - RFC 1073 : Telnet Window Size Option (NAWS)
// - RFC 1091 : Telnet Terminal-Type Option
// - RFC 1143 : The Q Method of Implementing TELNET Option Negotiation

const (
	// RFC 854: Telnet Protocol Specification
	SE   byte = 240 // Sub negotiation End
	NOP  byte = 241 // No Operation
	DM   byte = 242 // Data Mark
	BRK  byte = 243 // Break
	IP   byte = 244 // Interrupt Process
	AO   byte = 245 // Abort Output
	AYT  byte = 246 // Are You There?
	EC   byte = 247 // Erase Character
	EL   byte = 248 // Erase Line
	GA   byte = 249 // Go Ahead
	SB   byte = 250 // Sub negotiation Begin
	WILL byte = 251 // Will
	WONT byte = 252 // Won't
	DO   byte = 253 // Do
	DONT byte = 254 // Don't
	IAC  byte = 255 // Interpret As Command

	// Sub-negotiation markers (RFC 1091 and friends)
	IS   byte = 0
	SEND byte = 1
	INFO byte = 2

	// Telnet Options
	TransmitBinary byte = 0   // RFC 856
	Echo           byte = 1   // RFC 857
	SGA            byte = 3   // RFC 858 - Suppress Go Ahead
	Status         byte = 5   // RFC 859
	TimingMark     byte = 6   // RFC 860
	TType          byte = 24  // RFC 1091 - Terminal Type
	EOR            byte = 25  // RFC 885 - End of Record
	NAWS           byte = 31  // RFC 1073 - Negotiate About Window Size
	TerminalSpeed  byte = 32  // RFC 1079
	Linemode       byte = 34  // RFC 1148
	NewEnviron     byte = 39  // RFC 1572 'NEW-ENVIRON'
	MSSP           byte = 70  // MUD Server Status Protocol
	MCCP2          byte = 86  // MUD compression - recognized, never accepted
	MXP            byte = 91  // MUD markup - recognized, never accepted
	GMCP           byte = 201 // Generic MUD Communication Protocol
	Exopl          byte = 255 // RFC 861 - Extended Options List
)

// CommandNames maps Telnet command bytes to their string representation.
var CommandNames = map[byte]string{
	SE:   "SE",
	NOP:  "NOP",
	DM:   "DM",
	BRK:  "BRK",
	IP:   "IP",
	AO:   "AO",
	AYT:  "AYT",
	EC:   "EC",
	EL:   "EL",
	GA:   "GA",
	SB:   "SB",
	WILL: "WILL",
	WONT: "WONT",
	DO:   "DO",
	DONT: "DONT",
	IAC:  "IAC",
}

// OptionNames maps Telnet option bytes to their string representation.
var OptionNames = map[byte]string{
	TransmitBinary: "TransmitBinary",
	Echo:           "Echo",
	SGA:            "SGA",
	Status:         "Status",
	TimingMark:     "TimingMark",
	TType:          "TType",
	EOR:            "EOR",
	NAWS:           "NAWS",
	TerminalSpeed:  "TerminalSpeed",
	Linemode:       "Linemode",
	NewEnviron:     "NewEnviron",
	MSSP:           "MSSP",
	MCCP2:          "MCCP2",
	MXP:            "MXP",
	GMCP:           "GMCP",
	Exopl:          "Exopl",
}

// CommandName returns the mnemonic for a command byte, falling back to a
// decimal form for bytes outside the vocabulary.
func CommandName(b byte) string {
	if name, ok := CommandNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", b)
}

// OptionName returns the mnemonic for an option byte, falling back to a
// decimal form for bytes outside the vocabulary.
func OptionName(b byte) string {
	if name, ok := OptionNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", b)
}
