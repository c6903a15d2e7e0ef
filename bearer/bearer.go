// Package bearer declares the connection-manager contract this engine
// consumes but does not implement (§1 scope boundary: the actual bearer
// manager, e.g. connman, is an external collaborator reached over D-Bus
// in production and faked in tests).
package bearer

import "context"

// State is a Connection's lifecycle stage (§3).
type State int

const (
	// Opening is the initial state while the bearer negotiates an
	// IP context for the subscriber.
	Opening State = iota
	// Open means the connection is usable for HTTP traffic.
	Open
	// Failed is terminal: the bearer could not be brought up.
	Failed
	// Closed is terminal: the bearer was brought down after use.
	Closed
)

func (s State) String() string {
	switch s {
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Failed:
		return "failed"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Connection is one MMS data-bearer context: a mobile-data connection
// dedicated to a subscriber's MMSC traffic. Exactly one exists at a time
// for the dispatcher (§4.5); a fresh Connection must be obtained after
// it reaches Failed or Closed.
type Connection struct {
	IMSI      string
	MMSCURL   string
	Proxy     string // "host:port", or "" for none
	Interface string // bearer network interface name; httptask does not bind sockets to it

	state State
}

// NewConnection constructs a Connection in the Opening state.
func NewConnection(imsi, mmscURL, proxy, iface string) *Connection {
	return &Connection{IMSI: imsi, MMSCURL: mmscURL, Proxy: proxy, Interface: iface, state: Opening}
}

// State returns the connection's current lifecycle stage.
func (c *Connection) State() State { return c.state }

// MarkOpen transitions Opening -> Open.
func (c *Connection) MarkOpen() { c.state = Open }

// MarkFailed transitions Opening -> Failed.
func (c *Connection) MarkFailed() { c.state = Failed }

// MarkClosed transitions Open -> Closed.
func (c *Connection) MarkClosed() { c.state = Closed }

// Manager is the external bearer manager contract: acquire and release
// a data connection dedicated to one subscriber's MMS traffic. One
// Manager instance is shared across all dispatcher-owned connections.
type Manager interface {
	// Open requests a bearer for imsi. It returns nil (not an error) if
	// the bearer manager declines to open one (§4.5: "if open returned
	// nothing: mark that task network_unavailable").
	Open(ctx context.Context, imsi string) (*Connection, error)
	// Close releases a previously opened connection.
	Close(ctx context.Context, conn *Connection) error
}
