package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected       = errors.New("not connected")
	ErrStaleConnection    = errors.New("connection stale (no datagrams)")
	ErrAlreadyClosed      = errors.New("already closed")
	ErrUnknownEnvironment = errors.New("unknown environment")
)

// RawMessage is one datagram handed to the router.
type RawMessage struct {
	Data       []byte    // UDP payload, one packet
	Feed       string    // Feed name, e.g. "18A"
	ReceivedAt time.Time // Local timestamp when the datagram was read
}

// ClientConfig configures a multicast client.
type ClientConfig struct {
	Group          string        // group address, host:port (e.g. 239.100.100.18:12121)
	Interface      string        // interface name to join on; empty = kernel default
	ReadTimeout    time.Duration // per-read deadline, bounds shutdown latency
	StaleTimeout   time.Duration // quiet period after which the feed is reported stale
	BufferSize     int           // message channel buffer size
	ReadBufferSize int           // SO_RCVBUF in bytes, 0 = system default
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ReadTimeout:    time.Second,
		StaleTimeout:   30 * time.Second,
		BufferSize:     10000,
		ReadBufferSize: 4 << 20,
	}
}

// Feed names one subscribed group.
type Feed struct {
	Name  string // e.g. "18A"
	Group string // host:port
}

// ManagerConfig configures the feed Manager.
type ManagerConfig struct {
	Feeds             []Feed
	Client            ClientConfig  // Group is overridden per feed
	ReconnectBaseWait time.Duration // Base wait time for reconnection
	ReconnectMaxWait  time.Duration // Max wait time for reconnection
	MessageBufferSize int           // Buffer size for the merged output channel
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Client:            DefaultClientConfig(),
		ReconnectBaseWait: time.Second,
		ReconnectMaxWait:  time.Minute,
		MessageBufferSize: 100000,
	}
}
