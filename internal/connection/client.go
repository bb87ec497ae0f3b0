package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// maxDatagram is the largest UDP payload read in one call.
const maxDatagram = 65535

// Client is one multicast group subscription.
type Client interface {
	// Connect binds the socket and joins the group.
	Connect(ctx context.Context) error

	// Close leaves the group and closes the socket.
	Close() error

	// Next returns the next datagram. It returns io.EOF after Close.
	Next(ctx context.Context) ([]byte, error)

	// Messages returns a channel of received datagrams.
	Messages() <-chan RawMessage

	// Errors returns a channel of connection errors.
	Errors() <-chan error

	// IsConnected returns current connection state.
	IsConnected() bool

	// LocalAddr returns the bound address, or nil before Connect.
	LocalAddr() net.Addr
}

// client implements the Client interface.
type client struct {
	cfg    ClientConfig
	name   string
	logger *slog.Logger

	conn *net.UDPConn

	// Output channels
	messages chan RawMessage
	errors   chan error
	done     chan struct{}

	// State
	mu        sync.RWMutex
	connected bool
	lastRecv  time.Time
	stale     bool
	closed    bool
}

// NewClient creates a multicast client. name tags the datagrams it emits.
func NewClient(name string, cfg ClientConfig, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultClientConfig().BufferSize
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultClientConfig().ReadTimeout
	}

	return &client{
		cfg:      cfg,
		name:     name,
		logger:   logger,
		messages: make(chan RawMessage, cfg.BufferSize),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Connect binds to the group address and, for multicast addresses, joins
// the group on the configured interface.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	group, err := net.ResolveUDPAddr("udp4", c.cfg.Group)
	if err != nil {
		return fmt.Errorf("resolve group %s: %w", c.cfg.Group, err)
	}

	var ifaddr [4]byte
	if c.cfg.Interface != "" {
		ifaddr, err = interfaceAddr(c.cfg.Interface)
		if err != nil {
			return err
		}
	}

	lc := net.ListenConfig{
		Control: func(network, address string, rc syscall.RawConn) error {
			var err error
			cerr := rc.Control(func(fd uintptr) {
				err = c.setSocketOptions(int(fd))
			})
			if cerr != nil {
				return cerr
			}
			return err
		},
	}

	pc, err := lc.ListenPacket(ctx, "udp4", group.String())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", group, err)
	}
	conn := pc.(*net.UDPConn)

	if group.IP.IsMulticast() {
		if err := joinGroup(conn, group.IP, ifaddr); err != nil {
			conn.Close()
			return err
		}
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.lastRecv = time.Now()
	c.mu.Unlock()

	go c.readLoop()

	c.logger.Info("feed joined",
		"feed", c.name,
		"group", group.String(),
		"interface", c.cfg.Interface,
	)
	return nil
}

func (c *client) setSocketOptions(fd int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return fmt.Errorf("set SO_REUSEADDR: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		return fmt.Errorf("set SO_REUSEPORT: %w", err)
	}
	if c.cfg.ReadBufferSize > 0 {
		// Best effort; the kernel clamps to rmem_max.
		unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, c.cfg.ReadBufferSize)
	}
	return nil
}

// joinGroup adds an IPv4 membership for ip on the interface address ifaddr.
func joinGroup(conn *net.UDPConn, ip net.IP, ifaddr [4]byte) error {
	mreq := &unix.IPMreq{Interface: ifaddr}
	copy(mreq.Multiaddr[:], ip.To4())

	rc, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	if err := rc.Control(func(fd uintptr) {
		serr = unix.SetsockoptIPMreq(int(fd), unix.IPPROTO_IP, unix.IP_ADD_MEMBERSHIP, mreq)
	}); err != nil {
		return err
	}
	if serr != nil {
		return fmt.Errorf("join group %s: %w", ip, serr)
	}
	return nil
}

// interfaceAddr returns the first IPv4 address of the named interface.
func interfaceAddr(name string) ([4]byte, error) {
	var out [4]byte
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return out, fmt.Errorf("interface %s: %w", name, err)
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return out, fmt.Errorf("interface %s addresses: %w", name, err)
	}
	for _, a := range addrs {
		if ipn, ok := a.(*net.IPNet); ok {
			if v4 := ipn.IP.To4(); v4 != nil {
				copy(out[:], v4)
				return out, nil
			}
		}
	}
	return out, fmt.Errorf("interface %s has no IPv4 address", name)
}

// Close closes the socket. The kernel drops the membership with it.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	close(c.done)

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// Next returns the next datagram.
func (c *client) Next(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-c.messages:
		return msg.Data, nil
	case err := <-c.errors:
		return nil, err
	case <-c.done:
		return nil, io.EOF
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Messages returns the messages channel.
func (c *client) Messages() <-chan RawMessage {
	return c.messages
}

// Errors returns the errors channel.
func (c *client) Errors() <-chan error {
	return c.errors
}

// IsConnected returns the current connection state.
func (c *client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// LocalAddr returns the bound address.
func (c *client) LocalAddr() net.Addr {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.conn == nil {
		return nil
	}
	return c.conn.LocalAddr()
}

// readLoop reads datagrams and sends them to the messages channel.
func (c *client) readLoop() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	buf := make([]byte, maxDatagram)
	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.conn.SetReadDeadline(time.Now().Add(c.cfg.ReadTimeout))
		n, err := c.conn.Read(buf)
		receivedAt := time.Now()

		if err != nil {
			var nerr net.Error
			if errors.As(err, &nerr) && nerr.Timeout() {
				c.checkStale(receivedAt)
				continue
			}
			// Ignore errors after Close() is called
			select {
			case <-c.done:
				return
			default:
				select {
				case c.errors <- err:
				default:
				}
				return
			}
		}

		c.mu.Lock()
		c.lastRecv = receivedAt
		if c.stale {
			c.stale = false
			c.logger.Info("feed traffic resumed", "feed", c.name)
		}
		c.mu.Unlock()

		data := make([]byte, n)
		copy(data, buf[:n])
		msg := RawMessage{
			Data:       data,
			Feed:       c.name,
			ReceivedAt: receivedAt,
		}

		select {
		case c.messages <- msg:
		case <-c.done:
			return
		default:
			c.logger.Warn("message buffer full, dropping datagram", "feed", c.name)
		}
	}
}

// checkStale logs once when the feed has been silent for StaleTimeout.
func (c *client) checkStale(now time.Time) {
	if c.cfg.StaleTimeout <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stale && now.Sub(c.lastRecv) > c.cfg.StaleTimeout {
		c.stale = true
		c.logger.Warn("no datagrams received, feed stale",
			"feed", c.name,
			"last_datagram", c.lastRecv,
			"timeout", c.cfg.StaleTimeout,
			"error", ErrStaleConnection,
		)
	}
}
