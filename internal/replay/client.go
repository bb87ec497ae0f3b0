package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/rickgao/bmv-data/internal/framer"
	"github.com/rickgao/bmv-data/internal/model"
)

// Phase is the client's position in a replay session.
type Phase int

const (
	PhaseDisconnected Phase = iota
	PhaseAwaitingLoginReply
	PhaseLoggedIn
	PhaseAwaitingReplayReply
	PhaseStreaming
	PhaseRejected
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseDisconnected:
		return "disconnected"
	case PhaseAwaitingLoginReply:
		return "awaiting_login_reply"
	case PhaseLoggedIn:
		return "logged_in"
	case PhaseAwaitingReplayReply:
		return "awaiting_replay_reply"
	case PhaseStreaming:
		return "streaming"
	case PhaseRejected:
		return "rejected"
	case PhaseClosed:
		return "closed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ErrWrongPhase is returned when a call does not fit the session phase.
var ErrWrongPhase = errors.New("wrong session phase")

// ClientConfig holds replay client settings.
type ClientConfig struct {
	Addr        string
	Group       model.Group
	User        string
	Password    string
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Addr:        "localhost:10000",
		Group:       model.Producto18,
		DialTimeout: 5 * time.Second,
		ReadTimeout: 30 * time.Second,
	}
}

// Client runs one replay session.
type Client struct {
	cfg    ClientConfig
	conn   net.Conn
	logger *slog.Logger

	phase     Phase
	remaining int
}

// Dial connects to the replay server.
func Dial(ctx context.Context, cfg ClientConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultClientConfig()
	if cfg.Group == 0 {
		cfg.Group = def.Group
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = def.DialTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}

	d := net.Dialer{Timeout: cfg.DialTimeout}
	conn, err := d.DialContext(ctx, "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", cfg.Addr, err)
	}
	logger.Debug("connected to replay server", "addr", cfg.Addr)

	return &Client{
		cfg:    cfg,
		conn:   conn,
		logger: logger,
		phase:  PhaseDisconnected,
	}, nil
}

// Phase returns the current session phase.
func (c *Client) Phase() Phase {
	return c.phase
}

// Login sends the login request and waits for the reply. A rejection
// closes the connection and returns a *StatusError.
func (c *Client) Login(ctx context.Context) error {
	if c.phase != PhaseDisconnected {
		return fmt.Errorf("login in phase %s: %w", c.phase, ErrWrongPhase)
	}
	req, err := LoginRequest{Group: c.cfg.Group, User: c.cfg.User, Password: c.cfg.Password}.MarshalBinary()
	if err != nil {
		return err
	}

	c.phase = PhaseAwaitingLoginReply
	raw, err := c.exchange(ctx, req, LoginResponseLen)
	if err != nil {
		return c.fail(fmt.Errorf("login: %w", err))
	}
	resp, err := DecodeLoginResponse(raw)
	if err != nil {
		return c.fail(err)
	}
	if resp.Status != StatusAccepted {
		return c.reject(&StatusError{Request: "login", Status: resp.Status})
	}

	c.phase = PhaseLoggedIn
	c.logger.Debug("login accepted", "user", c.cfg.User)
	return nil
}

// RequestReplay asks for qty packets starting at first. On acceptance the
// client moves to streaming and Next returns the packets.
func (c *Client) RequestReplay(ctx context.Context, first int32, qty int16) error {
	if c.phase != PhaseLoggedIn {
		return fmt.Errorf("replay in phase %s: %w", c.phase, ErrWrongPhase)
	}
	req, _ := ReplayRequest{Group: c.cfg.Group, First: first, Quantity: qty}.MarshalBinary()

	c.phase = PhaseAwaitingReplayReply
	raw, err := c.exchange(ctx, req, ReplayResponseLen)
	if err != nil {
		return c.fail(fmt.Errorf("replay: %w", err))
	}
	resp, err := DecodeReplayResponse(raw)
	if err != nil {
		return c.fail(err)
	}
	if resp.Status != StatusAccepted {
		return c.reject(&StatusError{Request: "replay", Status: resp.Status})
	}

	c.phase = PhaseStreaming
	c.remaining = int(qty)
	c.logger.Debug("replay accepted", "first", first, "quantity", qty)
	return nil
}

// Next returns the next streamed packet. It returns io.EOF once every
// requested packet was read and closes the connection. A short read ends
// the session with io.ErrUnexpectedEOF.
func (c *Client) Next(ctx context.Context) ([]byte, error) {
	if c.phase == PhaseClosed {
		return nil, io.EOF
	}
	if c.phase != PhaseStreaming {
		return nil, fmt.Errorf("next in phase %s: %w", c.phase, ErrWrongPhase)
	}
	if c.remaining == 0 {
		c.Close()
		return nil, io.EOF
	}

	c.setDeadline(ctx)
	head := make([]byte, framer.HeaderLen)
	if _, err := io.ReadFull(c.conn, head); err != nil {
		return nil, c.fail(fmt.Errorf("read packet header: %w", shortRead(err)))
	}
	length := int(head[0])<<8 | int(head[1])
	if length < framer.HeaderLen {
		return nil, c.fail(fmt.Errorf("packet length %d: %w", length, ErrMalformed))
	}

	pkt := make([]byte, length)
	copy(pkt, head)
	if _, err := io.ReadFull(c.conn, pkt[framer.HeaderLen:]); err != nil {
		return nil, c.fail(fmt.Errorf("read packet body: %w", shortRead(err)))
	}
	c.remaining--
	return pkt, nil
}

// Fetch logs in if needed, requests the range and collects every packet.
func (c *Client) Fetch(ctx context.Context, first int32, qty int16) ([][]byte, error) {
	if c.phase == PhaseDisconnected {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}
	if err := c.RequestReplay(ctx, first, qty); err != nil {
		return nil, err
	}

	out := make([][]byte, 0, qty)
	for {
		pkt, err := c.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, pkt)
	}
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.phase == PhaseClosed || c.phase == PhaseRejected {
		return nil
	}
	c.phase = PhaseClosed
	return c.conn.Close()
}

func (c *Client) exchange(ctx context.Context, req []byte, respLen int) ([]byte, error) {
	c.setDeadline(ctx)
	if _, err := c.conn.Write(req); err != nil {
		return nil, err
	}
	resp := make([]byte, respLen)
	if _, err := io.ReadFull(c.conn, resp); err != nil {
		return nil, shortRead(err)
	}
	return resp, nil
}

func (c *Client) setDeadline(ctx context.Context) {
	deadline := time.Now().Add(c.cfg.ReadTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetDeadline(deadline)
}

func (c *Client) fail(err error) error {
	c.conn.Close()
	c.phase = PhaseClosed
	return err
}

func (c *Client) reject(err *StatusError) error {
	c.conn.Close()
	c.phase = PhaseRejected
	return err
}

// shortRead maps a connection closed mid-frame to io.ErrUnexpectedEOF.
func shortRead(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
