package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/bmv-data/internal/model"
)

// Authenticator checks login credentials.
type Authenticator interface {
	Verify(user, password string) error
}

// ServerConfig holds replay server settings.
type ServerConfig struct {
	// Addr is the TCP listen address.
	Addr string

	// Group is the only producto served.
	Group model.Group

	// MaxQuantity is the largest accepted replay quantity.
	MaxQuantity int

	// ReadTimeout bounds each request read.
	ReadTimeout time.Duration

	// WriteTimeout bounds each response or packet write.
	WriteTimeout time.Duration
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         ":10000",
		Group:        model.Producto18,
		MaxQuantity:  10000,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// ServerStats counts sessions by outcome.
type ServerStats struct {
	Connections    int64 `json:"connections"`
	LoginsRejected int64 `json:"logins_rejected"`
	ReplaysServed  int64 `json:"replays_served"`
	ReplaysRefused int64 `json:"replays_refused"`
	PacketsSent    int64 `json:"packets_sent"`
	Failed         int64 `json:"failed"`
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAuthenticator requires logins to pass a.
func WithAuthenticator(a Authenticator) ServerOption {
	return func(s *Server) { s.auth = a }
}

// Server answers replay sessions one connection at a time.
type Server struct {
	cfg    ServerConfig
	src    Source
	auth   Authenticator
	logger *slog.Logger
	now    func() time.Time

	ln     net.Listener
	cancel context.CancelFunc
	wg     sync.WaitGroup

	connections    atomic.Int64
	loginsRejected atomic.Int64
	replaysServed  atomic.Int64
	replaysRefused atomic.Int64
	packetsSent    atomic.Int64
	failed         atomic.Int64
}

// NewServer creates a Server streaming packets from src.
func NewServer(cfg ServerConfig, src Source, logger *slog.Logger, opts ...ServerOption) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultServerConfig()
	if cfg.Group == 0 {
		cfg.Group = def.Group
	}
	if cfg.MaxQuantity <= 0 {
		cfg.MaxQuantity = def.MaxQuantity
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}

	s := &Server{
		cfg:    cfg,
		src:    src,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start listens on cfg.Addr and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	s.ln = ln

	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Serve(ctx, ln)
	}()

	s.logger.Info("replay server listening", "addr", ln.Addr().String(), "group", s.cfg.Group)
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Stop closes the listener and waits for the current session to end.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping replay server")
	if s.cancel != nil {
		s.cancel()
	}
	if s.ln != nil {
		s.ln.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Serve accepts connections from ln until ctx is cancelled or ln is
// closed. Each connection is handled to completion before the next
// Accept.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn("accept failed", "error", err)
			continue
		}
		s.handle(ctx, conn)
	}
}

// Stats returns a snapshot of the counters.
func (s *Server) Stats() ServerStats {
	return ServerStats{
		Connections:    s.connections.Load(),
		LoginsRejected: s.loginsRejected.Load(),
		ReplaysServed:  s.replaysServed.Load(),
		ReplaysRefused: s.replaysRefused.Load(),
		PacketsSent:    s.packetsSent.Load(),
		Failed:         s.failed.Load(),
	}
}

// session is one connection's state.
type session struct {
	*Server
	conn   net.Conn
	logger *slog.Logger
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	s.connections.Add(1)
	sess := &session{
		Server: s,
		conn:   conn,
		logger: s.logger.With("session", uuid.NewString(), "remote", conn.RemoteAddr().String()),
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	defer conn.Close()

	sess.logger.Info("replay client connected")
	if err := sess.run(); err != nil {
		s.failed.Add(1)
		sess.logger.Warn("replay session ended", "error", err)
		return
	}
	sess.logger.Info("replay session closed")
}

func (s *session) run() error {
	var login LoginRequest
	raw, err := s.readFrame(LoginRequestLen)
	if err != nil {
		return fmt.Errorf("read login: %w", err)
	}
	if err := login.UnmarshalBinary(raw); err != nil {
		return err
	}

	status := s.checkLogin(login)
	if err := s.write(AppendLoginResponse(nil, LoginResponse{Status: status}, s.now())); err != nil {
		return fmt.Errorf("write login response: %w", err)
	}
	if status != StatusAccepted {
		s.loginsRejected.Add(1)
		s.logger.Info("login rejected", "group", login.Group, "user", login.User, "status", status)
		return nil
	}
	s.logger.Info("login accepted", "user", login.User)

	var req ReplayRequest
	raw, err = s.readFrame(ReplayRequestLen)
	if err != nil {
		return fmt.Errorf("read replay request: %w", err)
	}
	if err := req.UnmarshalBinary(raw); err != nil {
		return err
	}

	status = s.checkReplay(req)
	resp := ReplayResponse{Status: status}
	if status == StatusAccepted {
		resp = ReplayResponse{Group: req.Group, First: req.First, Quantity: req.Quantity, Status: status}
	}
	if err := s.write(AppendReplayResponse(nil, resp, s.now())); err != nil {
		return fmt.Errorf("write replay response: %w", err)
	}
	if status != StatusAccepted {
		s.replaysRefused.Add(1)
		s.logger.Info("replay rejected",
			"group", req.Group,
			"first", req.First,
			"quantity", req.Quantity,
			"status", status,
		)
		return nil
	}

	s.logger.Info("replay accepted", "first", req.First, "quantity", req.Quantity)
	first := uint32(req.First)
	for i := 0; i < int(req.Quantity); i++ {
		pkt, err := s.src.Packet(first + uint32(i))
		if err != nil {
			return fmt.Errorf("build packet %d: %w", first+uint32(i), err)
		}
		if err := s.write(pkt); err != nil {
			return fmt.Errorf("write packet %d: %w", first+uint32(i), err)
		}
		s.packetsSent.Add(1)
	}
	s.replaysServed.Add(1)
	return nil
}

func (s *session) checkLogin(req LoginRequest) Status {
	if req.Group != s.cfg.Group {
		return StatusWrongGroup
	}
	if s.auth != nil {
		if err := s.auth.Verify(req.User, req.Password); err != nil {
			return StatusBadCredentials
		}
	}
	return StatusAccepted
}

func (s *session) checkReplay(req ReplayRequest) Status {
	switch {
	case req.Group != s.cfg.Group:
		return StatusWrongGroup
	case req.First < 0:
		return StatusInvalidFirst
	case req.Quantity <= 0 || int(req.Quantity) > s.cfg.MaxQuantity:
		return StatusInvalidQuantity
	case !s.src.Contains(uint32(req.First), int(req.Quantity)):
		return StatusInvalidFirst
	}
	return StatusAccepted
}

// readFrame reads a request whose first byte must equal size. A wrong
// length byte returns ErrMalformed without reading further.
func (s *session) readFrame(size int) ([]byte, error) {
	s.conn.SetReadDeadline(s.now().Add(s.cfg.ReadTimeout))
	buf := make([]byte, size)
	if _, err := io.ReadFull(s.conn, buf[:1]); err != nil {
		return nil, err
	}
	if int(buf[0]) != size {
		return nil, fmt.Errorf("%w: length byte %d, want %d", ErrMalformed, buf[0], size)
	}
	if _, err := io.ReadFull(s.conn, buf[1:]); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *session) write(b []byte) error {
	s.conn.SetWriteDeadline(s.now().Add(s.cfg.WriteTimeout))
	_, err := s.conn.Write(b)
	return err
}
