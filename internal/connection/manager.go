package connection

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Manager runs one Client per feed and merges their datagrams.
type Manager interface {
	// Start joins every feed. Feeds that fail to join are retried in the
	// background.
	Start(ctx context.Context) error

	// Stop gracefully shuts down.
	Stop(ctx context.Context) error

	// Next returns the next datagram from any feed. It returns io.EOF
	// after Stop.
	Next(ctx context.Context) ([]byte, error)

	// NextFrom is Next that also names the feed the datagram came from.
	NextFrom(ctx context.Context) (feed string, data []byte, err error)

	// Messages returns the merged output channel.
	Messages() <-chan RawMessage

	// Stats returns per-feed statistics.
	Stats() ManagerStats
}

// ManagerStats provides statistics about the feeds.
type ManagerStats struct {
	Feeds []FeedStats `json:"feeds"`
}

// FeedStats describes one feed.
type FeedStats struct {
	Name       string `json:"name"`
	Group      string `json:"group"`
	Connected  bool   `json:"connected"`
	LocalAddr  string `json:"local_addr,omitempty"`
	Packets    int64  `json:"packets"`
	Bytes      int64  `json:"bytes"`
	Dropped    int64  `json:"dropped"`
	Reconnects int64  `json:"reconnects"`
}

// feedState holds the state for a single feed.
type feedState struct {
	feed   Feed
	client Client

	packets    int64
	bytes      int64
	dropped    int64
	reconnects int64
}

// manager implements the Manager interface.
type manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	// Output to the router
	out chan RawMessage

	// dial creates the client of a feed.
	dial func(Feed) Client

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	feeds []*feedState
}

// NewManager creates a feed Manager.
func NewManager(cfg ManagerConfig, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MessageBufferSize <= 0 {
		cfg.MessageBufferSize = DefaultManagerConfig().MessageBufferSize
	}
	if cfg.ReconnectBaseWait <= 0 {
		cfg.ReconnectBaseWait = DefaultManagerConfig().ReconnectBaseWait
	}
	if cfg.ReconnectMaxWait < cfg.ReconnectBaseWait {
		cfg.ReconnectMaxWait = cfg.ReconnectBaseWait
	}

	m := &manager{
		cfg:    cfg,
		logger: logger,
		out:    make(chan RawMessage, cfg.MessageBufferSize),
	}
	m.dial = m.newClient
	return m
}

// Start joins all feeds.
func (m *manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	for _, f := range m.cfg.Feeds {
		st := &feedState{feed: f}
		client := m.dial(f)
		if err := client.Connect(m.ctx); err != nil {
			m.logger.Warn("failed to join feed", "feed", f.Name, "group", f.Group, "error", err)
			// Continue - will reconnect later
		} else {
			st.client = client
		}

		m.mu.Lock()
		m.feeds = append(m.feeds, st)
		m.mu.Unlock()

		m.wg.Add(1)
		go m.readLoop(st)
	}

	m.logger.Info("feed manager started", "feeds", len(m.cfg.Feeds))
	return nil
}

// Stop gracefully shuts down.
func (m *manager) Stop(ctx context.Context) error {
	m.logger.Info("stopping feed manager")

	if m.cancel != nil {
		m.cancel()
	}

	m.mu.RLock()
	for _, st := range m.feeds {
		if st.client != nil {
			st.client.Close()
		}
	}
	m.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		close(m.out)
		m.logger.Info("feed manager stopped")
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout, feeds still draining")
	}
	return nil
}

// Next returns the next datagram from any feed.
func (m *manager) Next(ctx context.Context) ([]byte, error) {
	_, data, err := m.NextFrom(ctx)
	return data, err
}

// NextFrom returns the next datagram and the name of its feed.
func (m *manager) NextFrom(ctx context.Context) (string, []byte, error) {
	select {
	case msg, ok := <-m.out:
		if !ok {
			return "", nil, io.EOF
		}
		return msg.Feed, msg.Data, nil
	case <-ctx.Done():
		return "", nil, ctx.Err()
	}
}

// Messages returns the output channel.
func (m *manager) Messages() <-chan RawMessage {
	return m.out
}

// Stats returns current statistics.
func (m *manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := ManagerStats{Feeds: make([]FeedStats, 0, len(m.feeds))}
	for _, st := range m.feeds {
		fs := FeedStats{
			Name:       st.feed.Name,
			Group:      st.feed.Group,
			Packets:    st.packets,
			Bytes:      st.bytes,
			Dropped:    st.dropped,
			Reconnects: st.reconnects,
		}
		if st.client != nil {
			fs.Connected = st.client.IsConnected()
			if addr := st.client.LocalAddr(); addr != nil {
				fs.LocalAddr = addr.String()
			}
		}
		stats.Feeds = append(stats.Feeds, fs)
	}
	return stats
}

func (m *manager) newClient(f Feed) Client {
	cfg := m.cfg.Client
	cfg.Group = f.Group
	return NewClient(f.Name, cfg, m.logger.With("feed", f.Name))
}

// readLoop forwards datagrams of one feed to the merged channel.
func (m *manager) readLoop(st *feedState) {
	defer m.wg.Done()

	m.mu.RLock()
	client := st.client
	m.mu.RUnlock()
	defer func() {
		if client != nil {
			client.Close()
		}
	}()

	for {
		if client == nil {
			if client = m.reconnect(st); client == nil {
				return
			}
		}

		select {
		case <-m.ctx.Done():
			return

		case err := <-client.Errors():
			m.logger.Warn("feed error", "feed", st.feed.Name, "error", err)
			client.Close()
			client = nil
			m.mu.Lock()
			st.client = nil
			m.mu.Unlock()

		case msg := <-client.Messages():
			m.mu.Lock()
			st.packets++
			st.bytes += int64(len(msg.Data))
			m.mu.Unlock()

			select {
			case m.out <- msg:
			case <-m.ctx.Done():
				return
			default:
				m.mu.Lock()
				st.dropped++
				m.mu.Unlock()
				m.logger.Warn("message buffer full, dropping", "feed", st.feed.Name)
			}
		}
	}
}

// reconnect attempts to rejoin a feed with exponential backoff. It returns
// nil when the manager is stopping.
func (m *manager) reconnect(st *feedState) Client {
	wait := m.cfg.ReconnectBaseWait
	maxWait := m.cfg.ReconnectMaxWait

	for {
		select {
		case <-m.ctx.Done():
			return nil
		case <-time.After(wait):
		}

		m.logger.Info("attempting reconnection", "feed", st.feed.Name)

		client := m.dial(st.feed)
		if err := client.Connect(m.ctx); err != nil {
			m.logger.Warn("reconnection failed", "feed", st.feed.Name, "error", err)

			// Exponential backoff
			wait *= 2
			if wait > maxWait {
				wait = maxWait
			}
			continue
		}

		m.mu.Lock()
		st.client = client
		st.reconnects++
		m.mu.Unlock()

		m.logger.Info("reconnected", "feed", st.feed.Name)
		return client
	}
}
