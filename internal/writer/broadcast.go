package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rickgao/bmv-data/internal/model"
)

// BroadcastConfig configures the websocket fan-out.
type BroadcastConfig struct {
	QueueSize    int           // initial per-subscriber queue capacity
	MaxQueueSize int           // records beyond this are dropped for slow subscribers
	WriteTimeout time.Duration // per-frame write deadline
	PingInterval time.Duration
	PongTimeout  time.Duration
}

// DefaultBroadcastConfig returns the default broadcaster settings.
func DefaultBroadcastConfig() BroadcastConfig {
	return BroadcastConfig{
		QueueSize:    256,
		MaxQueueSize: 65536,
		WriteTimeout: 5 * time.Second,
		PingInterval: 20 * time.Second,
		PongTimeout:  60 * time.Second,
	}
}

// BroadcastStats summarizes broadcaster activity.
type BroadcastStats struct {
	Subscribers int
	Written     int64
	Dropped     int64
}

// subscriber is one websocket connection. types filters by wire tag;
// an empty set receives everything.
type subscriber struct {
	id    string
	conn  *websocket.Conn
	types map[string]bool
	queue *Queue[[]byte]
	once  sync.Once
}

func (s *subscriber) wants(tag string) bool {
	return len(s.types) == 0 || s.types[tag]
}

// Broadcaster streams records to websocket subscribers as JSON text frames.
// Subscribers may pass ?types=P,O to receive only those record types.
type Broadcaster struct {
	cfg      BroadcastConfig
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*subscriber]struct{}
	closed  bool
	wg      sync.WaitGroup

	// Metrics
	written int64
	dropped int64
}

// NewBroadcaster creates a broadcaster. Mount it on an http.ServeMux.
func NewBroadcaster(cfg BroadcastConfig, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		cfg:    cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16384,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*subscriber]struct{}),
	}
}

// ServeHTTP upgrades the request and registers a subscriber.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sub := &subscriber{
		id:    uuid.NewString(),
		conn:  conn,
		types: parseTypes(r.URL.Query().Get("types")),
		queue: NewQueue[[]byte](b.cfg.QueueSize, b.cfg.MaxQueueSize),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		conn.Close()
		return
	}
	b.clients[sub] = struct{}{}
	b.wg.Add(2)
	b.mu.Unlock()

	b.logger.Info("subscriber connected", "id", sub.id, "remote", r.RemoteAddr)

	go b.writeLoop(sub)
	go b.readLoop(sub)
}

// Write encodes msg once and queues it for every interested subscriber.
func (b *Broadcaster) Write(_ context.Context, msg model.Message) error {
	tag := msg.Meta().TipoMensaje

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.clients) == 0 {
		return nil
	}

	var data []byte
	for sub := range b.clients {
		if !sub.wants(tag) {
			continue
		}
		if data == nil {
			var err error
			if data, err = json.Marshal(msg); err != nil {
				return fmt.Errorf("encoding %s record: %w", msg.Type(), err)
			}
		}
		if sub.queue.Send(data) {
			b.written++
		} else {
			b.dropped++
		}
	}
	return nil
}

// Close disconnects every subscriber.
func (b *Broadcaster) Close() error {
	b.mu.Lock()
	b.closed = true
	subs := make([]*subscriber, 0, len(b.clients))
	for sub := range b.clients {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		b.drop(sub, websocket.CloseGoingAway, "server shutting down")
	}
	b.wg.Wait()
	return nil
}

// Stats returns current metrics.
func (b *Broadcaster) Stats() BroadcastStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BroadcastStats{
		Subscribers: len(b.clients),
		Written:     b.written,
		Dropped:     b.dropped,
	}
}

// writeLoop drains the subscriber queue onto the connection and pings
// on an interval.
func (b *Broadcaster) writeLoop(sub *subscriber) {
	defer b.wg.Done()

	if b.cfg.PingInterval > 0 {
		stop := make(chan struct{})
		defer close(stop)
		go b.pingLoop(sub, stop)
	}

	for {
		data, ok := sub.queue.Receive()
		if !ok {
			return
		}
		if b.cfg.WriteTimeout > 0 {
			sub.conn.SetWriteDeadline(time.Now().Add(b.cfg.WriteTimeout))
		}
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			b.logger.Warn("subscriber write failed", "id", sub.id, "error", err)
			b.drop(sub, websocket.CloseInternalServerErr, "write failed")
			return
		}
	}
}

func (b *Broadcaster) pingLoop(sub *subscriber, stop <-chan struct{}) {
	ticker := time.NewTicker(b.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			deadline := time.Now().Add(b.cfg.WriteTimeout)
			if err := sub.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

// readLoop discards client frames and detects disconnects.
func (b *Broadcaster) readLoop(sub *subscriber) {
	defer b.wg.Done()

	if b.cfg.PongTimeout > 0 {
		sub.conn.SetReadDeadline(time.Now().Add(b.cfg.PongTimeout))
		sub.conn.SetPongHandler(func(string) error {
			return sub.conn.SetReadDeadline(time.Now().Add(b.cfg.PongTimeout))
		})
	}

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			b.drop(sub, websocket.CloseNormalClosure, "")
			return
		}
	}
}

func (b *Broadcaster) drop(sub *subscriber, code int, reason string) {
	sub.once.Do(func() {
		b.mu.Lock()
		delete(b.clients, sub)
		b.mu.Unlock()

		sub.queue.Close()
		sub.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(code, reason),
			time.Now().Add(time.Second),
		)
		sub.conn.Close()

		stats := sub.queue.Stats()
		b.logger.Info("subscriber disconnected",
			"id", sub.id,
			"sent", stats.TotalSent,
			"dropped", stats.Dropped,
		)
	})
}

func parseTypes(s string) map[string]bool {
	if s == "" {
		return nil
	}
	types := make(map[string]bool)
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types[t] = true
		}
	}
	return types
}
