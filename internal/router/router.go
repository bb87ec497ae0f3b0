package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/rickgao/bmv-data/internal/framer"
	"github.com/rickgao/bmv-data/internal/metrics"
	"github.com/rickgao/bmv-data/internal/model"
	"github.com/rickgao/bmv-data/internal/sequence"
	"github.com/rickgao/bmv-data/internal/writer"
)

// Source yields raw packets. Next returns io.EOF when the source is exhausted.
type Source interface {
	Next(ctx context.Context) ([]byte, error)
}

// FeedSource is a Source that also names the feed each packet came from.
// Run prefers NextFrom when a source implements it, so redundant feeds get
// their own sequence trackers.
type FeedSource interface {
	Source
	NextFrom(ctx context.Context) (feed string, raw []byte, err error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]byte, error)

// Next calls f.
func (f SourceFunc) Next(ctx context.Context) ([]byte, error) { return f(ctx) }

// PacketSink receives every packet that decoded cleanly, e.g. a replay store.
type PacketSink interface {
	StorePacket(raw []byte) error
}

// RouterConfig holds configuration for the Router.
type RouterConfig struct {
	// Groups accepted; packets of other groups are counted and ignored.
	Groups []model.Group

	// Dedupe drops packets whose messages were all delivered already,
	// whichever feed carried them. Enable when feed A and feed B share
	// one router.
	Dedupe bool
}

// DefaultRouterConfig returns default configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		Groups: []model.Group{model.Producto18, model.Producto40},
	}
}

// Router processes packets from any number of sources. Packets are
// processed one at a time so derived records keep arrival order.
type Router struct {
	cfg    RouterConfig
	logger *slog.Logger

	framer *framer.Framer
	out    writer.Writer
	sinks  []PacketSink
	stats  *metrics.Statistics

	mu       sync.Mutex
	trackers map[trackerKey]*sequence.Tracker
	windows  map[model.Group]*seenWindow
}

// trackerKey partitions sequence tracking by feed and group.
type trackerKey struct {
	feed  string
	group model.Group
}

// Option configures a Router.
type Option func(*Router)

// WithSink stores every cleanly decoded packet in each sink.
func WithSink(sinks ...PacketSink) Option {
	return func(r *Router) {
		for _, s := range sinks {
			if s != nil {
				r.sinks = append(r.sinks, s)
			}
		}
	}
}

// WithStatistics records into stats instead of a private aggregator.
func WithStatistics(stats *metrics.Statistics) Option {
	return func(r *Router) { r.stats = stats }
}

// NewRouter creates a Router writing decoded records to out.
func NewRouter(cfg RouterConfig, fr *framer.Framer, out writer.Writer, logger *slog.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	if fr == nil {
		fr = framer.New(nil)
	}
	if len(cfg.Groups) == 0 {
		cfg.Groups = DefaultRouterConfig().Groups
	}
	r := &Router{
		cfg:       cfg,
		logger:    logger,
		framer:    fr,
		out:       out,
		trackers: make(map[trackerKey]*sequence.Tracker),
		windows:  make(map[model.Group]*seenWindow),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.stats == nil {
		r.stats = metrics.NewStatistics()
	}
	return r
}

// Stats returns the current statistics.
func (r *Router) Stats() metrics.Snapshot {
	return r.stats.Snapshot()
}

// Run pulls packets from src until it is exhausted or ctx is cancelled.
// It returns nil at io.EOF.
func (r *Router) Run(ctx context.Context, src Source) error {
	next := func(ctx context.Context) (string, []byte, error) {
		raw, err := src.Next(ctx)
		return "", raw, err
	}
	if fs, ok := src.(FeedSource); ok {
		next = fs.NextFrom
	}

	for {
		feed, raw, err := next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("reading packet: %w", err)
		}
		r.ProcessFrom(ctx, feed, raw)
	}
}

// Process decodes one packet of an unnamed feed and delivers its records.
// The returned error is the packet-level failure, already logged and counted.
func (r *Router) Process(ctx context.Context, raw []byte) error {
	return r.ProcessFrom(ctx, "", raw)
}

// ProcessFrom is Process for a packet received on the named feed.
func (r *Router) ProcessFrom(ctx context.Context, feed string, raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, err := framer.DecodeHeader(raw)
	if err != nil {
		r.packetError(feed, 0, err)
		return err
	}
	if !slices.Contains(r.cfg.Groups, h.Group) {
		r.stats.RecordFiltered()
		return nil
	}
	if r.cfg.Dedupe && r.duplicate(h) {
		r.observe(feed, h)
		r.stats.RecordDuplicate()
		return nil
	}

	pkt, err := r.framer.Decode(raw)
	if pkt == nil {
		r.packetError(feed, h.Group, err)
		return err
	}

	for _, f := range pkt.Frames {
		r.stats.RecordFrame(f.Tag, f.Length)
	}
	for _, rej := range pkt.Rejected {
		r.logger.Warn("frame rejected",
			"sequence", rej.Sequence,
			"type", rej.Tag,
			"error", rej.Err,
		)
	}
	if pkt.Unknown > 0 {
		r.logger.Debug("skipped unknown message types",
			"sequence", h.Sequence,
			"count", pkt.Unknown,
		)
	}

	if err == nil {
		r.observe(feed, h)
		if r.cfg.Dedupe {
			r.window(h.Group).mark(h)
		}
	}
	r.deliver(ctx, pkt.Messages)

	if err != nil {
		r.packetError(feed, h.Group, err)
		return err
	}
	r.stats.RecordPacket(len(pkt.Messages), len(pkt.Rejected), pkt.Unknown)

	for _, sink := range r.sinks {
		if err := sink.StorePacket(raw); err != nil {
			r.logger.Debug("packet not stored", "sequence", h.Sequence, "error", err)
		}
	}
	return nil
}

func (r *Router) tracker(feed string, g model.Group) *sequence.Tracker {
	k := trackerKey{feed: feed, group: g}
	t, ok := r.trackers[k]
	if !ok {
		t = sequence.New()
		r.trackers[k] = t
	}
	return t
}

func (r *Router) window(g model.Group) *seenWindow {
	w, ok := r.windows[g]
	if !ok {
		w = newSeenWindow()
		r.windows[g] = w
	}
	return w
}

func (r *Router) observe(feed string, h framer.Header) {
	a := r.tracker(feed, h.Group).Observe(h.Sequence, h.MessageCount)
	switch a.Kind {
	case sequence.Gap:
		r.logger.Warn("sequence gap detected",
			"feed", feed,
			"group", uint8(h.Group),
			"from", a.Expected,
			"to", a.Got,
			"missing", a.Missing(),
		)
	case sequence.OutOfOrder:
		r.logger.Warn("sequence out of order",
			"feed", feed,
			"group", uint8(h.Group),
			"expected", a.Expected,
			"got", a.Got,
		)
	default:
		return
	}
	r.stats.RecordAnomaly(a)
}

// duplicate reports whether every message of h was delivered already.
// A new session forgets what the group delivered before.
func (r *Router) duplicate(h framer.Header) bool {
	w := r.window(h.Group)
	if w.restarted(h) {
		r.logger.Info("sequence restart detected",
			"group", uint8(h.Group),
			"session", h.Session,
			"sequence", h.Sequence,
		)
		w.reset()
	}
	return w.covers(h)
}

func (r *Router) deliver(ctx context.Context, msgs []model.Message) {
	if r.out == nil {
		return
	}
	for _, m := range msgs {
		if err := r.out.Write(ctx, m); err != nil {
			r.stats.RecordWriteError()
			r.logger.Error("write failed", "key", m.Meta().Key, "error", err)
		}
	}
}

// packetError counts a packet that could not be fully decoded and forgets
// the expected sequence of its feed and group, along with what the group
// delivered. g is zero when the header itself was unreadable, in which
// case every tracker and window is reset.
func (r *Router) packetError(feed string, g model.Group, err error) {
	r.stats.RecordPacketError()
	r.logger.Warn("packet decode failed", "feed", feed, "error", err)

	if g != 0 {
		r.tracker(feed, g).Reset()
		if w, ok := r.windows[g]; ok {
			w.reset()
		}
		return
	}
	for _, t := range r.trackers {
		t.Reset()
	}
	for _, w := range r.windows {
		w.reset()
	}
}
