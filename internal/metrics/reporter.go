package metrics

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SnapshotSource provides the statistics to report.
type SnapshotSource interface {
	Stats() Snapshot
}

// SnapshotSourceFunc is a function adapter for SnapshotSource.
type SnapshotSourceFunc func() Snapshot

func (f SnapshotSourceFunc) Stats() Snapshot { return f() }

// ReporterConfig holds reporter configuration.
type ReporterConfig struct {
	Interval time.Duration // Report interval (default: 1m)
}

// DefaultReporterConfig returns sensible defaults.
func DefaultReporterConfig() ReporterConfig {
	return ReporterConfig{Interval: time.Minute}
}

// Rates is the change between two snapshots.
type Rates struct {
	Elapsed        time.Duration
	Packets        uint64
	Messages       uint64
	PacketErrors   uint64
	RejectedFrames uint64
	Gaps           uint64
	Missing        uint64
}

// PacketsPerSecond returns the packet rate over the interval.
func (r Rates) PacketsPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Packets) / r.Elapsed.Seconds()
}

// MessagesPerSecond returns the message rate over the interval.
func (r Rates) MessagesPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Messages) / r.Elapsed.Seconds()
}

// Diff returns the counters accumulated between prev and cur.
func Diff(prev, cur Snapshot, elapsed time.Duration) Rates {
	return Rates{
		Elapsed:        elapsed,
		Packets:        cur.Packets - prev.Packets,
		Messages:       cur.Messages - prev.Messages,
		PacketErrors:   cur.PacketErrors - prev.PacketErrors,
		RejectedFrames: cur.RejectedFrames - prev.RejectedFrames,
		Gaps:           cur.Gaps - prev.Gaps,
		Missing:        cur.Missing - prev.Missing,
	}
}

// Reporter periodically logs ingestion rates.
type Reporter struct {
	cfg    ReporterConfig
	source SnapshotSource
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	last     Snapshot
	lastAt   time.Time
	lastRate Rates

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReporter creates a Reporter.
func NewReporter(cfg ReporterConfig, source SnapshotSource, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultReporterConfig().Interval
	}
	return &Reporter{
		cfg:    cfg,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Start begins the reporting loop.
func (r *Reporter) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.mu.Lock()
	r.last = r.source.Stats()
	r.lastAt = r.now()
	r.mu.Unlock()

	r.wg.Add(1)
	go r.run()

	r.logger.Info("statistics reporter started", "interval", r.cfg.Interval)
	return nil
}

// Stop gracefully shuts down the reporter.
func (r *Reporter) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Last returns the rates of the latest report.
func (r *Reporter) Last() Rates {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRate
}

// run is the main reporting loop.
func (r *Reporter) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.report()
		}
	}
}

// report logs the rates since the previous report.
func (r *Reporter) report() Rates {
	cur := r.source.Stats()
	now := r.now()

	r.mu.Lock()
	rates := Diff(r.last, cur, now.Sub(r.lastAt))
	r.last, r.lastAt, r.lastRate = cur, now, rates
	r.mu.Unlock()

	level := slog.LevelInfo
	if rates.Gaps > 0 || rates.PacketErrors > 0 {
		level = slog.LevelWarn
	}
	r.logger.Log(r.ctx, level, "ingestion statistics",
		"packets", rates.Packets,
		"messages", rates.Messages,
		"packets_per_sec", rates.PacketsPerSecond(),
		"messages_per_sec", rates.MessagesPerSecond(),
		"packet_errors", rates.PacketErrors,
		"rejected_frames", rates.RejectedFrames,
		"gaps", rates.Gaps,
		"missing", rates.Missing,
		"total_messages", cur.Messages,
	)
	return rates
}
