package writer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	lumberjack "github.com/elastic/go-lumber/client/v2"

	"github.com/rickgao/bmv-data/internal/model"
	"github.com/rickgao/bmv-data/internal/version"
)

// beatsClient is the subset of the lumberjack client used by BeatsWriter.
type beatsClient interface {
	Send(events []interface{}) (int, error)
	Close() error
}

// BeatsConfig configures the lumberjack output.
type BeatsConfig struct {
	WriterConfig
	Endpoint string
	Timeout  time.Duration
	Hostname string
}

// BeatsWriter ships records to a Logstash beats input, batched.
type BeatsWriter struct {
	cfg    BeatsConfig
	logger *slog.Logger
	sink   beatsClient

	// Batching
	batch       []interface{}
	batchMu     sync.Mutex
	flushTicker *time.Ticker
	sendMu      sync.Mutex

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewBeatsWriter dials the beats endpoint.
func NewBeatsWriter(cfg BeatsConfig, logger *slog.Logger) (*BeatsWriter, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	sink, err := lumberjack.SyncDial(cfg.Endpoint,
		lumberjack.CompressionLevel(0),
		lumberjack.Timeout(cfg.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("dialing beats endpoint %s: %w", cfg.Endpoint, err)
	}
	return newBeatsWriter(cfg, sink, logger), nil
}

func newBeatsWriter(cfg BeatsConfig, sink beatsClient, logger *slog.Logger) *BeatsWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultWriterConfig().BatchSize
	}
	if cfg.Hostname == "" {
		cfg.Hostname, _ = os.Hostname()
	}
	return &BeatsWriter{
		cfg:    cfg,
		logger: logger,
		sink:   sink,
		batch:  make([]interface{}, 0, cfg.BatchSize),
	}
}

// Start begins the periodic flush.
func (w *BeatsWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	if w.cfg.FlushInterval <= 0 {
		return nil
	}
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("beats writer started",
		"endpoint", w.cfg.Endpoint,
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Write queues msg for the next batch.
func (w *BeatsWriter) Write(_ context.Context, msg model.Message) error {
	event := w.event(msg)

	w.batchMu.Lock()
	w.batch = append(w.batch, event)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		return w.flush()
	}
	return nil
}

// Close stops the flush loop, sends what is pending and closes the client.
func (w *BeatsWriter) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}
	w.wg.Wait()

	err := w.flush()
	if cerr := w.sink.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Stats returns current metrics.
func (w *BeatsWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

func (w *BeatsWriter) event(msg model.Message) map[string]interface{} {
	env := msg.Meta()
	return map[string]interface{}{
		"@timestamp": env.FechaHora.UTC(),
		"message":    env.Key,
		"event": map[string]interface{}{
			"kind":    "event",
			"dataset": "bmv." + env.TipoMensaje,
			"created": env.Timestamp.UTC(),
		},
		"host": map[string]interface{}{
			"name": w.cfg.Hostname,
		},
		"agent": map[string]interface{}{
			"type":    "bmv-gatherer",
			"version": version.Version,
			"pid":     os.Getpid(),
		},
		"bmv": msg,
	}
}

func (w *BeatsWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			if err := w.flush(); err != nil {
				w.logger.Error("beats flush failed", "error", err)
			}
		}
	}
}

// flush sends the current batch. A failed batch is dropped and counted.
func (w *BeatsWriter) flush() error {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return nil
	}
	batch := w.batch
	w.batch = make([]interface{}, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	// Sends are serialized so batches reach the server in order.
	w.sendMu.Lock()
	start := time.Now()
	sent, err := w.sink.Send(batch)
	w.sendMu.Unlock()

	w.batchMu.Lock()
	w.metrics.Written += int64(sent)
	if err != nil {
		w.metrics.Errors++
		w.metrics.Dropped += int64(len(batch) - sent)
	} else {
		w.metrics.Flushes++
	}
	w.batchMu.Unlock()

	if err != nil {
		return fmt.Errorf("sending %d events: %w", len(batch), err)
	}
	w.logger.Debug("flushed beats events",
		"count", sent,
		"duration", time.Since(start),
	)
	return nil
}
