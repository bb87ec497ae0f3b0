package writer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/rickgao/bmv-data/internal/model"
)

// NDJSONWriter writes one JSON object per line. Output is buffered and
// flushed every BatchSize records or every FlushInterval.
type NDJSONWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	out     *bufio.Writer
	closer  io.Closer
	pending int
	mu      sync.Mutex

	// Lifecycle
	ctx         context.Context
	cancel      context.CancelFunc
	flushTicker *time.Ticker
	wg          sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewNDJSONWriter creates a writer on w. If w is also an io.Closer it is
// closed by Close.
func NewNDJSONWriter(cfg WriterConfig, w io.Writer, logger *slog.Logger) *NDJSONWriter {
	if logger == nil {
		logger = slog.Default()
	}
	nw := &NDJSONWriter{
		cfg:    cfg,
		logger: logger,
		out:    bufio.NewWriterSize(w, 64*1024),
	}
	if c, ok := w.(io.Closer); ok && w != os.Stdout && w != os.Stderr {
		nw.closer = c
	}
	return nw
}

// OpenNDJSON opens path for appending. "-" and "" mean stdout.
func OpenNDJSON(cfg WriterConfig, path string, logger *slog.Logger) (*NDJSONWriter, error) {
	if path == "" || path == "-" {
		return NewNDJSONWriter(cfg, os.Stdout, logger), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening ndjson output: %w", err)
	}
	return NewNDJSONWriter(cfg, f, logger), nil
}

// Start begins the periodic flush.
func (w *NDJSONWriter) Start(ctx context.Context) error {
	if w.cfg.FlushInterval <= 0 {
		return nil
	}
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("ndjson writer started",
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Write encodes msg as a single line.
func (w *NDJSONWriter) Write(_ context.Context, msg model.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		w.mu.Lock()
		w.metrics.Errors++
		w.mu.Unlock()
		return fmt.Errorf("encoding %s record: %w", msg.Type(), err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.out.Write(append(data, '\n')); err != nil {
		w.metrics.Errors++
		return fmt.Errorf("writing record: %w", err)
	}
	w.metrics.Written++
	w.pending++
	if w.cfg.BatchSize > 0 && w.pending >= w.cfg.BatchSize {
		return w.flushLocked()
	}
	return nil
}

// Flush writes buffered records to the underlying writer.
func (w *NDJSONWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// Close stops the flush loop, flushes and closes the output.
func (w *NDJSONWriter) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}
	w.wg.Wait()

	err := w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Stats returns current metrics.
func (w *NDJSONWriter) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

func (w *NDJSONWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			if err := w.Flush(); err != nil {
				w.logger.Error("ndjson flush failed", "error", err)
			}
		}
	}
}

func (w *NDJSONWriter) flushLocked() error {
	if w.pending == 0 {
		return nil
	}
	if err := w.out.Flush(); err != nil {
		w.metrics.Errors++
		return fmt.Errorf("flushing records: %w", err)
	}
	w.pending = 0
	w.metrics.Flushes++
	return nil
}
