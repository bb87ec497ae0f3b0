package writer

import (
	"context"
	"errors"
	"time"

	"github.com/rickgao/bmv-data/internal/model"
)

// Writer consumes decoded records.
type Writer interface {
	Write(ctx context.Context, msg model.Message) error
	Close() error
}

// WriterConfig holds batching settings shared by the writers.
type WriterConfig struct {
	BatchSize     int
	FlushInterval time.Duration
}

// DefaultWriterConfig returns the default writer settings.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		BatchSize:     500,
		FlushInterval: time.Second,
	}
}

// WriterMetrics counts writer activity.
type WriterMetrics struct {
	Written int64
	Errors  int64
	Flushes int64
	Dropped int64
}

// Multi fans a record out to several writers in order.
type Multi struct {
	writers []Writer
}

// NewMulti returns a writer that writes to every w. Nil writers are skipped.
func NewMulti(writers ...Writer) *Multi {
	m := &Multi{}
	for _, w := range writers {
		if w != nil {
			m.writers = append(m.writers, w)
		}
	}
	return m
}

// Len returns the number of wrapped writers.
func (m *Multi) Len() int { return len(m.writers) }

// Write passes msg to every writer. A failing writer does not stop the others.
func (m *Multi) Write(ctx context.Context, msg model.Message) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Write(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every writer.
func (m *Multi) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
