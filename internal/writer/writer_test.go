package writer

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rickgao/bmv-data/internal/model"
)

type recordingWriter struct {
	mu     sync.Mutex
	keys   []string
	err    error
	closed bool
}

func (r *recordingWriter) Write(_ context.Context, msg model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, msg.Meta().Key)
	return r.err
}

func (r *recordingWriter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMulti_WritesToAll(t *testing.T) {
	boom := errors.New("boom")
	a := &recordingWriter{err: boom}
	b := &recordingWriter{}
	m := NewMulti(a, nil, b)

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	err := m.Write(context.Background(), sampleTrade(7))
	if !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want %v", err, boom)
	}
	if len(b.keys) != 1 || b.keys[0] != "20221019-7" {
		t.Errorf("second writer keys = %v, want [20221019-7]", b.keys)
	}

	if err := m.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("Close() did not close every writer")
	}
}

func TestDefaultWriterConfig(t *testing.T) {
	cfg := DefaultWriterConfig()
	if cfg.BatchSize <= 0 {
		t.Errorf("BatchSize = %d, want > 0", cfg.BatchSize)
	}
	if cfg.FlushInterval <= 0 {
		t.Errorf("FlushInterval = %v, want > 0", cfg.FlushInterval)
	}
}
