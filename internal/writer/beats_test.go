package writer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeBeats struct {
	mu      sync.Mutex
	batches [][]interface{}
	err     error
	closed  bool
}

func (f *fakeBeats) Send(events []interface{}) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.batches = append(f.batches, events)
	return len(events), nil
}

func (f *fakeBeats) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeBeats) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func TestBeatsWriter_EventShape(t *testing.T) {
	sink := &fakeBeats{}
	w := newBeatsWriter(BeatsConfig{Hostname: "gw1"}, sink, nil)

	ev := w.event(sampleTrade(3280471))

	if ev["message"] != "20221019-3280471" {
		t.Errorf("message = %v, want 20221019-3280471", ev["message"])
	}
	ts, ok := ev["@timestamp"].(time.Time)
	if !ok {
		t.Fatalf("@timestamp has type %T, want time.Time", ev["@timestamp"])
	}
	if ts.UnixMilli() != sampleTime.UnixMilli() {
		t.Errorf("@timestamp = %v, want %v", ts, sampleTime.UTC())
	}
	event := ev["event"].(map[string]interface{})
	if event["dataset"] != "bmv.P" {
		t.Errorf("event.dataset = %v, want bmv.P", event["dataset"])
	}
	host := ev["host"].(map[string]interface{})
	if host["name"] != "gw1" {
		t.Errorf("host.name = %v, want gw1", host["name"])
	}
}

func TestBeatsWriter_FlushesOnBatchSize(t *testing.T) {
	sink := &fakeBeats{}
	w := newBeatsWriter(BeatsConfig{WriterConfig: WriterConfig{BatchSize: 2}}, sink, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := w.Write(ctx, sampleTrade(i)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if got := sink.count(); got != 2 {
		t.Errorf("sent = %d, want 2 before close", got)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := sink.count(); got != 3 {
		t.Errorf("sent = %d, want 3 after close", got)
	}
	if !sink.closed {
		t.Error("client not closed")
	}

	stats := w.Stats()
	if stats.Written != 3 || stats.Flushes != 2 {
		t.Errorf("Stats() = %+v, want Written 3 Flushes 2", stats)
	}
}

func TestBeatsWriter_SendErrorDropsBatch(t *testing.T) {
	sink := &fakeBeats{err: errors.New("connection reset")}
	w := newBeatsWriter(BeatsConfig{WriterConfig: WriterConfig{BatchSize: 1}}, sink, nil)

	if err := w.Write(context.Background(), sampleStats(1)); err == nil {
		t.Fatal("Write() error = nil, want send failure")
	}

	stats := w.Stats()
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", stats.Dropped)
	}
}

func TestBeatsWriter_Lifecycle(t *testing.T) {
	sink := &fakeBeats{}
	cfg := BeatsConfig{WriterConfig: WriterConfig{BatchSize: 100, FlushInterval: 10 * time.Millisecond}}
	w := newBeatsWriter(cfg, sink, nil)

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := w.Write(context.Background(), sampleTrade(1)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sink.count() != 1 {
		t.Errorf("sent = %d, want 1 after ticker flush", sink.count())
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
