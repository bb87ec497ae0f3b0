package connection

import (
	"context"
	"errors"
	"io"
	"net"
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultManagerConfig(t *testing.T) {
	cfg := DefaultManagerConfig()

	if cfg.ReconnectBaseWait != time.Second {
		t.Errorf("ReconnectBaseWait = %v, want 1s", cfg.ReconnectBaseWait)
	}
	if cfg.ReconnectMaxWait != time.Minute {
		t.Errorf("ReconnectMaxWait = %v, want 1m", cfg.ReconnectMaxWait)
	}
	if cfg.MessageBufferSize <= 0 {
		t.Errorf("MessageBufferSize = %d, want > 0", cfg.MessageBufferSize)
	}
}

func TestManager_MergesFeeds(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.Client = loopbackConfig()
	cfg.Feeds = []Feed{
		{Name: "18A", Group: "127.0.0.1:0"},
		{Name: "18B", Group: "127.0.0.1:0"},
	}
	m := NewManager(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	stats := m.Stats()
	if len(stats.Feeds) != 2 {
		t.Fatalf("len(Feeds) = %d, want 2", len(stats.Feeds))
	}
	for i, fs := range stats.Feeds {
		if !fs.Connected {
			t.Fatalf("feed %s not connected", fs.Name)
		}
		addr, err := net.ResolveUDPAddr("udp4", fs.LocalAddr)
		if err != nil {
			t.Fatalf("bad local addr %q: %v", fs.LocalAddr, err)
		}
		sendUDP(t, addr, []byte{'a' + byte(i)})
	}

	var got []string
	for i := 0; i < 2; i++ {
		feed, data, err := m.NextFrom(ctx)
		if err != nil {
			t.Fatalf("NextFrom() error = %v", err)
		}
		got = append(got, feed+":"+string(data))
	}
	sort.Strings(got)
	if got[0] != "18A:a" || got[1] != "18B:b" {
		t.Errorf("datagrams = %v, want [18A:a 18B:b]", got)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), time.Second)
	defer stopCancel()
	if err := m.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if _, err := m.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("Next() after Stop error = %v, want io.EOF", err)
	}

	for _, fs := range m.Stats().Feeds {
		if fs.Packets != 1 {
			t.Errorf("feed %s Packets = %d, want 1", fs.Name, fs.Packets)
		}
	}
}

func TestManager_FailedJoinRetries(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.Client = loopbackConfig()
	cfg.ReconnectBaseWait = 10 * time.Millisecond
	cfg.ReconnectMaxWait = 20 * time.Millisecond
	cfg.Feeds = []Feed{{Name: "18A", Group: "bad address"}}
	m := NewManager(cfg, nil)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	stats := m.Stats()
	if stats.Feeds[0].Connected {
		t.Error("feed with bad address reported connected")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Stop(stopCtx); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

// stubClient is a connected Client driven by the test.
type stubClient struct {
	messages chan RawMessage
	errors   chan error
	closes   atomic.Int32
}

func newStubClient() *stubClient {
	return &stubClient{
		messages: make(chan RawMessage),
		errors:   make(chan error, 1),
	}
}

func (c *stubClient) Connect(ctx context.Context) error { return nil }
func (c *stubClient) Close() error {
	c.closes.Add(1)
	return nil
}
func (c *stubClient) Next(ctx context.Context) ([]byte, error) { return nil, io.EOF }
func (c *stubClient) Messages() <-chan RawMessage              { return c.messages }
func (c *stubClient) Errors() <-chan error                     { return c.errors }
func (c *stubClient) IsConnected() bool                        { return true }
func (c *stubClient) LocalAddr() net.Addr                      { return nil }

func TestManager_FeedErrorDropsClient(t *testing.T) {
	cfg := DefaultManagerConfig()
	cfg.ReconnectBaseWait = time.Hour
	cfg.Feeds = []Feed{{Name: "18A", Group: "239.200.100.18:12141"}}
	m := NewManager(cfg, nil).(*manager)

	stub := newStubClient()
	m.dial = func(Feed) Client { return stub }

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !m.Stats().Feeds[0].Connected {
		t.Fatal("feed not connected after Start")
	}

	stub.errors <- errors.New("socket closed")

	deadline := time.Now().Add(time.Second)
	for m.Stats().Feeds[0].Connected {
		if time.Now().After(deadline) {
			t.Fatal("feed still reported connected after error")
		}
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := m.Stop(stopCtx); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := stub.closes.Load(); got != 1 {
		t.Errorf("client closed %d times, want 1", got)
	}
}
