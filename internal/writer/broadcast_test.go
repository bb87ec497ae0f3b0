package writer

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialBroadcaster(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	return conn
}

func waitSubscribers(t *testing.T, b *Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if b.Stats().Subscribers == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Subscribers = %d, want %d", b.Stats().Subscribers, n)
}

func TestBroadcaster_FiltersByType(t *testing.T) {
	b := NewBroadcaster(DefaultBroadcastConfig(), nil)
	srv := httptest.NewServer(b)
	defer srv.Close()
	defer b.Close()

	conn := dialBroadcaster(t, srv, "?types=P")
	defer conn.Close()
	waitSubscribers(t, b, 1)

	ctx := context.Background()
	if err := b.Write(ctx, sampleStats(1)); err != nil {
		t.Fatalf("Write(E) error = %v", err)
	}
	if err := b.Write(ctx, sampleTrade(2)); err != nil {
		t.Fatalf("Write(P) error = %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}

	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	if rec["tipoMensaje"] != "P" {
		t.Errorf("tipoMensaje = %v, want P", rec["tipoMensaje"])
	}
	if rec["key"] != "20221019-2" {
		t.Errorf("key = %v, want 20221019-2", rec["key"])
	}
}

func TestBroadcaster_AllTypesInOrder(t *testing.T) {
	b := NewBroadcaster(DefaultBroadcastConfig(), nil)
	srv := httptest.NewServer(b)
	defer srv.Close()
	defer b.Close()

	conn := dialBroadcaster(t, srv, "")
	defer conn.Close()
	waitSubscribers(t, b, 1)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if err := b.Write(ctx, sampleTrade(i)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 5; i++ {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		want := `"key":"20221019-` + string(rune('0'+i)) + `"`
		if !strings.Contains(string(data), want) {
			t.Errorf("frame %d = %s, want %s", i, data, want)
		}
	}

	if got := b.Stats().Written; got != 5 {
		t.Errorf("Written = %d, want 5", got)
	}
}

func TestBroadcaster_DisconnectUnregisters(t *testing.T) {
	b := NewBroadcaster(DefaultBroadcastConfig(), nil)
	srv := httptest.NewServer(b)
	defer srv.Close()
	defer b.Close()

	conn := dialBroadcaster(t, srv, "")
	waitSubscribers(t, b, 1)

	conn.Close()
	waitSubscribers(t, b, 0)

	if err := b.Write(context.Background(), sampleTrade(1)); err != nil {
		t.Errorf("Write() with no subscribers error = %v", err)
	}
}

func TestParseTypes(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"P", []string{"P"}},
		{"P, O,,ca", []string{"P", "O", "ca"}},
	}

	for _, tt := range tests {
		got := parseTypes(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("parseTypes(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for _, w := range tt.want {
			if !got[w] {
				t.Errorf("parseTypes(%q) missing %q", tt.in, w)
			}
		}
	}
}
