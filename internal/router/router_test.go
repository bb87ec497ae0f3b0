package router

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rickgao/bmv-data/internal/catalog"
	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/framer"
	"github.com/rickgao/bmv-data/internal/model"
)

type recordingWriter struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (w *recordingWriter) Write(_ context.Context, msg model.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.keys = append(w.keys, msg.Meta().Key)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

type recordingSink struct {
	packets [][]byte
}

func (s *recordingSink) StorePacket(raw []byte) error {
	s.packets = append(s.packets, raw)
	return nil
}

var headerTime = codec.DateTimeMillis{Time: time.Date(2024, 3, 4, 10, 30, 0, 0, codec.Location)}

func trade(folio int32) model.MessageP {
	return model.MessageP{
		NumeroInstrumento: 12345,
		HoraHecho:         codec.DateTime{Time: time.Date(2024, 3, 4, 10, 30, 0, 0, codec.Location)},
		Volumen:           200,
		Precio:            codec.MustPrice("10.5"),
		TipoConcertacion:  "C",
		FolioHecho:        folio,
		FijaPrecio:        true,
		TipoOperacion:     "C",
		Importe:           codec.MustPrice("2100"),
		Compra:            "GBM",
		Vende:             "HSBC",
		Liquidacion:       "2",
	}
}

func packet(t *testing.T, group model.Group, seq uint32, n int) []byte {
	t.Helper()
	b := framer.NewBuilder(group, 1, seq, headerTime)
	for i := 0; i < n; i++ {
		var err error
		if group == model.Producto18 {
			err = b.AddMessage(trade(int32(seq) + int32(i)))
		} else {
			err = b.Add([]byte("zz"))
		}
		if err != nil {
			t.Fatalf("building packet: %v", err)
		}
	}
	return b.Bytes()
}

func sliceSource(packets ...[]byte) Source {
	i := 0
	return SourceFunc(func(ctx context.Context) ([]byte, error) {
		if i == len(packets) {
			return nil, io.EOF
		}
		i++
		return packets[i-1], nil
	})
}

func newTestRouter(cfg RouterConfig, out *recordingWriter, opts ...Option) *Router {
	return NewRouter(cfg, framer.New(catalog.NewDecoder(nil)), out, nil, opts...)
}

func TestDefaultRouterConfig(t *testing.T) {
	cfg := DefaultRouterConfig()

	if len(cfg.Groups) != 2 {
		t.Fatalf("len(Groups) = %d, want 2", len(cfg.Groups))
	}
	if cfg.Groups[0] != model.Producto18 || cfg.Groups[1] != model.Producto40 {
		t.Errorf("Groups = %v, want [18 40]", cfg.Groups)
	}
	if cfg.Dedupe {
		t.Error("Dedupe = true, want false")
	}
}

func TestRouter_RunDeliversInWireOrder(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRouter(DefaultRouterConfig(), out)

	src := sliceSource(packet(t, model.Producto18, 100, 2), packet(t, model.Producto18, 102, 1))
	if err := r.Run(context.Background(), src); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"20240304-100", "20240304-101", "20240304-102"}
	if len(out.keys) != len(want) {
		t.Fatalf("keys = %v, want %v", out.keys, want)
	}
	for i := range want {
		if out.keys[i] != want[i] {
			t.Errorf("keys[%d] = %s, want %s", i, out.keys[i], want[i])
		}
	}

	stats := r.Stats()
	if stats.Packets != 2 || stats.Messages != 3 {
		t.Errorf("Packets/Messages = %d/%d, want 2/3", stats.Packets, stats.Messages)
	}
	if len(stats.Types) != 1 || stats.Types[0].Tag != "P" || stats.Types[0].Bytes != 3*52 {
		t.Errorf("Types = %+v, want one P entry of 156 bytes", stats.Types)
	}
}

func TestRouter_SequenceAnomalies(t *testing.T) {
	r := newTestRouter(DefaultRouterConfig(), &recordingWriter{})
	ctx := context.Background()

	r.Process(ctx, packet(t, model.Producto18, 100, 5))
	r.Process(ctx, packet(t, model.Producto18, 105, 5))
	r.Process(ctx, packet(t, model.Producto18, 105, 5))
	r.Process(ctx, packet(t, model.Producto18, 120, 1))

	stats := r.Stats()
	if stats.OutOfOrder != 1 {
		t.Errorf("OutOfOrder = %d, want 1", stats.OutOfOrder)
	}
	if stats.Gaps != 1 || stats.Missing != 10 {
		t.Errorf("Gaps/Missing = %d/%d, want 1/10", stats.Gaps, stats.Missing)
	}
}

func TestRouter_GroupsTrackedSeparately(t *testing.T) {
	r := newTestRouter(DefaultRouterConfig(), &recordingWriter{})
	ctx := context.Background()

	r.Process(ctx, packet(t, model.Producto18, 100, 1))
	r.Process(ctx, packet(t, model.Producto40, 7, 1))
	r.Process(ctx, packet(t, model.Producto18, 101, 1))
	r.Process(ctx, packet(t, model.Producto40, 8, 1))

	stats := r.Stats()
	if stats.Gaps != 0 || stats.OutOfOrder != 0 {
		t.Errorf("Gaps/OutOfOrder = %d/%d, want 0/0", stats.Gaps, stats.OutOfOrder)
	}
	if stats.UnknownFrames != 2 {
		t.Errorf("UnknownFrames = %d, want 2", stats.UnknownFrames)
	}
}

func TestRouter_BadHeaderResetsTracker(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRouter(DefaultRouterConfig(), out)
	ctx := context.Background()

	r.Process(ctx, packet(t, model.Producto18, 100, 1))

	bad := packet(t, model.Producto18, 101, 1)
	bad[3] = 99 // grupo
	if err := r.Process(ctx, bad); !errors.Is(err, framer.ErrBadHeader) {
		t.Fatalf("Process() error = %v, want ErrBadHeader", err)
	}

	// After the reset a jump is not reported.
	if err := r.Process(ctx, packet(t, model.Producto18, 500, 1)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	stats := r.Stats()
	if stats.PacketErrors != 1 {
		t.Errorf("PacketErrors = %d, want 1", stats.PacketErrors)
	}
	if stats.Gaps != 0 {
		t.Errorf("Gaps = %d, want 0 after reset", stats.Gaps)
	}
	if len(out.keys) != 2 {
		t.Errorf("delivered %d records, want 2", len(out.keys))
	}
}

func TestRouter_TruncatedPacketDeliversPrefix(t *testing.T) {
	out := &recordingWriter{}
	sink := &recordingSink{}
	r := newTestRouter(DefaultRouterConfig(), out, WithSink(sink))

	raw := packet(t, model.Producto18, 200, 2)
	raw = raw[:len(raw)-10]
	binary.BigEndian.PutUint16(raw, uint16(len(raw)))

	err := r.Process(context.Background(), raw)
	if !errors.Is(err, framer.ErrFrameTruncated) {
		t.Fatalf("Process() error = %v, want ErrFrameTruncated", err)
	}
	if len(out.keys) != 1 || out.keys[0] != "20240304-200" {
		t.Errorf("keys = %v, want [20240304-200]", out.keys)
	}
	if len(sink.packets) != 0 {
		t.Errorf("sink got %d packets, want 0", len(sink.packets))
	}
	if got := r.Stats().PacketErrors; got != 1 {
		t.Errorf("PacketErrors = %d, want 1", got)
	}
}

func TestRouter_FiltersGroups(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRouter(RouterConfig{Groups: []model.Group{model.Producto18}}, out)
	ctx := context.Background()

	r.Process(ctx, packet(t, model.Producto40, 1, 1))
	r.Process(ctx, packet(t, model.Producto18, 1, 1))

	stats := r.Stats()
	if stats.Filtered != 1 {
		t.Errorf("Filtered = %d, want 1", stats.Filtered)
	}
	if stats.Packets != 1 {
		t.Errorf("Packets = %d, want 1", stats.Packets)
	}
}

// feedPacket is one datagram and the feed it arrived on.
type feedPacket struct {
	feed string
	raw  []byte
}

type feedSource struct {
	packets []feedPacket
}

func (s *feedSource) Next(ctx context.Context) ([]byte, error) {
	_, raw, err := s.NextFrom(ctx)
	return raw, err
}

func (s *feedSource) NextFrom(ctx context.Context) (string, []byte, error) {
	if len(s.packets) == 0 {
		return "", nil, io.EOF
	}
	p := s.packets[0]
	s.packets = s.packets[1:]
	return p.feed, p.raw, nil
}

func TestRouter_DedupeRedundantFeeds(t *testing.T) {
	out := &recordingWriter{}
	sink := &recordingSink{}
	cfg := DefaultRouterConfig()
	cfg.Dedupe = true
	r := newTestRouter(cfg, out, WithSink(sink))

	a1 := packet(t, model.Producto18, 10, 2)
	a2 := packet(t, model.Producto18, 12, 2)

	// Feed A and feed B deliver the same packets interleaved.
	src := &feedSource{packets: []feedPacket{{"18A", a1}, {"18B", a1}, {"18A", a2}, {"18B", a2}}}
	if err := r.Run(context.Background(), src); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	stats := r.Stats()
	if stats.Duplicates != 2 {
		t.Errorf("Duplicates = %d, want 2", stats.Duplicates)
	}
	if stats.OutOfOrder != 0 || stats.Gaps != 0 {
		t.Errorf("OutOfOrder/Gaps = %d/%d, want 0/0", stats.OutOfOrder, stats.Gaps)
	}
	if len(out.keys) != 4 {
		t.Errorf("delivered %d records, want 4", len(out.keys))
	}
	if len(sink.packets) != 2 {
		t.Errorf("sink got %d packets, want 2", len(sink.packets))
	}
}

func TestRouter_TrackersPartitionedByFeed(t *testing.T) {
	out := &recordingWriter{}
	r := newTestRouter(DefaultRouterConfig(), out)

	a1 := packet(t, model.Producto18, 1, 1)
	a2 := packet(t, model.Producto18, 2, 1)

	src := &feedSource{packets: []feedPacket{{"18A", a1}, {"18B", a1}, {"18A", a2}, {"18B", a2}}}
	if err := r.Run(context.Background(), src); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	stats := r.Stats()
	if stats.OutOfOrder != 0 || stats.Gaps != 0 {
		t.Errorf("OutOfOrder/Gaps = %d/%d, want 0/0", stats.OutOfOrder, stats.Gaps)
	}
	if len(out.keys) != 4 {
		t.Errorf("delivered %d records, want 4 without dedupe", len(out.keys))
	}
}

func TestRouter_DedupeKeepsGapFill(t *testing.T) {
	out := &recordingWriter{}
	cfg := DefaultRouterConfig()
	cfg.Dedupe = true
	r := newTestRouter(cfg, out)
	ctx := context.Background()

	// Feed A skips 12-13; feed B fills them late.
	r.ProcessFrom(ctx, "18A", packet(t, model.Producto18, 10, 2))
	r.ProcessFrom(ctx, "18A", packet(t, model.Producto18, 14, 2))
	r.ProcessFrom(ctx, "18B", packet(t, model.Producto18, 12, 2))
	r.ProcessFrom(ctx, "18B", packet(t, model.Producto18, 14, 2))

	want := []string{"20240304-10", "20240304-11", "20240304-14", "20240304-15", "20240304-12", "20240304-13"}
	if len(out.keys) != len(want) {
		t.Fatalf("keys = %v, want %v", out.keys, want)
	}
	for i := range want {
		if out.keys[i] != want[i] {
			t.Errorf("keys[%d] = %s, want %s", i, out.keys[i], want[i])
		}
	}
	if got := r.Stats().Duplicates; got != 1 {
		t.Errorf("Duplicates = %d, want 1", got)
	}
}

// sessionPacket is packet with an explicit session number.
func sessionPacket(t *testing.T, session uint8, seq uint32) []byte {
	t.Helper()
	b := framer.NewBuilder(model.Producto18, session, seq, headerTime)
	if err := b.AddMessage(trade(int32(seq))); err != nil {
		t.Fatalf("building packet: %v", err)
	}
	return b.Bytes()
}

func TestRouter_DedupeSequenceRestart(t *testing.T) {
	tests := []struct {
		name    string
		packets [][]byte
		want    int
	}{
		{
			name:    "restart below earlier packets",
			packets: [][]byte{sessionPacket(t, 1, 1000), sessionPacket(t, 1, 1), sessionPacket(t, 1, 2), sessionPacket(t, 1, 3)},
			want:    4,
		},
		{
			name:    "new session reuses sequences",
			packets: [][]byte{sessionPacket(t, 1, 1), sessionPacket(t, 1, 2), sessionPacket(t, 2, 1), sessionPacket(t, 2, 2)},
			want:    4,
		},
		{
			name: "jump back past the window",
			packets: [][]byte{
				sessionPacket(t, 1, 1),
				sessionPacket(t, 1, 1+seenWindowSize+5),
				sessionPacket(t, 1, 1),
			},
			want: 3,
		},
		{
			name:    "late copy within the window",
			packets: [][]byte{sessionPacket(t, 1, 1), sessionPacket(t, 1, 2), sessionPacket(t, 1, 1)},
			want:    2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &recordingWriter{}
			cfg := DefaultRouterConfig()
			cfg.Dedupe = true
			r := newTestRouter(cfg, out)

			for _, raw := range tt.packets {
				if err := r.Process(context.Background(), raw); err != nil {
					t.Fatalf("Process() error = %v", err)
				}
			}
			if len(out.keys) != tt.want {
				t.Errorf("delivered %d records, want %d (keys %v)", len(out.keys), tt.want, out.keys)
			}
		})
	}
}

func TestRouter_PacketErrorClearsDedupe(t *testing.T) {
	out := &recordingWriter{}
	cfg := DefaultRouterConfig()
	cfg.Dedupe = true
	r := newTestRouter(cfg, out)
	ctx := context.Background()

	r.ProcessFrom(ctx, "18A", packet(t, model.Producto18, 1, 1))

	bad := packet(t, model.Producto18, 2, 2)
	bad = bad[:len(bad)-10]
	binary.BigEndian.PutUint16(bad, uint16(len(bad)))
	if err := r.ProcessFrom(ctx, "18A", bad); !errors.Is(err, framer.ErrFrameTruncated) {
		t.Fatalf("ProcessFrom() error = %v, want ErrFrameTruncated", err)
	}

	// Sequence 1 is no longer remembered after the reset.
	r.ProcessFrom(ctx, "18B", packet(t, model.Producto18, 1, 1))

	if got := r.Stats().Duplicates; got != 0 {
		t.Errorf("Duplicates = %d, want 0", got)
	}
	if len(out.keys) != 3 {
		t.Errorf("keys = %v, want 3 records", out.keys)
	}
}

func TestRouter_WriteErrorsCounted(t *testing.T) {
	out := &recordingWriter{err: errors.New("disk full")}
	r := newTestRouter(DefaultRouterConfig(), out)

	if err := r.Process(context.Background(), packet(t, model.Producto18, 1, 3)); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if got := r.Stats().WriteErrors; got != 3 {
		t.Errorf("WriteErrors = %d, want 3", got)
	}
}

func TestRouter_RunStopsOnCancel(t *testing.T) {
	r := newTestRouter(DefaultRouterConfig(), &recordingWriter{})
	ctx, cancel := context.WithCancel(context.Background())

	src := SourceFunc(func(ctx context.Context) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, src) }()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
