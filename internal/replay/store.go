package replay

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/pbnjay/memory"

	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/framer"
	"github.com/rickgao/bmv-data/internal/model"
)

// entryOverhead approximates the bytes held per stored frame besides its
// payload.
const entryOverhead = 96

// avgPayload is the payload size assumed when sizing the store.
const avgPayload = 52

// freeMemory is replaced in tests.
var freeMemory = memory.FreeMemory

// StoreConfig holds Store settings.
type StoreConfig struct {
	// Capacity is the number of message frames kept.
	Capacity int

	// Group is the producto whose packets are stored.
	Group model.Group
}

// DefaultStoreConfig returns sensible defaults.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		Capacity: 1_000_000,
		Group:    model.Producto18,
	}
}

type storedFrame struct {
	seq     uint32
	session uint8
	ts      codec.DateTimeMillis
	payload []byte
	set     bool
}

// Store keeps the most recent message frames of the live feed, indexed by
// message sequence. It implements router.PacketSink and Source.
type Store struct {
	group  model.Group
	logger *slog.Logger

	mu     sync.RWMutex
	ring   []storedFrame
	first  uint32 // lowest stored sequence
	next   uint32 // one past the highest stored sequence
	stored int64
}

// NewStore creates a Store. The capacity is reduced when the ring would
// need more than half of the free memory.
func NewStore(cfg StoreConfig, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultStoreConfig().Capacity
	}
	if cfg.Group == 0 {
		cfg.Group = model.Producto18
	}

	perEntry := uint64(entryOverhead + avgPayload)
	if free := freeMemory(); free > 0 {
		if limit := free / 2 / perEntry; uint64(cfg.Capacity) > limit {
			logger.Warn("replay store capacity reduced to fit free memory",
				"requested", cfg.Capacity,
				"capacity", limit,
				"free_bytes", free,
			)
			cfg.Capacity = max(int(limit), 1)
		}
	}

	return &Store{
		group:  cfg.Group,
		logger: logger,
		ring:   make([]storedFrame, cfg.Capacity),
	}
}

// StorePacket splits raw into frames and keeps each under its sequence.
// Packets of other groups are ignored.
func (s *Store) StorePacket(raw []byte) error {
	h, frames, err := framer.SplitFrames(raw)
	if err != nil {
		return fmt.Errorf("store packet: %w", err)
	}
	if h.Group != s.group {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, payload := range frames {
		seq := h.Sequence + uint32(i)
		slot := &s.ring[int(seq%uint32(len(s.ring)))]
		slot.seq = seq
		slot.session = h.Session
		slot.ts = h.Timestamp
		slot.payload = append(slot.payload[:0], payload...)
		slot.set = true
		s.stored++

		if s.stored == 1 || seq < s.first {
			s.first = seq
		}
		if seq >= s.next {
			s.next = seq + 1
		}
	}
	if span := s.next - s.first; int(span) > len(s.ring) {
		s.first = s.next - uint32(len(s.ring))
	}
	return nil
}

// Window returns the lowest stored sequence and one past the highest.
// ok is false while the store is empty.
func (s *Store) Window() (first, next uint32, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.first, s.next, s.stored > 0
}

// Cap returns the number of frames the store holds when full.
func (s *Store) Cap() int {
	return len(s.ring)
}

// Contains reports whether every sequence of the range is stored.
func (s *Store) Contains(first uint32, qty int) bool {
	if qty <= 0 {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := 0; i < qty; i++ {
		if _, ok := s.lookup(first + uint32(i)); !ok {
			return false
		}
	}
	return true
}

// Packet rebuilds a single-message packet for seq with the header fields
// of the packet it arrived in.
func (s *Store) Packet(seq uint32) ([]byte, error) {
	s.mu.RLock()
	f, ok := s.lookup(seq)
	var payload []byte
	if ok {
		payload = append([]byte(nil), f.payload...)
	}
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("sequence %d: %w", seq, ErrNotStored)
	}
	b := framer.NewBuilder(s.group, f.session, seq, f.ts)
	if err := b.Add(payload); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// lookup returns the slot for seq. Caller holds mu.
func (s *Store) lookup(seq uint32) (storedFrame, bool) {
	slot := s.ring[int(seq%uint32(len(s.ring)))]
	if !slot.set || slot.seq != seq {
		return storedFrame{}, false
	}
	return slot, true
}
