package sequence

import (
	"fmt"
	"sync"
)

// Kind classifies an anomaly.
type Kind uint8

const (
	None Kind = iota
	Gap
	OutOfOrder
)

func (k Kind) String() string {
	switch k {
	case Gap:
		return "gap"
	case OutOfOrder:
		return "out_of_order"
	default:
		return "none"
	}
}

// Anomaly describes a discontinuity. For a Gap, Expected is the first
// missing sequence and Got the sequence that arrived. For OutOfOrder,
// Got is below Expected.
type Anomaly struct {
	Kind     Kind
	Expected uint32
	Got      uint32
}

// Missing returns the number of skipped sequences of a Gap.
func (a Anomaly) Missing() uint32 {
	if a.Kind != Gap {
		return 0
	}
	return a.Got - a.Expected
}

func (a Anomaly) String() string {
	switch a.Kind {
	case Gap:
		return fmt.Sprintf("gap from %d to %d", a.Expected, a.Got)
	case OutOfOrder:
		return fmt.Sprintf("out of order: expected %d, got %d", a.Expected, a.Got)
	default:
		return "none"
	}
}

// Tracker holds the expected next sequence of one feed. It is safe for
// concurrent use so redundant feeds can share one.
type Tracker struct {
	mu       sync.Mutex
	expected uint32
	started  bool
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{}
}

// Observe records a packet and reports any anomaly relative to the
// previous one. The first packet only initialises the tracker.
func (t *Tracker) Observe(seq uint32, count uint8) Anomaly {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := seq + uint32(count)
	if !t.started {
		t.started = true
		t.expected = next
		return Anomaly{}
	}

	var a Anomaly
	switch {
	case seq > t.expected:
		a = Anomaly{Kind: Gap, Expected: t.expected, Got: seq}
	case seq < t.expected:
		a = Anomaly{Kind: OutOfOrder, Expected: t.expected, Got: seq}
	}
	t.expected = next
	return a
}

// Expected returns the next expected sequence and whether the tracker
// has seen a packet since the last reset.
func (t *Tracker) Expected() (uint32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expected, t.started
}

// Reset forgets the expected sequence. Call it after a packet that could
// not be decoded.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = false
	t.expected = 0
}
