package router

import "github.com/rickgao/bmv-data/internal/framer"

// seenWindowSize is the number of message sequences a group remembers.
// It also bounds how far a sequence may fall behind the highest one seen
// before the group is considered restarted.
const seenWindowSize = 1 << 14

// seenWindow records which message sequences of one group were delivered.
// Slot seq%size holds seq+1; zero means empty.
type seenWindow struct {
	slots   []uint64
	highest uint32
	session uint8
	active  bool
}

func newSeenWindow() *seenWindow {
	return &seenWindow{slots: make([]uint64, seenWindowSize)}
}

func (w *seenWindow) seen(seq uint32) bool {
	return w.slots[seq%seenWindowSize] == uint64(seq)+1
}

// covers reports whether every message of h was already delivered.
// Packets without messages are never covered.
func (w *seenWindow) covers(h framer.Header) bool {
	if !w.active || h.MessageCount == 0 {
		return false
	}
	for i := uint32(0); i < uint32(h.MessageCount); i++ {
		if !w.seen(h.Sequence + i) {
			return false
		}
	}
	return true
}

// restarted reports whether h belongs to a new session: the session byte
// changed or the sequence fell back further than the window.
func (w *seenWindow) restarted(h framer.Header) bool {
	if !w.active {
		return false
	}
	return h.Session != w.session || uint64(h.Sequence)+seenWindowSize < uint64(w.highest)
}

func (w *seenWindow) mark(h framer.Header) {
	for i := uint32(0); i < uint32(h.MessageCount); i++ {
		seq := h.Sequence + i
		w.slots[seq%seenWindowSize] = uint64(seq) + 1
	}
	if !w.active || h.NextSequence() > w.highest {
		w.highest = h.NextSequence()
	}
	w.session = h.Session
	w.active = true
}

func (w *seenWindow) reset() {
	clear(w.slots)
	w.highest = 0
	w.active = false
}
