package metrics

import (
	"sort"
	"sync"

	"github.com/rickgao/bmv-data/internal/sequence"
)

// TypeStats is the count and byte total of one type tag.
type TypeStats struct {
	Tag   string `json:"tag"`
	Count uint64 `json:"count"`
	Bytes uint64 `json:"bytes"`
}

// Avg returns the average frame size, or 0 when nothing was counted.
func (s TypeStats) Avg() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Bytes) / float64(s.Count)
}

// Snapshot is a point-in-time copy of the statistics.
type Snapshot struct {
	Packets        uint64      `json:"packets"`
	PacketErrors   uint64      `json:"packet_errors"`
	Filtered       uint64      `json:"filtered"`
	Duplicates     uint64      `json:"duplicates"`
	Messages       uint64      `json:"messages"`
	RejectedFrames uint64      `json:"rejected_frames"`
	UnknownFrames  uint64      `json:"unknown_frames"`
	Gaps           uint64      `json:"gaps"`
	Missing        uint64      `json:"missing"`
	OutOfOrder     uint64      `json:"out_of_order"`
	WriteErrors    uint64      `json:"write_errors"`
	Types          []TypeStats `json:"types"`
}

// Statistics is safe for concurrent use.
type Statistics struct {
	mu    sync.Mutex
	snap  Snapshot
	types map[string]*TypeStats
}

// NewStatistics returns empty statistics.
func NewStatistics() *Statistics {
	return &Statistics{types: make(map[string]*TypeStats)}
}

// RecordFrame counts one frame of the given tag and payload length.
func (s *Statistics) RecordFrame(tag string, length int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts, ok := s.types[tag]
	if !ok {
		ts = &TypeStats{Tag: tag}
		s.types[tag] = ts
	}
	ts.Count++
	ts.Bytes += uint64(length)
}

// RecordPacket counts a decoded packet and its outcome.
func (s *Statistics) RecordPacket(messages, rejected, unknown int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Packets++
	s.snap.Messages += uint64(messages)
	s.snap.RejectedFrames += uint64(rejected)
	s.snap.UnknownFrames += uint64(unknown)
}

// RecordPacketError counts a packet that could not be decoded.
func (s *Statistics) RecordPacketError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.PacketErrors++
}

// RecordFiltered counts a packet ignored because of its group.
func (s *Statistics) RecordFiltered() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Filtered++
}

// RecordDuplicate counts a packet already delivered by another feed.
func (s *Statistics) RecordDuplicate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Duplicates++
}

// RecordWriteError counts a record a writer failed to accept.
func (s *Statistics) RecordWriteError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.WriteErrors++
}

// RecordAnomaly counts a sequence anomaly.
func (s *Statistics) RecordAnomaly(a sequence.Anomaly) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch a.Kind {
	case sequence.Gap:
		s.snap.Gaps++
		s.snap.Missing += uint64(a.Missing())
	case sequence.OutOfOrder:
		s.snap.OutOfOrder++
	}
}

// Snapshot returns a copy with types sorted by tag.
func (s *Statistics) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.snap
	out.Types = make([]TypeStats, 0, len(s.types))
	for _, ts := range s.types {
		out.Types = append(out.Types, *ts)
	}
	sort.Slice(out.Types, func(i, j int) bool { return out.Types[i].Tag < out.Types[j].Tag })
	return out
}
