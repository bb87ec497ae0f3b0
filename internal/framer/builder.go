package framer

import (
	"errors"
	"fmt"

	"github.com/rickgao/bmv-data/internal/catalog"
	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/model"
)

// ErrPacketFull is returned when a frame would overflow the packet limits.
var ErrPacketFull = errors.New("packet full")

// Builder assembles a packet from frame payloads.
type Builder struct {
	header   Header
	payloads [][]byte
	size     int
}

// NewBuilder starts a packet with the given header fields. Length and
// message count are computed by Bytes.
func NewBuilder(group model.Group, session uint8, sequence uint32, ts codec.DateTimeMillis) *Builder {
	return &Builder{
		header: Header{
			Group:     group,
			Session:   session,
			Sequence:  sequence,
			Timestamp: ts,
		},
		size: HeaderLen,
	}
}

// Add appends a raw frame payload (type tag included).
func (b *Builder) Add(payload []byte) error {
	if len(b.payloads) == 255 {
		return fmt.Errorf("%w: 255 messages", ErrPacketFull)
	}
	if b.size+FrameLenSize+len(payload) > MaxPacketLen {
		return fmt.Errorf("%w: %d bytes", ErrPacketFull, b.size+FrameLenSize+len(payload))
	}
	b.payloads = append(b.payloads, payload)
	b.size += FrameLenSize + len(payload)
	return nil
}

// AddMessage encodes m and appends it.
func (b *Builder) AddMessage(m model.Message) error {
	payload, err := catalog.Encode(m)
	if err != nil {
		return err
	}
	return b.Add(payload)
}

// Len returns the size of the packet built so far.
func (b *Builder) Len() int { return b.size }

// Bytes returns the encoded packet.
func (b *Builder) Bytes() []byte {
	h := b.header
	h.Length = uint16(b.size)
	h.MessageCount = uint8(len(b.payloads))

	out := AppendHeader(make([]byte, 0, b.size), h)
	for _, p := range b.payloads {
		out = append(out, byte(len(p)>>8), byte(len(p)))
		out = append(out, p...)
	}
	return out
}
