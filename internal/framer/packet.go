package framer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rickgao/bmv-data/internal/catalog"
	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/model"
)

// FrameInfo is the tag and payload length of every frame walked, decoded or not.
type FrameInfo struct {
	Tag    string
	Length int
}

// Rejected is a frame dropped because it failed to decode.
type Rejected struct {
	Index    int
	Sequence uint32
	Tag      string
	Err      error
}

// Packet is the result of decoding one packet.
type Packet struct {
	Header
	Messages []model.Message
	Frames   []FrameInfo
	Rejected []Rejected
	Unknown  int
}

// Framer decodes packets. It holds no per-packet state and may be shared.
type Framer struct {
	decoder *catalog.Decoder
	now     func() time.Time
}

// Option configures a Framer.
type Option func(*Framer)

// WithClock overrides the processing-time source.
func WithClock(now func() time.Time) Option {
	return func(f *Framer) { f.now = now }
}

// New creates a Framer that dispatches payloads to decoder.
func New(decoder *catalog.Decoder, opts ...Option) *Framer {
	if decoder == nil {
		decoder = catalog.NewDecoder(nil)
	}
	f := &Framer{decoder: decoder, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Key returns the record key for message index i of a packet.
func Key(h Header, i int) string {
	return h.Timestamp.Format(codec.KeyDateLayout) + "-" + strconv.FormatUint(uint64(h.Sequence)+uint64(i), 10)
}

// Decode decodes raw into a Packet. Header failures return ErrBadHeader.
// A truncated frame returns the messages decoded so far together with
// ErrFrameTruncated. Frames that fail validation are listed in Rejected;
// frames with unknown tags are counted in Unknown.
func (f *Framer) Decode(raw []byte) (*Packet, error) {
	h, err := DecodeHeader(raw)
	if err != nil {
		return nil, err
	}

	pkt := &Packet{
		Header:   h,
		Messages: make([]model.Message, 0, h.MessageCount),
		Frames:   make([]FrameInfo, 0, h.MessageCount),
	}
	processed := codec.DateTimeMicros{Time: f.now().In(codec.Location)}

	off := HeaderLen
	for i := 0; i < int(h.MessageCount); i++ {
		if len(raw)-off < FrameLenSize {
			return pkt, fmt.Errorf("frame %d at offset %d: %w: no room for length", i, off, ErrFrameTruncated)
		}
		n := int(binary.BigEndian.Uint16(raw[off:]))
		start := off + FrameLenSize
		if start+n > len(raw) {
			return pkt, fmt.Errorf("frame %d at offset %d: %w: declares %d bytes, %d left", i, off, ErrFrameTruncated, n, len(raw)-start)
		}
		payload := raw[start : start+n]
		off = start + n

		tag, _ := catalog.Tag(h.Group, payload)
		pkt.Frames = append(pkt.Frames, FrameInfo{Tag: tag, Length: n})

		env := model.Envelope{
			Key:       Key(h, i),
			Timestamp: processed,
			FechaHora: h.Timestamp,
		}
		msg, err := f.decoder.Decode(h.Group, payload, env)
		switch {
		case errors.Is(err, catalog.ErrUnknownType):
			pkt.Unknown++
		case err != nil:
			pkt.Rejected = append(pkt.Rejected, Rejected{
				Index:    i,
				Sequence: h.Sequence + uint32(i),
				Tag:      tag,
				Err:      err,
			})
		default:
			pkt.Messages = append(pkt.Messages, msg)
		}
	}
	return pkt, nil
}

// SplitFrames returns the payloads of raw without decoding them. It is used
// to store packets frame by frame for replay.
func SplitFrames(raw []byte) (Header, [][]byte, error) {
	h, err := DecodeHeader(raw)
	if err != nil {
		return h, nil, err
	}
	frames := make([][]byte, 0, h.MessageCount)
	off := HeaderLen
	for i := 0; i < int(h.MessageCount); i++ {
		if len(raw)-off < FrameLenSize {
			return h, frames, fmt.Errorf("frame %d: %w", i, ErrFrameTruncated)
		}
		n := int(binary.BigEndian.Uint16(raw[off:]))
		start := off + FrameLenSize
		if start+n > len(raw) {
			return h, frames, fmt.Errorf("frame %d: %w", i, ErrFrameTruncated)
		}
		frames = append(frames, raw[start:start+n])
		off = start + n
	}
	return h, frames, nil
}
