package framer

import (
	"errors"
	"fmt"

	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/model"
)

// Wire sizes.
const (
	HeaderLen      = 17
	FrameLenSize   = 2
	MaxSession     = 40
	MaxPacketLen   = 1<<16 - 1
	MaxMessageSize = MaxPacketLen - HeaderLen - FrameLenSize
)

var (
	// ErrBadHeader is matched by every *HeaderError.
	ErrBadHeader = errors.New("bad packet header")

	// ErrFrameTruncated is returned when a frame runs past the end of the packet.
	ErrFrameTruncated = errors.New("frame truncated")
)

// HeaderError names the header field that failed its check.
type HeaderError struct {
	Field  string
	Value  int64
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("header %s=%d: %s", e.Field, e.Value, e.Reason)
}

// Is reports whether target is ErrBadHeader.
func (e *HeaderError) Is(target error) bool {
	return target == ErrBadHeader
}

// Header is the fixed 17-byte packet header.
type Header struct {
	Length       uint16
	MessageCount uint8
	Group        model.Group
	Session      uint8
	Sequence     uint32
	Timestamp    codec.DateTimeMillis
}

// NextSequence returns the sequence expected in the following packet.
func (h Header) NextSequence() uint32 {
	return h.Sequence + uint32(h.MessageCount)
}

// DecodeHeader decodes and validates the header of raw. The declared length
// must equal len(raw).
func DecodeHeader(raw []byte) (Header, error) {
	if len(raw) < HeaderLen {
		return Header{}, &HeaderError{Field: "length", Value: int64(len(raw)), Reason: "shorter than header"}
	}

	length := uint16(raw[0])<<8 | uint16(raw[1])
	seq, err := codec.DecodeInt32(raw[5:9])
	if err != nil {
		return Header{}, err
	}
	ts, err := codec.DecodeTimestamp3(raw[9:17])
	if err != nil {
		return Header{}, err
	}

	h := Header{
		Length:       length,
		MessageCount: raw[2],
		Group:        model.Group(raw[3]),
		Session:      raw[4],
		Sequence:     uint32(seq),
		Timestamp:    ts,
	}

	switch {
	case int(h.Length) != len(raw):
		return h, &HeaderError{Field: "length", Value: int64(h.Length), Reason: fmt.Sprintf("packet has %d bytes", len(raw))}
	case !h.Group.Valid():
		return h, &HeaderError{Field: "grupo", Value: int64(h.Group), Reason: "must be 18 or 40"}
	case h.Session > MaxSession:
		return h, &HeaderError{Field: "sesion", Value: int64(h.Session), Reason: "must be between 0 and 40"}
	case seq < 0:
		return h, &HeaderError{Field: "secuencia", Value: int64(seq), Reason: "must be zero or greater"}
	}
	return h, nil
}

// AppendHeader appends h in wire form.
func AppendHeader(dst []byte, h Header) []byte {
	dst = append(dst, byte(h.Length>>8), byte(h.Length), h.MessageCount, byte(h.Group), h.Session)
	dst = codec.AppendInt32(dst, int32(h.Sequence))
	return codec.AppendTimestamp3(dst, h.Timestamp)
}
