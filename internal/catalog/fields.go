package catalog

import (
	"github.com/rickgao/bmv-data/internal/codec"
)

// fields reads fixed offsets from a payload whose length was already
// checked. The first error sticks.
type fields struct {
	b   []byte
	err error
}

func (f *fields) set(err error) {
	if f.err == nil {
		f.err = err
	}
}

func (f *fields) alpha(off, n int) string {
	s, err := codec.DecodeAlpha(f.b[off : off+n])
	f.set(err)
	return s
}

func (f *fields) flag(off int) bool {
	return f.alpha(off, 1) == "1"
}

func (f *fields) i16(off int) int16 {
	v, err := codec.DecodeInt16(f.b[off : off+2])
	f.set(err)
	return v
}

func (f *fields) i32(off int) int32 {
	v, err := codec.DecodeInt32(f.b[off : off+4])
	f.set(err)
	return v
}

func (f *fields) i64(off int) int64 {
	v, err := codec.DecodeInt64(f.b[off : off+8])
	f.set(err)
	return v
}

func (f *fields) precio4(off int) codec.Price {
	v, err := codec.DecodePrecio4(f.b[off : off+4])
	f.set(err)
	return v
}

func (f *fields) precio8(off int) codec.Price {
	v, err := codec.DecodePrecio8(f.b[off : off+8])
	f.set(err)
	return v
}

func (f *fields) ts1(off int) codec.Date {
	v, err := codec.DecodeTimestamp1(f.b[off : off+8])
	f.set(err)
	return v
}

func (f *fields) ts2(off int) codec.DateTime {
	v, err := codec.DecodeTimestamp2(f.b[off : off+8])
	f.set(err)
	return v
}

// payload appends fields in wire order. The first error sticks.
type payload struct {
	b   []byte
	err error
}

func newPayload(tag string, size int) *payload {
	p := &payload{b: make([]byte, 0, size)}
	p.b = append(p.b, tag...)
	return p
}

func (p *payload) alpha(s string, n int) {
	if p.err != nil {
		return
	}
	p.b, p.err = codec.AppendAlpha(p.b, s, n)
}

func (p *payload) flag(v bool) {
	if v {
		p.b = append(p.b, '1')
	} else {
		p.b = append(p.b, '0')
	}
}

func (p *payload) i16(v int16) { p.b = codec.AppendInt16(p.b, v) }
func (p *payload) i32(v int32) { p.b = codec.AppendInt32(p.b, v) }
func (p *payload) i64(v int64) { p.b = codec.AppendInt64(p.b, v) }

func (p *payload) precio4(v codec.Price) {
	if p.err != nil {
		return
	}
	p.b, p.err = codec.AppendPrecio4(p.b, v)
}

func (p *payload) precio8(v codec.Price) {
	if p.err != nil {
		return
	}
	p.b, p.err = codec.AppendPrecio8(p.b, v)
}

func (p *payload) ts1(v codec.Date)     { p.b = codec.AppendTimestamp1(p.b, v) }
func (p *payload) ts2(v codec.DateTime) { p.b = codec.AppendTimestamp2(p.b, v) }
