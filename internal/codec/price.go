package codec

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Scale exponents of the two fixed-point price encodings.
const (
	Precio4Exp = -3
	Precio8Exp = -8
)

// Price is an exact decimal price. It marshals to a bare JSON number.
type Price struct {
	decimal.Decimal
}

// NewPrice wraps a decimal value.
func NewPrice(d decimal.Decimal) Price {
	return Price{Decimal: d}
}

// MustPrice parses a decimal literal and panics on malformed input.
func MustPrice(s string) Price {
	return Price{Decimal: decimal.RequireFromString(s)}
}

// MarshalJSON writes the price as a JSON number.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// UnmarshalJSON accepts both quoted and bare numbers.
func (p *Price) UnmarshalJSON(b []byte) error {
	return p.Decimal.UnmarshalJSON(b)
}

// DecodePrecio4 decodes a 4-byte price scaled by 1000.
func DecodePrecio4(b []byte) (Price, error) {
	v, err := DecodeInt32(b)
	if err != nil {
		return Price{}, fmt.Errorf("precio4: %w", err)
	}
	return Price{Decimal: decimal.New(int64(v), Precio4Exp)}, nil
}

// DecodePrecio8 decodes an 8-byte price scaled by 100,000,000.
func DecodePrecio8(b []byte) (Price, error) {
	v, err := DecodeInt64(b)
	if err != nil {
		return Price{}, fmt.Errorf("precio8: %w", err)
	}
	return Price{Decimal: decimal.New(v, Precio8Exp)}, nil
}

// AppendPrecio4 appends p in its precio4 wire form. Prices with more than
// three decimals or beyond the int32 range are rejected.
func AppendPrecio4(dst []byte, p Price) ([]byte, error) {
	raw, err := scaled(p, Precio4Exp, math.MinInt32, math.MaxInt32)
	if err != nil {
		return dst, fmt.Errorf("precio4 %s: %w", p, err)
	}
	return AppendInt32(dst, int32(raw)), nil
}

// AppendPrecio8 appends p in its precio8 wire form.
func AppendPrecio8(dst []byte, p Price) ([]byte, error) {
	raw, err := scaled(p, Precio8Exp, math.MinInt64, math.MaxInt64)
	if err != nil {
		return dst, fmt.Errorf("precio8 %s: %w", p, err)
	}
	return AppendInt64(dst, raw), nil
}

func scaled(p Price, exp int32, lo, hi int64) (int64, error) {
	s := p.Decimal.Shift(-exp)
	if !s.IsInteger() {
		return 0, ErrOutOfRange
	}
	if s.LessThan(decimal.NewFromInt(lo)) || s.GreaterThan(decimal.NewFromInt(hi)) {
		return 0, ErrOutOfRange
	}
	return s.IntPart(), nil
}
