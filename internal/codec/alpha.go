package codec

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DecodeAlpha decodes an ALFA field and strips the trailing space padding.
func DecodeAlpha(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode alfa: %w", err)
	}
	return strings.TrimRight(string(out), " "), nil
}

// EncodeAlpha encodes s as an ALFA field of the given width, padding with spaces.
func EncodeAlpha(s string, width int) ([]byte, error) {
	return AppendAlpha(make([]byte, 0, width), s, width)
}

// AppendAlpha appends s as an ALFA field of the given width.
func AppendAlpha(dst []byte, s string, width int) ([]byte, error) {
	enc, err := charmap.ISO8859_1.NewEncoder().String(s)
	if err != nil {
		return dst, fmt.Errorf("encode alfa %q: %w", s, err)
	}
	if len(enc) > width {
		return dst, fmt.Errorf("encode alfa %q: %w: %d bytes exceeds width %d", s, ErrOutOfRange, len(enc), width)
	}
	dst = append(dst, enc...)
	for i := len(enc); i < width; i++ {
		dst = append(dst, ' ')
	}
	return dst, nil
}
