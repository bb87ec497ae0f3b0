package codec

import "encoding/binary"

// DecodeInt8 decodes a 1-byte signed integer.
func DecodeInt8(b []byte) (int8, error) {
	if err := checkLen("int8", b, 1); err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// DecodeInt16 decodes a 2-byte big-endian signed integer.
func DecodeInt16(b []byte) (int16, error) {
	if err := checkLen("int16", b, 2); err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// DecodeInt32 decodes a 4-byte big-endian signed integer.
func DecodeInt32(b []byte) (int32, error) {
	if err := checkLen("int32", b, 4); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// DecodeInt64 decodes an 8-byte big-endian signed integer.
func DecodeInt64(b []byte) (int64, error) {
	if err := checkLen("int64", b, 8); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// AppendInt8 appends v in its 1-byte wire form.
func AppendInt8(dst []byte, v int8) []byte {
	return append(dst, byte(v))
}

// AppendInt16 appends v in its 2-byte big-endian wire form.
func AppendInt16(dst []byte, v int16) []byte {
	return binary.BigEndian.AppendUint16(dst, uint16(v))
}

// AppendInt32 appends v in its 4-byte big-endian wire form.
func AppendInt32(dst []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(dst, uint32(v))
}

// AppendInt64 appends v in its 8-byte big-endian wire form.
func AppendInt64(dst []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(dst, uint64(v))
}
