// Package codec implements the primitive field encodings of the BMV feed.
//
// Supported wire types:
//   - ALFA: fixed-width ISO-8859-1 text, right-padded with spaces
//   - INT8/16/32/64: big-endian two's-complement integers
//   - PRECIO4/PRECIO8: fixed-point prices scaled by 10^3 and 10^8
//   - TIMESTAMP1/2/3: epoch milliseconds read as date, second or millisecond precision
//
// Decoders fail with ErrLengthMismatch when the slice width is wrong.
// Prices use exact decimal arithmetic; times are expressed in the exchange
// time zone (America/Mexico_City).
package codec
