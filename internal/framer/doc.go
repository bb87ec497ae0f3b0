// Package framer decodes and builds BMV feed packets.
//
// A packet is a 17-byte header followed by message_count frames, each a
// 2-byte length and a payload that starts with the type tag. The same
// framing is used on the multicast feed and on replay TCP streams.
//
// Failure scopes:
//   - Bad header: the whole packet is rejected (ErrBadHeader)
//   - Truncated frame: decoding of the packet stops (ErrFrameTruncated)
//   - Invalid or unknown frame: only that frame is dropped
package framer
