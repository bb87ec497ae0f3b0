// Package replay implements the BMV retransmission protocol over TCP.
//
// A session is a login exchange followed by one replay request. When both
// are accepted the server streams the requested range as ordinary feed
// packets, one per sequence, and closes the connection.
//
// Frames:
//   - login request (19 bytes): length, '!', group, user(6), password(10)
//   - login response: header, length, '&', status
//   - replay request (9 bytes): length, '#', group, first(4), quantity(2)
//   - replay response: header, length, '*', group, first(4), quantity(2), status
//
// The server handles one connection at a time. Packets come from a Source:
// the live Store filled by the router, or the Synthetic generator.
package replay
