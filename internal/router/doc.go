// Package router drives ingestion: it pulls raw packets from a Source,
// decodes them with the framer, tracks sequence continuity per feed and
// group and hands every decoded record to the configured writer in wire
// order. With Dedupe, packets whose messages another feed already
// delivered are dropped.
//
// Packet-level failures are logged and counted, reset the sequence
// tracker of the affected feed, and never stop the loop.
package router
