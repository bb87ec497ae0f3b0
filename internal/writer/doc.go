// Package writer implements the output sinks for decoded records.
//
// Writers:
//   - NDJSON writer (file or stdout, one JSON object per line)
//   - Beats writer (lumberjack v2 to Logstash/Elastic agents)
//   - Broadcaster (websocket fan-out to live subscribers)
//
// Every writer receives records in wire order. Batching writers flush on
// size or on a ticker, whichever comes first.
package writer
