// Package metrics aggregates ingestion statistics.
//
// Key metrics:
//   - Message count and total bytes per type tag
//   - Packets decoded, rejected and filtered
//   - Rejected and unknown frames
//   - Sequence gaps (with missing count) and out-of-order packets
//
// A Statistics value is owned by one run; there is no process-wide registry.
// Reporter logs the per-interval rates of any snapshot source.
package metrics
