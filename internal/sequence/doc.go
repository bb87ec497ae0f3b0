// Package sequence detects gaps and out-of-order delivery across packets.
//
// The tracker trusts each packet's self-declared range: after every
// observation the expected next sequence becomes sequence+message_count,
// whatever was reported. Anomalies are a monitoring signal and never
// block decoding.
package sequence
