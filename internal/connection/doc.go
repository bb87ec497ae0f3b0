// Package connection implements the multicast feed side of the gatherer.
//
// The package:
//   - Knows the feed A/B multicast groups of every environment
//   - Joins a group on an interface and reads datagrams (Client)
//   - Runs several feeds at once, reconnecting with exponential
//     backoff, and merges them into one packet stream (Manager)
//   - Probes every group of an environment for traffic (Probe)
package connection
