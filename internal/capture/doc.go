// Package capture reads and writes BMV feed packets in pcap files.
//
// Reader walks a capture (pcap or pcapng), decodes the link, IPv4 and UDP
// layers and yields the UDP payloads, optionally filtered by destination
// port or group. Writer records feed packets as Ethernet/IPv4/UDP frames
// so a live session can be replayed through the same Reader later.
package capture
