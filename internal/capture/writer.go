package capture

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// MaxPayload is the largest UDP payload that fits one IPv4 datagram.
const MaxPayload = 65535 - 20 - 8

// snapLen covers the largest Ethernet frame written.
const snapLen = 65536 + 64

// ErrPayloadTooLarge is returned for payloads above MaxPayload.
var ErrPayloadTooLarge = errors.New("payload too large for one datagram")

// Writer records packets into a pcap file with Ethernet/IPv4/UDP framing.
// It is safe for concurrent use and implements router.PacketSink.
type Writer struct {
	mu     sync.Mutex
	w      *pcapgo.Writer
	closer io.Closer
	buf    gopacket.SerializeBuffer

	src, dst *net.UDPAddr
	ipID     uint16
	count    int64
}

// Create creates (or truncates) path and writes the pcap file header.
// dst is the group the packets are attributed to.
func Create(path string, dst *net.UDPAddr) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create capture: %w", err)
	}
	w, err := NewWriter(f, dst)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewWriter writes a pcap file header to out.
func NewWriter(out io.Writer, dst *net.UDPAddr) (*Writer, error) {
	if dst == nil || dst.IP.To4() == nil {
		return nil, fmt.Errorf("capture destination must be an IPv4 address, got %v", dst)
	}
	pw := pcapgo.NewWriter(out)
	if err := pw.WriteFileHeader(snapLen, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("write pcap header: %w", err)
	}
	return &Writer{
		w:   pw,
		buf: gopacket.NewSerializeBuffer(),
		src: &net.UDPAddr{IP: net.IPv4(10, 0, 0, 1), Port: dst.Port},
		dst: dst,
	}, nil
}

// WritePacket records payload as one datagram captured at ts.
func (w *Writer) WritePacket(ts time.Time, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.ipID++
	eth := layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       multicastMAC(w.dst.IP),
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      32,
		Id:       w.ipID,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    w.src.IP.To4(),
		DstIP:    w.dst.IP.To4(),
	}
	udp := layers.UDP{
		SrcPort: layers.UDPPort(w.src.Port),
		DstPort: layers.UDPPort(w.dst.Port),
	}
	if err := udp.SetNetworkLayerForChecksum(&ip); err != nil {
		return err
	}

	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(w.buf, opts, &eth, &ip, &udp, gopacket.Payload(payload)); err != nil {
		return fmt.Errorf("serialize frame: %w", err)
	}

	frame := w.buf.Bytes()
	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(frame),
		Length:        len(frame),
	}
	if err := w.w.WritePacket(ci, frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	w.count++
	return nil
}

// StorePacket records raw with the current time.
func (w *Writer) StorePacket(raw []byte) error {
	return w.WritePacket(time.Now(), raw)
}

// Count returns the number of packets written.
func (w *Writer) Count() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close closes the underlying file, if any.
func (w *Writer) Close() error {
	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

// multicastMAC maps an IPv4 group to its 01:00:5e Ethernet address.
func multicastMAC(ip net.IP) net.HardwareAddr {
	v4 := ip.To4()
	if v4 == nil || !v4.IsMulticast() {
		return net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
	}
	return net.HardwareAddr{0x01, 0x00, 0x5e, v4[1] & 0x7f, v4[2], v4[3]}
}
