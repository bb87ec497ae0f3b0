package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// ErrUnsupportedLink is returned for captures whose link type has no decoder.
var ErrUnsupportedLink = errors.New("unsupported link type")

// pcapng section header block type.
var ngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

// ReaderConfig selects which datagrams are yielded.
type ReaderConfig struct {
	Port  int    // destination UDP port, 0 = any
	Group net.IP // destination address, nil = any
}

// ReaderStats counts what the reader walked.
type ReaderStats struct {
	Frames    int64 // link-layer frames read
	Datagrams int64 // UDP payloads yielded
	NonUDP    int64 // frames without an IPv4/UDP payload
	Fragments int64 // IPv4 fragments, not reassembled
	Filtered  int64 // datagrams outside Port/Group
}

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Reader yields UDP payloads from a capture. It implements router.Source.
type Reader struct {
	cfg    ReaderConfig
	src    packetSource
	closer io.Closer

	parser  *gopacket.DecodingLayerParser
	eth     layers.Ethernet
	sll     layers.LinuxSLL
	dot1q   layers.Dot1Q
	ip4     layers.IPv4
	udp     layers.UDP
	payload gopacket.Payload
	decoded []gopacket.LayerType

	stats ReaderStats
}

// Open opens a pcap or pcapng file.
func Open(path string, cfg ReaderConfig) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	r, err := NewReader(f, cfg)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader reads a capture from r, detecting pcap or pcapng by its magic.
func NewReader(r io.Reader, cfg ReaderConfig) (*Reader, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}

	var src packetSource
	if string(magic) == string(ngMagic) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("read pcapng header: %w", err)
		}
		src = ng
	} else {
		pr, err := pcapgo.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("read pcap header: %w", err)
		}
		src = pr
	}

	rd := &Reader{cfg: cfg, src: src}

	var first gopacket.LayerType
	switch src.LinkType() {
	case layers.LinkTypeEthernet:
		first = layers.LayerTypeEthernet
	case layers.LinkTypeLinuxSLL:
		first = layers.LayerTypeLinuxSLL
	case layers.LinkTypeRaw, layers.LinkTypeIPv4:
		first = layers.LayerTypeIPv4
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLink, src.LinkType())
	}

	rd.parser = gopacket.NewDecodingLayerParser(first,
		&rd.eth, &rd.sll, &rd.dot1q, &rd.ip4, &rd.udp, &rd.payload)
	rd.parser.IgnoreUnsupported = true
	return rd, nil
}

// Next returns the next matching UDP payload, or io.EOF at the end of the
// capture.
func (r *Reader) Next(ctx context.Context) ([]byte, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, _, err := r.src.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read capture frame %d: %w", r.stats.Frames+1, err)
		}
		r.stats.Frames++

		if payload, ok := r.datagram(data); ok {
			r.stats.Datagrams++
			return payload, nil
		}
	}
}

// datagram decodes one frame and reports whether it carries a wanted
// UDP payload.
func (r *Reader) datagram(data []byte) ([]byte, bool) {
	r.decoded = r.decoded[:0]
	if err := r.parser.DecodeLayers(data, &r.decoded); err != nil {
		r.stats.NonUDP++
		return nil, false
	}

	var haveIP, haveUDP bool
	for _, lt := range r.decoded {
		switch lt {
		case layers.LayerTypeIPv4:
			haveIP = true
		case layers.LayerTypeUDP:
			haveUDP = true
		}
	}
	if haveIP && (r.ip4.Flags&layers.IPv4MoreFragments != 0 || r.ip4.FragOffset != 0) {
		r.stats.Fragments++
		return nil, false
	}
	if !haveIP || !haveUDP {
		r.stats.NonUDP++
		return nil, false
	}

	if r.cfg.Port != 0 && int(r.udp.DstPort) != r.cfg.Port {
		r.stats.Filtered++
		return nil, false
	}
	if r.cfg.Group != nil && !r.cfg.Group.Equal(r.ip4.DstIP) {
		r.stats.Filtered++
		return nil, false
	}
	return r.udp.Payload, true
}

// Stats returns what has been read so far.
func (r *Reader) Stats() ReaderStats {
	return r.stats
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
