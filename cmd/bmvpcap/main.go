// bmvpcap decodes a capture of the BMV multicast feed into NDJSON records
// and prints per-type statistics.
//
// Usage: bmvpcap --in feed.pcap [--out records.ndjson] [--port 12121]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rickgao/bmv-data/internal/capture"
	"github.com/rickgao/bmv-data/internal/catalog"
	"github.com/rickgao/bmv-data/internal/framer"
	"github.com/rickgao/bmv-data/internal/metrics"
	"github.com/rickgao/bmv-data/internal/model"
	"github.com/rickgao/bmv-data/internal/router"
	"github.com/rickgao/bmv-data/internal/version"
	"github.com/rickgao/bmv-data/internal/writer"
)

func main() {
	in := flag.String("in", "", "pcap or pcapng file to decode")
	out := flag.String("out", "-", "NDJSON output path, - for stdout")
	port := flag.Int("port", 0, "destination UDP port filter, 0 = any")
	group := flag.String("group", "", "destination group address filter")
	productos := flag.String("productos", "18,40", "comma-separated productos to decode")
	verbose := flag.Bool("verbose", false, "log rejected frames and sequence anomalies")
	flag.Parse()

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *in == "" {
		fmt.Fprintln(os.Stderr, "bmvpcap: --in is required")
		flag.Usage()
		os.Exit(2)
	}
	groups, err := parseProductos(*productos)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bmvpcap: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rcfg := capture.ReaderConfig{Port: *port}
	if *group != "" {
		if rcfg.Group = net.ParseIP(*group); rcfg.Group == nil {
			fmt.Fprintf(os.Stderr, "bmvpcap: bad group address %q\n", *group)
			os.Exit(2)
		}
	}
	reader, err := capture.Open(*in, rcfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bmvpcap: %v\n", err)
		os.Exit(1)
	}
	defer reader.Close()

	nd, err := writer.OpenNDJSON(writer.DefaultWriterConfig(), *out, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bmvpcap: %v\n", err)
		os.Exit(1)
	}

	decoder := catalog.NewDecoder(logger)
	span := &sequenceSpan{}
	rtr := router.NewRouter(router.RouterConfig{Groups: groups}, framer.New(decoder), nd, logger,
		router.WithSink(span))

	runErr := rtr.Run(ctx, reader)
	if err := nd.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "bmvpcap: %v\n", err)
	}

	printSummary(os.Stderr, *in, reader.Stats(), rtr.Stats(), span, decoder.UnknownCodes())
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "bmvpcap: %v\n", runErr)
		os.Exit(1)
	}
}

func parseProductos(s string) ([]model.Group, error) {
	var out []model.Group
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil || !model.Group(n).Valid() {
			return nil, fmt.Errorf("unknown producto %q", f)
		}
		out = append(out, model.Group(n))
	}
	return out, nil
}

// sequenceSpan records the first and last packet sequence seen per group.
type sequenceSpan struct {
	first, last map[model.Group]uint32
}

func (s *sequenceSpan) StorePacket(raw []byte) error {
	h, err := framer.DecodeHeader(raw)
	if err != nil {
		return err
	}
	if s.first == nil {
		s.first = make(map[model.Group]uint32)
		s.last = make(map[model.Group]uint32)
	}
	if _, ok := s.first[h.Group]; !ok {
		s.first[h.Group] = h.Sequence
	}
	s.last[h.Group] = h.Sequence
	return nil
}

func printSummary(w io.Writer, path string, rs capture.ReaderStats, st metrics.Snapshot, span *sequenceSpan, unknown map[catalog.UnknownCode]int64) {
	fmt.Fprintf(w, "\n%s (bmvpcap %s)\n", path, version.Version)
	fmt.Fprintf(w, "frames %d, datagrams %d, non-udp %d, fragments %d, filtered %d\n",
		rs.Frames, rs.Datagrams, rs.NonUDP, rs.Fragments, rs.Filtered)
	fmt.Fprintf(w, "packets %d, packet errors %d, other productos %d, messages %d, rejected %d, unknown %d\n",
		st.Packets, st.PacketErrors, st.Filtered, st.Messages, st.RejectedFrames, st.UnknownFrames)
	fmt.Fprintf(w, "gaps %d (%d missing), out of order %d\n\n", st.Gaps, st.Missing, st.OutOfOrder)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "type\tcount\tbytes\tavg\t")
	for _, t := range st.Types {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.2f\t\n", t.Tag, t.Count, t.Bytes, t.Avg())
	}
	tw.Flush()

	groups := make([]model.Group, 0, len(span.first))
	for g := range span.first {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i] < groups[j] })
	for _, g := range groups {
		fmt.Fprintf(w, "producto %d: first sequence %d, last sequence %d\n", g, span.first[g], span.last[g])
	}

	if len(unknown) > 0 {
		fmt.Fprintln(w, "\nunknown catalog codes:")
		for code, n := range unknown {
			fmt.Fprintf(w, "  %s %s=%q: %d\n", code.Type, code.Field, code.Value, n)
		}
	}
}
