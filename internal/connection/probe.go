package connection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/bmv-data/internal/framer"
)

// ProbeResult is the traffic seen on one feed during a probe window.
type ProbeResult struct {
	Feed         Feed
	Packets      int64
	Bytes        int64
	BadPackets   int64  // datagrams without a valid header
	LastSequence uint32 // next expected sequence after the last packet
	Err          error  // join failure, nil when the feed was read
}

// Active reports whether the feed carried valid packets.
func (r ProbeResult) Active() bool {
	return r.Err == nil && r.Packets > r.BadPackets
}

// Probe joins every feed at once, listens for window and reports what
// each one received. Join failures are reported per feed, not returned.
func Probe(ctx context.Context, feeds []Feed, window time.Duration, cfg ClientConfig, logger *slog.Logger) []ProbeResult {
	if logger == nil {
		logger = slog.Default()
	}
	results := make([]ProbeResult, len(feeds))

	ctx, cancel := context.WithTimeout(ctx, window)
	defer cancel()

	var g errgroup.Group
	for i, f := range feeds {
		i, f := i, f
		results[i].Feed = f
		g.Go(func() error {
			probeFeed(ctx, f, cfg, logger, &results[i])
			return nil
		})
	}
	g.Wait()
	return results
}

func probeFeed(ctx context.Context, f Feed, cfg ClientConfig, logger *slog.Logger, res *ProbeResult) {
	cfg.Group = f.Group
	client := NewClient(f.Name, cfg, logger)
	if err := client.Connect(ctx); err != nil {
		res.Err = err
		return
	}
	defer client.Close()

	for {
		data, err := client.Next(ctx)
		if err != nil {
			if !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
				res.Err = err
			}
			return
		}
		res.Packets++
		res.Bytes += int64(len(data))

		h, err := framer.DecodeHeader(data)
		if err != nil {
			res.BadPackets++
			continue
		}
		res.LastSequence = h.NextSequence()
	}
}
