// bmvprobe joins every multicast group of a BMV environment for a short
// window and reports which ones carry traffic.
//
// Usage: bmvprobe --env PROD [--interface eth1] [--window 10s]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rickgao/bmv-data/internal/connection"
	"github.com/rickgao/bmv-data/internal/model"
)

func main() {
	envName := flag.String("env", "PROD", "environment: PROD, DRP or TEST")
	iface := flag.String("interface", "", "interface to join on")
	window := flag.Duration("window", 10*time.Second, "listen window")
	verbose := flag.Bool("verbose", false, "log join and read details")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	env, err := connection.ParseEnvironment(*envName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bmvprobe: %v\n", err)
		os.Exit(2)
	}
	feeds, err := connection.SelectFeeds(env, []model.Group{model.Producto18, model.Producto40}, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bmvprobe: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := connection.DefaultClientConfig()
	cfg.Interface = *iface
	fmt.Fprintf(os.Stderr, "listening on %d groups of %s for %s\n", len(feeds), env, *window)
	results := connection.Probe(ctx, feeds, *window, cfg, logger)

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FEED\tGROUP\tSTATUS\tPACKETS\tBYTES\tBAD\tNEXT SEQ")
	active := 0
	for _, r := range results {
		status := "silent"
		switch {
		case r.Err != nil:
			status = "error: " + r.Err.Error()
		case r.Active():
			status = "active"
			active++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.Feed.Name, r.Feed.Group, status, r.Packets, r.Bytes, r.BadPackets, r.LastSequence)
	}
	tw.Flush()

	if active == 0 {
		os.Exit(1)
	}
}
