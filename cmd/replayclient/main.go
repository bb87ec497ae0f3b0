// replayclient requests a range of sequences from a BMV replay server and
// prints the decoded records as NDJSON.
//
// Usage: replayclient --addr host:10000 --user INFS01 --first 123 --quantity 5
//
// The password is read from --password, the BMV_REPLAY_PASSWORD environment
// variable, --password-file, or prompted on the terminal, in that order.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rickgao/bmv-data/internal/auth"
	"github.com/rickgao/bmv-data/internal/catalog"
	"github.com/rickgao/bmv-data/internal/framer"
	"github.com/rickgao/bmv-data/internal/replay"
	"github.com/rickgao/bmv-data/internal/writer"
)

func main() {
	cfg := replay.DefaultClientConfig()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "replay server address")
	flag.StringVar(&cfg.User, "user", "", "replay user (6 characters max)")
	password := flag.String("password", "", "replay password")
	passwordFile := flag.String("password-file", "", "file holding the replay password")
	first := flag.Int("first", 1, "first sequence to replay")
	qty := flag.Int("quantity", 1, "number of packets to replay")
	raw := flag.Bool("raw", false, "print packet headers only, do not decode")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	pw, err := auth.ResolvePassword(auth.PasswordSource{
		Value:  *password,
		EnvKey: "BMV_REPLAY_PASSWORD",
		Path:   *passwordFile,
		Prompt: true,
	})
	if err != nil {
		logger.Error("no password", "error", err)
		os.Exit(1)
	}
	cfg.Password = pw

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := replay.Dial(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.Login(ctx); err != nil {
		logger.Error("login failed", "error", err, "phase", client.Phase())
		os.Exit(1)
	}
	if err := client.RequestReplay(ctx, int32(*first), int16(*qty)); err != nil {
		logger.Error("replay request failed", "error", err, "phase", client.Phase())
		os.Exit(1)
	}

	out := writer.NewNDJSONWriter(writer.DefaultWriterConfig(), os.Stdout, logger)
	defer out.Close()
	fr := framer.New(catalog.NewDecoder(logger))

	received := 0
	for {
		pkt, err := client.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logger.Error("stream ended early", "error", err, "received", received)
			out.Close()
			os.Exit(1)
		}
		received++

		if *raw {
			h, err := framer.DecodeHeader(pkt)
			logger.Info("packet received",
				"length", len(pkt),
				"messages", h.MessageCount,
				"sequence", h.Sequence,
				"error", err,
			)
			continue
		}

		decoded, err := fr.Decode(pkt)
		if err != nil {
			logger.Warn("failed to decode packet", "error", err)
			if decoded == nil {
				continue
			}
		}
		for _, r := range decoded.Rejected {
			logger.Warn("frame rejected", "sequence", r.Sequence, "type", r.Tag, "error", r.Err)
		}
		for _, m := range decoded.Messages {
			out.Write(ctx, m)
		}
	}

	logger.Info("replay complete", "received", received, "requested", *qty)
}
