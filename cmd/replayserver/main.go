// replayserver answers BMV replay requests with generated trade packets.
// It is meant for testing replay clients without access to the exchange.
//
// Usage: replayserver [--addr :10000] [--users users.yaml]
//
//	replayserver --hash-password   prints a bcrypt hash for a users file
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rickgao/bmv-data/internal/auth"
	"github.com/rickgao/bmv-data/internal/replay"
	"github.com/rickgao/bmv-data/internal/version"
)

func main() {
	addr := flag.String("addr", replay.DefaultServerConfig().Addr, "TCP listen address")
	usersPath := flag.String("users", "", "YAML file mapping user to bcrypt hash; empty accepts any login")
	maxQty := flag.Int("max-quantity", replay.DefaultServerConfig().MaxQuantity, "largest accepted replay quantity")
	hashPassword := flag.Bool("hash-password", false, "prompt for a password, print its bcrypt hash and exit")
	flag.Parse()

	if *hashPassword {
		pw, err := auth.PromptPassword(os.Stdin, os.Stderr, "password: ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "replayserver: %v\n", err)
			os.Exit(1)
		}
		hash, err := auth.HashPassword(pw, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "replayserver: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)
	logger.Info("starting replay server", "version", version.Version, "commit", version.Commit)

	var opts []replay.ServerOption
	if *usersPath != "" {
		v, err := loadUsers(*usersPath)
		if err != nil {
			logger.Error("failed to load users", "error", err)
			os.Exit(1)
		}
		logger.Info("credentials loaded", "users", v.Users())
		opts = append(opts, replay.WithAuthenticator(v))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := replay.DefaultServerConfig()
	cfg.Addr = *addr
	cfg.MaxQuantity = *maxQty
	srv := replay.NewServer(cfg, replay.NewSynthetic(), logger, opts...)
	if err := srv.Start(ctx); err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	srv.Stop(shutdownCtx)

	st := srv.Stats()
	logger.Info("replay server stopped",
		"connections", st.Connections,
		"replays", st.ReplaysServed,
		"packets", st.PacketsSent,
	)
}

func loadUsers(path string) (*auth.Verifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var users map[string]string
	if err := yaml.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("parse users yaml: %w", err)
	}
	return auth.NewVerifier(users)
}
