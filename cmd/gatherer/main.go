// gatherer joins the BMV multicast feeds, decodes every packet and writes
// the records to the configured outputs. It can also serve replay requests
// from the packets it has seen.
//
// Usage: gatherer --config configs/gatherer.yaml
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/rickgao/bmv-data/internal/auth"
	"github.com/rickgao/bmv-data/internal/capture"
	"github.com/rickgao/bmv-data/internal/catalog"
	"github.com/rickgao/bmv-data/internal/config"
	"github.com/rickgao/bmv-data/internal/connection"
	"github.com/rickgao/bmv-data/internal/framer"
	"github.com/rickgao/bmv-data/internal/market"
	"github.com/rickgao/bmv-data/internal/metrics"
	"github.com/rickgao/bmv-data/internal/model"
	"github.com/rickgao/bmv-data/internal/replay"
	"github.com/rickgao/bmv-data/internal/router"
	"github.com/rickgao/bmv-data/internal/version"
	"github.com/rickgao/bmv-data/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/gatherer.yaml", "path to config file")
	flag.Parse()

	// Bootstrap logger until the config is read
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = newLogger(cfg.Log)
	slog.SetDefault(logger)

	runID := uuid.NewString()
	logger.Info("starting gatherer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
		"run_id", runID,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("gatherer failed", "error", err)
		os.Exit(1)
	}
	logger.Info("gatherer stopped")
}

// newLogger builds the process logger. Format "auto" writes text to a
// terminal and JSON otherwise.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	format := cfg.Format
	if format == "auto" {
		format = "json"
		if term.IsTerminal(int(os.Stdout.Fd())) {
			format = "text"
		}
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// components holds everything run starts and stops.
type components struct {
	feeds     []connection.Feed
	manager   connection.Manager
	router    *router.Router
	registry  market.Registry
	output    *writer.Multi
	broadcast *writer.Broadcaster
	store     *replay.Store
	replay    *replay.Server
	capture   *capture.Writer
	closers   []func() error
}

func run(ctx context.Context, cfg *config.GathererConfig, logger *slog.Logger) error {
	c, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.close(logger)

	g, gctx := errgroup.WithContext(ctx)

	// Feeds and router
	if err := c.manager.Start(gctx); err != nil {
		return fmt.Errorf("start feeds: %w", err)
	}
	g.Go(func() error {
		err := c.router.Run(gctx, c.manager)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// Periodic statistics
	reporter := metrics.NewReporter(metrics.ReporterConfig{Interval: cfg.Metrics.ReportInterval},
		metrics.SnapshotSourceFunc(c.router.Stats), logger)
	if err := reporter.Start(gctx); err != nil {
		return fmt.Errorf("start reporter: %w", err)
	}

	// Replay server
	if c.replay != nil {
		if err := c.replay.Start(gctx); err != nil {
			return fmt.Errorf("start replay server: %w", err)
		}
	}

	// Health and debug server
	var httpServer *http.Server
	if cfg.Metrics.Enabled {
		httpServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           createHandler(cfg, c, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("starting health server", "port", cfg.Metrics.Port)
			if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
	}

	logger.Info("gatherer running",
		"instance_id", cfg.Instance.ID,
		"environment", cfg.Feeds.Environment,
		"feeds", len(c.feeds),
		"replay", cfg.Replay.Enabled,
	)

	// Wait for shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if httpServer != nil {
			httpServer.Shutdown(shutdownCtx)
		}
		if c.replay != nil {
			c.replay.Stop(shutdownCtx)
		}
		reporter.Stop(shutdownCtx)
		return c.manager.Stop(shutdownCtx)
	})

	err = g.Wait()
	stats := c.router.Stats()
	logger.Info("final statistics",
		"packets", stats.Packets,
		"messages", stats.Messages,
		"packet_errors", stats.PacketErrors,
		"rejected_frames", stats.RejectedFrames,
		"gaps", stats.Gaps,
		"missing", stats.Missing,
		"duplicates", stats.Duplicates,
	)
	return err
}

func build(ctx context.Context, cfg *config.GathererConfig, logger *slog.Logger) (*components, error) {
	c := &components{}

	env, err := connection.ParseEnvironment(cfg.Feeds.Environment)
	if err != nil {
		return nil, err
	}
	productos := make([]model.Group, 0, len(cfg.Feeds.Productos))
	for _, p := range cfg.Feeds.Productos {
		productos = append(productos, model.Group(p))
	}
	c.feeds, err = connection.SelectFeeds(env, productos, cfg.Feeds.Sides)
	if err != nil {
		return nil, err
	}
	for _, f := range c.feeds {
		logger.Info("feed selected", "feed", f.Name, "group", f.Group)
	}

	clientCfg := connection.DefaultClientConfig()
	clientCfg.Interface = cfg.Feeds.Interface
	clientCfg.ReadTimeout = cfg.Feeds.ReadTimeout
	clientCfg.StaleTimeout = cfg.Feeds.StaleTimeout
	clientCfg.ReadBufferSize = cfg.Feeds.ReadBufferSize
	c.manager = connection.NewManager(connection.ManagerConfig{
		Feeds:             c.feeds,
		Client:            clientCfg,
		ReconnectBaseWait: cfg.Feeds.ReconnectBaseDelay,
		ReconnectMaxWait:  cfg.Feeds.ReconnectMaxDelay,
		MessageBufferSize: cfg.Feeds.BufferSize,
	}, logger)

	// Writers
	wcfg := writer.WriterConfig{BatchSize: cfg.Output.BatchSize, FlushInterval: cfg.Output.FlushInterval}
	var writers []writer.Writer

	if cfg.Output.NDJSON.Enabled {
		nd, err := writer.OpenNDJSON(wcfg, cfg.Output.NDJSON.Path, logger)
		if err != nil {
			return nil, err
		}
		if err := nd.Start(ctx); err != nil {
			return nil, err
		}
		writers = append(writers, nd)
	}

	if cfg.Output.WebSocket.Enabled {
		bcfg := writer.DefaultBroadcastConfig()
		bcfg.QueueSize = cfg.Output.WebSocket.QueueSize
		bcfg.MaxQueueSize = cfg.Output.WebSocket.MaxQueueSize
		c.broadcast = writer.NewBroadcaster(bcfg, logger)
		writers = append(writers, c.broadcast)
	}

	if cfg.Output.Beats.Enabled {
		hostname, _ := os.Hostname()
		bw, err := writer.NewBeatsWriter(writer.BeatsConfig{
			WriterConfig: wcfg,
			Endpoint:     cfg.Output.Beats.Endpoint,
			Timeout:      cfg.Output.Beats.Timeout,
			Hostname:     hostname,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := bw.Start(ctx); err != nil {
			return nil, err
		}
		writers = append(writers, bw)
	}

	c.registry = market.NewRegistry(market.DefaultConfig(), logger)
	writers = append(writers, c.registry)
	c.output = writer.NewMulti(writers...)
	c.closers = append(c.closers, c.output.Close)

	// Packet sinks
	var sinks []router.PacketSink
	if cfg.Replay.Enabled {
		c.store = replay.NewStore(replay.StoreConfig{
			Capacity: cfg.Replay.StoreCapacity,
			Group:    model.Producto18,
		}, logger)
		sinks = append(sinks, c.store)

		var opts []replay.ServerOption
		if len(cfg.Replay.Users) > 0 {
			v, err := auth.NewVerifier(cfg.Replay.Users)
			if err != nil {
				return nil, fmt.Errorf("replay users: %w", err)
			}
			opts = append(opts, replay.WithAuthenticator(v))
		}
		c.replay = replay.NewServer(replay.ServerConfig{
			Addr:         cfg.Replay.Addr,
			Group:        model.Producto18,
			MaxQuantity:  cfg.Replay.MaxQuantity,
			ReadTimeout:  cfg.Replay.ReadTimeout,
			WriteTimeout: cfg.Replay.WriteTimeout,
		}, c.store, logger, opts...)
	}

	if cfg.Output.Capture.Enabled && len(c.feeds) > 0 {
		dst, err := net.ResolveUDPAddr("udp4", c.feeds[0].Group)
		if err != nil {
			return nil, fmt.Errorf("capture destination: %w", err)
		}
		c.capture, err = capture.Create(cfg.Output.Capture.Path, dst)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, c.capture)
		c.closers = append(c.closers, c.capture.Close)
	}

	fr := framer.New(catalog.NewDecoder(logger))
	c.router = router.NewRouter(router.RouterConfig{
		Groups: productos,
		Dedupe: !cfg.Feeds.KeepDuplicates,
	}, fr, c.output, logger, router.WithSink(sinks...))

	return c, nil
}

func (c *components) close(logger *slog.Logger) {
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
	if c.capture != nil {
		logger.Info("capture closed", "packets", c.capture.Count())
	}
}

// createHandler creates the HTTP handler for health and debug endpoints.
func createHandler(cfg *config.GathererConfig, c *components, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string                 `json:"status"`
			Version    version.Info           `json:"version"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.Current(),
			Components: make(map[string]interface{}),
		}

		// Check feeds
		feeds := c.manager.Stats()
		connected := 0
		for _, f := range feeds.Feeds {
			if f.Connected {
				connected++
			}
		}
		health.Components["feeds"] = feeds.Feeds
		if connected == 0 {
			health.Status = "unhealthy"
		} else if connected < len(feeds.Feeds) {
			health.Status = "degraded"
		}

		health.Components["instruments"] = c.registry.Count()

		if c.store != nil {
			first, next, ok := c.store.Window()
			health.Components["replay_store"] = map[string]interface{}{
				"capacity": c.store.Cap(),
				"empty":    !ok,
				"first":    first,
				"next":     next,
			}
		}
		if c.replay != nil {
			health.Components["replay_server"] = c.replay.Stats()
		}

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.HandleFunc("/debug/instruments", func(w http.ResponseWriter, r *http.Request) {
		if sym := r.URL.Query().Get("symbol"); sym != "" {
			e, ok := c.registry.Lookup(sym)
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(e)
			return
		}

		instruments := c.registry.List()

		// Limit to first 100 for debugging
		limit := 100
		if len(instruments) > limit {
			instruments = instruments[:limit]
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count":       c.registry.Count(),
			"showing":     len(instruments),
			"instruments": instruments,
		})
	})

	mux.HandleFunc("/debug/stats", func(w http.ResponseWriter, r *http.Request) {
		out := map[string]interface{}{
			"router": c.router.Stats(),
			"feeds":  c.manager.Stats(),
		}
		if c.broadcast != nil {
			out["websocket"] = c.broadcast.Stats()
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(out)
	})

	if c.broadcast != nil {
		mux.Handle(cfg.Output.WebSocket.Path, c.broadcast)
		logger.Info("websocket output enabled", "path", cfg.Output.WebSocket.Path)
	}

	return mux
}
