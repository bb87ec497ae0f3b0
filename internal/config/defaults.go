package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultEnvironment        = "PROD"
	DefaultReadTimeout        = 1 * time.Second
	DefaultStaleTimeout       = 30 * time.Second
	DefaultReadBufferSize     = 4 << 20
	DefaultBufferSize         = 100000
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 60 * time.Second
	DefaultBatchSize          = 500
	DefaultFlushInterval      = 1 * time.Second
	DefaultNDJSONPath         = "-"
	DefaultWebSocketPath      = "/ws"
	DefaultQueueSize          = 256
	DefaultMaxQueueSize       = 65536
	DefaultBeatsTimeout       = 30 * time.Second
	DefaultReplayAddr         = ":10000"
	DefaultMaxQuantity        = 10000
	DefaultStoreCapacity      = 1000000
	DefaultReplayReadTimeout  = 30 * time.Second
	DefaultReplayWriteTimeout = 10 * time.Second
	DefaultMetricsPort        = 9090
	DefaultReportInterval     = 1 * time.Minute
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "auto"
)

// DefaultProductos are joined when feeds.productos is empty.
var DefaultProductos = []int{18, 40}

// DefaultSides are joined when feeds.sides is empty.
var DefaultSides = []string{"A", "B"}

func (c *GathererConfig) applyDefaults() {
	// Feed defaults
	if c.Feeds.Environment == "" {
		c.Feeds.Environment = DefaultEnvironment
	}
	if len(c.Feeds.Productos) == 0 {
		c.Feeds.Productos = append([]int(nil), DefaultProductos...)
	}
	if len(c.Feeds.Sides) == 0 {
		c.Feeds.Sides = append([]string(nil), DefaultSides...)
	}
	if c.Feeds.ReadTimeout == 0 {
		c.Feeds.ReadTimeout = DefaultReadTimeout
	}
	if c.Feeds.StaleTimeout == 0 {
		c.Feeds.StaleTimeout = DefaultStaleTimeout
	}
	if c.Feeds.ReadBufferSize == 0 {
		c.Feeds.ReadBufferSize = DefaultReadBufferSize
	}
	if c.Feeds.BufferSize == 0 {
		c.Feeds.BufferSize = DefaultBufferSize
	}
	if c.Feeds.ReconnectBaseDelay == 0 {
		c.Feeds.ReconnectBaseDelay = DefaultReconnectBaseDelay
	}
	if c.Feeds.ReconnectMaxDelay == 0 {
		c.Feeds.ReconnectMaxDelay = DefaultReconnectMaxDelay
	}

	// Output defaults
	if c.Output.BatchSize == 0 {
		c.Output.BatchSize = DefaultBatchSize
	}
	if c.Output.FlushInterval == 0 {
		c.Output.FlushInterval = DefaultFlushInterval
	}
	if c.Output.NDJSON.Path == "" {
		c.Output.NDJSON.Path = DefaultNDJSONPath
	}
	if c.Output.WebSocket.Path == "" {
		c.Output.WebSocket.Path = DefaultWebSocketPath
	}
	if c.Output.WebSocket.QueueSize == 0 {
		c.Output.WebSocket.QueueSize = DefaultQueueSize
	}
	if c.Output.WebSocket.MaxQueueSize == 0 {
		c.Output.WebSocket.MaxQueueSize = DefaultMaxQueueSize
	}
	if c.Output.Beats.Timeout == 0 {
		c.Output.Beats.Timeout = DefaultBeatsTimeout
	}

	// Replay defaults
	if c.Replay.Addr == "" {
		c.Replay.Addr = DefaultReplayAddr
	}
	if c.Replay.MaxQuantity == 0 {
		c.Replay.MaxQuantity = DefaultMaxQuantity
	}
	if c.Replay.StoreCapacity == 0 {
		c.Replay.StoreCapacity = DefaultStoreCapacity
	}
	if c.Replay.ReadTimeout == 0 {
		c.Replay.ReadTimeout = DefaultReplayReadTimeout
	}
	if c.Replay.WriteTimeout == 0 {
		c.Replay.WriteTimeout = DefaultReplayWriteTimeout
	}

	// Metrics defaults
	if c.Metrics.Port == 0 {
		c.Metrics.Port = DefaultMetricsPort
	}
	if c.Metrics.ReportInterval == 0 {
		c.Metrics.ReportInterval = DefaultReportInterval
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
