package config

import "time"

// GathererConfig is the root configuration for a gatherer instance.
type GathererConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Output   OutputConfig   `yaml:"output"`
	Replay   ReplayConfig   `yaml:"replay"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// InstanceConfig identifies this gatherer.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// FeedsConfig selects the multicast groups to join.
type FeedsConfig struct {
	Environment        string        `yaml:"environment"` // PROD, DRP or TEST
	Productos          []int         `yaml:"productos"`   // 18 and/or 40
	Sides              []string      `yaml:"sides"`       // A and/or B
	Interface          string        `yaml:"interface"`
	KeepDuplicates     bool          `yaml:"keep_duplicates"` // deliver packets already seen on the other side
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	StaleTimeout       time.Duration `yaml:"stale_timeout"`
	ReadBufferSize     int           `yaml:"read_buffer_size"`
	BufferSize         int           `yaml:"buffer_size"`
	ReconnectBaseDelay time.Duration `yaml:"reconnect_base_delay"`
	ReconnectMaxDelay  time.Duration `yaml:"reconnect_max_delay"`
}

// OutputConfig holds the record writers.
type OutputConfig struct {
	BatchSize     int             `yaml:"batch_size"`
	FlushInterval time.Duration   `yaml:"flush_interval"`
	NDJSON        NDJSONConfig    `yaml:"ndjson"`
	WebSocket     WebSocketConfig `yaml:"websocket"`
	Beats         BeatsConfig     `yaml:"beats"`
	Capture       CaptureConfig   `yaml:"capture"`
}

// NDJSONConfig writes one JSON record per line.
type NDJSONConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // "-" for stdout
}

// WebSocketConfig serves records to websocket subscribers.
type WebSocketConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Path         string `yaml:"path"`
	QueueSize    int    `yaml:"queue_size"`
	MaxQueueSize int    `yaml:"max_queue_size"`
}

// BeatsConfig ships records to a Logstash beats input.
type BeatsConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CaptureConfig records raw packets to a pcap file.
type CaptureConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ReplayConfig runs a replay server backed by the live feed.
type ReplayConfig struct {
	Enabled       bool              `yaml:"enabled"`
	Addr          string            `yaml:"addr"`
	MaxQuantity   int               `yaml:"max_quantity"`
	StoreCapacity int               `yaml:"store_capacity"`
	ReadTimeout   time.Duration     `yaml:"read_timeout"`
	WriteTimeout  time.Duration     `yaml:"write_timeout"`
	Users         map[string]string `yaml:"users"` // user -> bcrypt hash
}

// MetricsConfig holds the HTTP server exposing health and debug endpoints.
type MetricsConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Port           int           `yaml:"port"`
	ReportInterval time.Duration `yaml:"report_interval"` // statistics log interval
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json or auto
}
