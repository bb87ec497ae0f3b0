package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: test-gatherer
feeds:
  environment: TEST
  productos: [18]
  sides: [A]
  interface: eth1
  keep_duplicates: true
output:
  ndjson:
    enabled: true
    path: /var/lib/bmv/records.ndjson
  beats:
    enabled: true
    endpoint: logstash:5044
replay:
  enabled: true
  addr: 127.0.0.1:10000
  users:
    INFS01: $2a$10$abcdefghijklmnopqrstuu
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-gatherer" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-gatherer")
	}
	if cfg.Feeds.Environment != "TEST" {
		t.Errorf("Feeds.Environment = %q, want %q", cfg.Feeds.Environment, "TEST")
	}
	if len(cfg.Feeds.Productos) != 1 || cfg.Feeds.Productos[0] != 18 {
		t.Errorf("Feeds.Productos = %v, want [18]", cfg.Feeds.Productos)
	}
	if !cfg.Feeds.KeepDuplicates {
		t.Error("Feeds.KeepDuplicates = false, want true")
	}
	if cfg.Output.Beats.Endpoint != "logstash:5044" {
		t.Errorf("Output.Beats.Endpoint = %q, want %q", cfg.Output.Beats.Endpoint, "logstash:5044")
	}
	if got := cfg.Replay.Users["INFS01"]; got != "$2a$10$abcdefghijklmnopqrstuu" {
		t.Errorf("Replay.Users[INFS01] = %q, hash was altered", got)
	}
	if cfg.Replay.Addr != "127.0.0.1:10000" {
		t.Errorf("Replay.Addr = %q, want %q", cfg.Replay.Addr, "127.0.0.1:10000")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_BEATS_ENDPOINT", "logs.internal:5044")
	t.Setenv("TEST_RECORDS_PATH", "/tmp/records.ndjson")

	yaml := `
instance:
  id: test-gatherer
output:
  ndjson:
    path: ${TEST_RECORDS_PATH}
  beats:
    endpoint: ${TEST_BEATS_ENDPOINT}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Output.Beats.Endpoint != "logs.internal:5044" {
		t.Errorf("Output.Beats.Endpoint = %q, want %q", cfg.Output.Beats.Endpoint, "logs.internal:5044")
	}
	if cfg.Output.NDJSON.Path != "/tmp/records.ndjson" {
		t.Errorf("Output.NDJSON.Path = %q, want %q", cfg.Output.NDJSON.Path, "/tmp/records.ndjson")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
instance:
  id: test-gatherer
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	// Check defaults were applied
	if cfg.Feeds.Environment != DefaultEnvironment {
		t.Errorf("Feeds.Environment = %q, want default %q", cfg.Feeds.Environment, DefaultEnvironment)
	}
	if len(cfg.Feeds.Productos) != 2 || len(cfg.Feeds.Sides) != 2 {
		t.Errorf("Feeds.Productos/Sides = %v/%v, want both productos and sides", cfg.Feeds.Productos, cfg.Feeds.Sides)
	}
	if cfg.Feeds.ReadTimeout != DefaultReadTimeout {
		t.Errorf("Feeds.ReadTimeout = %v, want default %v", cfg.Feeds.ReadTimeout, DefaultReadTimeout)
	}
	if cfg.Output.BatchSize != DefaultBatchSize {
		t.Errorf("Output.BatchSize = %d, want default %d", cfg.Output.BatchSize, DefaultBatchSize)
	}
	if cfg.Output.NDJSON.Path != DefaultNDJSONPath {
		t.Errorf("Output.NDJSON.Path = %q, want default %q", cfg.Output.NDJSON.Path, DefaultNDJSONPath)
	}
	if cfg.Replay.MaxQuantity != DefaultMaxQuantity {
		t.Errorf("Replay.MaxQuantity = %d, want default %d", cfg.Replay.MaxQuantity, DefaultMaxQuantity)
	}
	if cfg.Metrics.Port != DefaultMetricsPort {
		t.Errorf("Metrics.Port = %d, want default %d", cfg.Metrics.Port, DefaultMetricsPort)
	}
	if cfg.Feeds.KeepDuplicates {
		t.Error("Feeds.KeepDuplicates = true, want false so redundant feeds are merged")
	}
	if cfg.Metrics.ReportInterval != DefaultReportInterval {
		t.Errorf("Metrics.ReportInterval = %v, want default %v", cfg.Metrics.ReportInterval, DefaultReportInterval)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, DefaultLogFormat)
	}

	// Defaults must not share backing arrays.
	cfg.Feeds.Productos[0] = 99
	if DefaultProductos[0] != 18 {
		t.Error("applyDefaults aliased DefaultProductos")
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, "instance:\n  id: gw-1\n")
	if _, err := LoadAndValidate(path); err != nil {
		t.Errorf("LoadAndValidate() unexpected error: %v", err)
	}

	path = writeTempFile(t, "feeds:\n  environment: PROD\n")
	_, err := LoadAndValidate(path)
	if err == nil || !strings.HasPrefix(err.Error(), "validate config: ") {
		t.Errorf("LoadAndValidate() error = %v, want validate config prefix", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) expected error")
	}
	if _, err := Load(writeTempFile(t, "instance: [unclosed")); err == nil {
		t.Error("Load(bad yaml) expected error")
	}
}

func validConfig() GathererConfig {
	cfg := GathererConfig{Instance: InstanceConfig{ID: "test"}}
	cfg.applyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GathererConfig)
		wantErr string
	}{
		{
			name:    "missing instance id",
			mutate:  func(c *GathererConfig) { c.Instance.ID = "" },
			wantErr: "instance.id is required",
		},
		{
			name:    "unknown environment",
			mutate:  func(c *GathererConfig) { c.Feeds.Environment = "QA" },
			wantErr: `feeds.environment must be PROD, DRP or TEST, got "QA"`,
		},
		{
			name:    "unknown producto",
			mutate:  func(c *GathererConfig) { c.Feeds.Productos = []int{18, 19} },
			wantErr: "feeds.productos: unknown producto 19",
		},
		{
			name:    "unknown side",
			mutate:  func(c *GathererConfig) { c.Feeds.Sides = []string{"C"} },
			wantErr: `feeds.sides: unknown side "C"`,
		},
		{
			name: "reconnect delays inverted",
			mutate: func(c *GathererConfig) {
				c.Feeds.ReconnectBaseDelay = time.Minute
				c.Feeds.ReconnectMaxDelay = time.Second
			},
			wantErr: "feeds.reconnect_max_delay (1s) cannot be less than reconnect_base_delay (1m0s)",
		},
		{
			name:    "beats without endpoint",
			mutate:  func(c *GathererConfig) { c.Output.Beats.Enabled = true },
			wantErr: "output.beats.endpoint is required",
		},
		{
			name:    "websocket without http",
			mutate:  func(c *GathererConfig) { c.Output.WebSocket.Enabled = true },
			wantErr: "output.websocket requires metrics.enabled",
		},
		{
			name: "capture without path",
			mutate: func(c *GathererConfig) {
				c.Output.Capture.Enabled = true
			},
			wantErr: "output.capture.path is required",
		},
		{
			name: "replay quantity beyond int16",
			mutate: func(c *GathererConfig) {
				c.Replay.Enabled = true
				c.Replay.MaxQuantity = 40000
			},
			wantErr: "replay.max_quantity must be between 1 and 32767, got 40000",
		},
		{
			name: "replay without producto 18",
			mutate: func(c *GathererConfig) {
				c.Replay.Enabled = true
				c.Feeds.Productos = []int{40}
			},
			wantErr: "replay requires producto 18 in feeds.productos",
		},
		{
			name:    "bad metrics port",
			mutate:  func(c *GathererConfig) { c.Metrics.Port = 70000 },
			wantErr: "metrics.port must be between 1 and 65535, got 70000",
		},
		{
			name:    "negative report interval",
			mutate:  func(c *GathererConfig) { c.Metrics.ReportInterval = -time.Second },
			wantErr: "metrics.report_interval must not be negative, got -1s",
		},
		{
			name:    "bad log level",
			mutate:  func(c *GathererConfig) { c.Log.Level = "trace" },
			wantErr: `log.level must be debug, info, warn or error, got "trace"`,
		},
		{
			name:    "valid config",
			mutate:  func(c *GathererConfig) {},
			wantErr: "",
		},
		{
			name: "valid replay config",
			mutate: func(c *GathererConfig) {
				c.Replay.Enabled = true
				c.Metrics.Enabled = true
				c.Output.WebSocket.Enabled = true
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErr)
				} else if err.Error() != tt.wantErr {
					t.Errorf("Validate() error = %q, want %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}
