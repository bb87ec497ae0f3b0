package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *GathererConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if err := c.Feeds.validate(); err != nil {
		return err
	}

	if c.Output.BatchSize < 1 {
		return errors.New("output.batch_size must be >= 1")
	}
	if c.Output.NDJSON.Enabled && c.Output.NDJSON.Path == "" {
		return errors.New("output.ndjson.path is required")
	}
	if c.Output.WebSocket.Enabled && !strings.HasPrefix(c.Output.WebSocket.Path, "/") {
		return fmt.Errorf("output.websocket.path must start with /, got %q", c.Output.WebSocket.Path)
	}
	if c.Output.WebSocket.Enabled && !c.Metrics.Enabled {
		return errors.New("output.websocket requires metrics.enabled")
	}
	if c.Output.Beats.Enabled && c.Output.Beats.Endpoint == "" {
		return errors.New("output.beats.endpoint is required")
	}
	if c.Output.Capture.Enabled && c.Output.Capture.Path == "" {
		return errors.New("output.capture.path is required")
	}

	if c.Replay.Enabled {
		if c.Replay.MaxQuantity < 1 || c.Replay.MaxQuantity > 32767 {
			return fmt.Errorf("replay.max_quantity must be between 1 and 32767, got %d", c.Replay.MaxQuantity)
		}
		if c.Replay.StoreCapacity < 1 {
			return errors.New("replay.store_capacity must be >= 1")
		}
		if !containsInt(c.Feeds.Productos, 18) {
			return errors.New("replay requires producto 18 in feeds.productos")
		}
	}

	if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
		return fmt.Errorf("metrics.port must be between 1 and 65535, got %d", c.Metrics.Port)
	}
	if c.Metrics.ReportInterval < 0 {
		return fmt.Errorf("metrics.report_interval must not be negative, got %v", c.Metrics.ReportInterval)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json", "auto":
	default:
		return fmt.Errorf("log.format must be text, json or auto, got %q", c.Log.Format)
	}

	return nil
}

func (f *FeedsConfig) validate() error {
	switch strings.ToUpper(f.Environment) {
	case "PROD", "DRP", "TEST":
	default:
		return fmt.Errorf("feeds.environment must be PROD, DRP or TEST, got %q", f.Environment)
	}
	if len(f.Productos) == 0 {
		return errors.New("feeds.productos is required")
	}
	for _, p := range f.Productos {
		if p != 18 && p != 40 {
			return fmt.Errorf("feeds.productos: unknown producto %d", p)
		}
	}
	for _, s := range f.Sides {
		if !strings.EqualFold(s, "A") && !strings.EqualFold(s, "B") {
			return fmt.Errorf("feeds.sides: unknown side %q", s)
		}
	}
	if f.ReconnectMaxDelay < f.ReconnectBaseDelay {
		return fmt.Errorf("feeds.reconnect_max_delay (%s) cannot be less than reconnect_base_delay (%s)", f.ReconnectMaxDelay, f.ReconnectBaseDelay)
	}
	return nil
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
