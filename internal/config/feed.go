package config

import (
	"errors"
	"time"

	"github.com/hxuan190/arb-engine/internal/common"
)

type FeedConfig struct {
	// Network is "unix" or "tcp"; Addr is the socket path or host:port.
	Network string
	Addr    string

	// EventBuffer sizes the decoded-event channel between the reader and
	// the dispatch workers.
	EventBuffer int

	// Workers is the number of dispatch goroutines draining the buffer.
	Workers int

	// ReconnectMin/ReconnectMax bound the exponential backoff.
	ReconnectMin time.Duration
	ReconnectMax time.Duration

	// ReadDeadline is the per-read idle timeout; 0 disables it.
	ReadDeadline time.Duration
}

func (c *FeedConfig) Key() string {
	return FEED_CONFIG_KEY
}

func (c *FeedConfig) Load() error {
	c.Network = common.GetEnvOrDefault("FEED_NETWORK", "unix")
	c.Addr = common.GetEnvOrDefault("FEED_ADDR", "/tmp/arb-engine.sock")
	c.EventBuffer = common.GetEnvIntOrDefault("FEED_EVENT_BUFFER", 4096)
	c.Workers = common.GetEnvIntOrDefault("FEED_WORKERS", 4)
	c.ReconnectMin = time.Duration(common.GetEnvIntOrDefault("FEED_RECONNECT_MIN_MS", 100)) * time.Millisecond
	c.ReconnectMax = time.Duration(common.GetEnvIntOrDefault("FEED_RECONNECT_MAX_MS", 10_000)) * time.Millisecond
	c.ReadDeadline = time.Duration(common.GetEnvIntOrDefault("FEED_READ_DEADLINE_MS", 0)) * time.Millisecond
	return c.Validate()
}

func (c *FeedConfig) Validate() error {
	if c.Network != "unix" && c.Network != "tcp" {
		return errors.New("feed config: FEED_NETWORK must be unix or tcp")
	}
	if c.Addr == "" {
		return errors.New("feed config: FEED_ADDR required")
	}
	if c.ReconnectMin <= 0 || c.ReconnectMax < c.ReconnectMin {
		return errors.New("feed config: invalid reconnect backoff bounds")
	}
	return nil
}
