// Package config loads bridge settings from file and environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the bridge's tunable surface.
type Config struct {
	Queue QueueConfig
}

// QueueConfig holds drain timing and backpressure settings. Durations
// are plain milliseconds.
type QueueConfig struct {
	StartDelayMS   int    `mapstructure:"start_delay_ms"`
	PollIntervalMS int    `mapstructure:"poll_interval_ms"`
	Capacity       int    `mapstructure:"capacity"`
	Policy         string `mapstructure:"policy"` // unbounded | drop | block
}

// StartDelay returns the delay before the first drain.
func (c Config) StartDelay() time.Duration {
	return time.Duration(c.Queue.StartDelayMS) * time.Millisecond
}

// PollInterval returns the interval between drain passes.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Queue.PollIntervalMS) * time.Millisecond
}

// Load reads configuration from file and env. Env var overrides use
// prefix EASYTEA_, e.g. EASYTEA_QUEUE_POLL_INTERVAL_MS=10.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("queue.start_delay_ms", 50)
	v.SetDefault("queue.poll_interval_ms", 50)
	v.SetDefault("queue.capacity", 0)
	v.SetDefault("queue.policy", "unbounded")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("EASYTEA_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "easytea"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("EASYTEA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) validate() error {
	if c.Queue.StartDelayMS < 0 || c.Queue.PollIntervalMS < 0 {
		return fmt.Errorf("queue timings must be non-negative, got start_delay_ms=%d poll_interval_ms=%d",
			c.Queue.StartDelayMS, c.Queue.PollIntervalMS)
	}
	switch c.Queue.Policy {
	case "unbounded", "drop", "block":
	default:
		return fmt.Errorf("unknown queue policy %q", c.Queue.Policy)
	}
	if c.Queue.Policy != "unbounded" && c.Queue.Capacity <= 0 {
		return fmt.Errorf("policy %q requires a positive queue capacity", c.Queue.Policy)
	}
	return nil
}
