// Package config loads the tcpd daemon's YAML configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tcpstack/gotcp/pkg/logger"
	"github.com/tcpstack/gotcp/pkg/tcp"
)

// Config is the top-level tcpd configuration.
type Config struct {
	// TUNDevice names the TUN interface to open, e.g. "tun0". Empty lets
	// the kernel assign one.
	TUNDevice string `yaml:"tun_device"`

	// LocalIP and PeerIP are the dotted-quad endpoints of the point-to-point
	// TUN link.
	LocalIP string `yaml:"local_ip"`
	PeerIP  string `yaml:"peer_ip"`

	// Capacity, MSS, InitialRTOMS, MaxRetx, and LingerMultiplier mirror
	// tcp.Config's fields one-to-one.
	Capacity         uint64 `yaml:"capacity"`
	MSS              uint64 `yaml:"mss"`
	InitialRTOMS     uint64 `yaml:"initial_rto_ms"`
	MaxRetx          uint64 `yaml:"max_retx"`
	LingerMultiplier uint64 `yaml:"linger_multiplier"`

	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint, e.g. ":9100". Empty disables metrics.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Default returns a Config with the package defaults (spec.md §6 values),
// suitable for use before a config file is loaded.
func Default() Config {
	return Config{
		Capacity:         tcp.DefaultCapacity,
		MSS:              tcp.DefaultMSS,
		InitialRTOMS:     tcp.DefaultInitialRTO,
		MaxRetx:          tcp.DefaultMaxRetx,
		LingerMultiplier: tcp.DefaultLingerMultiplier,
		LogLevel:         "info",
		MetricsAddr:      ":9100",
	}
}

// Load reads and parses a YAML config file at path, filling any field the
// file omits with the package defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// TCPConfig projects the connection-level fields onto a tcp.Config.
func (c Config) TCPConfig() tcp.Config {
	return tcp.Config{
		Capacity:         c.Capacity,
		MSS:              c.MSS,
		InitialRTO:       c.InitialRTOMS,
		MaxRetx:          c.MaxRetx,
		LingerMultiplier: c.LingerMultiplier,
	}
}

// LogLevelValue maps LogLevel onto the logger package's numeric levels,
// defaulting to LevelInfo for an unrecognized value.
func (c Config) LogLevelValue() int {
	switch c.LogLevel {
	case "debug":
		return logger.LevelDebug
	case "warn":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}
