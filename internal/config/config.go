package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Ricky12Awesome/spotify-info/internal/errors"
	"github.com/Ricky12Awesome/spotify-info/pkg/protocol"
	"github.com/Ricky12Awesome/spotify-info/pkg/server"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.toml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "SPOTIFY_INFO_"

	// DefaultStatusAddress is where `watch` serves its status endpoints.
	DefaultStatusAddress = "127.0.0.1:19533"
)

// Config is the spotify-info command configuration.
type Config struct {
	Listener ListenerConfig `toml:"listener"`
	Status   StatusConfig   `toml:"status"`
	Log      LogConfig      `toml:"log"`
}

// ListenerConfig configures the producer listener.
type ListenerConfig struct {
	// Address is the TCP address to bind.
	Address string `toml:"address"`

	// Path is the WebSocket upgrade path.
	Path string `toml:"path"`

	// Codec is the wire grammar: "tagged" or "json".
	Codec string `toml:"codec"`

	// ProgressIntervalMS is requested from each producer. Zero sends nothing.
	ProgressIntervalMS int `toml:"progress_interval_ms"`

	// MaxMessageSize is the largest frame accepted, in bytes.
	MaxMessageSize int64 `toml:"max_message_size"`
}

// StatusConfig configures the HTTP status surface of `watch`.
type StatusConfig struct {
	// Address to serve /track, /healthz and /metrics on. Empty disables it.
	Address string `toml:"address"`

	// Disabled turns the status server off even when Address is set.
	Disabled bool `toml:"disabled"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every empty field with its default.
func (c *Config) ApplyDefaults() {
	if c.Listener.Address == "" {
		c.Listener.Address = server.DefaultAddress
	}
	if c.Listener.Path == "" {
		c.Listener.Path = "/"
	}
	if c.Listener.Codec == "" {
		c.Listener.Codec = protocol.CodecTagged
	}
	if c.Listener.MaxMessageSize <= 0 {
		c.Listener.MaxMessageSize = server.DefaultServerConfig().MaxMessageSize
	}
	if c.Status.Address == "" {
		c.Status.Address = DefaultStatusAddress
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Load reads the configuration file at path, or from the default location
// when path is empty, then applies defaults and environment overrides.
// A missing default file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = findConfigFile()
	}

	cfg := &Config{}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, errors.New(errors.CodeConfigInvalid).
				WithDetail(fmt.Sprintf("Failed to read %s.", path)).
				Wrap(err)
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
// Search order: $XDG_CONFIG_HOME/spotify-info/config.toml,
// ~/.config/spotify-info/config.toml.
func findConfigFile() string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfig = filepath.Join(home, ".config")
	}

	p := filepath.Join(xdgConfig, "spotify-info", ConfigFileName)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "ADDRESS"); v != "" {
		cfg.Listener.Address = v
	}
	if v := os.Getenv(EnvPrefix + "PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Listener.Address = server.LocalAddress(port)
		}
	}
	if v := os.Getenv(EnvPrefix + "PATH"); v != "" {
		cfg.Listener.Path = v
	}
	if v := os.Getenv(EnvPrefix + "CODEC"); v != "" {
		cfg.Listener.Codec = v
	}
	if v := os.Getenv(EnvPrefix + "PROGRESS_INTERVAL_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Listener.ProgressIntervalMS = i
		}
	}

	if v := os.Getenv(EnvPrefix + "STATUS_ADDRESS"); v != "" {
		cfg.Status.Address = v
	}

	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvPrefix + "LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// Validate checks field values that defaults cannot fix.
func (c *Config) Validate() error {
	if _, err := protocol.CodecByName(c.Listener.Codec); err != nil {
		return errors.New(errors.CodeUnknownCodec).
			WithDetail(fmt.Sprintf("Codec %q is not supported.", c.Listener.Codec)).
			Wrap(err)
	}
	if c.Listener.ProgressIntervalMS < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("listener.progress_interval_ms must not be negative.")
	}
	if !strings.HasPrefix(c.Listener.Path, "/") {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(fmt.Sprintf("listener.path %q must start with /.", c.Listener.Path))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New(errors.CodeConfigInvalid).
			WithDetail(fmt.Sprintf("log.format %q must be text or json.", c.Log.Format))
	}
	return nil
}

// ProgressInterval returns the configured progress interval.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Listener.ProgressIntervalMS) * time.Millisecond
}

// ServerConfig converts the listener section into a server.ServerConfig.
func (c *Config) ServerConfig() (*server.ServerConfig, error) {
	codec, err := protocol.CodecByName(c.Listener.Codec)
	if err != nil {
		return nil, errors.New(errors.CodeUnknownCodec).Wrap(err)
	}
	cfg := server.DefaultServerConfig().
		WithAddress(c.Listener.Address).
		WithCodec(codec).
		WithProgressInterval(c.ProgressInterval())
	cfg.Path = c.Listener.Path
	cfg.MaxMessageSize = c.Listener.MaxMessageSize
	return cfg, nil
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid log level %q", s)
	}
	return level, nil
}
