package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

var (
	ErrUnknownRuntime = errors.New("unknown page runtime")
	ErrMissingWasmDir = errors.New("wasm runtime requires a wasm directory")
	ErrInvalidPool    = errors.New("sandbox pool size must be positive")
	ErrUnknownFormat  = errors.New("unsupported config file format")
)

// Page runtimes
const (
	RuntimeScript = "script"
	RuntimeWasm   = "wasm"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Page      PageConfig      `yaml:"page" toml:"page"`
	Sandbox   SandboxConfig   `yaml:"sandbox" toml:"sandbox"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`

	// File is the optional config file applied over the environment
	File string `envconfig:"PAGEHOOK_CONFIG" yaml:"-" toml:"-"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8000" yaml:"port" toml:"port"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0" yaml:"host" toml:"host"`
	ShutdownTimeout Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	Compress        bool     `envconfig:"COMPRESS" default:"true" yaml:"compress" toml:"compress"`
}

// PageConfig selects how the page glue reaches the browser.
type PageConfig struct {
	Runtime string `envconfig:"PAGE_RUNTIME" default:"script" yaml:"runtime" toml:"runtime"`
	WasmDir string `envconfig:"WASM_DIR" yaml:"wasm_dir" toml:"wasm_dir"`
	Title   string `envconfig:"PAGE_TITLE" default:"Student Records" yaml:"title" toml:"title"`
}

// SandboxConfig holds inspection sandbox configuration.
type SandboxConfig struct {
	PoolSize       int      `envconfig:"SANDBOX_POOL_SIZE" default:"4" yaml:"pool_size" toml:"pool_size"`
	Timeout        Duration `envconfig:"SANDBOX_TIMEOUT" default:"5s" yaml:"timeout" toml:"timeout"`
	MaxActivations int      `envconfig:"MAX_ACTIVATIONS" default:"100" yaml:"max_activations" toml:"max_activations"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"rps" toml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
	// Global shares one bucket across all clients instead of one per IP
	Global bool `envconfig:"RATE_LIMIT_GLOBAL" default:"false" yaml:"global" toml:"global"`
}

// Duration is a time.Duration read as text ("5s", "250ms") from the
// environment and from config files.
type Duration time.Duration

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration as a Go duration string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the standard library duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Load loads configuration from environment variables, then applies the
// file named by PAGEHOOK_CONFIG if set.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.File != "" {
		if err := cfg.LoadFile(cfg.File); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile applies a YAML or TOML file over c. Keys missing from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	c.File = path
	return nil
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	switch c.Page.Runtime {
	case RuntimeScript:
	case RuntimeWasm:
		if c.Page.WasmDir == "" {
			return ErrMissingWasmDir
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownRuntime, c.Page.Runtime)
	}
	if c.Sandbox.PoolSize <= 0 {
		return ErrInvalidPool
	}
	if c.Sandbox.MaxActivations < 0 {
		return fmt.Errorf("max activations must not be negative: %d", c.Sandbox.MaxActivations)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: Duration(10 * time.Second),
			Compress:        true,
		},
		Page: PageConfig{
			Runtime: RuntimeScript,
			Title:   "Student Records",
		},
		Sandbox: SandboxConfig{
			PoolSize:       4,
			Timeout:        Duration(5 * time.Second),
			MaxActivations: 100,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
