package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"
)

// Config holds all configurable values for the server.
// Environment variables provide the defaults; command-line flags override them.
type Config struct {
	Host            string        `env:"POWERSIGHT_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"POWERSIGHT_PORT" envDefault:"8000"`
	LogLevel        string        `env:"POWERSIGHT_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"POWERSIGHT_LOG_FORMAT" envDefault:"json"`
	Encodings       []string      `env:"POWERSIGHT_ENCODINGS" envDefault:"utf-8,gbk" envSeparator:","`
	ReadLockTimeout time.Duration `env:"POWERSIGHT_READ_LOCK_TIMEOUT" envDefault:"0s"`
	ReadTimeout     time.Duration `env:"POWERSIGHT_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"POWERSIGHT_WRITE_TIMEOUT" envDefault:"0s"`
	ShutdownTimeout time.Duration `env:"POWERSIGHT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	EnableGzip      bool          `env:"POWERSIGHT_GZIP" envDefault:"true"`
	EnableMetrics   bool          `env:"POWERSIGHT_METRICS" envDefault:"true"`
	CORSOrigins     []string      `env:"POWERSIGHT_CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// Load builds a Config from the process environment and the given arguments
// (without the program name).
func Load(args []string) (*Config, error) {
	return load(args, env.Options{})
}

func load(args []string, opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("powersight", flag.ContinueOnError)
	fs.StringVar(&cfg.Host, "host", cfg.Host, "Interface to bind")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "Port for HTTP transport")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (json or console)")
	fs.Func("encodings", "Comma-separated decoding order, e.g. utf-8,gbk", func(v string) error {
		cfg.Encodings = splitList(v)
		return nil
	})
	fs.DurationVar(&cfg.ReadLockTimeout, "read-lock-timeout", cfg.ReadLockTimeout, "Shared lock wait before reading a file (0 disables locking)")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "HTTP server read timeout")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", cfg.WriteTimeout, "HTTP server write timeout (0 means none)")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")
	fs.BoolVar(&cfg.EnableGzip, "gzip", cfg.EnableGzip, "Compress responses for clients that accept gzip")
	fs.BoolVar(&cfg.EnableMetrics, "metrics", cfg.EnableMetrics, "Expose Prometheus metrics on /metrics")
	fs.Func("cors-origins", "Comma-separated allowed origins (* allows any)", func(v string) error {
		cfg.CORSOrigins = splitList(v)
		return nil
	})

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	if len(c.Encodings) == 0 {
		return fmt.Errorf("at least one encoding is required")
	}

	if c.ReadLockTimeout < 0 || c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}

	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("at least one CORS origin is required")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
