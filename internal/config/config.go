package config

import (
	"fmt"
	"time"

	pwerrors "pingwatch/internal/errors"
)

// Prober modes
const (
	ProberAuto    = "auto"
	ProberSocket  = "socket"
	ProberCommand = "command"
)

// Config holds all configuration for pingwatch
type Config struct {
	Targets        []string      `mapstructure:"targets"`
	Interval       time.Duration `mapstructure:"interval"`
	ToolTimeout    time.Duration `mapstructure:"tool_timeout"`
	ProcessTimeout time.Duration `mapstructure:"process_timeout"`
	StopTimeout    time.Duration `mapstructure:"stop_timeout"`
	MaxMonitors    int           `mapstructure:"max_monitors"`
	HistorySize    int           `mapstructure:"history_size"`
	Prober         string        `mapstructure:"prober"`
	Privileged     bool          `mapstructure:"privileged"`
	PayloadSize    int           `mapstructure:"payload_size"`
	CatalogFile    string        `mapstructure:"catalog_file"`
	LogFile        string        `mapstructure:"log_file"`
	DatabasePath   string        `mapstructure:"database"`
	Port           int           `mapstructure:"port"`
	Logging        LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Interval < time.Second {
		return invalid("interval must be at least 1s, got %v", c.Interval)
	}
	if c.ToolTimeout <= 0 {
		return invalid("tool_timeout must be positive")
	}
	if c.ProcessTimeout <= c.ToolTimeout {
		return invalid("process_timeout (%v) must be larger than tool_timeout (%v)", c.ProcessTimeout, c.ToolTimeout)
	}
	if c.StopTimeout <= 0 {
		return invalid("stop_timeout must be positive")
	}
	if c.MaxMonitors <= 0 {
		return invalid("max_monitors must be positive")
	}
	if c.HistorySize <= 0 {
		return invalid("history_size must be positive")
	}
	switch c.Prober {
	case ProberAuto, ProberSocket, ProberCommand:
	default:
		return invalid("prober must be one of auto, socket, command; got %q", c.Prober)
	}
	if c.PayloadSize < 0 || c.PayloadSize > 65500 {
		return invalid("payload_size must be between 0 and 65500")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return invalid("port must be between 1 and 65535")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return pwerrors.New(pwerrors.ErrConfig, fmt.Sprintf(format, args...), "fix the value in pingwatch.yaml, the environment or the command line")
}
