package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("targets", []string{})
	v.SetDefault("interval", "5s")
	v.SetDefault("tool_timeout", "5s")
	v.SetDefault("process_timeout", "10s")
	v.SetDefault("stop_timeout", "2s")
	v.SetDefault("max_monitors", 4)
	v.SetDefault("history_size", 20)
	v.SetDefault("prober", ProberAuto)
	v.SetDefault("privileged", false)
	v.SetDefault("payload_size", 32)
	v.SetDefault("catalog_file", "ip_catalog.json")
	v.SetDefault("log_file", "ping_logs.csv")
	v.SetDefault("database", "pingwatch.db")
	v.SetDefault("port", 8080)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// NewViper returns a viper instance with defaults and PINGWATCH_ env binding.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("PINGWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// AddFlags registers the shared command-line flags on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.Duration("interval", 0, "Probe interval per target")
	fs.Duration("tool-timeout", 0, "Wait budget passed to the ping utility")
	fs.Duration("process-timeout", 0, "Hard timeout after which the ping process is killed")
	fs.Int("max-monitors", 0, "Maximum number of concurrently monitored targets")
	fs.String("prober", "", "Probe implementation: auto, socket or command")
	fs.Bool("privileged", false, "Use raw ICMP sockets instead of unprivileged datagram sockets")
	fs.String("catalog", "", "Path to the target catalog")
	fs.String("log-file", "", "Path to the CSV probe log")
	fs.String("db", "", "Path to the sqlite database")
	fs.Int("port", 0, "Web API port")
	fs.String("log-level", "", "Log level: debug, info, warn, error")
}

var flagKeys = map[string]string{
	"interval":        "interval",
	"tool_timeout":    "tool-timeout",
	"process_timeout": "process-timeout",
	"max_monitors":    "max-monitors",
	"prober":          "prober",
	"privileged":      "privileged",
	"catalog_file":    "catalog",
	"log_file":        "log-file",
	"database":        "db",
	"port":            "port",
	"logging.level":   "log-level",
}

// Bind binds the flags registered by AddFlags to v. Flags missing from fs
// are skipped.
func Bind(fs *pflag.FlagSet, v *viper.Viper) error {
	for key, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// BindFlags registers the shared flags on fs and binds them to v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	AddFlags(fs)
	return Bind(fs, v)
}

// Load reads the optional config file and returns the validated Config.
// An explicit file must exist; otherwise pingwatch.yaml is looked up in the
// working directory and $HOME/.config/pingwatch.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("pingwatch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/pingwatch")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
