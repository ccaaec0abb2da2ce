// Package config loads application settings from a TOML file and flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the application settings
type Config struct {
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	DataDir   string `toml:"data_dir"`

	Notifications Notifications `toml:"notifications"`
}

// Notifications holds the local notification facility settings
type Notifications struct {
	Enabled      bool   `toml:"enabled"`
	PollInterval string `toml:"poll_interval"`
	AlertTimeout string `toml:"alert_timeout"`

	poll  time.Duration
	alert time.Duration
}

// Poll returns the parsed poll interval
func (n Notifications) Poll() time.Duration { return n.poll }

// Alert returns how long an alert banner stays on screen
func (n Notifications) Alert() time.Duration { return n.alert }

// Defaults
const (
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultPollInterval = "1s"
	DefaultAlertTimeout = "8s"
	ConfigFileName      = "config.toml"
)

func setDefaults(cfg *Config) {
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Notifications.Enabled = true
	cfg.Notifications.PollInterval = DefaultPollInterval
	cfg.Notifications.AlertTimeout = DefaultAlertTimeout
}

// Load builds the configuration in priority order:
// 1. Defaults
// 2. Config file (-config path, or the user config dir)
// 3. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	configPath := fs.String("config", "", "path to config file")
	logLevel := fs.String("log-level", "", "log level (debug, info, warn, error)")
	dataDir := fs.String("data-dir", "", "directory for the reminder queue and log file")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	path := *configPath
	explicit := path != ""
	if !explicit {
		path = userConfigFile()
	}
	if path != "" {
		if err := loadConfigFile(cfg, path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
	}

	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func finalizeConfig(cfg *Config) error {
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}

	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	switch cfg.LogFormat {
	case "text", "logfmt", "json":
	default:
		return fmt.Errorf("invalid log_format %q", cfg.LogFormat)
	}

	var err error
	cfg.Notifications.poll, err = positiveDuration("poll_interval", cfg.Notifications.PollInterval)
	if err != nil {
		return err
	}
	cfg.Notifications.alert, err = positiveDuration("alert_timeout", cfg.Notifications.AlertTimeout)
	if err != nil {
		return err
	}
	return nil
}

func positiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", name)
	}
	return d, nil
}

// userConfigFile returns $XDG_CONFIG_HOME/todo/config.toml or the OS
// equivalent, or "" if no config dir can be determined
func userConfigFile() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "todo", ConfigFileName)
}
