package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type LogConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type Config struct {
	// ConnectTimeoutSeconds bounds SSH dial + handshake.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`
	// CommandTimeoutSeconds bounds a single remote or local command.
	// Zero means no timeout.
	CommandTimeoutSeconds int `yaml:"command_timeout_seconds"`
	// TmuxConfigPath is the tmux configuration file the mouse-mode toggle
	// edits on the target host.
	TmuxConfigPath string    `yaml:"tmux_config_path"`
	Log            LogConfig `yaml:"log"`
}

func defaults() *Config {
	return &Config{
		ConnectTimeoutSeconds: 10,
		CommandTimeoutSeconds: 30,
		TmuxConfigPath:        "~/.tmux.conf",
		Log:                   LogConfig{Level: "info"},
	}
}

// Load reads the config from ~/.config/muxify/config.yaml.
// Returns defaults if the file doesn't exist.
func Load() (*Config, error) {
	cfg := defaults()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}

	path := filepath.Join(home, ".config", "muxify", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.ConnectTimeoutSeconds <= 0 {
		cfg.ConnectTimeoutSeconds = 10
	}
	if cfg.TmuxConfigPath == "" {
		cfg.TmuxConfigPath = "~/.tmux.conf"
	}
	// Expand ~ in log dir
	if len(cfg.Log.Dir) > 0 && cfg.Log.Dir[0] == '~' {
		cfg.Log.Dir = filepath.Join(home, cfg.Log.Dir[1:])
	}

	return cfg, nil
}

func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}
