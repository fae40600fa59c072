package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Endpoint     string `toml:"endpoint"`
	FrameWidth   int    `toml:"frame_width"`
	Mode         string `toml:"mode"`
	PollInterval string `toml:"poll_interval"`
	DialTimeout  string `toml:"dial_timeout"`
	DrainTimeout string `toml:"drain_timeout"`
	QuitCommand  string `toml:"quit_command"`
	Render       string `toml:"render"`
	EchoSent     *bool  `toml:"echo_sent"`
	LogLevel     string `toml:"log_level"`
	MetricsAddr  string `toml:"metrics_addr"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.framechat/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".framechat", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", fc.Endpoint, &cfg.Endpoint)
	s.setString("mode", fc.Mode, &cfg.Mode)
	s.setString("quit", fc.QuitCommand, &cfg.QuitCommand)
	s.setString("render", fc.Render, &cfg.Render)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)

	s.setInt("frame-width", fc.FrameWidth, &cfg.FrameWidth)

	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", fc.DialTimeout, &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("drain-timeout", fc.DrainTimeout, &cfg.DrainTimeout); err != nil {
		return err
	}

	s.setBool("echo-sent", fc.EchoSent, &cfg.EchoSent)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
