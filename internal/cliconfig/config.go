package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/framechat/pkg/framechat"
)

// Config holds CLI configuration for framechat.
type Config struct {
	Endpoint   string
	FrameWidth int
	Mode       string

	PollInterval time.Duration
	DialTimeout  time.Duration
	DrainTimeout time.Duration

	QuitCommand string
	Render      string
	EchoSent    bool

	LogLevel    string
	MetricsAddr string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Endpoint:     framechat.DefaultEndpoint,
		FrameWidth:   framechat.DefaultFrameWidth,
		Mode:         framechat.ModeSelect,
		PollInterval: framechat.DefaultPollInterval,
		DialTimeout:  framechat.DefaultDialTimeout,
		QuitCommand:  framechat.DefaultQuitCommand,
		Render:       framechat.RenderText,
		EchoSent:     true,
		LogLevel:     zerolog.InfoLevel.String(),
	}
}

// LogLevels are the accepted values of LogLevel.
var LogLevels = []string{
	zerolog.DebugLevel.String(),
	zerolog.InfoLevel.String(),
	zerolog.WarnLevel.String(),
	zerolog.ErrorLevel.String(),
}

func validLogLevel(level string) bool {
	for _, l := range LogLevels {
		if level == l {
			return true
		}
	}
	return false
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !validLogLevel(c.LogLevel) {
		return fmt.Errorf("log level must be one of %v, got %q", LogLevels, c.LogLevel)
	}
	lib := c.Library("")
	return lib.Validate()
}

// Library converts the CLI configuration to the client configuration.
func (c *Config) Library(configPath string) framechat.Config {
	return framechat.Config{
		Endpoint:     c.Endpoint,
		FrameWidth:   c.FrameWidth,
		Mode:         c.Mode,
		PollInterval: c.PollInterval,
		DialTimeout:  c.DialTimeout,
		DrainTimeout: c.DrainTimeout,
		QuitCommand:  c.QuitCommand,
		Render:       c.Render,
		EchoSent:     c.EchoSent,
		ConfigPath:   configPath,
	}
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
