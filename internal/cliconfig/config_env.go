package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (FRAMECHAT_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("endpoint", os.Getenv("FRAMECHAT_ENDPOINT"), &cfg.Endpoint)
	s.setString("mode", os.Getenv("FRAMECHAT_MODE"), &cfg.Mode)
	s.setString("quit", os.Getenv("FRAMECHAT_QUIT_COMMAND"), &cfg.QuitCommand)
	s.setString("render", os.Getenv("FRAMECHAT_RENDER"), &cfg.Render)
	s.setString("log-level", os.Getenv("FRAMECHAT_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("metrics-addr", os.Getenv("FRAMECHAT_METRICS_ADDR"), &cfg.MetricsAddr)

	if err := s.setIntFromString("frame-width", os.Getenv("FRAMECHAT_FRAME_WIDTH"), &cfg.FrameWidth); err != nil {
		return err
	}

	if err := s.setDuration("poll", os.Getenv("FRAMECHAT_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("dial-timeout", os.Getenv("FRAMECHAT_DIAL_TIMEOUT"), &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("drain-timeout", os.Getenv("FRAMECHAT_DRAIN_TIMEOUT"), &cfg.DrainTimeout); err != nil {
		return err
	}

	s.setBoolFromString("echo-sent", os.Getenv("FRAMECHAT_ECHO_SENT"), &cfg.EchoSent)

	return nil
}
