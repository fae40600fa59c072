package framechat

import (
	"fmt"
	"time"

	"github.com/bft-labs/framechat/internal/app"
	"github.com/bft-labs/framechat/internal/domain"
)

// Defaults.
const (
	DefaultEndpoint     = "127.0.0.1:6000"
	DefaultFrameWidth   = domain.DefaultFrameWidth
	DefaultPollInterval = app.DefaultPollInterval
	DefaultDialTimeout  = 5 * time.Second
	DefaultQuitCommand  = app.DefaultQuitCommand
)

// Worker modes.
const (
	ModeSelect = string(app.ModeSelect)
	ModePoll   = string(app.ModePoll)
)

// Render modes for received messages.
const (
	RenderText  = "text"
	RenderBytes = "bytes"
)

// Config holds the configuration of a chat client.
type Config struct {
	// Endpoint is the host:port dialed once at startup.
	Endpoint string

	// FrameWidth is the fixed frame size in bytes.
	FrameWidth int

	// Mode is "select" (event driven) or "poll" (non-blocking read,
	// queue poll, then sleep PollInterval).
	Mode string

	// PollInterval paces the poll mode loop.
	PollInterval time.Duration

	// DialTimeout bounds the initial connect.
	DialTimeout time.Duration

	// DrainTimeout bounds how long Run waits for queued messages to be
	// written after input stops. Zero means exit without waiting.
	DrainTimeout time.Duration

	// QuitCommand ends the session when typed on its own line.
	QuitCommand string

	// Render is "text" or "bytes".
	Render string

	// EchoSent prints "Message sent: ..." after each write.
	EchoSent bool

	// ConfigPath is the file the configuration was loaded from, if any.
	// Passed to plugins.
	ConfigPath string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Endpoint:     DefaultEndpoint,
		FrameWidth:   DefaultFrameWidth,
		Mode:         ModeSelect,
		PollInterval: DefaultPollInterval,
		DialTimeout:  DefaultDialTimeout,
		QuitCommand:  DefaultQuitCommand,
		Render:       RenderText,
		EchoSent:     true,
	}
}

// SetDefaults fills zero-valued fields. Booleans are left alone.
func (c *Config) SetDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.FrameWidth == 0 {
		c.FrameWidth = DefaultFrameWidth
	}
	if c.Mode == "" {
		c.Mode = ModeSelect
	}
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.QuitCommand == "" {
		c.QuitCommand = DefaultQuitCommand
	}
	if c.Render == "" {
		c.Render = RenderText
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return invalid("endpoint is required")
	case c.FrameWidth < 1:
		return invalid("frame width must be positive, got %d", c.FrameWidth)
	case c.Mode != ModeSelect && c.Mode != ModePoll:
		return invalid("mode must be %q or %q, got %q", ModeSelect, ModePoll, c.Mode)
	case c.PollInterval <= 0:
		return invalid("poll interval must be positive")
	case c.DialTimeout < 0:
		return invalid("dial timeout must not be negative")
	case c.DrainTimeout < 0:
		return invalid("drain timeout must not be negative")
	case c.QuitCommand == "":
		return invalid("quit command is required")
	case c.Render != RenderText && c.Render != RenderBytes:
		return invalid("render must be %q or %q, got %q", RenderText, RenderBytes, c.Render)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
