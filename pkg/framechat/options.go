package framechat

import (
	"io"
	"os"

	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/internal/ports"
	"github.com/bft-labs/framechat/pkg/log"
)

// Re-exported types for custom transports and loggers.
type (
	// Logger is the structured logger interface from pkg/log.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field

	// Frame is one fixed-width unit on the wire.
	Frame = domain.Frame

	// FrameConn is a connected, frame-oriented transport.
	FrameConn = ports.FrameConn

	// Dialer opens a FrameConn to an endpoint.
	Dialer = ports.Dialer
)

// Errors returned by the client. Match with errors.Is.
var (
	ErrInvalidConfig     = domain.ErrInvalidConfig
	ErrConnectFailure    = domain.ErrConnectFailure
	ErrConnectionSevered = domain.ErrConnectionSevered
	ErrFrameTooLarge     = domain.ErrFrameTooLarge
	ErrAlreadyRunning    = domain.ErrAlreadyRunning
)

// Option configures optional behavior of a Client.
type Option func(*options)

type options struct {
	logger        Logger
	eventHandlers []EventHandler
	plugins       []Plugin
	dialer        Dialer
	input         io.Reader
	output        io.Writer
}

func defaultOptions() options {
	return options{
		logger: log.NoopLogger{},
		input:  os.Stdin,
		output: os.Stdout,
	}
}

// WithLogger sets the structured logger.
// If not provided, nothing is logged.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler adds a handler for client events. Handlers are called in
// registration order.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		if handler != nil {
			o.eventHandlers = append(o.eventHandlers, handler)
		}
	}
}

// WithPlugin registers a plugin to be initialized when Run starts.
// Plugins are initialized in registration order and shut down in reverse.
// A plugin that also implements EventHandler is registered as a handler.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
		if h, ok := plugin.(EventHandler); ok {
			o.eventHandlers = append(o.eventHandlers, h)
		}
	}
}

// WithDialer replaces the TCP dialer.
func WithDialer(dialer Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// WithInput sets the source of operator lines. Defaults to os.Stdin.
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.input = r
	}
}

// WithOutput sets where messages and banners are printed. Defaults to
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}
