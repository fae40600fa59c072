package framechat

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/bft-labs/framechat/internal/adapters/console"
	"github.com/bft-labs/framechat/internal/adapters/tcp"
	"github.com/bft-labs/framechat/internal/app"
	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/pkg/log"
)

// Client is a single-use chat session against one peer.
// Use New to create it, then Run.
type Client struct {
	config    Config
	opts      options
	sessionID string
	lifecycle *app.Lifecycle
	session   *app.Session
	logger    Logger

	mu      sync.Mutex
	started bool
	exit    app.ExitReason
}

// New creates a client in StateIdle. It does not connect.
// Returns an error wrapping ErrInvalidConfig if cfg is invalid.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NoopLogger{}
	}

	sessionID := uuid.NewString()
	logger := o.logger.With(log.String("session", sessionID))

	if o.dialer == nil {
		o.dialer = tcp.NewDialer(cfg.FrameWidth, cfg.DialTimeout)
	}

	emitter := &eventEmitterWrapper{handlers: o.eventHandlers}
	lifecycle := app.NewLifecycle(logger, emitter)
	sink := console.NewSink(o.output, console.Render(cfg.Render), cfg.EchoSent)

	session := app.NewSession(app.SessionConfig{
		Endpoint:    cfg.Endpoint,
		QuitCommand: cfg.QuitCommand,
		Worker: app.WorkerConfig{
			Mode:         app.Mode(cfg.Mode),
			PollInterval: cfg.PollInterval,
			FrameWidth:   cfg.FrameWidth,
		},
		DrainTimeout: cfg.DrainTimeout,
	}, o.dialer, o.input, sink, logger, lifecycle, emitter)

	return &Client{
		config:    cfg,
		opts:      o,
		sessionID: sessionID,
		lifecycle: lifecycle,
		session:   session,
		logger:    logger,
	}, nil
}

// Run initializes plugins, connects, and chats until the operator quits,
// input ends, or ctx is canceled. It blocks for the whole session.
//
// Run returns an error wrapping ErrConnectFailure if the peer cannot be
// reached, ErrAlreadyRunning on a second call, or a plugin's Initialize
// error. A severed connection is not an error of Run: the operator is
// told, and the session ends with the next input line.
func (c *Client) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return domain.ErrAlreadyRunning
	}
	c.started = true
	c.mu.Unlock()

	pluginCfg := PluginConfig{
		SessionID:  c.sessionID,
		Endpoint:   c.config.Endpoint,
		ConfigPath: c.config.ConfigPath,
		Logger:     c.logger,
	}
	initialized := 0
	defer func() { c.shutdownPlugins(initialized) }()
	for _, p := range c.opts.plugins {
		if err := p.Initialize(ctx, pluginCfg); err != nil {
			c.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			return err
		}
		initialized++
		c.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	reason, err := c.session.Run(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.exit = reason
	c.mu.Unlock()

	c.logger.Info("session ended",
		log.String("exit", reason.String()),
		log.String("worker", c.lifecycle.State().String()),
		log.String("reason", c.lifecycle.Reason()),
	)
	return nil
}

// Status returns the worker state.
// Safe to call concurrently from any goroutine.
func (c *Client) Status() State {
	return convertState(c.lifecycle.State())
}

// Done is closed when the worker reaches a terminal state.
func (c *Client) Done() <-chan struct{} {
	return c.lifecycle.Done()
}

// ExitReason names why the input loop stopped: "quit", "input ended",
// "consumer gone" or "canceled". Empty until Run returns nil.
func (c *Client) ExitReason() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exit == 0 {
		return ""
	}
	return c.exit.String()
}

// SessionID returns the identifier attached to every log line of this client.
func (c *Client) SessionID() string {
	return c.sessionID
}

// shutdownPlugins stops the first n plugins in reverse order.
func (c *Client) shutdownPlugins(n int) {
	ctx := context.Background()
	for i := n - 1; i >= 0; i-- {
		p := c.opts.plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			c.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
		} else {
			c.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
		}
	}
}
