package app

import (
	"context"
	"io"
	"time"

	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/internal/ports"
	"github.com/bft-labs/framechat/internal/queue"
)

// Operator-facing banners.
const (
	StartingNotice = "Starting the client..."
	PromptNotice   = "Write a message:"
	ByeNotice      = "Bye!"
)

// SessionConfig contains configuration for one chat session.
type SessionConfig struct {
	Endpoint    string
	QuitCommand string
	Worker      WorkerConfig

	// DrainTimeout bounds how long Run waits for the worker after input
	// stops. Zero means do not wait.
	DrainTimeout time.Duration
}

// Session connects once and runs the worker and the input loop side by side.
type Session struct {
	config    SessionConfig
	dialer    ports.Dialer
	input     io.Reader
	sink      ports.Sink
	logger    ports.Logger
	lifecycle *Lifecycle
	emitter   FrameEmitter
}

// NewSession creates a session with the given dependencies.
func NewSession(
	config SessionConfig,
	dialer ports.Dialer,
	input io.Reader,
	sink ports.Sink,
	logger ports.Logger,
	lifecycle *Lifecycle,
	emitter FrameEmitter,
) *Session {
	return &Session{
		config:    config,
		dialer:    dialer,
		input:     input,
		sink:      sink,
		logger:    logger,
		lifecycle: lifecycle,
		emitter:   emitter,
	}
}

// Run dials, starts the worker, and reads input until the operator quits,
// input ends, the worker is gone, or ctx is canceled.
// A dial failure is returned as is; every other outcome is reported through
// the ExitReason and the worker's state.
func (s *Session) Run(ctx context.Context) (ExitReason, error) {
	if !s.lifecycle.CanStart() {
		return 0, domain.ErrAlreadyRunning
	}

	s.sink.Notice(StartingNotice)

	conn, err := s.dialer.Dial(ctx, s.config.Endpoint)
	if err != nil {
		s.logger.Error("connect failed",
			ports.String("endpoint", s.config.Endpoint),
			ports.Err(err),
		)
		return 0, err
	}
	s.logger.Info("connected",
		ports.String("endpoint", s.config.Endpoint),
		ports.String("remote", conn.RemoteAddr()),
	)

	q := queue.New()
	worker := NewWorker(s.config.Worker, conn, q, s.sink, s.logger, s.lifecycle, s.emitter)

	s.lifecycle.AddWorker()
	go func() {
		defer s.lifecycle.WorkerDone()
		if err := worker.Run(ctx); err != nil {
			s.logger.Error("worker terminated", ports.Err(err))
		}
	}()

	s.sink.Notice(PromptNotice)

	// The input goroutine may stay blocked on a read after cancellation;
	// it owns the producer side, so only it closes the queue.
	reasons := make(chan ExitReason, 1)
	input := NewInputLoop(s.input, q, s.config.QuitCommand, s.logger)
	go func() { reasons <- input.Run() }()

	var reason ExitReason
	select {
	case reason = <-reasons:
	case <-ctx.Done():
		reason = ExitCanceled
	}
	s.logger.Info("input stopped",
		ports.String("reason", reason.String()),
		ports.Int("queued", q.Len()),
	)

	if s.config.DrainTimeout > 0 {
		_ = s.lifecycle.WaitWithTimeout(s.config.DrainTimeout)
	}

	s.sink.Notice(ByeNotice)
	return reason, nil
}
