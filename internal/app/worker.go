package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/internal/ports"
)

// SeveredNotice is shown to the operator when the connection fails.
const SeveredNotice = "Connection with server was severed"

// Mode selects how the worker waits for work.
type Mode string

const (
	// ModeSelect blocks on a reader goroutine, the queue and the context.
	ModeSelect Mode = "select"

	// ModePoll performs a non-blocking read and queue poll, then sleeps
	// PollInterval.
	ModePoll Mode = "poll"
)

// DefaultPollInterval is the pacing sleep of ModePoll.
const DefaultPollInterval = 100 * time.Millisecond

// WorkerConfig contains configuration for the connection worker.
type WorkerConfig struct {
	Mode         Mode
	PollInterval time.Duration
	FrameWidth   int
}

// Consumer is the worker's side of the message queue.
type Consumer interface {
	Recv() <-chan domain.OutboundMessage
	TryRecv() (domain.OutboundMessage, error)
	Detach()
}

// FrameEmitter is called for every frame crossing the wire.
type FrameEmitter interface {
	OnFrameSent(text string, frame domain.Frame)
	OnFrameReceived(text string, frame domain.Frame)
}

// Worker owns the connection. It shows inbound frames on the sink and writes
// queued messages to the wire until it reaches a terminal state.
type Worker struct {
	config    WorkerConfig
	codec     domain.Codec
	conn      ports.FrameConn
	queue     Consumer
	sink      ports.Sink
	logger    ports.Logger
	lifecycle *Lifecycle
	emitter   FrameEmitter
}

// NewWorker creates a worker. It takes ownership of conn.
func NewWorker(
	config WorkerConfig,
	conn ports.FrameConn,
	queue Consumer,
	sink ports.Sink,
	logger ports.Logger,
	lifecycle *Lifecycle,
	emitter FrameEmitter,
) *Worker {
	if config.FrameWidth <= 0 {
		config.FrameWidth = domain.DefaultFrameWidth
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.Mode == "" {
		config.Mode = ModeSelect
	}
	return &Worker{
		config:    config,
		codec:     domain.NewCodec(config.FrameWidth),
		conn:      conn,
		queue:     queue,
		sink:      sink,
		logger:    logger,
		lifecycle: lifecycle,
		emitter:   emitter,
	}
}

// Run drives the worker until the connection fails, a message does not fit
// in a frame, the queue is closed and drained, or ctx is canceled.
// It returns nil for the last two. On return the connection is closed and
// the queue is detached, so later Sends fail.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.lifecycle.TransitionTo(StateRunning, "worker started"); err != nil {
		return err
	}
	defer w.queue.Detach()
	defer w.conn.Close()

	w.logger.Info("worker running",
		ports.String("mode", string(w.config.Mode)),
		ports.String("remote", w.conn.RemoteAddr()),
		ports.Int("frame_width", w.config.FrameWidth),
	)

	var (
		state State
		err   error
	)
	switch w.config.Mode {
	case ModePoll:
		state, err = w.runPoll(ctx)
	default:
		state, err = w.runSelect(ctx)
	}

	return w.finish(state, err)
}

// runPoll is the paced loop: one receive attempt, one send attempt, sleep.
func (w *Worker) runPoll(ctx context.Context) (State, error) {
	timer := time.NewTimer(w.config.PollInterval)
	defer timer.Stop()

	for {
		frame, err := w.conn.TryReadFrame()
		switch {
		case err == nil:
			w.deliver(frame)
		case errors.Is(err, domain.ErrWouldBlock):
		default:
			return StateSevered, err
		}

		msg, err := w.queue.TryRecv()
		switch {
		case err == nil:
			if state, err := w.send(msg); err != nil {
				return state, err
			}
		case errors.Is(err, domain.ErrQueueClosed):
			return StateQueueClosed, nil
		}

		timer.Reset(w.config.PollInterval)
		select {
		case <-ctx.Done():
			return StateCanceled, nil
		case <-timer.C:
		}
	}
}

// runSelect hands blocking reads to a dedicated goroutine and waits on
// whichever event comes first.
func (w *Worker) runSelect(ctx context.Context) (State, error) {
	frames := make(chan domain.Frame)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	readerDone := make(chan struct{})

	go func() {
		defer close(readerDone)
		for {
			frame, err := w.conn.ReadFrame()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case frames <- frame:
			case <-stop:
				return
			}
		}
	}()
	defer func() {
		close(stop)
		_ = w.conn.Close()
		<-readerDone
	}()

	recv := w.queue.Recv()
	for {
		select {
		case <-ctx.Done():
			return StateCanceled, nil
		case frame := <-frames:
			w.deliver(frame)
		case err := <-readErr:
			return StateSevered, err
		case msg, ok := <-recv:
			if !ok {
				return StateQueueClosed, nil
			}
			if state, err := w.send(msg); err != nil {
				return state, err
			}
		}
	}
}

func (w *Worker) deliver(frame domain.Frame) {
	text := w.codec.Decode(frame)
	w.sink.Received(text, domain.Payload(frame))
	w.logger.Debug("frame received", ports.Bytes("frame", frame))
	if w.emitter != nil {
		w.emitter.OnFrameReceived(text, frame)
	}
}

func (w *Worker) send(msg domain.OutboundMessage) (State, error) {
	frame, err := w.codec.Encode(string(msg))
	if err != nil {
		return StateFrameTooLarge, err
	}
	if err := w.conn.WriteFrame(frame); err != nil {
		if !errors.Is(err, domain.ErrConnectionSevered) {
			err = fmt.Errorf("%w: write: %w", domain.ErrConnectionSevered, err)
		}
		return StateSevered, err
	}
	w.sink.Sent(string(msg))
	w.logger.Debug("frame sent", ports.Int("bytes", len(msg)))
	if w.emitter != nil {
		w.emitter.OnFrameSent(string(msg), frame)
	}
	return StateRunning, nil
}

func (w *Worker) finish(state State, err error) error {
	reason := state.String()
	if err != nil {
		reason = err.Error()
	}
	if state == StateSevered {
		w.sink.Notice(SeveredNotice)
		if !errors.Is(err, domain.ErrConnectionSevered) {
			err = fmt.Errorf("%w: %w", domain.ErrConnectionSevered, err)
		}
	}
	if terr := w.lifecycle.TransitionTo(state, reason); terr != nil {
		w.logger.Error("worker transition failed", ports.Err(terr))
	}
	return err
}
