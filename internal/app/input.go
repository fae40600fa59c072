package app

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/internal/ports"
)

// DefaultQuitCommand ends the session without being sent.
const DefaultQuitCommand = ":quit"

// Producer is the input loop's side of the message queue.
type Producer interface {
	Send(msg domain.OutboundMessage) error
	Close()
}

// ExitReason says why the input loop stopped. None of them is an error.
type ExitReason int

const (
	// ExitQuit means the operator typed the quit command.
	ExitQuit ExitReason = iota + 1
	// ExitInputEnded means the input hit EOF or a read error.
	ExitInputEnded
	// ExitConsumerGone means the worker had already terminated.
	ExitConsumerGone
	// ExitCanceled means the session context was canceled first.
	ExitCanceled
)

func (r ExitReason) String() string {
	switch r {
	case ExitQuit:
		return "quit"
	case ExitInputEnded:
		return "input ended"
	case ExitConsumerGone:
		return "consumer gone"
	case ExitCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// InputLoop reads operator lines and enqueues them for the worker.
// It never touches the connection.
type InputLoop struct {
	reader *bufio.Reader
	queue  Producer
	quit   string
	logger ports.Logger
}

// NewInputLoop creates an input loop reading from r.
func NewInputLoop(r io.Reader, queue Producer, quit string, logger ports.Logger) *InputLoop {
	if quit == "" {
		quit = DefaultQuitCommand
	}
	return &InputLoop{
		reader: bufio.NewReader(r),
		queue:  queue,
		quit:   quit,
		logger: logger,
	}
}

// Run blocks reading lines until quit, end of input, or a failed enqueue.
// The queue is closed on every exit path.
func (l *InputLoop) Run() ExitReason {
	defer l.queue.Close()

	for {
		line, err := l.reader.ReadString('\n')
		if line != "" {
			if reason, stop := l.handle(line); stop {
				return reason
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				l.logger.Warn("reading input failed", ports.Err(err))
			}
			return ExitInputEnded
		}
	}
}

func (l *InputLoop) handle(line string) (ExitReason, bool) {
	text := strings.TrimSpace(line)
	if text == l.quit {
		return ExitQuit, true
	}
	if err := l.queue.Send(domain.OutboundMessage(text)); err != nil {
		l.logger.Warn("message not queued", ports.Err(err))
		return ExitConsumerGone, true
	}
	return 0, false
}
