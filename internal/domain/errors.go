package domain

import "errors"

// Domain errors. Check them with errors.Is; transports and the worker wrap
// them with the underlying cause.
var (
	// ErrFrameTooLarge is returned when outbound text does not fit in one frame.
	ErrFrameTooLarge = errors.New("framechat: message exceeds frame width")

	// ErrConnectFailure is returned when the initial dial fails.
	ErrConnectFailure = errors.New("framechat: connect failed")

	// ErrConnectionSevered is returned for any read or write failure other
	// than would-block.
	ErrConnectionSevered = errors.New("framechat: connection severed")

	// ErrWouldBlock signals a non-blocking read that found no complete frame.
	ErrWouldBlock = errors.New("framechat: would block")

	// ErrQueueEmpty is returned by a non-blocking poll of an empty queue.
	ErrQueueEmpty = errors.New("framechat: queue empty")

	// ErrQueueClosed is returned once the producer closed the queue and every
	// queued message has been consumed.
	ErrQueueClosed = errors.New("framechat: queue closed")

	// ErrConsumerGone is returned by Send after the consumer detached.
	ErrConsumerGone = errors.New("framechat: consumer gone")

	// ErrAlreadyRunning is returned when a session or worker is started twice.
	ErrAlreadyRunning = errors.New("framechat: already running")

	// ErrInvalidTransition is returned for a worker state change the state
	// machine does not allow.
	ErrInvalidTransition = errors.New("framechat: invalid state transition")

	// ErrDrainTimeout is returned when the worker does not finish within the
	// configured drain window.
	ErrDrainTimeout = errors.New("framechat: drain timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("framechat: invalid configuration")
)
