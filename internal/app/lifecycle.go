package app

import (
	"sync"
	"time"

	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/internal/ports"
)

// State is the connection worker's position in its state machine.
//
//	Idle -> Running -> {Severed, FrameTooLarge, QueueClosed, Canceled}
//
// Every state after Running is terminal.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSevered
	StateFrameTooLarge
	StateQueueClosed
	StateCanceled
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateSevered:
		return "Severed"
	case StateFrameTooLarge:
		return "FrameTooLarge"
	case StateQueueClosed:
		return "QueueClosed"
	case StateCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s >= StateSevered && s <= StateCanceled
}

// Fatal reports whether the state is an abnormal termination.
func (s State) Fatal() bool {
	return s == StateSevered || s == StateFrameTooLarge
}

// EventEmitter is called when the worker state changes.
type EventEmitter interface {
	OnStateChange(previous, current State, reason string)
}

// Lifecycle guards the worker state machine and tracks running goroutines
// so a session can optionally wait for them.
type Lifecycle struct {
	mu           sync.RWMutex
	state        State
	reason       string
	done         chan struct{}
	wg           sync.WaitGroup
	logger       ports.Logger
	eventEmitter EventEmitter
}

// NewLifecycle creates a lifecycle in StateIdle.
func NewLifecycle(logger ports.Logger, emitter EventEmitter) *Lifecycle {
	return &Lifecycle{
		state:        StateIdle,
		done:         make(chan struct{}),
		logger:       logger,
		eventEmitter: emitter,
	}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Reason returns the reason given for the latest transition.
func (l *Lifecycle) Reason() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.reason
}

// Done is closed when the worker reaches a terminal state.
func (l *Lifecycle) Done() <-chan struct{} {
	return l.done
}

// TransitionTo moves to newState or returns ErrAlreadyRunning /
// ErrInvalidTransition without changing anything.
func (l *Lifecycle) TransitionTo(newState State, reason string) error {
	l.mu.Lock()
	oldState := l.state

	switch {
	case oldState == StateIdle && newState == StateRunning:
	case oldState == StateRunning && newState.Terminal():
	case oldState == StateRunning && newState == StateRunning:
		l.mu.Unlock()
		return domain.ErrAlreadyRunning
	default:
		l.mu.Unlock()
		return domain.ErrInvalidTransition
	}

	l.state = newState
	l.reason = reason
	if newState.Terminal() {
		close(l.done)
	}
	l.mu.Unlock()

	// Emit outside of lock
	if l.eventEmitter != nil {
		l.eventEmitter.OnStateChange(oldState, newState, reason)
	}

	fields := []ports.Field{
		ports.String("from", oldState.String()),
		ports.String("to", newState.String()),
		ports.String("reason", reason),
	}
	if newState.Fatal() {
		l.logger.Warn("worker state transition", fields...)
	} else {
		l.logger.Info("worker state transition", fields...)
	}

	return nil
}

// CanStart returns true if the worker has not been started yet.
func (l *Lifecycle) CanStart() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state == StateIdle
}

// AddWorker increments the goroutine count.
func (l *Lifecycle) AddWorker() {
	l.wg.Add(1)
}

// WorkerDone decrements the goroutine count.
func (l *Lifecycle) WorkerDone() {
	l.wg.Done()
}

// WaitWithTimeout waits for tracked goroutines to finish.
// Returns ErrDrainTimeout if the timeout expires first.
func (l *Lifecycle) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		l.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		l.logger.Warn("worker still running after drain timeout",
			ports.Duration("timeout", timeout),
		)
		return domain.ErrDrainTimeout
	}
}
