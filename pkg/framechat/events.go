package framechat

import (
	"github.com/bft-labs/framechat/internal/app"
	"github.com/bft-labs/framechat/internal/domain"
)

// State is the connection worker's lifecycle state.
type State int

const (
	// StateIdle means the worker has not started.
	StateIdle State = iota
	// StateRunning means the worker is exchanging frames.
	StateRunning
	// StateSevered means a read or write failed. Terminal.
	StateSevered
	// StateFrameTooLarge means a message did not fit in a frame. Terminal.
	StateFrameTooLarge
	// StateQueueClosed means input stopped and every queued message was
	// written. Terminal.
	StateQueueClosed
	// StateCanceled means the context was canceled. Terminal.
	StateCanceled
)

// String returns the state name.
func (s State) String() string {
	return convertToApp(s).String()
}

// Terminal reports whether the worker has stopped for good.
func (s State) Terminal() bool {
	return convertToApp(s).Terminal()
}

// StateChangeEvent describes a worker state transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// FrameEvent describes one frame crossing the wire.
type FrameEvent struct {
	// Text is the message as encoded or decoded.
	Text string
	// Bytes is the frame size on the wire.
	Bytes int
}

// EventHandler receives client events. Callbacks run synchronously on the
// worker goroutine and must not block.
type EventHandler interface {
	OnStateChange(StateChangeEvent)
	OnFrameSent(FrameEvent)
	OnFrameReceived(FrameEvent)
}

// BaseEventHandler implements EventHandler with no-ops. Embed it to handle
// only the events you need.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnFrameSent(FrameEvent)         {}
func (BaseEventHandler) OnFrameReceived(FrameEvent)     {}

// eventEmitterWrapper fans internal callbacks out to every registered handler.
type eventEmitterWrapper struct {
	handlers []EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	event := StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	}
	for _, h := range e.handlers {
		h.OnStateChange(event)
	}
}

func (e *eventEmitterWrapper) OnFrameSent(text string, frame domain.Frame) {
	event := FrameEvent{Text: text, Bytes: len(frame)}
	for _, h := range e.handlers {
		h.OnFrameSent(event)
	}
}

func (e *eventEmitterWrapper) OnFrameReceived(text string, frame domain.Frame) {
	event := FrameEvent{Text: text, Bytes: len(frame)}
	for _, h := range e.handlers {
		h.OnFrameReceived(event)
	}
}

func convertState(s app.State) State {
	switch s {
	case app.StateRunning:
		return StateRunning
	case app.StateSevered:
		return StateSevered
	case app.StateFrameTooLarge:
		return StateFrameTooLarge
	case app.StateQueueClosed:
		return StateQueueClosed
	case app.StateCanceled:
		return StateCanceled
	default:
		return StateIdle
	}
}

func convertToApp(s State) app.State {
	switch s {
	case StateIdle:
		return app.StateIdle
	case StateRunning:
		return app.StateRunning
	case StateSevered:
		return app.StateSevered
	case StateFrameTooLarge:
		return app.StateFrameTooLarge
	case StateQueueClosed:
		return app.StateQueueClosed
	case StateCanceled:
		return app.StateCanceled
	default:
		return app.State(-1)
	}
}
