package ports

import (
	"context"

	"github.com/bft-labs/framechat/internal/domain"
)

// FrameConn is a connection that moves whole frames.
// It is owned by exactly one goroutine, except that Close may be called
// concurrently to unblock a pending ReadFrame.
type FrameConn interface {
	// ReadFrame blocks until one full frame has been read.
	// Any failure is wrapped with domain.ErrConnectionSevered.
	ReadFrame() (domain.Frame, error)

	// TryReadFrame reads whatever is available without waiting.
	// It returns domain.ErrWouldBlock until a full frame has accumulated;
	// partial data is kept for the next call.
	TryReadFrame() (domain.Frame, error)

	// WriteFrame writes the whole frame or fails with
	// domain.ErrConnectionSevered.
	WriteFrame(frame domain.Frame) error

	// Close releases the connection.
	Close() error

	// RemoteAddr returns the peer address for logging.
	RemoteAddr() string
}

// Dialer establishes the session connection.
type Dialer interface {
	// Dial connects to endpoint. Failures wrap domain.ErrConnectFailure.
	Dial(ctx context.Context, endpoint string) (FrameConn, error)
}
