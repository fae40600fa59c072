// Package tcp adapts a TCP socket to the frame-oriented connection port.
package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/internal/ports"
)

// Dialer implements ports.Dialer for TCP endpoints.
type Dialer struct {
	Width   int
	Timeout time.Duration
}

// NewDialer returns a dialer producing connections for frames of width bytes.
func NewDialer(width int, timeout time.Duration) *Dialer {
	return &Dialer{Width: width, Timeout: timeout}
}

// Dial connects once; there is no retry.
func (d *Dialer) Dial(ctx context.Context, endpoint string) (ports.FrameConn, error) {
	nd := net.Dialer{Timeout: d.Timeout}
	c, err := nd.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %w", domain.ErrConnectFailure, endpoint, Cause(err), err)
	}
	return NewConn(c, d.Width), nil
}

var _ ports.Dialer = (*Dialer)(nil)
var _ ports.FrameConn = (*Conn)(nil)
