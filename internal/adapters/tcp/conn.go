package tcp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/bft-labs/framechat/internal/domain"
)

// DefaultProbe bounds how long TryReadFrame waits for bytes before it
// reports would-block.
const DefaultProbe = time.Millisecond

// Conn implements ports.FrameConn over a net.Conn.
type Conn struct {
	conn  net.Conn
	width int
	probe time.Duration

	// partial frame carried between TryReadFrame calls
	buf []byte
	n   int
}

// NewConn wraps c for frames of width bytes.
func NewConn(c net.Conn, width int) *Conn {
	return &Conn{
		conn:  c,
		width: width,
		probe: DefaultProbe,
		buf:   make([]byte, width),
	}
}

// ReadFrame blocks until a full frame arrives. A frame started by
// TryReadFrame is completed first.
func (c *Conn) ReadFrame() (domain.Frame, error) {
	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, severed("read", err)
	}
	k, err := io.ReadFull(c.conn, c.buf[c.n:])
	c.n += k
	if err != nil {
		return nil, severed("read", err)
	}
	return c.take(), nil
}

// TryReadFrame returns a frame if one is complete within the probe window.
func (c *Conn) TryReadFrame() (domain.Frame, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.probe)); err != nil {
		return nil, severed("read", err)
	}
	for c.n < c.width {
		k, err := c.conn.Read(c.buf[c.n:])
		c.n += k
		if err != nil {
			if isTimeout(err) {
				return nil, domain.ErrWouldBlock
			}
			return nil, severed("read", err)
		}
	}
	return c.take(), nil
}

// WriteFrame writes frame in full. The write has no deadline.
func (c *Conn) WriteFrame(frame domain.Frame) error {
	if len(frame) != c.width {
		return fmt.Errorf("write frame: got %d bytes, want %d", len(frame), c.width)
	}
	k, err := c.conn.Write(frame)
	if err != nil {
		return severed("write", err)
	}
	if k != len(frame) {
		return severed("write", io.ErrShortWrite)
	}
	return nil
}

// Close closes the underlying connection, unblocking a pending ReadFrame.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *Conn) take() domain.Frame {
	frame := make(domain.Frame, c.width)
	copy(frame, c.buf)
	c.n = 0
	return frame
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func severed(op string, err error) error {
	return fmt.Errorf("%w: %s (%s): %w", domain.ErrConnectionSevered, op, Cause(err), err)
}
