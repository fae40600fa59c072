package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}
func (m mockLogger) With(fields ...ports.Field) ports.Logger {
	return m
}

// fakeConn is an in-memory ports.FrameConn.
type fakeConn struct {
	inbound   chan domain.Frame
	fail      chan error
	closed    chan struct{}
	closeOnce sync.Once
	tryReads  atomic.Int64

	mu       sync.Mutex
	written  []domain.Frame
	writeErr error
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		inbound: make(chan domain.Frame, 16),
		fail:    make(chan error, 1),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) ReadFrame() (domain.Frame, error) {
	select {
	case f := <-c.inbound:
		return f, nil
	case err := <-c.fail:
		return nil, err
	case <-c.closed:
		return nil, fmt.Errorf("%w: read: %w", domain.ErrConnectionSevered, net.ErrClosed)
	}
}

func (c *fakeConn) TryReadFrame() (domain.Frame, error) {
	c.tryReads.Add(1)
	select {
	case f := <-c.inbound:
		return f, nil
	case err := <-c.fail:
		return nil, err
	case <-c.closed:
		return nil, fmt.Errorf("%w: read: %w", domain.ErrConnectionSevered, net.ErrClosed)
	default:
		return nil, domain.ErrWouldBlock
	}
}

func (c *fakeConn) WriteFrame(frame domain.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, append(domain.Frame(nil), frame...))
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) RemoteAddr() string { return "fake:6000" }

// push queues an inbound frame carrying text.
func (c *fakeConn) push(text string) {
	frame, err := domain.Encode(text)
	if err != nil {
		panic(err)
	}
	c.inbound <- frame
}

// sever simulates the peer closing the socket.
func (c *fakeConn) sever() {
	c.fail <- fmt.Errorf("%w: read (eof): %w", domain.ErrConnectionSevered, io.EOF)
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *fakeConn) writtenTexts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.written))
	for _, f := range c.written {
		out = append(out, domain.Decode(f))
	}
	return out
}

// fakeSink records everything shown to the operator.
type fakeSink struct {
	mu       sync.Mutex
	received []string
	sent     []string
	notices  []string
}

func (s *fakeSink) Received(text string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, text)
}

func (s *fakeSink) Sent(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
}

func (s *fakeSink) Notice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, msg)
}

func (s *fakeSink) snapshot() (received, sent, notices []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.received...),
		append([]string(nil), s.sent...),
		append([]string(nil), s.notices...)
}

// fakeDialer hands out a prepared connection or error.
type fakeDialer struct {
	conn *fakeConn
	err  error
}

func (d *fakeDialer) Dial(ctx context.Context, endpoint string) (ports.FrameConn, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

// recordingEmitter captures frame events.
type recordingEmitter struct {
	mu       sync.Mutex
	sent     []string
	received []string
}

func (e *recordingEmitter) OnFrameSent(text string, frame domain.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, text)
}

func (e *recordingEmitter) OnFrameReceived(text string, frame domain.Frame) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.received = append(e.received, text)
}
