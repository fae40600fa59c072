// Package testpeer runs a frame-oriented TCP peer on a gnet event loop for
// tests. It accepts connections, records every complete frame it receives,
// optionally echoes frames back, and can push frames or drop the connection
// on demand.
package testpeer

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/panjf2000/gnet/v2"
	"github.com/panjf2000/gnet/v2/pkg/logging"
)

// Peer is a loopback TCP peer speaking fixed-width frames.
type Peer struct {
	gnet.BuiltinEventEngine

	width int
	echo  bool
	addr  string

	eng      gnet.Engine
	booted   chan struct{}
	stopped  chan error
	received chan []byte
	opened   chan struct{}
	closed   chan struct{}

	mu   sync.Mutex
	conn gnet.Conn
}

// Option configures a Peer.
type Option func(*Peer)

// WithEcho makes the peer write every received frame back to the sender.
func WithEcho() Option {
	return func(p *Peer) { p.echo = true }
}

// Start boots a peer on a free loopback port and registers its shutdown
// with t.Cleanup.
func Start(t testing.TB, width int, opts ...Option) *Peer {
	t.Helper()

	p := &Peer{
		width:    width,
		addr:     freeAddr(t),
		booted:   make(chan struct{}),
		stopped:  make(chan error, 1),
		received: make(chan []byte, 1024),
		opened:   make(chan struct{}, 16),
		closed:   make(chan struct{}, 16),
	}
	for _, opt := range opts {
		opt(p)
	}

	go func() {
		p.stopped <- gnet.Run(p, "tcp://"+p.addr,
			gnet.WithMulticore(false),
			gnet.WithLogLevel(logging.ErrorLevel),
			gnet.WithLogger(quietLogger{}),
		)
	}()

	select {
	case <-p.booted:
	case err := <-p.stopped:
		t.Fatalf("testpeer: gnet.Run: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("testpeer: engine did not boot")
	}

	t.Cleanup(p.Stop)
	return p
}

// Addr returns host:port for dialing.
func (p *Peer) Addr() string {
	return p.addr
}

// OnBoot records the engine so the peer can stop it later.
func (p *Peer) OnBoot(eng gnet.Engine) gnet.Action {
	p.eng = eng
	close(p.booted)
	return gnet.None
}

// OnOpen tracks the most recent client connection.
func (p *Peer) OnOpen(c gnet.Conn) ([]byte, gnet.Action) {
	p.mu.Lock()
	p.conn = c
	p.mu.Unlock()
	p.opened <- struct{}{}
	return nil, gnet.None
}

// OnClose signals that the client connection went away.
func (p *Peer) OnClose(c gnet.Conn, _ error) gnet.Action {
	p.mu.Lock()
	if p.conn == c {
		p.conn = nil
	}
	p.mu.Unlock()
	p.closed <- struct{}{}
	return gnet.None
}

// OnTraffic consumes whole frames only; a partial frame waits in gnet's
// inbound buffer for the rest.
func (p *Peer) OnTraffic(c gnet.Conn) gnet.Action {
	for c.InboundBuffered() >= p.width {
		buf, err := c.Next(p.width)
		if err != nil {
			return gnet.Close
		}
		frame := append([]byte(nil), buf...)
		p.received <- frame
		if p.echo {
			if _, err := c.Write(frame); err != nil {
				return gnet.Close
			}
		}
	}
	return gnet.None
}

// WaitConnected blocks until a client connects.
func (p *Peer) WaitConnected(t testing.TB, timeout time.Duration) {
	t.Helper()
	select {
	case <-p.opened:
	case <-time.After(timeout):
		t.Fatal("testpeer: no client connected")
	}
}

// WaitClosed blocks until the client connection closes.
func (p *Peer) WaitClosed(t testing.TB, timeout time.Duration) {
	t.Helper()
	select {
	case <-p.closed:
	case <-time.After(timeout):
		t.Fatal("testpeer: client connection did not close")
	}
}

// Next returns the next frame received from the client.
func (p *Peer) Next(t testing.TB, timeout time.Duration) []byte {
	t.Helper()
	select {
	case frame := <-p.received:
		return frame
	case <-time.After(timeout):
		t.Fatal("testpeer: no frame received")
		return nil
	}
}

// Received returns a frame if one is already waiting.
func (p *Peer) Received() ([]byte, bool) {
	select {
	case frame := <-p.received:
		return frame, true
	default:
		return nil, false
	}
}

// Push writes raw bytes to the connected client from outside the event loop.
func (p *Peer) Push(t testing.TB, data []byte) {
	t.Helper()
	c := p.current(t)
	buf := append([]byte(nil), data...)
	if err := c.AsyncWrite(buf, nil); err != nil {
		t.Fatalf("testpeer: push: %v", err)
	}
}

// Drop closes the client connection from the peer side.
func (p *Peer) Drop(t testing.TB) {
	t.Helper()
	if err := p.current(t).CloseWithCallback(nil); err != nil {
		t.Fatalf("testpeer: drop: %v", err)
	}
}

// Stop shuts the engine down. Safe to call more than once.
func (p *Peer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = p.eng.Stop(ctx)
}

func (p *Peer) current(t testing.TB) gnet.Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil {
		t.Fatal("testpeer: no client connection")
	}
	return p.conn
}

// quietLogger keeps gnet's startup banner out of test output.
type quietLogger struct{}

func (quietLogger) Debugf(string, ...any) {}
func (quietLogger) Infof(string, ...any)  {}
func (quietLogger) Warnf(string, ...any)  {}
func (quietLogger) Errorf(string, ...any) {}
func (quietLogger) Fatalf(string, ...any) {}

var _ logging.Logger = quietLogger{}

func freeAddr(t testing.TB) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("testpeer: reserve port: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}
