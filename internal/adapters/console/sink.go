// Package console renders chat traffic and banners for the operator.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/bft-labs/framechat/internal/ports"
)

// Render selects how received messages are printed.
type Render string

const (
	// RenderText prints the decoded text.
	RenderText Render = "text"
	// RenderBytes prints the payload as a decimal byte list, e.g. [104 105].
	RenderBytes Render = "bytes"
)

// Sink implements ports.Sink on an io.Writer, one line per event.
type Sink struct {
	mu       sync.Mutex
	out      io.Writer
	render   Render
	echoSent bool
}

// NewSink creates a sink writing to out.
func NewSink(out io.Writer, render Render, echoSent bool) *Sink {
	if render == "" {
		render = RenderText
	}
	return &Sink{out: out, render: render, echoSent: echoSent}
}

// Received prints one inbound message.
func (s *Sink) Received(text string, raw []byte) {
	if s.render == RenderBytes {
		s.println(fmt.Sprintf("Message received: %v", raw))
		return
	}
	s.println("Message received: " + text)
}

// Sent confirms an outbound message when echo is enabled.
func (s *Sink) Sent(text string) {
	if !s.echoSent {
		return
	}
	s.println("Message sent: " + text)
}

// Notice prints a banner or status line verbatim.
func (s *Sink) Notice(msg string) {
	s.println(msg)
}

// Write errors are dropped; there is nowhere else to report them.
func (s *Sink) println(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.out, line)
}

var _ ports.Sink = (*Sink)(nil)
