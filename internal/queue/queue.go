// Package queue implements the unbounded single-producer/single-consumer
// message queue that joins the input loop to the connection worker.
//
// Send never blocks on a slow consumer: a pump goroutine moves messages from
// the producer channel into an unbounded ring buffer and hands them out in
// FIFO order on the consumer channel.
package queue

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"

	"github.com/bft-labs/framechat/internal/domain"
)

// Queue is an unbounded FIFO of outbound messages with exactly one producer
// and one consumer.
type Queue struct {
	in   chan domain.OutboundMessage
	out  chan domain.OutboundMessage
	gone chan struct{}

	closed     atomic.Bool
	detachOnce sync.Once
	pending    atomic.Int64
}

// New creates a queue and starts its pump.
func New() *Queue {
	q := &Queue{
		in:   make(chan domain.OutboundMessage),
		out:  make(chan domain.OutboundMessage),
		gone: make(chan struct{}),
	}
	go q.pump()
	return q
}

// Send enqueues msg. It fails with ErrConsumerGone once the consumer has
// detached and with ErrQueueClosed after Close. Producer side only.
func (q *Queue) Send(msg domain.OutboundMessage) error {
	if q.closed.Load() {
		return domain.ErrQueueClosed
	}
	select {
	case <-q.gone:
		return domain.ErrConsumerGone
	default:
	}
	q.pending.Add(1)
	select {
	case q.in <- msg:
		return nil
	case <-q.gone:
		q.pending.Add(-1)
		return domain.ErrConsumerGone
	}
}

// Close marks the end of input. Messages already sent are still delivered;
// the consumer sees ErrQueueClosed after the last one. Producer side only;
// safe to call more than once.
func (q *Queue) Close() {
	if q.closed.CompareAndSwap(false, true) {
		close(q.in)
	}
}

// Recv returns the consumer channel. It is closed after Close once every
// queued message has been received.
func (q *Queue) Recv() <-chan domain.OutboundMessage {
	return q.out
}

// TryRecv polls for one message without waiting.
// It returns ErrQueueEmpty when nothing is ready and ErrQueueClosed when the
// producer closed the queue and it is drained.
func (q *Queue) TryRecv() (domain.OutboundMessage, error) {
	select {
	case msg, ok := <-q.out:
		if !ok {
			return "", domain.ErrQueueClosed
		}
		return msg, nil
	default:
		return "", domain.ErrQueueEmpty
	}
}

// Detach tells the producer the consumer is gone. Pending messages are
// dropped and later Sends fail with ErrConsumerGone. Consumer side only;
// safe to call more than once.
func (q *Queue) Detach() {
	q.detachOnce.Do(func() { close(q.gone) })
}

// Len reports messages accepted by Send but not yet received.
func (q *Queue) Len() int {
	return int(q.pending.Load())
}

func (q *Queue) pump() {
	defer close(q.out)

	buf := queue.New()
	in := q.in
	for in != nil || buf.Length() > 0 {
		var out chan domain.OutboundMessage
		var next domain.OutboundMessage
		if buf.Length() > 0 {
			out = q.out
			next = buf.Peek().(domain.OutboundMessage)
		}

		select {
		case msg, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			buf.Add(msg)
		case out <- next:
			buf.Remove()
			q.pending.Add(-1)
		case <-q.gone:
			return
		}
	}
}
