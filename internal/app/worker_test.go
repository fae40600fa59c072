package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/internal/queue"
)

var modes = []Mode{ModeSelect, ModePoll}

type workerHarness struct {
	conn      *fakeConn
	queue     *queue.Queue
	sink      *fakeSink
	lifecycle *Lifecycle
	emitter   *recordingEmitter
	worker    *Worker
}

func newHarness(mode Mode) *workerHarness {
	h := &workerHarness{
		conn:      newFakeConn(),
		queue:     queue.New(),
		sink:      &fakeSink{},
		lifecycle: NewLifecycle(&mockLogger{}, nil),
		emitter:   &recordingEmitter{},
	}
	h.worker = NewWorker(
		WorkerConfig{Mode: mode, PollInterval: time.Millisecond},
		h.conn, h.queue, h.sink, &mockLogger{}, h.lifecycle, h.emitter,
	)
	return h
}

// start runs the worker in the background and returns its result channel.
func (h *workerHarness) start(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	go func() { errCh <- h.worker.Run(ctx) }()
	return errCh
}

func waitResult(t *testing.T, errCh <-chan error) error {
	t.Helper()
	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not terminate")
		return nil
	}
}

func TestWorker_SendsInOrderThenStopsOnQueueClose(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(mode)
			for _, m := range []domain.OutboundMessage{"A", "B", "C"} {
				require.NoError(t, h.queue.Send(m))
			}
			h.queue.Close()

			err := waitResult(t, h.start(context.Background()))

			require.NoError(t, err)
			assert.Equal(t, StateQueueClosed, h.lifecycle.State())
			assert.Equal(t, []string{"A", "B", "C"}, h.conn.writtenTexts())

			_, sent, notices := h.sink.snapshot()
			assert.Equal(t, []string{"A", "B", "C"}, sent)
			assert.NotContains(t, notices, SeveredNotice)
			assert.Equal(t, []string{"A", "B", "C"}, h.emitter.sent)
			assert.True(t, h.conn.isClosed())
		})
	}
}

func TestWorker_DeliversInboundFrames(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(mode)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			errCh := h.start(ctx)
			h.conn.push("hello")
			h.conn.push("world")

			require.Eventually(t, func() bool {
				received, _, _ := h.sink.snapshot()
				return len(received) == 2
			}, time.Second, 5*time.Millisecond)

			cancel()
			require.NoError(t, waitResult(t, errCh))

			received, _, _ := h.sink.snapshot()
			assert.Equal(t, []string{"hello", "world"}, received)
			assert.Equal(t, StateCanceled, h.lifecycle.State())
		})
	}
}

func TestWorker_SeveredConnection(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(mode)
			errCh := h.start(context.Background())

			h.conn.sever()
			err := waitResult(t, errCh)

			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConnectionSevered)
			assert.Equal(t, StateSevered, h.lifecycle.State())

			_, _, notices := h.sink.snapshot()
			assert.Equal(t, []string{SeveredNotice}, notices)
			assert.True(t, h.conn.isClosed())

			// Input side is unaffected until it tries to hand over a message.
			assert.ErrorIs(t, h.queue.Send("anyone there?"), domain.ErrConsumerGone)
		})
	}
}

func TestWorker_FrameTooLarge(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(mode)
			require.NoError(t, h.queue.Send(domain.OutboundMessage(strings.Repeat("x", domain.DefaultFrameWidth+1))))

			err := waitResult(t, h.start(context.Background()))

			assert.ErrorIs(t, err, domain.ErrFrameTooLarge)
			assert.Equal(t, StateFrameTooLarge, h.lifecycle.State())
			assert.Empty(t, h.conn.writtenTexts())

			_, sent, notices := h.sink.snapshot()
			assert.Empty(t, sent)
			assert.NotContains(t, notices, SeveredNotice)
		})
	}
}

func TestWorker_WriteFailureSevers(t *testing.T) {
	for _, mode := range modes {
		t.Run(string(mode), func(t *testing.T) {
			h := newHarness(mode)
			h.conn.writeErr = errors.New("broken pipe")
			require.NoError(t, h.queue.Send("doomed"))

			err := waitResult(t, h.start(context.Background()))

			assert.ErrorIs(t, err, domain.ErrConnectionSevered)
			assert.Equal(t, StateSevered, h.lifecycle.State())
		})
	}
}

func TestWorker_PollWouldBlockIsIdempotent(t *testing.T) {
	h := newHarness(ModePoll)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := h.start(ctx)

	require.Eventually(t, func() bool {
		return h.conn.tryReads.Load() >= 20
	}, 2*time.Second, time.Millisecond)

	assert.Equal(t, StateRunning, h.lifecycle.State())
	received, _, notices := h.sink.snapshot()
	assert.Empty(t, received)
	assert.Empty(t, notices)

	cancel()
	require.NoError(t, waitResult(t, errCh))
	assert.Equal(t, StateCanceled, h.lifecycle.State())
}

func TestWorker_PollPacing(t *testing.T) {
	h := newHarness(ModePoll)
	h.worker.config.PollInterval = 50 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())

	errCh := h.start(ctx)
	time.Sleep(260 * time.Millisecond)
	cancel()
	require.NoError(t, waitResult(t, errCh))

	// One attempt per interval, never a busy spin.
	assert.LessOrEqual(t, h.conn.tryReads.Load(), int64(7))
}

func TestWorker_RunTwice(t *testing.T) {
	h := newHarness(ModeSelect)
	h.queue.Close()
	require.NoError(t, waitResult(t, h.start(context.Background())))

	err := h.worker.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestWorker_Defaults(t *testing.T) {
	w := NewWorker(WorkerConfig{}, newFakeConn(), queue.New(), &fakeSink{}, &mockLogger{}, NewLifecycle(&mockLogger{}, nil), nil)

	assert.Equal(t, ModeSelect, w.config.Mode)
	assert.Equal(t, DefaultPollInterval, w.config.PollInterval)
	assert.Equal(t, domain.DefaultFrameWidth, w.config.FrameWidth)
}
