package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/framechat/internal/domain"
	"github.com/bft-labs/framechat/internal/testpeer"
)

const width = domain.DefaultFrameWidth

func dialPeer(t *testing.T, opts ...testpeer.Option) (*testpeer.Peer, *Conn) {
	t.Helper()
	peer := testpeer.Start(t, width, opts...)

	fc, err := NewDialer(width, time.Second).Dial(context.Background(), peer.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fc.Close() })
	peer.WaitConnected(t, time.Second)

	return peer, fc.(*Conn)
}

func TestDial_Refused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	_, err = NewDialer(width, time.Second).Dial(context.Background(), addr)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConnectFailure)
}

func TestConn_WriteFrameReachesPeer(t *testing.T) {
	peer, c := dialPeer(t)

	for _, text := range []string{"A", "B", "C"} {
		frame, err := domain.Encode(text)
		require.NoError(t, err)
		require.NoError(t, c.WriteFrame(frame))
	}

	for _, want := range []string{"A", "B", "C"} {
		got := peer.Next(t, time.Second)
		assert.Len(t, got, width)
		assert.Equal(t, want, domain.Decode(got))
	}
}

func TestConn_WriteFrameRejectsWrongWidth(t *testing.T) {
	peer, c := dialPeer(t)

	err := c.WriteFrame(domain.Frame("short"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConnectionSevered)

	time.Sleep(50 * time.Millisecond)
	_, ok := peer.Received()
	assert.False(t, ok, "peer must not see a partial frame")
}

func TestConn_ReadFrameEcho(t *testing.T) {
	_, c := dialPeer(t, testpeer.WithEcho())

	frame, err := domain.Encode("ping")
	require.NoError(t, err)
	require.NoError(t, c.WriteFrame(frame))

	got, err := c.ReadFrame()
	require.NoError(t, err)
	assert.Equal(t, "ping", domain.Decode(got))
}

func TestConn_TryReadFrameWouldBlockIsIdempotent(t *testing.T) {
	_, c := dialPeer(t)

	for i := 0; i < 5; i++ {
		frame, err := c.TryReadFrame()
		assert.Nil(t, frame)
		assert.ErrorIs(t, err, domain.ErrWouldBlock)
	}
	assert.Equal(t, 0, c.n)
}

func TestConn_TryReadFrameAssemblesPartialFrames(t *testing.T) {
	peer, c := dialPeer(t)

	frame, err := domain.Encode("split across reads")
	require.NoError(t, err)

	peer.Push(t, frame[:10])
	require.Eventually(t, func() bool {
		_, err := c.TryReadFrame()
		return errors.Is(err, domain.ErrWouldBlock) && c.n == 10
	}, time.Second, 5*time.Millisecond)

	peer.Push(t, frame[10:])
	var got domain.Frame
	require.Eventually(t, func() bool {
		got, err = c.TryReadFrame()
		return err == nil
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "split across reads", domain.Decode(got))
}

func TestConn_PeerCloseSeversRead(t *testing.T) {
	peer, c := dialPeer(t)

	peer.Drop(t)

	_, err := c.ReadFrame()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConnectionSevered)
	assert.ErrorIs(t, err, io.EOF)
}

func TestConn_PeerCloseSeversTryRead(t *testing.T) {
	peer, c := dialPeer(t)

	peer.Drop(t)

	var err error
	require.Eventually(t, func() bool {
		_, err = c.TryReadFrame()
		return !errors.Is(err, domain.ErrWouldBlock)
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrConnectionSevered)
}

func TestConn_CloseUnblocksReadFrame(t *testing.T) {
	_, c := dialPeer(t)

	errCh := make(chan error, 1)
	go func() {
		_, err := c.ReadFrame()
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, domain.ErrConnectionSevered)
		assert.ErrorIs(t, err, net.ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("ReadFrame still blocked after Close")
	}
}

func TestCause(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"eof", io.EOF, "eof"},
		{"unexpected eof", io.ErrUnexpectedEOF, "eof"},
		{"closed", net.ErrClosed, "closed"},
		{"other", errors.New("weird"), "io"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cause(tt.err))
		})
	}
}
