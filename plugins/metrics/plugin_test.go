package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/framechat/internal/testpeer"
	"github.com/bft-labs/framechat/pkg/framechat"
	"github.com/bft-labs/framechat/pkg/log"
)

func scrape(t *testing.T, addr string) string {
	t.Helper()
	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPlugin_ServesCounters(t *testing.T) {
	p := New(Config{Addr: "127.0.0.1:0"})
	require.NoError(t, p.Initialize(context.Background(), framechat.PluginConfig{Logger: log.NoopLogger{}}))
	defer func() { assert.NoError(t, p.Shutdown(context.Background())) }()

	p.OnStateChange(framechat.StateChangeEvent{Previous: framechat.StateIdle, Current: framechat.StateRunning})
	p.OnFrameSent(framechat.FrameEvent{Text: "A", Bytes: 32})
	p.OnFrameSent(framechat.FrameEvent{Text: "B", Bytes: 32})
	p.OnFrameReceived(framechat.FrameEvent{Text: "hi", Bytes: 32})

	body := scrape(t, p.Addr())

	for _, want := range []string{
		"framechat_frames_sent_total 2",
		"framechat_frames_received_total 1",
		"framechat_bytes_sent_total 64",
		"framechat_bytes_received_total 32",
		"framechat_worker_state 1",
		`framechat_worker_transitions_total{state="Running"} 1`,
	} {
		assert.True(t, strings.Contains(body, want), "missing %q in:\n%s", want, body)
	}
}

func TestPlugin_StateGaugeFollowsTerminalState(t *testing.T) {
	p := New(Config{Addr: "127.0.0.1:0"})
	require.NoError(t, p.Initialize(context.Background(), framechat.PluginConfig{}))
	defer func() { _ = p.Shutdown(context.Background()) }()

	p.OnStateChange(framechat.StateChangeEvent{Current: framechat.StateRunning})
	p.OnStateChange(framechat.StateChangeEvent{Previous: framechat.StateRunning, Current: framechat.StateSevered})

	body := scrape(t, p.Addr())
	assert.Contains(t, body, "framechat_worker_state 2")
	assert.Contains(t, body, `framechat_worker_transitions_total{state="Severed"} 1`)
}

func TestPlugin_NoAddrDoesNotServe(t *testing.T) {
	p := New(Config{})
	require.NoError(t, p.Initialize(context.Background(), framechat.PluginConfig{}))

	assert.Empty(t, p.Addr())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestPlugin_ListenFailure(t *testing.T) {
	first := New(Config{Addr: "127.0.0.1:0"})
	require.NoError(t, first.Initialize(context.Background(), framechat.PluginConfig{}))
	defer func() { _ = first.Shutdown(context.Background()) }()

	second := New(Config{Addr: first.Addr()})
	assert.Error(t, second.Initialize(context.Background(), framechat.PluginConfig{}))
}

func TestPlugin_Name(t *testing.T) {
	assert.Equal(t, "metrics", New(Config{}).Name())
}

func TestWithPlugin_CountsSessionTraffic(t *testing.T) {
	peer := testpeer.Start(t, framechat.DefaultFrameWidth)

	registry := prometheus.NewRegistry()
	cfg := framechat.DefaultConfig()
	cfg.Endpoint = peer.Addr()
	cfg.DrainTimeout = 2 * time.Second

	c, err := framechat.New(cfg,
		framechat.WithInput(strings.NewReader("A\nB\n:quit\n")),
		framechat.WithOutput(io.Discard),
		WithMetrics(Config{Registry: registry}),
	)
	require.NoError(t, err)
	require.NoError(t, c.Run(context.Background()))

	values := map[string]float64{}
	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}

	assert.Equal(t, 2.0, values["framechat_frames_sent_total"])
	assert.Equal(t, 64.0, values["framechat_bytes_sent_total"])
	assert.Equal(t, float64(framechat.StateQueueClosed), values["framechat_worker_state"])
	assert.Equal(t, 2.0, values["framechat_worker_transitions_total"])
}
