// Package metrics exports framechat client activity as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bft-labs/framechat/pkg/framechat"
	"github.com/bft-labs/framechat/pkg/log"
)

// Config holds configuration options for the metrics plugin.
type Config struct {
	// Addr is the listen address of the /metrics endpoint, e.g. ":9100".
	// Empty means collect without serving.
	Addr string

	// Registry receives the collectors. Default: a private registry.
	Registry *prometheus.Registry

	// ShutdownTimeout bounds the HTTP server shutdown.
	// Default: 5 seconds
	ShutdownTimeout time.Duration
}

// Plugin counts frames and tracks the worker state. It implements both
// framechat.Plugin and framechat.EventHandler.
type Plugin struct {
	registry        *prometheus.Registry
	addr            string
	shutdownTimeout time.Duration

	framesSent     prometheus.Counter
	framesReceived prometheus.Counter
	bytesSent      prometheus.Counter
	bytesReceived  prometheus.Counter
	transitions    *prometheus.CounterVec
	state          prometheus.Gauge

	mu       sync.Mutex
	logger   framechat.Logger
	server   *http.Server
	listener net.Listener
	done     chan struct{}
}

// New creates the plugin and registers its collectors.
func New(cfg Config) *Plugin {
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}

	p := &Plugin{
		registry:        cfg.Registry,
		addr:            cfg.Addr,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          log.NoopLogger{},
		framesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framechat_frames_sent_total",
			Help: "Total number of frames written to the peer",
		}),
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framechat_frames_received_total",
			Help: "Total number of frames read from the peer",
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framechat_bytes_sent_total",
			Help: "Total number of bytes written to the peer, padding included",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "framechat_bytes_received_total",
			Help: "Total number of bytes read from the peer, padding included",
		}),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "framechat_worker_transitions_total",
				Help: "Worker state transitions by target state",
			},
			[]string{"state"},
		),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "framechat_worker_state",
			Help: "Current worker state (0 Idle, 1 Running, 2 Severed, 3 FrameTooLarge, 4 QueueClosed, 5 Canceled)",
		}),
	}

	p.registry.MustRegister(
		p.framesSent,
		p.framesReceived,
		p.bytesSent,
		p.bytesReceived,
		p.transitions,
		p.state,
	)
	return p
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "metrics"
}

// Initialize starts the /metrics listener when an address is configured.
func (p *Plugin) Initialize(ctx context.Context, cfg framechat.PluginConfig) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	if p.addr == "" {
		return nil
	}

	ln, err := net.Listen("tcp", p.addr)
	if err != nil {
		return fmt.Errorf("metrics: listen %s: %w", p.addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}))

	p.listener = ln
	p.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	p.done = make(chan struct{})

	go func(srv *http.Server, done chan struct{}) {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.logger.Error("metrics server failed", log.Err(err))
		}
	}(p.server, p.done)

	p.logger.Info("metrics endpoint listening", log.String("addr", ln.Addr().String()))
	return nil
}

// Shutdown stops the /metrics listener.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	srv, done := p.server, p.done
	p.server = nil
	p.mu.Unlock()

	if srv == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(ctx)
	<-done
	return err
}

// Addr returns the bound listen address, or "" when not serving.
func (p *Plugin) Addr() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return ""
	}
	return p.listener.Addr().String()
}

// OnStateChange records the new worker state.
func (p *Plugin) OnStateChange(event framechat.StateChangeEvent) {
	p.state.Set(float64(event.Current))
	p.transitions.WithLabelValues(event.Current.String()).Inc()
}

// OnFrameSent counts an outbound frame.
func (p *Plugin) OnFrameSent(event framechat.FrameEvent) {
	p.framesSent.Inc()
	p.bytesSent.Add(float64(event.Bytes))
}

// OnFrameReceived counts an inbound frame.
func (p *Plugin) OnFrameReceived(event framechat.FrameEvent) {
	p.framesReceived.Inc()
	p.bytesReceived.Add(float64(event.Bytes))
}

var (
	_ framechat.Plugin       = (*Plugin)(nil)
	_ framechat.EventHandler = (*Plugin)(nil)
)
