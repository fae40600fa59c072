package metrics

import "github.com/bft-labs/framechat/pkg/framechat"

// WithMetrics returns a framechat Option that counts frames and state
// changes, serving them on cfg.Addr when set.
//
// Usage:
//
//	client, err := framechat.New(cfg,
//	    metrics.WithMetrics(metrics.Config{Addr: ":9100"}),
//	)
func WithMetrics(cfg Config) framechat.Option {
	return framechat.WithPlugin(New(cfg))
}
