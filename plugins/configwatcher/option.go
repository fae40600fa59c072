package configwatcher

import "github.com/bft-labs/framechat/pkg/framechat"

// WithConfigWatcher returns a framechat Option that enables config file
// watching. When log_level changes in the file, SetLevel is called with
// the new value.
//
// Usage:
//
//	client, err := framechat.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        SetLevel:      cliconfig.SetLogLevel,
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) framechat.Option {
	plugin := New(cfg)
	return framechat.WithPlugin(plugin)
}
