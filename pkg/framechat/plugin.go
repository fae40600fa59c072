package framechat

import "context"

// Plugin is an optional feature attached to a Client.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize is called before the client dials. An error aborts Run.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called after the session ends.
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin learns about the client it is attached to.
type PluginConfig struct {
	SessionID  string
	Endpoint   string
	ConfigPath string
	Logger     Logger
}
