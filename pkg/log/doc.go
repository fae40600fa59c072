// Package log provides the structured logging abstraction used by framechat.
//
// Components log through the [Logger] interface so the chat core never
// depends on a concrete logging library. A zerolog adapter backs the CLI and
// a no-op logger is provided for tests and embedders that want silence:
//
//	logger := log.NewZerologAdapterWithLogger(zerolog.New(os.Stderr))
//	session := logger.With(log.String("session", id))
//	session.Info("connected", log.String("endpoint", "127.0.0.1:6000"))
//
// Log output is diagnostic only. Chat traffic (received messages, banners)
// is written by the console sink to stdout, never through a Logger.
package log
