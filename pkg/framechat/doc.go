// Package framechat provides an embeddable point-to-point chat client that
// exchanges fixed-width frames with a single TCP peer.
//
// # Basic Usage
//
//	cfg := framechat.DefaultConfig()
//	cfg.Endpoint = "127.0.0.1:6000"
//
//	client, err := framechat.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run reads operator lines from stdin (or [WithInput]) and prints received
// messages to stdout (or [WithOutput]). Typing the quit command, closing
// input, or canceling ctx ends the session.
//
// # Wire Format
//
// Every message is exactly FrameWidth bytes (32 by default): the text
// left-aligned and zero-padded. Text longer than a frame stops the
// connection worker with [ErrFrameTooLarge]. Text containing a zero byte is
// truncated by the receiver at that byte.
//
// # Worker States
//
// The connection worker moves from [StateIdle] to [StateRunning] and then to
// exactly one terminal state: [StateSevered], [StateFrameTooLarge],
// [StateQueueClosed] or [StateCanceled]. There is no reconnection. Use
// [Client.Status] to query it and [WithEventHandler] to observe changes.
//
// # Plugins
//
// Optional features attach through [WithPlugin]:
//
//	client, err := framechat.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{Path: path, SetLevel: setLevel}),
//	    metrics.WithMetrics(metrics.Config{Addr: ":9100"}),
//	)
package framechat
