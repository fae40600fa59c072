package ports

// Sink receives everything the operator should see on the console.
// The worker and the input loop call it from different goroutines, so
// implementations must be safe for concurrent use.
type Sink interface {
	// Received shows a decoded inbound message. raw is the payload before
	// text conversion.
	Received(text string, raw []byte)

	// Sent confirms that a message was written to the wire.
	Sent(text string)

	// Notice shows a banner or status line.
	Notice(msg string)
}
