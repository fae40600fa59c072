// Package ports defines the interfaces that connect the chat core in
// internal/app to infrastructure adapters.
//
// # Port Interfaces
//
//   - [Dialer]: establishes the single connection at session start
//   - [FrameConn]: frame-granular reads and writes on that connection
//   - [Sink]: where received messages and operator notices are shown
//   - [Logger]: structured logging abstraction
//
// The application layer depends only on these interfaces. Adapters in
// internal/adapters implement them over TCP and the console; tests use
// in-memory fakes.
package ports
