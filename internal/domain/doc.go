// Package domain contains the core types of framechat: the fixed-width
// frame codec, outbound messages, and the sentinel errors shared by every
// layer.
//
// This package has no dependencies on sockets, consoles or logging. The
// codec is a pure function pair and can be tested without any transport.
//
// # Wire format
//
// Every message travels as exactly one frame of Width bytes. The text is
// left-aligned and the remainder is filled with zero bytes. There is no
// length prefix, delimiter, checksum or version tag.
package domain
