package tcp

import (
	"errors"
	"io"
	"net"
)

// Cause labels why a connection failed, for logs and diagnostics.
// It returns one of "eof", "closed", "reset", "broken pipe", "aborted",
// "refused" or "io".
func Cause(err error) string {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return "eof"
	case errors.Is(err, net.ErrClosed):
		return "closed"
	}
	if c := errnoCause(err); c != "" {
		return c
	}
	return "io"
}
