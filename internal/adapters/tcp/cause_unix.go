//go:build unix

package tcp

import (
	"errors"

	"golang.org/x/sys/unix"
)

func errnoCause(err error) string {
	switch {
	case errors.Is(err, unix.ECONNRESET):
		return "reset"
	case errors.Is(err, unix.EPIPE):
		return "broken pipe"
	case errors.Is(err, unix.ECONNABORTED):
		return "aborted"
	case errors.Is(err, unix.ECONNREFUSED):
		return "refused"
	}
	return ""
}
