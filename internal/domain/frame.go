package domain

import (
	"bytes"
	"fmt"
)

// DefaultFrameWidth is the frame size used on the wire unless configured otherwise.
const DefaultFrameWidth = 32

// Frame is one fixed-width unit of wire transfer.
type Frame []byte

// OutboundMessage is a line of operator text waiting to be framed and sent.
type OutboundMessage string

// Codec converts between text and frames of a fixed Width.
type Codec struct {
	Width int
}

// NewCodec returns a codec for frames of width bytes.
func NewCodec(width int) Codec {
	return Codec{Width: width}
}

// Encode left-aligns text in a zero-padded frame of c.Width bytes.
// Text longer than the frame fails with ErrFrameTooLarge and no frame is
// produced.
func (c Codec) Encode(text string) (Frame, error) {
	if len(text) > c.Width {
		return nil, fmt.Errorf("%w: %d bytes, width %d", ErrFrameTooLarge, len(text), c.Width)
	}
	frame := make(Frame, c.Width)
	copy(frame, text)
	return frame, nil
}

// Decode returns the frame content up to the first zero byte.
//
// Zero is the padding byte, so text that itself contains a zero byte is
// truncated at that point. The protocol has no way to carry it; callers
// that need arbitrary bytes must not use this framing.
func (c Codec) Decode(frame Frame) string {
	return string(Payload(frame))
}

// Payload returns the frame prefix before the first zero byte, without
// copying.
func Payload(frame Frame) []byte {
	if i := bytes.IndexByte(frame, 0); i >= 0 {
		return frame[:i]
	}
	return frame
}

// Encode encodes text with the default frame width.
func Encode(text string) (Frame, error) {
	return NewCodec(DefaultFrameWidth).Encode(text)
}

// Decode decodes a frame produced with any width.
func Decode(frame Frame) string {
	return string(Payload(frame))
}
