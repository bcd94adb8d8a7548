package stego

import (
	"fmt"

	"github.com/ssargent/dctsteg/pkg/frame"
)

// Frame errors surface unchanged from Encode and Decode.
type (
	MessageTooLongError   = frame.MessageTooLongError
	ChecksumMismatchError = frame.ChecksumMismatchError
	FrameParseError       = frame.FrameParseError
)

// InsufficientDataError reports a carrier too small to hold one block or the length field.
type InsufficientDataError struct {
	Width        int
	Height       int
	CapacityBits int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: %dx%d grid holds %d bits, need at least one %dx%d block and %d bits",
		e.Width, e.Height, e.CapacityBits, 8, 8, frame.LengthBits)
}

// UnstableEmbeddingError reports an encode whose output would not decode back
// to the message: a block none of the embedding attempts could fill, or a
// verify pass that read back something else.
type UnstableEmbeddingError struct {
	Reason string
}

func (e *UnstableEmbeddingError) Error() string {
	return "embedded message does not survive quantization: " + e.Reason
}
