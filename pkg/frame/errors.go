package frame

import "fmt"

// MessageTooLongError reports a message that does not fit the carrier or the length field.
type MessageTooLongError struct {
	Length    int // message length in bytes
	MaxLength int // longest message that would fit
}

func (e *MessageTooLongError) Error() string {
	return fmt.Sprintf("message too long: %d bytes, maximum length is %d characters", e.Length, e.MaxLength)
}

// ChecksumMismatchError reports a frame whose embedded checksum disagrees with
// the checksum recomputed over the recovered message.
type ChecksumMismatchError struct {
	Embedded string
	Computed string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: embedded %q, computed %q", e.Embedded, e.Computed)
}

// FrameParseError reports a bitstream that does not hold a well-formed frame.
type FrameParseError struct {
	Reason string
}

func (e *FrameParseError) Error() string {
	return "frame parse error: " + e.Reason
}
