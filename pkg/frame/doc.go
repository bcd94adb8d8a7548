// Package frame turns message text into the bitstream embedded in a carrier
// image and back.
//
// # Frame Format
//
// A frame is a short byte sequence with the following structure:
//
//	[Length(1)][Checksum(8)][':'][Message]
//
// Fields:
//   - Length: one byte equal to len(Checksum) + 1 + len(Message)
//   - Checksum: the first 8 lowercase hex characters of the MD5 digest of Message
//   - ':': separator
//   - Message: the message bytes (UTF-8)
//
// Because Length is a single byte, a frame carries at most 255 bytes after the
// length field, so messages are limited to MaxMessageBytes (246) bytes no matter
// how large the carrier is.
//
// The frame is serialized most-significant-bit first, one bit per element of
// a Bitstream.
//
// # Usage
//
//	bits, err := frame.Build("hello", capacityBits)
//	if err != nil {
//	    return err // *frame.MessageTooLongError
//	}
//
//	msg, err := frame.Parse(bits)
//	if err != nil {
//	    return err // *frame.ChecksumMismatchError or *frame.FrameParseError
//	}
//
// # Error Handling
//
// Parse never panics on arbitrary input. A stream whose length field declares
// more bits than are present, that lacks the separator, or that is not valid
// UTF-8 yields a *FrameParseError. A well-formed frame whose checksum does not
// match yields a *ChecksumMismatchError.
//
// The checksum detects corruption only; anyone can recompute it.
package frame
