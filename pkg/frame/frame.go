package frame

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"unicode/utf8"
)

const (
	// LengthBits is the width of the length field at the start of every frame.
	LengthBits = 8
	// ChecksumLen is the number of hex characters of the message digest kept in the frame.
	ChecksumLen = 8
	// Separator splits the checksum from the message.
	Separator = ':'
	// Overhead is the checksum plus separator, counted by the length field.
	Overhead = ChecksumLen + 1
	// HeaderBytes is the number of bytes that precede the checksum.
	HeaderBytes = LengthBits / 8
	// MaxPayload is the largest value the length field can hold.
	MaxPayload = 255
	// MaxMessageBytes is the longest message a frame can carry.
	MaxMessageBytes = MaxPayload - Overhead
)

// Bitstream is a serialized frame, one bit (0 or 1) per element, most
// significant bit of each byte first.
type Bitstream []uint8

// Checksum returns the first ChecksumLen hex characters of the MD5 digest of message.
func Checksum(message []byte) string {
	sum := md5.Sum(message)
	return hex.EncodeToString(sum[:])[:ChecksumLen]
}

// RequiredBits returns the size of the frame for a message of messageLen bytes.
func RequiredBits(messageLen int) int {
	return (HeaderBytes + Overhead + messageLen) * 8
}

// MaxChars returns the longest message that fits in capacityBits, bounded by
// what the length field can represent. It never returns less than zero.
func MaxChars(capacityBits int) int {
	n := capacityBits/8 - (HeaderBytes + Overhead)
	if n > MaxMessageBytes {
		n = MaxMessageBytes
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Build serializes message into a length-prefixed, checksum-stamped bitstream.
// Format: [length(1)][checksum(8 hex)][':'][message]
// where length counts the checksum, separator and message bytes.
//
// A negative capacityBits disables the capacity check; the length field limit
// always applies.
func Build(message string, capacityBits int) (Bitstream, error) {
	msg := []byte(message)

	if len(msg) > MaxMessageBytes {
		maxLen := MaxMessageBytes
		if capacityBits >= 0 {
			maxLen = MaxChars(capacityBits)
		}
		return nil, &MessageTooLongError{Length: len(msg), MaxLength: maxLen}
	}
	if capacityBits >= 0 && RequiredBits(len(msg)) > capacityBits {
		return nil, &MessageTooLongError{Length: len(msg), MaxLength: MaxChars(capacityBits)}
	}

	buf := make([]byte, 0, HeaderBytes+Overhead+len(msg))
	buf = append(buf, byte(Overhead+len(msg)))
	buf = append(buf, Checksum(msg)...)
	buf = append(buf, Separator)
	buf = append(buf, msg...)

	return BytesToBits(buf), nil
}

// DeclaredBits reads the length field and returns the total frame size in bits,
// length field included.
func DeclaredBits(bits Bitstream) (int, error) {
	if len(bits) < LengthBits {
		return 0, &FrameParseError{
			Reason: fmt.Sprintf("bitstream too short for length field: %d < %d bits", len(bits), LengthBits),
		}
	}
	length := int(BitsToBytes(bits[:LengthBits])[0])
	return LengthBits + length*8, nil
}

// Parse reconstructs the message from a bitstream produced by Build and
// verifies its checksum. Bits past the declared frame size are ignored.
func Parse(bits Bitstream) (string, error) {
	total, err := DeclaredBits(bits)
	if err != nil {
		return "", err
	}
	if len(bits) < total {
		return "", &FrameParseError{
			Reason: fmt.Sprintf("truncated frame: have %d bits, length field declares %d", len(bits), total),
		}
	}

	payload := BitsToBytes(bits[LengthBits:total])

	idx := bytes.IndexByte(payload, Separator)
	if idx < 0 {
		return "", &FrameParseError{Reason: "checksum separator not found"}
	}
	if !utf8.Valid(payload) {
		return "", &FrameParseError{Reason: "payload is not valid UTF-8"}
	}

	embedded := string(payload[:idx])
	message := payload[idx+1:]

	computed := Checksum(message)
	if embedded != computed {
		return "", &ChecksumMismatchError{Embedded: embedded, Computed: computed}
	}

	return string(message), nil
}
