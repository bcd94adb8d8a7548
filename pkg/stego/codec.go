package stego

import (
	"errors"
	"fmt"

	"github.com/ssargent/dctsteg/pkg/frame"
)

// Codec embeds and extracts framed messages in one channel of an image.
// A Codec holds no mutable state and is safe for concurrent use.
type Codec struct {
	params Params
	verify bool
}

// NewCodec validates params and returns a codec using them. With verify set,
// Encode decodes its own output and fails with UnstableEmbeddingError instead
// of returning a grid the message cannot be read back from.
func NewCodec(params Params, verify bool) (*Codec, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid codec parameters: %w", err)
	}

	positions := make([]Position, len(params.Positions))
	copy(positions, params.Positions)

	return &Codec{
		params: Params{Positions: positions, Strength: params.Strength},
		verify: verify,
	}, nil
}

// Params returns a copy of the codec's parameters.
func (c *Codec) Params() Params {
	positions := make([]Position, len(c.params.Positions))
	copy(positions, c.params.Positions)
	return Params{Positions: positions, Strength: c.params.Strength}
}

// Capacity returns the number of bits a height x width grid can carry.
func (c *Codec) Capacity(height, width int) int {
	return Capacity(height, width, c.params)
}

// ReachableCapacity returns how many bits Encode can write into a height x width grid.
func (c *Codec) ReachableCapacity(height, width int) int {
	return ReachableCapacity(height, width, c.params)
}

// MaxMessageChars returns the longest message that fits a height x width grid.
func (c *Codec) MaxMessageChars(height, width int) int {
	return MaxMessageChars(height, width, c.params)
}

// Encode returns a new grid carrying message. The input grid is not modified.
// The capacity check runs before any transform work, so a failed Encode never
// leaves a partial embedding behind. A grid too small for any frame, one
// under 8x8 included, fails with *MessageTooLongError and a MaxLength of 0.
func (c *Codec) Encode(g *Grid, message string) (*Grid, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	bits, err := frame.Build(message, c.ReachableCapacity(g.Height, g.Width))
	if err != nil {
		return nil, err
	}

	p := pad(g)
	if err := c.embed(p, g.Width, g.Height, bits); err != nil {
		return nil, err
	}
	out := cropAndQuantize(p, g.Width, g.Height)

	if c.verify {
		got, err := c.Decode(out)
		if err != nil {
			return nil, &UnstableEmbeddingError{Reason: err.Error()}
		}
		if got != message {
			return nil, &UnstableEmbeddingError{Reason: "decoded message differs from input"}
		}
	}

	return out, nil
}

// Decode extracts and parses the message carried by g.
func (c *Codec) Decode(g *Grid) (string, error) {
	bits, err := c.Extract(g)
	if err != nil {
		return "", err
	}
	return frame.Parse(bits)
}

// IsCorruption reports whether err means the carrier holds no intact frame,
// as opposed to a caller or input error.
func IsCorruption(err error) bool {
	var checksum *ChecksumMismatchError
	var parse *FrameParseError
	return errors.As(err, &checksum) || errors.As(err, &parse)
}
