package stego

import (
	"github.com/ssargent/dctsteg/pkg/dct"
	"github.com/ssargent/dctsteg/pkg/frame"
)

// Extract reads the sign of the configured coefficients of every block in
// raster order and returns the embedded bitstream. It stops as soon as the
// number of bits declared by the length field has been collected. If the
// grid runs out first, the bits gathered so far are returned and frame.Parse
// reports the truncation.
func (c *Codec) Extract(g *Grid) (frame.Bitstream, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	capacity := c.Capacity(g.Height, g.Width)
	if g.Width < dct.Size || g.Height < dct.Size || capacity < frame.LengthBits {
		return nil, &InsufficientDataError{Width: g.Width, Height: g.Height, CapacityBits: capacity}
	}

	p := pad(g)
	bits := make(frame.Bitstream, 0, c.params.BitsPerBlock()*4)
	need := -1

	for by := 0; by < p.Height; by += dct.Size {
		for bx := 0; bx < p.Width; bx += dct.Size {
			coef := dct.Forward(p.block(bx, by))
			for _, pos := range c.params.Positions {
				if coef[pos.Row][pos.Col] >= 0 {
					bits = append(bits, 1)
				} else {
					bits = append(bits, 0)
				}
			}

			if need < 0 && len(bits) >= frame.LengthBits {
				declared, err := frame.DeclaredBits(bits)
				if err != nil {
					return nil, err
				}
				need = declared
			}
			if need >= 0 && len(bits) >= need {
				return bits[:need], nil
			}
		}
	}

	return bits, nil
}
