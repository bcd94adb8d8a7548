package stego

import (
	"github.com/ssargent/dctsteg/pkg/dct"
	"github.com/ssargent/dctsteg/pkg/frame"
)

// BlockCount returns the number of 8x8 blocks covering a height x width grid,
// partial blocks at the right and bottom edges included.
func BlockCount(height, width int) int {
	if height <= 0 || width <= 0 {
		return 0
	}
	return paddedSize(height) / dct.Size * (paddedSize(width) / dct.Size)
}

// Capacity returns the number of bit slots of a height x width grid: every
// block, partial ones included, times the bits per block.
func Capacity(height, width int, p Params) int {
	return BlockCount(height, width) * p.BitsPerBlock()
}

// ReachableCapacity returns how many bits can be written into a height x
// width grid in raster order whatever the carrier holds. It equals Capacity
// unless a block cut by the right or bottom edge shows too few samples to
// give every configured coefficient either sign; writing then stops inside
// the first such block. With the default positions only a bottom-right
// block narrower or shorter than a few samples falls short.
func ReachableCapacity(height, width int, p Params) int {
	if height <= 0 || width <= 0 {
		return 0
	}

	perBlock := p.BitsPerBlock()
	usable := make(map[[2]int]int, 4)
	total := 0
	for by := 0; by < height; by += dct.Size {
		for bx := 0; bx < width; bx += dct.Size {
			shape := [2]int{min(dct.Size, height-by), min(dct.Size, width-bx)}
			n, ok := usable[shape]
			if !ok {
				n = newFootprint(shape[0], shape[1], p.Positions).usable()
				usable[shape] = n
			}

			total += n
			if n < perBlock {
				return total
			}
		}
	}
	return total
}

// MaxMessageChars returns the longest message, in bytes, that can be embedded
// in a height x width grid: the reachable capacity in bytes minus the 10
// bytes of framing, bounded by the frame's one-byte length field.
func MaxMessageChars(height, width int, p Params) int {
	return frame.MaxChars(ReachableCapacity(height, width, p))
}
