package stego

import (
	"fmt"
	"math"

	"github.com/ssargent/dctsteg/pkg/dct"
)

// Grid is one channel of an image held as floating point samples in
// row-major order. Values are conceptually in [0,255].
type Grid struct {
	Width  int
	Height int
	Pix    []float64
}

// NewGrid allocates a zeroed width x height grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Pix:    make([]float64, width*height),
	}
}

// At returns the sample at column x, row y.
func (g *Grid) At(x, y int) float64 {
	return g.Pix[y*g.Width+x]
}

// Set stores v at column x, row y.
func (g *Grid) Set(x, y int, v float64) {
	g.Pix[y*g.Width+x] = v
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	c := &Grid{Width: g.Width, Height: g.Height, Pix: make([]float64, len(g.Pix))}
	copy(c.Pix, g.Pix)
	return c
}

func (g *Grid) validate() error {
	if g == nil {
		return fmt.Errorf("grid is nil")
	}
	if g.Width < 0 || g.Height < 0 || len(g.Pix) != g.Width*g.Height {
		return fmt.Errorf("grid dimensions %dx%d do not match %d samples", g.Width, g.Height, len(g.Pix))
	}
	return nil
}

// paddedSize rounds n up to a multiple of the block size.
func paddedSize(n int) int {
	return (n + dct.Size - 1) / dct.Size * dct.Size
}

// pad returns a copy of g zero-extended so both dimensions are multiples of
// the block size.
func pad(g *Grid) *Grid {
	p := NewGrid(paddedSize(g.Width), paddedSize(g.Height))
	for y := 0; y < g.Height; y++ {
		copy(p.Pix[y*p.Width:y*p.Width+g.Width], g.Pix[y*g.Width:(y+1)*g.Width])
	}
	return p
}

// cropAndQuantize cuts p back to width x height, clipping every sample to
// [0,255] and rounding it to an integer. This is the only lossy step.
func cropAndQuantize(p *Grid, width, height int) *Grid {
	out := NewGrid(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			out.Pix[y*width+x] = quantizeSample(p.Pix[y*p.Width+x])
		}
	}
	return out
}

// quantizeSample rounds v to an integer and clips it to [0,255].
func quantizeSample(v float64) float64 {
	return math.Min(math.Max(math.Round(v), 0), 255)
}

func (g *Grid) block(bx, by int) dct.Block {
	var b dct.Block
	for y := 0; y < dct.Size; y++ {
		row := (by+y)*g.Width + bx
		copy(b[y][:], g.Pix[row:row+dct.Size])
	}
	return b
}

func (g *Grid) setBlock(bx, by int, b dct.Block) {
	for y := 0; y < dct.Size; y++ {
		row := (by+y)*g.Width + bx
		copy(g.Pix[row:row+dct.Size], b[y][:])
	}
}
