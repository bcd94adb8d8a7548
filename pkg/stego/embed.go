package stego

import (
	"fmt"
	"math"

	"github.com/ssargent/dctsteg/pkg/dct"
	"github.com/ssargent/dctsteg/pkg/frame"
)

// singularTolerance is the pivot magnitude below which a constraint is
// treated as dependent on the ones already solved.
const singularTolerance = 1e-9

// QuantizeBit applies the sign/threshold rule to one coefficient.
// A 1 forces the coefficient to be at least +strength, a 0 to be at most
// -strength. A coefficient already far enough from zero with the right sign
// keeps its magnitude.
func QuantizeBit(coefficient float64, bit uint8, strength float64) float64 {
	if bit != 0 {
		return math.Max(math.Abs(coefficient), strength)
	}
	return math.Min(-math.Abs(coefficient), -strength)
}

// embed writes bits into the padded grid p, block by block in raster order,
// until the bits run out. Blocks after the last written one are not touched.
// width and height are the dimensions of the visible (unpadded) carrier.
func (c *Codec) embed(p *Grid, width, height int, bits frame.Bitstream) error {
	perBlock := c.params.BitsPerBlock()
	next := 0

	for by := 0; by < p.Height && next < len(bits); by += dct.Size {
		for bx := 0; bx < p.Width && next < len(bits); bx += dct.Size {
			n := min(perBlock, len(bits)-next)
			rows := min(dct.Size, height-by)
			cols := min(dct.Size, width-bx)

			if !c.embedBlock(p, bx, by, rows, cols, bits[next:next+n]) {
				return &UnstableEmbeddingError{
					Reason: fmt.Sprintf("block at (%d,%d) shows %dx%d samples and cannot hold %d bits", bx, by, cols, rows, n),
				}
			}
			next += n
		}
	}
	return nil
}

// embedBlock writes bits into the block at (bx, by), of which the top-left
// rows x cols samples are visible, and leaves those samples rounded to the
// values the output will hold. It reports false if no attempt reads back.
//
// A fully visible block takes the plain route first: forward transform,
// quantize the configured coefficients, inverse transform. A block cut by the
// right or bottom edge loses its padding on the crop and is re-padded with
// zeros by the extractor, so its change is built from the basis patterns
// restricted to the visible samples instead. When the strength target does
// not survive rounding and clipping, the coefficients are pushed only as far
// as their rounding margins. The last resort blends the block toward an
// anchor that carries the bits whatever the carrier holds.
func (c *Codec) embedBlock(p *Grid, bx, by, rows, cols int, bits frame.Bitstream) bool {
	orig := p.block(bx, by)
	f := newFootprint(rows, cols, c.params.Positions[:len(bits)])

	var attempts [][]float64
	if f.full() {
		if blk, ok := f.settle(c.quantizeBlock(orig, bits), bits); ok {
			p.setBlock(bx, by, blk)
			return true
		}
	} else {
		strength := make([]float64, len(bits))
		for i := range strength {
			strength[i] = c.params.Strength
		}
		attempts = append(attempts, strength)
	}
	attempts = append(attempts, f.margins)

	for _, strengths := range attempts {
		targets := make([]float64, len(bits))
		for i, bit := range bits {
			targets[i] = QuantizeBit(f.coefficient(orig, i), bit, strengths[i])
		}

		blk, ok := f.shift(orig, targets)
		if !ok {
			continue
		}
		if blk, ok = f.settle(blk, bits); ok {
			p.setBlock(bx, by, blk)
			return true
		}
	}

	anchor, ok := f.anchor(bits)
	if !ok {
		return false
	}
	blk, ok := f.settle(f.blend(orig, anchor, bits), bits)
	if ok {
		p.setBlock(bx, by, blk)
	}
	return ok
}

// quantizeBlock is the plain route for a fully visible block.
func (c *Codec) quantizeBlock(blk dct.Block, bits frame.Bitstream) dct.Block {
	coef := dct.Forward(blk)
	for i, bit := range bits {
		pos := c.params.Positions[i]
		coef[pos.Row][pos.Col] = QuantizeBit(coef[pos.Row][pos.Col], bit, c.params.Strength)
	}
	return dct.Inverse(coef)
}

func restrict(b dct.Block, rows, cols int) dct.Block {
	var out dct.Block
	for y := 0; y < rows; y++ {
		copy(out[y][:cols], b[y][:cols])
	}
	return out
}

func dot(a, b dct.Block) float64 {
	var sum float64
	for y := 0; y < dct.Size; y++ {
		for x := 0; x < dct.Size; x++ {
			sum += a[y][x] * b[y][x]
		}
	}
	return sum
}

// solve returns x with g*x = d using Gauss-Jordan elimination with partial
// pivoting, and the rank it found. Columns without a usable pivot are left at
// zero, so a rank-deficient system still yields a bounded answer.
func solve(g [][]float64, d []float64) ([]float64, int) {
	n := len(d)
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n+1)
		copy(m[i], g[i])
		m[i][n] = d[i]
	}

	pivotRow := make([]int, n)
	row := 0
	for col := 0; col < n; col++ {
		pivotRow[col] = -1
		if row == n {
			continue
		}

		best := row
		for r := row + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[best][col]) {
				best = r
			}
		}
		if math.Abs(m[best][col]) < singularTolerance {
			continue
		}
		m[row], m[best] = m[best], m[row]

		pivot := m[row][col]
		for k := col; k <= n; k++ {
			m[row][k] /= pivot
		}
		for r := 0; r < n; r++ {
			if r == row || m[r][col] == 0 {
				continue
			}
			f := m[r][col]
			for k := col; k <= n; k++ {
				m[r][k] -= f * m[row][k]
			}
		}

		pivotRow[col] = row
		row++
	}

	x := make([]float64, n)
	for col, r := range pivotRow {
		if r >= 0 {
			x[col] = m[r][n]
		}
	}
	return x, row
}
