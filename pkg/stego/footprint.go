package stego

import (
	"math"

	"github.com/ssargent/dctsteg/pkg/dct"
	"github.com/ssargent/dctsteg/pkg/frame"
)

const (
	// roundingGuard is kept on top of the worst-case rounding error when a
	// coefficient only has to hold its sign.
	roundingGuard = 0.5
	// midGray is the centre of the sample range.
	midGray = 127.5
	// anchorSwing bounds how far an anchor sample may sit from midGray, so
	// rounding never takes it outside [0,255].
	anchorSwing = 127.0
)

// footprint is the visible part of a block, the top-left rows x cols samples,
// together with the configured basis patterns restricted to it. Samples
// outside the footprint are zero in the extractor's view of the block.
type footprint struct {
	rows, cols int
	positions  []Position
	patterns   []dct.Block
	gram       [][]float64
	// margins[i] is the smallest magnitude coefficient i can be given and
	// still keep its sign once the visible samples are rounded.
	margins []float64
}

func newFootprint(rows, cols int, positions []Position) *footprint {
	n := len(positions)
	f := &footprint{
		rows:      rows,
		cols:      cols,
		positions: positions,
		patterns:  make([]dct.Block, n),
		gram:      make([][]float64, n),
		margins:   make([]float64, n),
	}

	for i, pos := range positions {
		f.patterns[i] = restrict(dct.Basis(pos.Row, pos.Col), rows, cols)

		// Rounding moves each visible sample by at most 0.5.
		var l1 float64
		for y := 0; y < rows; y++ {
			for x := 0; x < cols; x++ {
				l1 += math.Abs(f.patterns[i][y][x])
			}
		}
		f.margins[i] = 0.5*l1 + roundingGuard
	}

	for i := range f.gram {
		f.gram[i] = make([]float64, n)
		for j := range f.gram[i] {
			f.gram[i][j] = dot(f.patterns[i], f.patterns[j])
		}
	}
	return f
}

func (f *footprint) full() bool {
	return f.rows == dct.Size && f.cols == dct.Size
}

// coefficient returns coefficient i of blk as the extractor computes it, up
// to floating-point ordering.
func (f *footprint) coefficient(blk dct.Block, i int) float64 {
	return dot(blk, f.patterns[i])
}

// leading returns the Gram system of the first k patterns.
func (f *footprint) leading(k int) [][]float64 {
	g := make([][]float64, k)
	for i := range g {
		g[i] = f.gram[i][:k]
	}
	return g
}

// apply adds weights[i] times pattern i to blk.
func (f *footprint) apply(blk *dct.Block, weights []float64) {
	for i, w := range weights {
		if w == 0 {
			continue
		}
		for y := 0; y < f.rows; y++ {
			for x := 0; x < f.cols; x++ {
				blk[y][x] += w * f.patterns[i][y][x]
			}
		}
	}
}

// shift returns base plus the smallest change, confined to the footprint,
// that puts the first len(targets) coefficients exactly on targets. It fails
// when those patterns are linearly dependent on the footprint.
func (f *footprint) shift(base dct.Block, targets []float64) (dct.Block, bool) {
	k := len(targets)
	delta := make([]float64, k)
	for i, t := range targets {
		delta[i] = t - f.coefficient(base, i)
	}

	weights, rank := solve(f.leading(k), delta)
	if rank < k {
		return base, false
	}
	f.apply(&base, weights)
	return base, true
}

// settle rounds and clips the visible samples the way the final crop does
// and reports whether the extractor reads bits back from the result.
func (f *footprint) settle(blk dct.Block, bits frame.Bitstream) (dct.Block, bool) {
	for y := 0; y < f.rows; y++ {
		for x := 0; x < f.cols; x++ {
			blk[y][x] = quantizeSample(blk[y][x])
		}
	}

	coef := dct.Forward(blk)
	for i, bit := range bits {
		pos := f.positions[i]
		if (coef[pos.Row][pos.Col] >= 0) != (bit != 0) {
			return blk, false
		}
	}
	return blk, true
}

func (f *footprint) midBlock() dct.Block {
	var b dct.Block
	for y := 0; y < f.rows; y++ {
		for x := 0; x < f.cols; x++ {
			b[y][x] = midGray
		}
	}
	return b
}

// anchor returns a block that does not depend on the carrier and whose
// coefficients sit at twice their margin with the signs bits ask for.
func (f *footprint) anchor(bits frame.Bitstream) (dct.Block, bool) {
	targets := make([]float64, len(bits))
	for i, bit := range bits {
		targets[i] = 2 * f.margins[i]
		if bit == 0 {
			targets[i] = -targets[i]
		}
	}
	return f.shift(f.midBlock(), targets)
}

// blend moves orig toward anchor just far enough for every coefficient to
// clear its margin on the side bits ask for. Both ends lie inside [0,255],
// so every sample in between does too.
func (f *footprint) blend(orig, anchor dct.Block, bits frame.Bitstream) dct.Block {
	var t float64
	for i, bit := range bits {
		sign := 1.0
		if bit == 0 {
			sign = -1
		}
		from := sign*f.coefficient(orig, i) - f.margins[i]
		to := sign*f.coefficient(anchor, i) - f.margins[i]
		if from < 0 && to > from {
			t = math.Max(t, from/(from-to))
		}
	}
	t = math.Min(t, 1)

	out := orig
	for y := 0; y < f.rows; y++ {
		for x := 0; x < f.cols; x++ {
			out[y][x] += t * (anchor[y][x] - orig[y][x])
		}
	}
	return out
}

// spans reports whether the anchor for the first k positions stays within
// anchorSwing of midGray for every combination of bit values. The anchor is
// linear in the bit signs, so the worst case at each sample is the offset
// term plus the magnitudes of the per-position terms.
func (f *footprint) spans(k int) bool {
	gram := f.leading(k)

	mid := f.midBlock()
	offset := make([]float64, k)
	for i := range offset {
		offset[i] = -f.coefficient(mid, i)
	}
	weights, rank := solve(gram, offset)
	if rank < k {
		return false
	}

	var base dct.Block
	f.apply(&base, weights)
	var worst dct.Block
	for y := 0; y < f.rows; y++ {
		for x := 0; x < f.cols; x++ {
			worst[y][x] = math.Abs(base[y][x])
		}
	}

	for i := 0; i < k; i++ {
		unit := make([]float64, k)
		unit[i] = 2 * f.margins[i]
		weights, _ := solve(gram, unit)

		var term dct.Block
		f.apply(&term, weights)
		for y := 0; y < f.rows; y++ {
			for x := 0; x < f.cols; x++ {
				worst[y][x] += math.Abs(term[y][x])
			}
		}
	}

	for y := 0; y < f.rows; y++ {
		for x := 0; x < f.cols; x++ {
			if worst[y][x] > anchorSwing {
				return false
			}
		}
	}
	return true
}

// usable returns how many of the leading positions the footprint can carry
// whatever the bit values and the carrier samples are.
func (f *footprint) usable() int {
	for k := 1; k <= len(f.patterns); k++ {
		if !f.spans(k) {
			return k - 1
		}
	}
	return len(f.patterns)
}
