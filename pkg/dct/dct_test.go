package dct

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func randomBlock(seed int64) Block {
	rng := rand.New(rand.NewSource(seed))
	var b Block
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			b[y][x] = float64(rng.Intn(256))
		}
	}
	return b
}

func TestForwardInverse_RoundTrip(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			src := randomBlock(seed)
			got := Inverse(Forward(src))

			for y := 0; y < Size; y++ {
				for x := 0; x < Size; x++ {
					assert.InDelta(t, src[y][x], got[y][x], tolerance, "sample (%d,%d)", y, x)
				}
			}
		})
	}
}

func TestForward_ConstantBlock(t *testing.T) {
	var b Block
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			b[y][x] = 128
		}
	}

	coef := Forward(b)

	assert.InDelta(t, 1024.0, coef[0][0], tolerance)
	for u := 0; u < Size; u++ {
		for v := 0; v < Size; v++ {
			if u == 0 && v == 0 {
				continue
			}
			assert.InDelta(t, 0.0, coef[u][v], tolerance, "coefficient (%d,%d)", u, v)
		}
	}
}

func TestForward_PreservesEnergy(t *testing.T) {
	src := randomBlock(42)
	coef := Forward(src)

	var spatial, spectral float64
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			spatial += src[y][x] * src[y][x]
			spectral += coef[y][x] * coef[y][x]
		}
	}

	assert.InDelta(t, spatial, spectral, 1e-6*spatial)
}

func TestBasis_IsUnitImpulse(t *testing.T) {
	positions := [][2]int{{0, 0}, {4, 1}, {3, 4}, {5, 2}, {2, 5}, {7, 7}}

	for _, p := range positions {
		t.Run(fmt.Sprintf("u=%d,v=%d", p[0], p[1]), func(t *testing.T) {
			coef := Forward(Basis(p[0], p[1]))
			for u := 0; u < Size; u++ {
				for v := 0; v < Size; v++ {
					want := 0.0
					if u == p[0] && v == p[1] {
						want = 1.0
					}
					assert.InDelta(t, want, coef[u][v], tolerance, "coefficient (%d,%d)", u, v)
				}
			}
		})
	}
}

func TestInverse_SingleCoefficient(t *testing.T) {
	var coef Block
	coef[4][1] = 25

	out := Inverse(coef)
	basis := Basis(4, 1)

	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			assert.InDelta(t, 25*basis[y][x], out[y][x], tolerance)
			assert.False(t, math.IsNaN(out[y][x]))
		}
	}
}
