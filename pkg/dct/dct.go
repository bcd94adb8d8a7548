package dct

import "math"

// Size is the edge length of a transform block.
const Size = 8

// Block is an 8x8 tile of samples or coefficients, indexed [row][col].
type Block [Size][Size]float64

// cosTable[k][n] holds the orthonormal DCT-II basis value for frequency k at sample n:
// c(k) * cos((2n+1)k*pi/16), with c(0) = sqrt(1/8) and c(k) = sqrt(2/8) otherwise.
var cosTable [Size][Size]float64

func init() {
	for k := 0; k < Size; k++ {
		scale := math.Sqrt(2.0 / Size)
		if k == 0 {
			scale = math.Sqrt(1.0 / Size)
		}
		for n := 0; n < Size; n++ {
			cosTable[k][n] = scale * math.Cos(float64(2*n+1)*float64(k)*math.Pi/(2*Size))
		}
	}
}

// Forward applies the separable 2-D DCT-II with orthonormal scaling.
// Rows are transformed first, then columns.
func Forward(src Block) Block {
	var tmp, dst Block

	// 1D DCT on rows
	for y := 0; y < Size; y++ {
		for v := 0; v < Size; v++ {
			var sum float64
			for x := 0; x < Size; x++ {
				sum += cosTable[v][x] * src[y][x]
			}
			tmp[y][v] = sum
		}
	}

	// 1D DCT on columns
	for v := 0; v < Size; v++ {
		for u := 0; u < Size; u++ {
			var sum float64
			for y := 0; y < Size; y++ {
				sum += cosTable[u][y] * tmp[y][v]
			}
			dst[u][v] = sum
		}
	}

	return dst
}

// Inverse applies the 2-D DCT-III, the exact inverse of Forward up to
// floating-point rounding.
func Inverse(coef Block) Block {
	var tmp, dst Block

	for u := 0; u < Size; u++ {
		for x := 0; x < Size; x++ {
			var sum float64
			for v := 0; v < Size; v++ {
				sum += cosTable[v][x] * coef[u][v]
			}
			tmp[u][x] = sum
		}
	}

	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			var sum float64
			for u := 0; u < Size; u++ {
				sum += cosTable[u][y] * tmp[u][x]
			}
			dst[y][x] = sum
		}
	}

	return dst
}

// Basis returns the spatial pattern of coefficient (u, v): the block whose
// forward transform is 1 at (u, v) and 0 elsewhere.
func Basis(u, v int) Block {
	var b Block
	for y := 0; y < Size; y++ {
		for x := 0; x < Size; x++ {
			b[y][x] = cosTable[u][y] * cosTable[v][x]
		}
	}
	return b
}
