// Package dct implements the 8x8 block transform used by the steganographic codec.
//
// Forward is the two-dimensional DCT-II and Inverse the matching DCT-III, both
// with orthonormal scaling, so that
//
//	dct.Inverse(dct.Forward(b)) == b
//
// to within floating-point rounding. There is no quantization at this layer;
// the only lossy step in the codec is the final rounding of reconstructed
// pixels to integers.
//
// With orthonormal scaling a constant block of value c has a single non-zero
// coefficient at (0, 0) equal to 8*c, and the sum of squared samples equals the
// sum of squared coefficients.
package dct
