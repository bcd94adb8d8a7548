// Package imageio converts between image files and the single-channel grids
// the stego codec works on.
//
// Any format with a registered decoder can be read: PNG, JPEG, GIF, BMP,
// TIFF and WebP. Output is restricted to lossless containers (PNG, BMP and
// TIFF), since any lossy re-encoding destroys an embedded message.
//
// A Carrier exposes one channel of an RGB image, red by default, or the gray
// level of a grayscale image. Writing a grid back replaces only that channel.
package imageio
