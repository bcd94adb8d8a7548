// Package stego hides framed text messages in one channel of an image by
// forcing the sign of selected DCT coefficients in each 8x8 block.
//
// # Embedding
//
// The carrier grid is zero-padded to a multiple of 8 in both directions and
// walked block by block in raster order. Each block carries len(Positions)
// bits. For a bit of 1 the coefficient at the matching position is raised to
// at least +Strength, for a bit of 0 it is lowered to at most -Strength.
// Coefficients that already satisfy the rule keep their value. Blocks past
// the end of the frame are left untouched.
//
// The result is cropped back to the carrier size, clipped to [0,255] and
// rounded. With the default strength of 25 the rounding error on any
// coefficient stays far below the threshold, so the signs survive.
//
// Blocks cut by the right or bottom edge lose their padding on the crop. For
// those the pixel change is solved on the visible samples only, so the
// extractor reads the intended signs after it pads the grid again. Every
// block is rounded and checked in place before the walk moves on. When the
// strength target does not survive clipping, the coefficients are pushed only
// past the worst-case rounding error, and failing that the block is blended
// toward a carrier-independent anchor.
//
// A bottom-right block only a few samples wide or tall cannot give every
// coefficient either sign, whatever its samples are. ReachableCapacity stops
// counting inside such a block, so MaxMessageChars can be smaller than
// Capacity/8 - 10 and Encode rejects longer messages with
// *MessageTooLongError before touching the carrier.
//
// # Extraction
//
// The extractor walks the blocks in the same order, reads the sign of each
// configured coefficient and stops as soon as the frame's length field is
// satisfied. The bits are handed to frame.Parse.
//
// # Usage
//
//	codec, err := stego.NewCodec(stego.DefaultParams(), true)
//	if err != nil {
//	    return err
//	}
//
//	out, err := codec.Encode(grid, "hello")
//	if err != nil {
//	    return err // *stego.MessageTooLongError, *stego.UnstableEmbeddingError, ...
//	}
//
//	msg, err := codec.Decode(out)
//
// The embedding is fragile by construction: any lossy re-encoding, resize or
// recompression of the carrier destroys the message.
package stego
