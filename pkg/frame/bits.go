package frame

// BytesToBits expands data into one bit per element, most significant bit first.
func BytesToBits(data []byte) Bitstream {
	bits := make(Bitstream, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>uint(i))&1)
		}
	}
	return bits
}

// BitsToBytes packs bits back into bytes, most significant bit first.
// A trailing partial byte is dropped.
func BitsToBytes(bits Bitstream) []byte {
	out := make([]byte, len(bits)/8)
	for i := range out {
		var b byte
		for j := 0; j < 8; j++ {
			b = b<<1 | bits[i*8+j]&1
		}
		out[i] = b
	}
	return out
}
