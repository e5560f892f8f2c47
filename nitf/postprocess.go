package nitf

import "encoding/binary"

// Post-processing runs on every decoded block in a fixed order:
// bit-unpack, byte swap, then pad value to null. Pad values are compared
// against unpacked host order samples, so the order cannot change.

var hostBigEndian = isBigEndian(binary.NativeEndian)

func isBigEndian(order binary.ByteOrder) bool {
	return order.Uint16([]byte{0x12, 0x34}) == 0x1234
}

// needsSwap reports whether samples stored in order must be swapped to
// host order
func needsSwap(order binary.ByteOrder, sampleBytes int) bool {
	return sampleBytes > 1 && isBigEndian(order) != hostBigEndian
}

// bitReader reads MSB-first bit fields
type bitReader struct {
	data []byte
	pos  int // In bits
}

func (r *bitReader) read(n int) (uint32, bool) {
	if r.pos+n > len(r.data)*8 {
		return 0, false
	}
	var v uint32
	for n > 0 {
		avail := 8 - r.pos&7
		take := min(avail, n)
		bits := uint32(r.data[r.pos>>3]) >> uint(avail-take) & (1<<uint(take) - 1)
		v = v<<uint(take) | bits
		n -= take
		r.pos += take
	}
	return v, true
}

// unpackBits expands MSB-first packed samples of nbpp bits from src into
// containers of sampleBytes in dst, written in order. It stops when either
// buffer runs out and returns the number of samples written.
func unpackBits(dst, src []byte, nbpp, sampleBytes int, order binary.ByteOrder) int {
	r := bitReader{data: src}
	count := len(dst) / sampleBytes
	for i := 0; i < count; i++ {
		v, ok := r.read(nbpp)
		if !ok {
			return i
		}
		putSample(dst[i*sampleBytes:], sampleBytes, order, v)
	}
	return count
}

// swapSamples reverses the byte order of every sample in p
func swapSamples(p []byte, sampleBytes int) {
	switch sampleBytes {
	case 2:
		for i := 0; i+1 < len(p); i += 2 {
			p[i], p[i+1] = p[i+1], p[i]
		}
	case 4:
		for i := 0; i+3 < len(p); i += 4 {
			p[i], p[i+1], p[i+2], p[i+3] = p[i+3], p[i+2], p[i+1], p[i]
		}
	}
}

// padToNull replaces pad samples of one band with the band null
func padToNull(b *CacheBlock, band int, pad uint32) {
	null := b.Nulls[band]
	if pad == null {
		return
	}
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			o := b.offset(band, x, y)
			if getSample(b.Pix[o:], b.SampleBytes, binary.NativeEndian) == pad {
				putSample(b.Pix[o:], b.SampleBytes, binary.NativeEndian, null)
			}
		}
	}
}
