package nitf

import (
	"bytes"
	"encoding/binary"
	"image"
	"testing"
)

func TestBitReader(t *testing.T) {
	r := bitReader{data: []byte{0xA5, 0x3C}} // 1010 0101 0011 1100
	tests := []struct {
		n    int
		want uint32
	}{
		{3, 0x5},  // 101
		{7, 0x14}, // 0010100
		{6, 0x3C}, // 111100
	}
	for _, tt := range tests {
		got, ok := r.read(tt.n)
		if !ok || got != tt.want {
			t.Errorf("read(%d): got %#x, %v, want %#x", tt.n, got, ok, tt.want)
		}
	}
	if _, ok := r.read(1); ok {
		t.Error("read past the end should fail")
	}
}

func TestUnpackBits(t *testing.T) {
	values := []uint32{0x7FF, 0x001, 0x2AB, 0x155, 0x400}
	packed := packBits(values, 11)

	dst := make([]byte, 2*len(values))
	if n := unpackBits(dst, packed, 11, 2, binary.BigEndian); n != len(values) {
		t.Fatalf("got %d samples, want %d", n, len(values))
	}
	for i, v := range values {
		if got := uint32(binary.BigEndian.Uint16(dst[2*i:])); got != v {
			t.Errorf("sample %d: got %#x, want %#x", i, got, v)
		}
	}

	// A short source leaves the remaining containers untouched
	dst = bytes.Repeat([]byte{0xAA}, 8)
	if n := unpackBits(dst, packed[:3], 11, 2, binary.BigEndian); n != 2 {
		t.Fatalf("got %d samples, want 2", n)
	}
	if dst[4] != 0xAA || dst[7] != 0xAA {
		t.Error("unpack wrote past the available samples")
	}
}

// Unpacking then swapping restores the samples; swapping the packed bytes
// first does not.
func TestUnpackThenSwapOrder(t *testing.T) {
	values := []uint32{0x7FF, 0x001, 0x2AB, 0x155, 0x0F0, 0x70F}
	order := foreignOrder()
	packed := packBits(values, 11)

	dst := make([]byte, 2*len(values))
	unpackBits(dst, packed, 11, 2, order)
	if !needsSwap(order, 2) {
		t.Fatal("foreign order must need a swap")
	}
	swapSamples(dst, 2)
	for i, v := range values {
		if got := uint32(binary.NativeEndian.Uint16(dst[2*i:])); got != v {
			t.Errorf("unpack then swap, sample %d: got %#x, want %#x", i, got, v)
		}
	}

	wrong := append([]byte(nil), packed...)
	swapSamples(wrong, 2)
	dst = make([]byte, 2*len(values))
	unpackBits(dst, wrong, 11, 2, binary.NativeEndian)
	differ := false
	for i, v := range values {
		if uint32(binary.NativeEndian.Uint16(dst[2*i:])) != v {
			differ = true
		}
	}
	if !differ {
		t.Error("swapping before unpacking should corrupt the samples")
	}
}

func TestSwapSamples(t *testing.T) {
	tests := []struct {
		size int
		in   []byte
		want []byte
	}{
		{1, []byte{1, 2, 3}, []byte{1, 2, 3}},
		{2, []byte{1, 2, 3, 4}, []byte{2, 1, 4, 3}},
		{4, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{4, 3, 2, 1, 8, 7, 6, 5}},
	}
	for _, tt := range tests {
		got := append([]byte(nil), tt.in...)
		swapSamples(got, tt.size)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("size %d: got %v, want %v", tt.size, got, tt.want)
		}
	}
}

func TestNeedsSwap(t *testing.T) {
	if needsSwap(binary.NativeEndian, 2) {
		t.Error("host order never needs a swap")
	}
	if needsSwap(foreignOrder(), 1) {
		t.Error("single byte samples never need a swap")
	}
	if !needsSwap(foreignOrder(), 4) {
		t.Error("foreign order needs a swap")
	}
}

func TestPadToNull(t *testing.T) {
	b := newCacheBlock(image.Pt(2, 2), 2, 2, PixelInterleaved, []uint32{0, 9})
	for i, v := range []uint32{7, 7, 1, 7, 7, 2, 3, 7} {
		putSample(b.Pix[2*i:], 2, binary.NativeEndian, v)
	}
	padToNull(b, 1, 7)

	want := [][]uint32{{7, 1, 7, 3}, {9, 9, 2, 9}}
	for band := 0; band < 2; band++ {
		for i := 0; i < 4; i++ {
			if got := b.At(band, i%2, i/2); got != want[band][i] {
				t.Errorf("band %d sample %d: got %d, want %d", band, i, got, want[band][i])
			}
		}
	}
}
