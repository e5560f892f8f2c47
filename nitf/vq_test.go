package nitf

import (
	"bytes"
	"image"
	"testing"
)

// kernelTable builds a 2x2 kernel, 12-bit code table where the kernel of
// code c holds c*4, c*4+1, c*4+2, c*4+3 (mod 256) in raster order
func kernelTable() *CompressionTable {
	t := &CompressionTable{Rows: 2, Cols: 2, CodeBits: 12}
	t.Lookup = make([][]byte, 2)
	for r := range t.Lookup {
		t.Lookup[r] = make([]byte, 4096*2)
		for code := 0; code < 4096; code++ {
			for c := 0; c < 2; c++ {
				t.Lookup[r][code*2+c] = byte(code*4 + r*2 + c)
			}
		}
	}
	return t
}

func kernelValue(code uint32, x, y int) uint32 {
	return uint32(byte(int(code)*4 + (y%2)*2 + x%2))
}

func TestDecodeVQIdentity(t *testing.T) {
	table := kernelTable()
	codes := []uint32{1, 2, 300, 4000}
	b := newCacheBlock(image.Pt(4, 4), 1, 1, BandSequential, []uint32{255})
	b.fill(nil)

	decodeVQ(b, packBits(codes, 12), table, nil, false)

	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			code := codes[(y/2)*2+x/2]
			if got, want := b.At(0, x, y), kernelValue(code, x, y); got != want {
				t.Errorf("(%d,%d): got %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestDecodeVQColorTable(t *testing.T) {
	table := kernelTable()
	lut := &ColorTable{Entries: [][]byte{make([]byte, 256), make([]byte, 256), make([]byte, 16)}}
	for i := 0; i < 256; i++ {
		lut.Entries[0][i] = byte(i)
		lut.Entries[1][i] = byte(255 - i)
	}
	for i := range lut.Entries[2] {
		lut.Entries[2][i] = byte(i * 2)
	}

	b := newCacheBlock(image.Pt(2, 2), 3, 1, BandSequential, []uint32{0, 0, 99})
	b.fill(nil)
	decodeVQ(b, packBits([]uint32{1}, 12), table, lut, false)

	for i, idx := range []uint32{4, 5, 6, 7} {
		x, y := i%2, i/2
		if got := b.At(0, x, y); got != idx {
			t.Errorf("band 0 (%d,%d): got %d, want %d", x, y, got, idx)
		}
		if got := b.At(1, x, y); got != 255-idx {
			t.Errorf("band 1 (%d,%d): got %d, want %d", x, y, got, 255-idx)
		}
		if got := b.At(2, x, y); got != idx*2 {
			t.Errorf("band 2 (%d,%d): got %d, want %d", x, y, got, idx*2)
		}
	}

	// Indices past a short lookup fall back to the band null
	decodeVQ(b, packBits([]uint32{100}, 12), table, lut, false)
	if got := b.At(2, 0, 0); got != 99 {
		t.Errorf("got %d, want null 99", got)
	}
}

func TestDecodeVQTransparentKernel(t *testing.T) {
	lut := &ColorTable{Entries: make([][]byte, 3)}
	for band := range lut.Entries {
		lut.Entries[band] = make([]byte, 256)
		for i := range lut.Entries[band] {
			lut.Entries[band][i] = byte(i*10 + band)
		}
	}
	nulls := []uint32{200, 201, 202}

	nullKernel := func() *CompressionTable {
		t := kernelTable()
		for r := range t.Lookup {
			t.Lookup[r][4095*2] = 0
			t.Lookup[r][4095*2+1] = 0
		}
		return t
	}

	decode := func(table *CompressionTable, transparent bool) *CacheBlock {
		b := newCacheBlock(image.Pt(2, 2), 3, 1, BandSequential, nulls)
		b.fill(nil)
		decodeVQ(b, packBits([]uint32{4095}, 12), table, lut, transparent)
		return b
	}

	t.Run("whole kernel null", func(t *testing.T) {
		b := decode(nullKernel(), true)
		for band := 0; band < 3; band++ {
			for y := 0; y < 2; y++ {
				for x := 0; x < 2; x++ {
					if got := b.At(band, x, y); got != nulls[band] {
						t.Errorf("band %d (%d,%d): got %d, want null %d", band, x, y, got, nulls[band])
					}
				}
			}
		}
	})

	t.Run("one cell differs", func(t *testing.T) {
		table := nullKernel()
		table.Lookup[1][4095*2+1] = 7
		b := decode(table, true)
		for band := 0; band < 3; band++ {
			want := []uint32{uint32(band), uint32(band), uint32(band), uint32(70 + band)}
			for i, w := range want {
				if got := b.At(band, i%2, i/2); got != w {
					t.Errorf("band %d cell %d: got %d, want %d", band, i, got, w)
				}
			}
		}
	})

	t.Run("opaque variant looks up", func(t *testing.T) {
		b := decode(nullKernel(), false)
		if got := b.At(1, 1, 1); got != 1 {
			t.Errorf("got %d, want 1", got)
		}
	})
}

func TestSegmentVQ(t *testing.T) {
	table := kernelTable()
	codes := [][]uint32{{1, 2, 3, 4}, {5, 6, 7, 8}}
	desc := &Descriptor{
		Rows: 4, Cols: 7,
		BlocksPerRow: 2, BlocksPerColumn: 1,
		BlockWidth: 4, BlockHeight: 4,
		BitsPerPixel: 8, Bands: 1,
		Compression: "C4", Interleave: "B",
		DataOffset: 3,
		VQTable:    table,
		NullValues: []uint32{255},
	}
	data := []byte{0, 0, 0}
	for _, c := range codes {
		data = append(data, packBits(c, 12)...)
	}

	s, err := Open(desc, bytes.NewReader(data), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	tile, err := s.GetTile(image.Rect(0, 0, 8, 4), 0)
	if err != nil {
		t.Fatalf("GetTile failed: %v", err)
	}
	checkTile(t, tile, inside(s.Bounds(), 255, func(band, x, y int) uint32 {
		code := codes[x/4][(y/2)*2+(x%4)/2]
		return kernelValue(code, x, y)
	}))
	if tile.Status != StatusPartial {
		t.Errorf("got status %v, want partial", tile.Status)
	}
}
