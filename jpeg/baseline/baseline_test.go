package baseline

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cocosip/go-nitf-codec/internal/jpegtest"
	"github.com/cocosip/go-nitf-codec/jpeg/common"
)

func flatQuant(v int32) *[64]int32 {
	var q [64]int32
	for i := range q {
		q[i] = v
	}
	return &q
}

func checkPlane(t *testing.T, f *Frame, comp int, want func(x, y int) uint16) {
	t.Helper()
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			got := f.Pix[(y*f.Width+x)*f.Components+comp]
			if w := want(x, y); got != w {
				t.Fatalf("component %d pixel (%d,%d): got %d, want %d", comp, x, y, got, w)
			}
		}
	}
}

func TestDecodeFlatBlocks(t *testing.T) {
	q8 := flatQuant(8)
	tests := []struct {
		name          string
		width, height int
		dc            []int32
		opts          jpegtest.Options
		want          func(x, y int) uint16
	}{
		{
			name:  "single gray block",
			width: 8, height: 8,
			dc:   []int32{0},
			opts: jpegtest.Options{Quant: []*[64]int32{q8}, Huffman: true},
			want: func(x, y int) uint16 { return 128 },
		},
		{
			name:  "two blocks",
			width: 16, height: 8,
			dc:   []int32{0, 4},
			opts: jpegtest.Options{Quant: []*[64]int32{q8}, Huffman: true},
			want: func(x, y int) uint16 {
				if x < 8 {
					return 128
				}
				return 132
			},
		},
		{
			name:  "restart interval",
			width: 16, height: 16,
			dc:   []int32{-10, 10, 20, -20},
			opts: jpegtest.Options{Quant: []*[64]int32{q8}, Huffman: true, Restart: 1},
			want: func(x, y int) uint16 {
				return []uint16{118, 138, 148, 108}[(y/8)*2+x/8]
			},
		},
		{
			name:  "partial edge blocks",
			width: 10, height: 9,
			dc:   []int32{1, 2, 3, 4},
			opts: jpegtest.Options{Quant: []*[64]int32{q8}, Huffman: true},
			want: func(x, y int) uint16 {
				return 128 + uint16((y/8)*2+x/8+1)
			},
		},
		{
			name:  "clamped with stuffed bytes",
			width: 8, height: 8,
			dc:   []int32{2047},
			opts: jpegtest.Options{Quant: []*[64]int32{q8}, Huffman: true},
			want: func(x, y int) uint16 { return 255 },
		},
		{
			name:  "fill before EOI",
			width: 8, height: 8,
			dc:   []int32{-3},
			opts: jpegtest.Options{Quant: []*[64]int32{q8}, Huffman: true, Fill: 3},
			want: func(x, y int) uint16 { return 125 },
		},
		{
			name:  "12-bit",
			width: 8, height: 8,
			dc:   []int32{100},
			opts: jpegtest.Options{Precision: 12, Quant: []*[64]int32{q8}, Huffman: true},
			want: func(x, y int) uint16 { return 2148 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := jpegtest.Encode(tt.width, tt.height, [][]int32{tt.dc}, tt.opts)
			f, err := Decode(data, nil)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if f.Width != tt.width || f.Height != tt.height || f.Components != 1 {
				t.Fatalf("got %dx%dx%d, want %dx%dx1", f.Width, f.Height, f.Components, tt.width, tt.height)
			}
			checkPlane(t, f, 0, tt.want)
		})
	}
}

func TestStuffedStream(t *testing.T) {
	data := jpegtest.Encode(8, 8, [][]int32{{2047}}, jpegtest.Options{Quant: []*[64]int32{flatQuant(8)}, Huffman: true})
	if !bytes.Contains(data, []byte{0xFF, 0x00}) {
		t.Fatal("expected a stuffed 0xFF in the entropy-coded data")
	}
}

func TestDecodeWithPresetTables(t *testing.T) {
	data := jpegtest.Encode(8, 8, [][]int32{{1}}, jpegtest.Options{})

	if _, err := Decode(data, nil); !errors.Is(err, common.ErrMissingTable) {
		t.Fatalf("got %v, want ErrMissingTable", err)
	}

	// Q1 scales the standard luminance table by 1, so q[0] = 16
	f, err := Decode(data, DefaultTables(1, 8))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	checkPlane(t, f, 0, func(x, y int) uint16 { return 130 })
}

func TestStreamTablesOverridePresets(t *testing.T) {
	data := jpegtest.Encode(8, 8, [][]int32{{1}}, jpegtest.Options{Quant: []*[64]int32{flatQuant(8)}})

	f, err := Decode(data, DefaultTables(1, 8))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	checkPlane(t, f, 0, func(x, y int) uint16 { return 129 })
}

func TestDecodeThreeComponents(t *testing.T) {
	q8 := flatQuant(8)

	t.Run("RGB ids", func(t *testing.T) {
		data := jpegtest.Encode(8, 8, [][]int32{{10}, {20}, {-30}}, jpegtest.Options{
			Quant:   []*[64]int32{q8, q8},
			Huffman: true,
			IDs:     []byte{'R', 'G', 'B'},
		})
		f, err := Decode(data, nil)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for c, want := range []uint16{138, 148, 98} {
			checkPlane(t, f, c, func(x, y int) uint16 { return want })
		}
	})

	t.Run("YCbCr neutral", func(t *testing.T) {
		data := jpegtest.Encode(8, 8, [][]int32{{40}, {0}, {0}}, jpegtest.Options{
			Quant:   []*[64]int32{q8, q8},
			Huffman: true,
		})
		f, err := Decode(data, nil)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for c := 0; c < 3; c++ {
			checkPlane(t, f, c, func(x, y int) uint16 { return 168 })
		}
	})

	t.Run("Adobe RGB transform", func(t *testing.T) {
		data := jpegtest.Encode(8, 8, [][]int32{{10}, {20}, {-30}}, jpegtest.Options{
			Quant:     []*[64]int32{q8, q8},
			Huffman:   true,
			APP14:     true,
			Transform: 0,
		})
		f, err := Decode(data, nil)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for c, want := range []uint16{138, 148, 98} {
			checkPlane(t, f, c, func(x, y int) uint16 { return want })
		}
	})

	t.Run("Adobe YCbCr over RGB ids", func(t *testing.T) {
		data := jpegtest.Encode(8, 8, [][]int32{{40}, {0}, {0}}, jpegtest.Options{
			Quant:     []*[64]int32{q8, q8},
			Huffman:   true,
			IDs:       []byte{'R', 'G', 'B'},
			APP14:     true,
			Transform: 1,
		})
		f, err := Decode(data, nil)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for c := 0; c < 3; c++ {
			checkPlane(t, f, c, func(x, y int) uint16 { return 168 })
		}
	})

	t.Run("separate scans", func(t *testing.T) {
		data := jpegtest.Encode(16, 8, [][]int32{{10, 12}, {20, 22}, {-30, -28}}, jpegtest.Options{
			Quant:         []*[64]int32{q8, q8},
			Huffman:       true,
			IDs:           []byte{'R', 'G', 'B'},
			Restart:       1,
			SeparateScans: true,
		})
		if got := bytes.Count(data, []byte{0xFF, 0xDA}); got != 3 {
			t.Fatalf("got %d scans, want 3", got)
		}
		f, err := Decode(data, nil)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for c, want := range []uint16{138, 148, 98} {
			checkPlane(t, f, c, func(x, y int) uint16 {
				if x >= 8 {
					return want + 2
				}
				return want
			})
		}
	})
}

func TestDecodeRejects(t *testing.T) {
	base := jpegtest.Encode(8, 8, [][]int32{{0}}, jpegtest.Options{Quant: []*[64]int32{flatQuant(8)}, Huffman: true})
	twelve := jpegtest.Encode(8, 8, [][]int32{{0}}, jpegtest.Options{Precision: 12, Quant: []*[64]int32{flatQuant(8)}, Huffman: true})

	replaceSOF := func(data []byte, from, to byte) []byte {
		out := append([]byte(nil), data...)
		i := bytes.Index(out, []byte{0xFF, from})
		out[i+1] = to
		return out
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"no SOI", base[2:], common.ErrInvalidSOI},
		{"progressive", replaceSOF(base, 0xC0, 0xC2), common.ErrUnsupportedFormat},
		{"12-bit baseline", replaceSOF(twelve, 0xC1, 0xC0), common.ErrInvalidPrecision},
		{"truncated header", base[:20], common.ErrUnexpectedEOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.data, nil); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
