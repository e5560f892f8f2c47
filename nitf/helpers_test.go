package nitf

import (
	"bytes"
	"encoding/binary"
	"image"
	"io"
	"testing"
)

// countingReader records every read of block data
type countingReader struct {
	r       *bytes.Reader
	pos     int64
	reads   int
	offsets []int64
}

func newCountingReader(data []byte) *countingReader {
	return &countingReader{r: bytes.NewReader(data)}
}

func (c *countingReader) Seek(offset int64, whence int) (int64, error) {
	p, err := c.r.Seek(offset, whence)
	c.pos = p
	return p, err
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads++
	c.offsets = append(c.offsets, c.pos)
	n, err := c.r.Read(p)
	c.pos += int64(n)
	return n, err
}

// failingSeeker fails every seek
type failingSeeker struct{ io.Reader }

func (failingSeeker) Seek(int64, int) (int64, error) {
	return 0, io.ErrClosedPipe
}

// foreignOrder returns the byte order the host does not use
func foreignOrder() binary.ByteOrder {
	if hostBigEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// layoutFile writes every block of desc in its IMODE layout after
// DataOffset bytes of filler. Samples are byte aligned, 1 or 2 bytes.
func layoutFile(desc *Descriptor, sample func(band, x, y int) uint32) []byte {
	bs := desc.blockSize()
	size := desc.BitsPerPixel / 8
	order := desc.byteOrder()
	out := bytes.Repeat([]byte{0xEE}, int(desc.DataOffset))

	put := func(band, x, y int) {
		var b [2]byte
		if size == 1 {
			b[0] = byte(sample(band, x, y))
		} else {
			order.PutUint16(b[:], uint16(sample(band, x, y)))
		}
		out = append(out, b[:size]...)
	}

	blocks := func(fn func(bx, by int)) {
		for by := 0; by < desc.BlocksPerColumn; by++ {
			for bx := 0; bx < desc.BlocksPerRow; bx++ {
				fn(bx*bs.X, by*bs.Y)
			}
		}
	}

	switch desc.Interleave {
	case "B":
		blocks(func(ox, oy int) {
			for band := 0; band < desc.Bands; band++ {
				for y := 0; y < bs.Y; y++ {
					for x := 0; x < bs.X; x++ {
						put(band, ox+x, oy+y)
					}
				}
			}
		})
	case "P":
		blocks(func(ox, oy int) {
			for y := 0; y < bs.Y; y++ {
				for x := 0; x < bs.X; x++ {
					for band := 0; band < desc.Bands; band++ {
						put(band, ox+x, oy+y)
					}
				}
			}
		})
	case "R":
		blocks(func(ox, oy int) {
			for y := 0; y < bs.Y; y++ {
				for band := 0; band < desc.Bands; band++ {
					for x := 0; x < bs.X; x++ {
						put(band, ox+x, oy+y)
					}
				}
			}
		})
	case "S":
		for band := 0; band < desc.Bands; band++ {
			blocks(func(ox, oy int) {
				for y := 0; y < bs.Y; y++ {
					for x := 0; x < bs.X; x++ {
						put(band, ox+x, oy+y)
					}
				}
			})
		}
	}
	return out
}

// packBits packs values MSB-first in n-bit fields
func packBits(values []uint32, n int) []byte {
	out := make([]byte, (len(values)*n+7)/8)
	pos := 0
	for _, v := range values {
		for i := n - 1; i >= 0; i-- {
			if v>>uint(i)&1 == 1 {
				out[pos>>3] |= 0x80 >> uint(pos&7)
			}
			pos++
		}
	}
	return out
}

// checkTile compares every sample of a tile against want
func checkTile(t *testing.T, tile *Tile, want func(band, x, y int) uint32) {
	t.Helper()
	for band := 0; band < tile.Bands; band++ {
		for y := tile.Rect.Min.Y; y < tile.Rect.Max.Y; y++ {
			for x := tile.Rect.Min.X; x < tile.Rect.Max.X; x++ {
				if got, w := tile.At(band, x, y), want(band, x, y); got != w {
					t.Fatalf("band %d (%d,%d): got %d, want %d", band, x, y, got, w)
				}
			}
		}
	}
}

// inside wraps a sample function with the null for points outside bounds
func inside(bounds image.Rectangle, null uint32, fn func(band, x, y int) uint32) func(band, x, y int) uint32 {
	return func(band, x, y int) uint32 {
		if !image.Pt(x, y).In(bounds) {
			return null
		}
		return fn(band, x, y)
	}
}

// flakySeeker fails its first fail seeks, then behaves
type flakySeeker struct {
	io.ReadSeeker
	fail int
}

func (f *flakySeeker) Seek(offset int64, whence int) (int64, error) {
	if f.fail > 0 {
		f.fail--
		return 0, io.ErrNoProgress
	}
	return f.ReadSeeker.Seek(offset, whence)
}
