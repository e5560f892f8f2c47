package nitf

import (
	"encoding/binary"
	"image"
)

// Tile is a caller owned rectangle of band sequential samples in host
// byte order. It may span any number of blocks.
type Tile struct {
	Rect        image.Rectangle
	Bands       int
	SampleBytes int
	Nulls       []uint32
	Status      Status
	Pix         []byte
}

// NewTile allocates a blank tile. An empty rect, including one with Min
// past Max, gives a tile without samples.
func NewTile(rect image.Rectangle, bands, sampleBytes int, nulls []uint32) *Tile {
	n := 0
	if !rect.Empty() {
		n = rect.Dx() * rect.Dy() * bands * sampleBytes
	}
	t := &Tile{
		Rect:        rect,
		Bands:       bands,
		SampleBytes: sampleBytes,
		Nulls:       nulls,
		Pix:         make([]byte, n),
	}
	t.Blank()
	return t
}

func (t *Tile) offset(band, x, y int) int {
	w, h := t.Rect.Dx(), t.Rect.Dy()
	return ((band*h+y-t.Rect.Min.Y)*w + x - t.Rect.Min.X) * t.SampleBytes
}

// At returns the sample of band at image coordinates (x, y)
func (t *Tile) At(band, x, y int) uint32 {
	return getSample(t.Pix[t.offset(band, x, y):], t.SampleBytes, binary.NativeEndian)
}

// Set stores the sample of band at image coordinates (x, y)
func (t *Tile) Set(band, x, y int, v uint32) {
	putSample(t.Pix[t.offset(band, x, y):], t.SampleBytes, binary.NativeEndian, v)
}

// Blank sets every sample to its band null and the status to empty
func (t *Tile) Blank() {
	for band := 0; band < t.Bands; band++ {
		for y := t.Rect.Min.Y; y < t.Rect.Max.Y; y++ {
			for x := t.Rect.Min.X; x < t.Rect.Max.X; x++ {
				t.Set(band, x, y, t.Nulls[band])
			}
		}
	}
	t.Status = StatusEmpty
}

// composite copies the part of b that lies inside both the tile and valid
func (t *Tile) composite(b *CacheBlock, valid image.Rectangle) {
	r := b.Rect().Intersect(t.Rect).Intersect(valid)
	if r.Empty() {
		return
	}
	sb := t.SampleBytes

	if b.Interleave == BandSequential {
		n := r.Dx() * sb
		for band := 0; band < t.Bands; band++ {
			for y := r.Min.Y; y < r.Max.Y; y++ {
				src := b.offset(band, r.Min.X-b.Origin.X, y-b.Origin.Y)
				dst := t.offset(band, r.Min.X, y)
				copy(t.Pix[dst:dst+n], b.Pix[src:src+n])
			}
		}
		return
	}

	// De-interleave pixel and row interleaved blocks
	for band := 0; band < t.Bands; band++ {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				src := b.offset(band, x-b.Origin.X, y-b.Origin.Y)
				dst := t.offset(band, x, y)
				copy(t.Pix[dst:dst+sb], b.Pix[src:src+sb])
			}
		}
	}
}

// updateStatus classifies the tile's samples against the band nulls
func (t *Tile) updateStatus() {
	nulls, total := 0, 0
	for band := 0; band < t.Bands; band++ {
		for y := t.Rect.Min.Y; y < t.Rect.Max.Y; y++ {
			for x := t.Rect.Min.X; x < t.Rect.Max.X; x++ {
				if t.At(band, x, y) == t.Nulls[band] {
					nulls++
				}
				total++
			}
		}
	}
	t.Status = statusOf(nulls, total)
}
