package nitf

import (
	"encoding/binary"
	"image"
)

// Interleave is the sample layout of a CacheBlock
type Interleave int

const (
	// BandSequential stores one full plane per band
	BandSequential Interleave = iota
	// PixelInterleaved stores all bands of a pixel together
	PixelInterleaved
	// RowInterleaved stores one row of each band in turn
	RowInterleaved
)

// Status summarizes how many samples of a block or tile carry data
type Status int

const (
	// StatusEmpty means nothing was composited
	StatusEmpty Status = iota
	// StatusNull means every sample equals its band null
	StatusNull
	// StatusPartial means some samples are null
	StatusPartial
	// StatusFull means no sample is null
	StatusFull
)

// String returns the name of the status
func (s Status) String() string {
	switch s {
	case StatusNull:
		return "null"
	case StatusPartial:
		return "partial"
	case StatusFull:
		return "full"
	default:
		return "empty"
	}
}

// CacheBlock holds one decoded block (or one strip of a single block
// image). Once handed to a TileCache it must not be modified.
type CacheBlock struct {
	Origin      image.Point
	Width       int
	Height      int
	Bands       int
	SampleBytes int
	Interleave  Interleave
	Nulls       []uint32
	Status      Status
	Pix         []byte // Host byte order after decoding
}

func newCacheBlock(size image.Point, bands, sampleBytes int, il Interleave, nulls []uint32) *CacheBlock {
	return &CacheBlock{
		Width:       size.X,
		Height:      size.Y,
		Bands:       bands,
		SampleBytes: sampleBytes,
		Interleave:  il,
		Nulls:       nulls,
		Pix:         make([]byte, size.X*size.Y*bands*sampleBytes),
	}
}

// Rect returns the block's extent in image coordinates
func (b *CacheBlock) Rect() image.Rectangle {
	return image.Rectangle{Min: b.Origin, Max: b.Origin.Add(image.Pt(b.Width, b.Height))}
}

// offset returns the byte offset of a sample at block-local (x, y)
func (b *CacheBlock) offset(band, x, y int) int {
	var i int
	switch b.Interleave {
	case PixelInterleaved:
		i = (y*b.Width+x)*b.Bands + band
	case RowInterleaved:
		i = (y*b.Bands+band)*b.Width + x
	default:
		i = (band*b.Height+y)*b.Width + x
	}
	return i * b.SampleBytes
}

// plane returns the samples of one band of a band sequential block
func (b *CacheBlock) plane(band int) []byte {
	n := b.Width * b.Height * b.SampleBytes
	return b.Pix[band*n : (band+1)*n]
}

// At returns the sample of band at image coordinates (x, y)
func (b *CacheBlock) At(band, x, y int) uint32 {
	o := b.offset(band, x-b.Origin.X, y-b.Origin.Y)
	return getSample(b.Pix[o:], b.SampleBytes, binary.NativeEndian)
}

// fill sets every sample to its band null, written in order
func (b *CacheBlock) fill(order binary.ByteOrder) {
	for band := 0; band < b.Bands; band++ {
		null := b.Nulls[band]
		for y := 0; y < b.Height; y++ {
			for x := 0; x < b.Width; x++ {
				putSample(b.Pix[b.offset(band, x, y):], b.SampleBytes, order, null)
			}
		}
	}
}

// updateStatus classifies the samples inside valid
func (b *CacheBlock) updateStatus(valid image.Rectangle) {
	r := b.Rect().Intersect(valid)
	if r.Empty() {
		b.Status = StatusEmpty
		return
	}
	nulls, total := 0, 0
	for band := 0; band < b.Bands; band++ {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if b.At(band, x, y) == b.Nulls[band] {
					nulls++
				}
				total++
			}
		}
	}
	b.Status = statusOf(nulls, total)
}

func statusOf(nulls, total int) Status {
	switch {
	case total == 0:
		return StatusEmpty
	case nulls == total:
		return StatusNull
	case nulls == 0:
		return StatusFull
	default:
		return StatusPartial
	}
}

func getSample(p []byte, size int, order binary.ByteOrder) uint32 {
	switch size {
	case 1:
		return uint32(p[0])
	case 2:
		return uint32(order.Uint16(p))
	default:
		return order.Uint32(p)
	}
}

func putSample(p []byte, size int, order binary.ByteOrder, v uint32) {
	switch size {
	case 1:
		p[0] = byte(v)
	case 2:
		order.PutUint16(p, uint16(v))
	default:
		order.PutUint32(p, v)
	}
}
