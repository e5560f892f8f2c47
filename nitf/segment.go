// Package nitf decodes the blocks of one NITF image segment into tiles.
//
// A Segment is opened from an already parsed Descriptor and a byte source.
// GetTile computes the blocks that intersect a rectangle, locates each one
// (honoring block masks and JPEG stream boundaries), reads and decodes it,
// normalizes its samples, and composites it into a band sequential Tile.
// Decoded blocks can be shared across calls and segments through a
// TileCache.
//
// A Segment is not safe for concurrent use; open one per goroutine.
package nitf

import (
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"log/slog"

	"golang.org/x/exp/mmap"

	"github.com/cocosip/go-nitf-codec/codec"
	"github.com/cocosip/go-nitf-codec/jpeg/baseline"
	"github.com/cocosip/go-nitf-codec/jpeg/common"
	"github.com/cocosip/go-nitf-codec/tilecache"
)

// Stats counts the work done by a segment
type Stats struct {
	Reads        int // Stream reads of block data
	Decodes      int // Blocks decoded
	CacheHits    int // Blocks served by the cache
	AbsentBlocks int // Masked out blocks or bands skipped
}

// decodeContext owns the buffers reused between blocks. The block moves
// to the cache on insert and a new one is allocated for the next miss.
type decodeContext struct {
	scratch []byte
	block   *CacheBlock
}

func (c *decodeContext) buffer(n int) []byte {
	if cap(c.scratch) < n {
		c.scratch = make([]byte, n)
	}
	return c.scratch[:n]
}

func (c *decodeContext) acquire(alloc func() *CacheBlock) *CacheBlock {
	if c.block == nil {
		c.block = alloc()
	}
	return c.block
}

func (c *decodeContext) release() {
	c.block = nil
}

// Segment is one open image segment
type Segment struct {
	desc   *Descriptor
	src    io.ReadSeeker
	closer io.Closer
	log    *slog.Logger

	layout      Layout
	grid        blockGrid
	strides     strides
	strips      bool
	bands       int
	sampleBytes int
	packed      bool // Stored samples do not fill their containers
	interleave  Interleave
	order       binary.ByteOrder
	nulls       []uint32
	presets     *baseline.Tables

	jpeg blockOffsetTable

	cache  TileCache
	handle tilecache.Handle

	ctx    decodeContext
	stats  Stats
	closed bool
}

// Open prepares a segment for tile reads. It classifies the layout and
// checks the descriptor; no block data is read. The caller keeps
// ownership of src.
func Open(desc *Descriptor, src io.ReadSeeker, opts *Options) (*Segment, error) {
	return open(desc, src, nil, opts)
}

// OpenFile memory-maps the container file at path and opens the segment
// described by desc. Close unmaps the file.
func OpenFile(path string, desc *Descriptor, opts *Options) (*Segment, error) {
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	s, err := open(desc, io.NewSectionReader(ra, 0, int64(ra.Len())), ra, opts)
	if err != nil {
		ra.Close()
		return nil, err
	}
	return s, nil
}

func open(desc *Descriptor, src io.ReadSeeker, closer io.Closer, opts *Options) (*Segment, error) {
	o, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	if desc == nil || src == nil {
		return nil, fmt.Errorf("%w: nil descriptor or source", ErrConfig)
	}
	if err := desc.validate(); err != nil {
		return nil, err
	}

	info, err := codec.Resolve(desc.Compression, desc.ColorTable != nil && desc.Bands == 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if info.Masked && desc.Mask == nil {
		return nil, fmt.Errorf("%w: IC=%s needs a block mask", ErrMissingTable, info.Code)
	}
	mode := Classify(info.Kind, desc.Interleave, desc.blockCount())
	if mode == ReadModeUnknown {
		return nil, fmt.Errorf("%w: IC=%s IMODE=%q with %d blocks", ErrUnknownReadMode, info.Code, desc.Interleave, desc.blockCount())
	}
	sampleBytes, err := codec.SampleBytes(info.Kind, desc.BitsPerPixel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	s := &Segment{
		desc:        desc,
		src:         src,
		closer:      closer,
		log:         o.Logger,
		layout:      Layout{Mode: mode, Codec: info.Kind},
		bands:       desc.Bands,
		sampleBytes: sampleBytes,
		interleave:  BandSequential,
		order:       desc.byteOrder(),
		cache:       o.Cache,
	}

	bs := desc.blockSize()
	switch info.Kind {
	case codec.None:
		s.packed = desc.BitsPerPixel != 8*sampleBytes
		s.interleave = mode.interleave()
	case codec.ColorTable:
		if desc.ColorTable.Bands() < 3 {
			return nil, fmt.Errorf("%w: color table has %d bands, want at least 3", ErrBandMismatch, desc.ColorTable.Bands())
		}
		s.bands = desc.ColorTable.Bands()
	case codec.VQ, codec.VQTransparent:
		t := desc.VQTable
		if t == nil {
			return nil, fmt.Errorf("%w: IC=%s needs a compression table", ErrMissingTable, info.Code)
		}
		if err := t.validate(); err != nil {
			return nil, err
		}
		if bs.X%t.Cols != 0 || bs.Y%t.Rows != 0 {
			return nil, fmt.Errorf("%w: %dx%d blocks are not a multiple of the %dx%d kernel", ErrInvalidGeometry, bs.X, bs.Y, t.Cols, t.Rows)
		}
		if desc.ColorTable != nil {
			s.bands = desc.ColorTable.Bands()
		}
	case codec.JPEG:
		if desc.Bands > 4 {
			return nil, fmt.Errorf("%w: %d bands in a JPEG segment", ErrBandMismatch, desc.Bands)
		}
		s.presets = baseline.DefaultTables(rateLevel(desc.CompressionRate), desc.BitsPerPixel)
	}

	s.nulls = make([]uint32, s.bands)
	for b := range s.nulls {
		s.nulls[b] = desc.nullValue(b)
	}

	s.grid = blockGrid{
		bounds:    image.Rect(0, 0, desc.Cols, desc.Rows),
		blockSize: bs,
		perRow:    desc.BlocksPerRow,
		perCol:    desc.BlocksPerColumn,
	}
	if o.StripRows > 0 && o.StripRows < bs.Y && mode.singleBlock() && desc.Mask == nil &&
		(info.Kind == codec.None || info.Kind == codec.ColorTable) && desc.BitsPerPixel%8 == 0 {
		s.strips = true
		s.grid.blockSize.Y = o.StripRows
		s.grid.perCol = common.DivCeil(bs.Y, o.StripRows)
	}
	s.strides = s.computeStrides()

	if s.cache != nil {
		s.handle = s.cache.NewCache(s.grid.bounds, s.grid.blockSize)
	}

	s.log.Debug("segment opened",
		"mode", mode, "codec", info.Kind,
		"blocks", fmt.Sprintf("%dx%d", s.grid.perRow, s.grid.perCol),
		"blockSize", s.grid.blockSize, "bands", s.bands, "sampleBytes", s.sampleBytes)
	return s, nil
}

// Layout returns the segment's classification
func (s *Segment) Layout() Layout {
	return s.layout
}

// Bounds returns the valid image rectangle
func (s *Segment) Bounds() image.Rectangle {
	return s.grid.bounds
}

// Bands returns the number of bands in decoded tiles
func (s *Segment) Bands() int {
	return s.bands
}

// SampleBytes returns the size of one decoded sample
func (s *Segment) SampleBytes() int {
	return s.sampleBytes
}

// BlockSize returns the extent of one cache block
func (s *Segment) BlockSize() image.Point {
	return s.grid.blockSize
}

// Nulls returns the null sample of each band
func (s *Segment) Nulls() []uint32 {
	return append([]uint32(nil), s.nulls...)
}

// Stats returns the work counters
func (s *Segment) Stats() Stats {
	return s.stats
}

// NewTile allocates a blank tile matching the segment's bands and samples
func (s *Segment) NewTile(rect image.Rectangle) *Tile {
	return NewTile(rect, s.bands, s.sampleBytes, s.Nulls())
}

// GetTile decodes rect at a resolution level. Only level 0 exists; other
// levels and rectangles outside the image return a blank tile with
// StatusEmpty. On error the returned tile is blank.
func (s *Segment) GetTile(rect image.Rectangle, level int) (*Tile, error) {
	t := s.NewTile(rect)
	return t, s.FillTile(t, level)
}

// FillTile decodes into a caller owned tile, which is blanked first. On
// error the tile is left blank.
func (s *Segment) FillTile(t *Tile, level int) error {
	if s.closed {
		return ErrClosed
	}
	if t.Bands != s.bands || t.SampleBytes != s.sampleBytes {
		return fmt.Errorf("%w: tile has %d bands of %d bytes, want %d of %d",
			ErrBandMismatch, t.Bands, t.SampleBytes, s.bands, s.sampleBytes)
	}

	t.Blank()
	if level != 0 {
		return nil
	}
	r := t.Rect.Intersect(s.grid.bounds)
	if r.Empty() {
		return nil
	}

	x0, y0, x1, y1 := s.grid.span(r)
	for by := y0; by < y1; by++ {
		for bx := x0; bx < x1; bx++ {
			b, err := s.block(bx, by)
			if err != nil {
				t.Blank()
				return err
			}
			if b != nil {
				t.composite(b, s.grid.bounds)
			}
		}
	}

	t.updateStatus()
	return nil
}

// block returns the decoded block at grid position (bx, by), or nil when
// the mask table marks it absent
func (s *Segment) block(bx, by int) (*CacheBlock, error) {
	origin := s.grid.origin(bx, by)
	if s.cache != nil {
		if b, ok := s.cache.GetTile(s.handle, origin); ok {
			s.stats.CacheHits++
			return b, nil
		}
	}

	b := s.ctx.acquire(s.allocBlock)
	b.Origin = origin
	ok, err := s.decodeBlock(b, s.grid.index(bx, by), by)
	if err != nil || !ok {
		return nil, err
	}

	if s.cache != nil {
		s.cache.AddTile(s.handle, origin, b)
		s.ctx.release()
	}
	return b, nil
}

func (s *Segment) allocBlock() *CacheBlock {
	return newCacheBlock(s.grid.blockSize, s.bands, s.sampleBytes, s.interleave, s.nulls)
}

// decodeBlock runs read, decode and post-processing for one block
func (s *Segment) decodeBlock(b *CacheBlock, index, by int) (bool, error) {
	b.fill(s.order)

	var ok bool
	var err error
	switch s.layout.Codec {
	case codec.JPEG:
		ok, err = s.loadJPEG(b, index)
	case codec.VQ, codec.VQTransparent:
		ok, err = s.loadVQ(b, index)
	case codec.ColorTable:
		ok, err = s.loadColorTable(b, index, by)
	default:
		ok, err = s.loadRaw(b, index, by)
	}
	if err != nil || !ok {
		return false, err
	}
	s.stats.Decodes++

	if needsSwap(s.order, b.SampleBytes) {
		swapSamples(b.Pix, b.SampleBytes)
	}
	if m := s.desc.Mask; m != nil && m.HasPadValue && !s.layout.Codec.IsVQ() {
		for band := 0; band < b.Bands; band++ {
			if m.hasPad(index, band) {
				padToNull(b, band, m.PadValue)
			}
		}
	}

	b.updateStatus(s.grid.bounds)
	s.log.Debug("block decoded", "block", index, "origin", b.Origin, "status", b.Status)
	return true, nil
}

// Close releases the cache region and buffers, and unmaps the file when
// the segment was opened with OpenFile
func (s *Segment) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cache != nil {
		s.cache.DeleteCache(s.handle)
	}
	s.ctx = decodeContext{}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
