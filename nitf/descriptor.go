package nitf

import (
	"encoding/binary"
	"fmt"
	"image"
)

// AbsentOffset marks a block or pad record that is not stored
const AbsentOffset = 0xFFFFFFFF

// Descriptor is the parsed image subheader of one segment. The engine
// only reads it.
type Descriptor struct {
	Rows            int    // NROWS
	Cols            int    // NCOLS
	BlocksPerRow    int    // NBPR
	BlocksPerColumn int    // NBPC
	BlockWidth      int    // NPPBH, 0 for the whole image width
	BlockHeight     int    // NPPBV, 0 for the whole image height
	BitsPerPixel    int    // NBPP
	Bands           int    // NBANDS
	Compression     string // IC
	Interleave      string // IMODE
	CompressionRate string // COMRAT

	// DataOffset is the absolute file offset of the first block (after
	// any mask table)
	DataOffset int64

	// ByteOrder of multi-byte samples; nil means big-endian
	ByteOrder binary.ByteOrder

	Mask       *MaskTable
	ColorTable *ColorTable
	VQTable    *CompressionTable

	// NullValues holds the null sample of each output band; missing
	// entries are 0
	NullValues []uint32
}

// MaskTable is the block mask of a masked (IC=Mx/NM) segment
type MaskTable struct {
	// BlockOffsets holds block offsets relative to DataOffset, one row per
	// band for band sequential data or a single row shared by all bands.
	// AbsentOffset marks a block that is not stored.
	BlockOffsets [][]uint32

	// PadOffsets has the same shape; an entry other than AbsentOffset
	// means the block contains pad pixels
	PadOffsets [][]uint32

	HasPadValue bool
	PadValue    uint32 // TPXCD
}

// blockOffset returns the stored offset of a block for a band
func (m *MaskTable) blockOffset(block, band int) (uint32, bool) {
	row := m.BlockOffsets[0]
	if len(m.BlockOffsets) > 1 {
		row = m.BlockOffsets[band]
	}
	off := row[block]
	return off, off != AbsentOffset
}

// shared reports whether one row of offsets serves every band
func (m *MaskTable) shared() bool {
	return len(m.BlockOffsets) == 1
}

// hasPad reports whether the block carries pad pixels in a band
func (m *MaskTable) hasPad(block, band int) bool {
	if !m.HasPadValue || len(m.PadOffsets) == 0 {
		return false
	}
	row := m.PadOffsets[0]
	if len(m.PadOffsets) > 1 {
		row = m.PadOffsets[band]
	}
	return block < len(row) && row[block] != AbsentOffset
}

// ColorTable is a color lookup table (LUTD) with one entry list per
// output band
type ColorTable struct {
	Entries [][]byte
}

// Bands returns the number of output bands
func (c *ColorTable) Bands() int {
	return len(c.Entries)
}

// CompressionTable is the vector quantization codebook. Each codeword
// expands to a Rows x Cols kernel of indices.
type CompressionTable struct {
	Rows     int
	Cols     int
	CodeBits int // Codeword length in bits, 12 for CADRG/CIB

	// Lookup holds one entry per kernel row, indexed by code*Cols+col
	Lookup [][]byte

	// NullIndex is the index that, filling the whole kernel of the
	// reserved maximum codeword, means no data
	NullIndex byte
}

// transparentCode returns the reserved maximum codeword
func (t *CompressionTable) transparentCode() uint32 {
	return 1<<uint(t.CodeBits) - 1
}

func (t *CompressionTable) validate() error {
	if t.Rows <= 0 || t.Cols <= 0 || t.CodeBits <= 0 || t.CodeBits > 16 {
		return fmt.Errorf("%w: %dx%d kernel with %d-bit codes", ErrInvalidGeometry, t.Rows, t.Cols, t.CodeBits)
	}
	if len(t.Lookup) != t.Rows {
		return fmt.Errorf("%w: %d lookup rows, want %d", ErrMissingTable, len(t.Lookup), t.Rows)
	}
	need := (1 << uint(t.CodeBits)) * t.Cols
	for r, row := range t.Lookup {
		if len(row) < need {
			return fmt.Errorf("%w: lookup row %d has %d entries, want %d", ErrMissingTable, r, len(row), need)
		}
	}
	return nil
}

// blockSize resolves the 0 ("whole dimension") block sizes
func (d *Descriptor) blockSize() image.Point {
	w, h := d.BlockWidth, d.BlockHeight
	if w == 0 {
		w = d.Cols
	}
	if h == 0 {
		h = d.Rows
	}
	return image.Pt(w, h)
}

// blockCount returns the number of blocks in the grid
func (d *Descriptor) blockCount() int {
	return d.BlocksPerRow * d.BlocksPerColumn
}

func (d *Descriptor) byteOrder() binary.ByteOrder {
	if d.ByteOrder == nil {
		return binary.BigEndian
	}
	return d.ByteOrder
}

func (d *Descriptor) nullValue(band int) uint32 {
	if band < len(d.NullValues) {
		return d.NullValues[band]
	}
	return 0
}

func (d *Descriptor) validate() error {
	if d.Rows <= 0 || d.Cols <= 0 || d.Bands <= 0 {
		return fmt.Errorf("%w: %dx%d image with %d bands", ErrInvalidGeometry, d.Cols, d.Rows, d.Bands)
	}
	if d.BlocksPerRow <= 0 || d.BlocksPerColumn <= 0 || d.BlockWidth < 0 || d.BlockHeight < 0 {
		return fmt.Errorf("%w: %dx%d blocks of %dx%d", ErrInvalidGeometry,
			d.BlocksPerRow, d.BlocksPerColumn, d.BlockWidth, d.BlockHeight)
	}
	bs := d.blockSize()
	if bs.X*d.BlocksPerRow < d.Cols || bs.Y*d.BlocksPerColumn < d.Rows {
		return fmt.Errorf("%w: %dx%d blocks of %dx%d do not cover %dx%d", ErrInvalidGeometry,
			d.BlocksPerRow, d.BlocksPerColumn, bs.X, bs.Y, d.Cols, d.Rows)
	}
	if d.DataOffset < 0 {
		return fmt.Errorf("%w: negative data offset", ErrInvalidGeometry)
	}

	if m := d.Mask; m != nil {
		if len(m.BlockOffsets) != 1 && len(m.BlockOffsets) != d.Bands {
			return fmt.Errorf("%w: %d mask rows for %d bands", ErrBandMismatch, len(m.BlockOffsets), d.Bands)
		}
		for b, row := range m.BlockOffsets {
			if len(row) != d.blockCount() {
				return fmt.Errorf("%w: mask row %d has %d entries for %d blocks", ErrInvalidGeometry, b, len(row), d.blockCount())
			}
		}
		if len(m.PadOffsets) > 1 && len(m.PadOffsets) != d.Bands {
			return fmt.Errorf("%w: %d pad rows for %d bands", ErrBandMismatch, len(m.PadOffsets), d.Bands)
		}
	}

	if c := d.ColorTable; c != nil {
		if c.Bands() == 0 {
			return fmt.Errorf("%w: empty color table", ErrMissingTable)
		}
		for b, e := range c.Entries {
			if len(e) == 0 {
				return fmt.Errorf("%w: color table band %d is empty", ErrMissingTable, b)
			}
		}
	}
	return nil
}
