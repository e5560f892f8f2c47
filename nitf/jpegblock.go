package nitf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cocosip/go-nitf-codec/jpeg/baseline"
	"github.com/cocosip/go-nitf-codec/jpeg/common"
)

// blockExtent locates one JPEG stream in the file
type blockExtent struct {
	Offset int64
	Length int64
}

// blockOffsetTable indexes the JPEG stream of every block. It is built by
// the first successful call to get. A format error is kept until the
// segment is reopened; i/o errors are returned and the next call scans
// again.
type blockOffsetTable struct {
	extents []blockExtent // Zero Length for masked out blocks
	err     error
	built   bool
}

func (t *blockOffsetTable) get(build func() ([]blockExtent, error)) ([]blockExtent, error) {
	if !t.built {
		extents, err := build()
		if err != nil && !errors.Is(err, ErrFormat) {
			return nil, err
		}
		t.extents, t.err, t.built = extents, err, true
	}
	return t.extents, t.err
}

// scanJPEGBlocks finds the start and end markers of expected consecutive
// JPEG streams beginning at start
func scanJPEGBlocks(r io.ReadSeeker, start int64, expected int) ([]blockExtent, error) {
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to %d: %w", ErrIO, start, err)
	}
	br := bufio.NewReaderSize(r, 64<<10)

	var head [2]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return nil, fmt.Errorf("%w: read at %d: %w", ErrIO, start, err)
	}
	if head[0] != common.MarkerPrefix || head[1] != common.CodeSOI {
		return nil, fmt.Errorf("%w: no start of image at offset %d", ErrBlockScan, start)
	}

	extents := []blockExtent{{Offset: start}}
	closed := 0
	pos := start + 2 // Offset of the next byte

scan:
	for closed < expected {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: read at %d: %w", ErrIO, pos, err)
		}
		pos++
		if b != common.MarkerPrefix {
			continue
		}

		// Skip fill bytes
		for b == common.MarkerPrefix {
			b, err = br.ReadByte()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break scan
				}
				return nil, fmt.Errorf("%w: read at %d: %w", ErrIO, pos, err)
			}
			pos++
		}

		switch b {
		case common.CodeSOI:
			if len(extents) == expected {
				return nil, fmt.Errorf("%w: more than %d blocks", ErrBlockScan, expected)
			}
			extents = append(extents, blockExtent{Offset: pos - 2})
		case common.CodeEOI:
			if closed < len(extents) {
				extents[closed].Length = pos - extents[closed].Offset
				closed++
			}
		}
	}

	if len(extents) != expected || closed != expected {
		return nil, fmt.Errorf("%w: found %d blocks (%d complete), want %d", ErrBlockScan, len(extents), closed, expected)
	}
	return extents, nil
}

// buildJPEGIndex scans the segment and assigns a stream to every block.
// Masked segments only store present blocks, matched by mask offset.
func (s *Segment) buildJPEGIndex() ([]blockExtent, error) {
	total := s.desc.blockCount()
	m := s.desc.Mask
	if m == nil {
		extents, err := scanJPEGBlocks(s.src, s.desc.DataOffset, total)
		if err != nil {
			return nil, err
		}
		s.log.Debug("jpeg block index built", "blocks", len(extents))
		return extents, nil
	}

	var offsets []int64
	for i := 0; i < total; i++ {
		if rel, ok := m.blockOffset(i, 0); ok {
			offsets = append(offsets, s.desc.DataOffset+int64(rel))
		}
	}
	if len(offsets) == 0 {
		return make([]blockExtent, total), nil
	}
	sorted := append([]int64(nil), offsets...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	found, err := scanJPEGBlocks(s.src, sorted[0], len(offsets))
	if err != nil {
		return nil, err
	}
	byOffset := make(map[int64]blockExtent, len(found))
	for _, e := range found {
		byOffset[e.Offset] = e
	}

	extents := make([]blockExtent, total)
	for i := 0; i < total; i++ {
		rel, ok := m.blockOffset(i, 0)
		if !ok {
			continue
		}
		e, ok := byOffset[s.desc.DataOffset+int64(rel)]
		if !ok {
			return nil, fmt.Errorf("%w: no stream at mask offset %d of block %d", ErrBlockScan, rel, i)
		}
		extents[i] = e
	}
	s.log.Debug("jpeg block index built", "blocks", len(found), "masked", total-len(found))
	return extents, nil
}

// rateLevel parses a COMRAT of the form "00.n" into the default
// quantization level n, or 0 when the rate names no default tables
func rateLevel(comrat string) int {
	c := strings.TrimSpace(comrat)
	if len(c) != 4 || !strings.HasPrefix(c, "00.") {
		return 0
	}
	n := int(c[3] - '0')
	if n < 1 || n > common.MaxQualityLevel {
		return 0
	}
	return n
}

// decodeJPEG decodes one block stream into the band planes of b, writing
// samples in the segment byte order
func (s *Segment) decodeJPEG(b *CacheBlock, data []byte, index int) error {
	f, err := baseline.Decode(data, s.presets)
	if err != nil {
		return fmt.Errorf("%w: block %d: %w", ErrBlockDecode, index, err)
	}
	if f.Components != b.Bands {
		return fmt.Errorf("%w: block %d has %d components, want %d", ErrBlockDecode, index, f.Components, b.Bands)
	}
	if (f.Precision == 12) != (b.SampleBytes == 2) {
		return fmt.Errorf("%w: block %d is %d-bit, want %d-bit samples", ErrBlockDecode, index, f.Precision, s.desc.BitsPerPixel)
	}

	w, h := min(f.Width, b.Width), min(f.Height, b.Height)
	for band := 0; band < b.Bands; band++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				v := f.Pix[(y*f.Width+x)*f.Components+band]
				putSample(b.Pix[b.offset(band, x, y):], b.SampleBytes, s.order, uint32(v))
			}
		}
	}
	return nil
}
