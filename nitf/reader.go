package nitf

import (
	"fmt"
	"io"

	"github.com/cocosip/go-nitf-codec/codec"
)

// readAt fills dst from the stream at offset
func (s *Segment) readAt(offset int64, dst []byte) error {
	if _, err := s.src.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %w", ErrIO, offset, err)
	}
	s.stats.Reads++
	n, err := io.ReadFull(s.src, dst)
	if err != nil {
		return fmt.Errorf("%w: %d of %d bytes at offset %d: %w", ErrShortRead, n, len(dst), offset, err)
	}
	return nil
}

// rawLength returns the bytes to read for one band of block row by, or for
// all bands when the mode reads them together. Rows below the image are
// not read.
func (s *Segment) rawLength(by int) int {
	samples := s.grid.blockSize.X * s.grid.validRows(by)
	if s.layout.Mode.bandsTogether() {
		samples *= s.desc.Bands
	}
	return int(packedBytes(samples, s.desc.BitsPerPixel))
}

// loadRaw reads an uncompressed block. Byte aligned samples are read
// straight into b; packed samples go through the scratch buffer and are
// unpacked into b.
func (s *Segment) loadRaw(b *CacheBlock, index, by int) (bool, error) {
	n := s.rawLength(by)
	together := s.layout.Mode.bandsTogether()
	reads := s.desc.Bands
	if together {
		reads = 1
	}

	present := false
	for band := 0; band < reads; band++ {
		off, ok, err := s.locate(index, band)
		if err != nil {
			return false, err
		}
		if !ok {
			s.absent(index, band)
			continue
		}

		dst := b.Pix
		if !together {
			dst = b.plane(band)
		}
		if s.packed {
			buf := s.ctx.buffer(n)
			if err := s.readAt(off, buf); err != nil {
				return false, err
			}
			unpackBits(dst, buf, s.desc.BitsPerPixel, b.SampleBytes, s.order)
		} else if err := s.readAt(off, dst[:n]); err != nil {
			return false, err
		}
		present = true
	}
	return present, nil
}

// loadColorTable reads one index byte per pixel and expands it
func (s *Segment) loadColorTable(b *CacheBlock, index, by int) (bool, error) {
	off, ok, err := s.locate(index, 0)
	if err != nil {
		return false, err
	}
	if !ok {
		s.absent(index, 0)
		return false, nil
	}
	buf := s.ctx.buffer(s.rawLength(by))
	if err := s.readAt(off, buf); err != nil {
		return false, err
	}
	expandColorTable(b, buf, s.desc.ColorTable)
	return true, nil
}

// loadVQ reads the codewords of a block and expands them
func (s *Segment) loadVQ(b *CacheBlock, index int) (bool, error) {
	off, ok, err := s.locate(index, 0)
	if err != nil {
		return false, err
	}
	if !ok {
		s.absent(index, 0)
		return false, nil
	}
	buf := s.ctx.buffer(int(s.strides.planeBytes))
	if err := s.readAt(off, buf); err != nil {
		return false, err
	}
	decodeVQ(b, buf, s.desc.VQTable, s.desc.ColorTable, s.layout.Codec == codec.VQTransparent)
	return true, nil
}

// loadJPEG reads and decodes the JPEG stream of a block
func (s *Segment) loadJPEG(b *CacheBlock, index int) (bool, error) {
	e, err := s.jpegExtent(index)
	if err != nil {
		return false, err
	}
	if e.Length == 0 {
		s.absent(index, 0)
		return false, nil
	}
	buf := s.ctx.buffer(int(e.Length))
	if err := s.readAt(e.Offset, buf); err != nil {
		return false, err
	}
	if err := s.decodeJPEG(b, buf, index); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Segment) absent(index, band int) {
	s.stats.AbsentBlocks++
	s.log.Debug("absent block skipped", "block", index, "band", band)
}
