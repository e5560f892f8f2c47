package nitf

// strides are the byte distances between stored blocks and bands
type strides struct {
	planeBytes  int64 // One band of one cache block
	blockStride int64
	bandStride  int64
}

// computeStrides derives the strides for the segment's read mode. Single
// block images read in strips step by strip, while their band planes stay
// one full block apart.
func (s *Segment) computeStrides() strides {
	d := s.desc
	bs := s.grid.blockSize
	bands := int64(d.Bands)

	var st strides
	if s.layout.Codec.IsVQ() {
		st.planeBytes = vqPlaneBytes(d.VQTable, bs.X, bs.Y)
	} else {
		st.planeBytes = packedBytes(bs.X*bs.Y, d.BitsPerPixel)
	}

	switch s.layout.Mode {
	case ReadBIBBlock, ReadBIB:
		st.bandStride = st.planeBytes
		st.blockStride = st.planeBytes * bands
		if s.strips {
			full := d.blockSize()
			st.bandStride = packedBytes(full.X*full.Y, d.BitsPerPixel)
			st.blockStride = st.planeBytes
		}
	case ReadBIPBlock, ReadBIRBlock, ReadBIP, ReadBIR:
		st.blockStride = st.planeBytes * bands
	case ReadBSQBlock:
		st.bandStride = int64(s.grid.count()) * st.planeBytes
		st.blockStride = st.planeBytes
	}
	return st
}

func packedBytes(samples, bitsPerPixel int) int64 {
	return (int64(samples)*int64(bitsPerPixel) + 7) / 8
}

// locate returns the absolute offset of one band of a block. ok is false
// when the mask table marks it absent; nothing may be read for it then.
func (s *Segment) locate(index, band int) (offset int64, ok bool, err error) {
	if s.layout.Mode == ReadJPEGBlock {
		e, err := s.jpegExtent(index)
		if err != nil {
			return 0, false, err
		}
		return e.Offset, e.Length > 0, nil
	}

	offset = s.desc.DataOffset
	if m := s.desc.Mask; m != nil {
		rel, ok := m.blockOffset(index, band)
		if !ok {
			return 0, false, nil
		}
		offset += int64(rel)
		if m.shared() {
			offset += int64(band) * s.strides.bandStride
		}
		return offset, true, nil
	}

	return offset + int64(index)*s.strides.blockStride + int64(band)*s.strides.bandStride, true, nil
}

// jpegExtent returns the stream of a block, building the index on first use
func (s *Segment) jpegExtent(index int) (blockExtent, error) {
	extents, err := s.jpeg.get(s.buildJPEGIndex)
	if err != nil {
		return blockExtent{}, err
	}
	return extents[index], nil
}
