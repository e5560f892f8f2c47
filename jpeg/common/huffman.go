package common

// HuffmanTable represents a Huffman coding table
type HuffmanTable struct {
	// Number of codes of each length (1-16 bits)
	Bits [16]int
	// Values for each code, in order of code length
	Values []byte
	// Canonical decoding tables (JPEG Annex F.2.2.3)
	minCode [16]int32
	maxCode [16]int32
	valPtr  [16]int32
	// Lookup table for codes up to 8 bits: (nbits << 8) | value, -1 if longer
	lookup [256]int16
}

// Build assigns canonical codes and builds the decoding tables
func (h *HuffmanTable) Build() error {
	total := 0
	for _, n := range h.Bits {
		total += n
	}
	if total > 256 || total > len(h.Values) {
		return ErrInvalidDHT
	}

	for i := range h.lookup {
		h.lookup[i] = -1
	}

	code := int32(0)
	k := 0
	for l := 0; l < 16; l++ {
		n := h.Bits[l]
		if n == 0 {
			h.maxCode[l] = -1
			code <<= 1
			continue
		}
		if code+int32(n) > int32(1)<<uint(l+1) {
			return ErrInvalidDHT
		}

		h.valPtr[l] = int32(k)
		h.minCode[l] = code

		if l < 8 {
			shift := uint(7 - l)
			for i := 0; i < n; i++ {
				base := int(code+int32(i)) << shift
				entry := int16((l+1)<<8 | int(h.Values[k+i]))
				for j := 0; j < 1<<shift; j++ {
					h.lookup[base+j] = entry
				}
			}
		}

		code += int32(n)
		k += n
		h.maxCode[l] = code - 1
		code <<= 1
	}

	return nil
}

// BitReader reads entropy-coded scan data, removing stuffed zero bytes.
// Past the end of the segment it feeds zero bits, as decoders do for
// truncated data.
type BitReader struct {
	data      []byte
	pos       int
	acc       uint32
	nBits     int
	marker    uint16 // Marker that stopped the bit feed, 0 if none yet
	markerEnd int    // Offset just past that marker
}

// NewBitReader creates a bit reader over the scan data starting at data[0]
func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

func (r *BitReader) fill() {
	for r.nBits <= 24 {
		var b byte
		if r.marker == 0 && r.pos < len(r.data) {
			b = r.data[r.pos]
			if b == MarkerPrefix {
				if r.pos+1 < len(r.data) && r.data[r.pos+1] == CodeStuff {
					r.pos += 2
				} else {
					r.findMarker()
					b = 0
				}
			} else {
				r.pos++
			}
		}
		r.acc = r.acc<<8 | uint32(b)
		r.nBits += 8
	}
}

// findMarker records the marker that starts at r.pos, skipping fill bytes
func (r *BitReader) findMarker() {
	j := r.pos
	for j < len(r.data) && r.data[j] == MarkerPrefix {
		j++
	}
	if j >= len(r.data) {
		r.marker = MarkerEOI
		r.markerEnd = len(r.data)
		return
	}
	r.marker = uint16(0xFF00) | uint16(r.data[j])
	r.markerEnd = j + 1
}

// Decode decodes the next Huffman symbol
func (r *BitReader) Decode(table *HuffmanTable) (byte, error) {
	if r.nBits < 16 {
		r.fill()
	}

	peek := (r.acc >> uint(r.nBits-8)) & 0xFF
	if entry := table.lookup[peek]; entry >= 0 {
		r.nBits -= int(entry >> 8)
		return byte(entry), nil
	}

	code := int32(0)
	for l := 0; l < 16; l++ {
		code = code<<1 | int32((r.acc>>uint(r.nBits-1-l))&1)
		if code <= table.maxCode[l] {
			r.nBits -= l + 1
			idx := table.valPtr[l] + code - table.minCode[l]
			if int(idx) >= len(table.Values) {
				return 0, ErrHuffmanDecode
			}
			return table.Values[idx], nil
		}
	}

	return 0, ErrHuffmanDecode
}

// Receive reads n raw bits (n <= 16)
func (r *BitReader) Receive(n int) int {
	if n == 0 {
		return 0
	}
	if r.nBits < n {
		r.fill()
	}
	r.nBits -= n
	return int((r.acc >> uint(r.nBits)) & (1<<uint(n) - 1))
}

// ReceiveExtend reads an ssss-bit magnitude and sign-extends it.
// This combines RECEIVE and EXTEND operations.
func (r *BitReader) ReceiveExtend(ssss int) int {
	if ssss == 0 {
		return 0
	}
	v := r.Receive(ssss)
	if v < 1<<uint(ssss-1) {
		v += (-1 << uint(ssss)) + 1
	}
	return v
}

// Restart discards buffered bits and consumes the expected RSTn marker
func (r *BitReader) Restart() error {
	r.acc, r.nBits = 0, 0
	if r.marker == 0 {
		if r.pos >= len(r.data) || r.data[r.pos] != MarkerPrefix {
			return ErrInvalidData
		}
		r.findMarker()
	}
	if !IsRST(r.marker) {
		return ErrInvalidData
	}
	r.pos = r.markerEnd
	r.marker = 0
	return nil
}

// MarkerOffset returns the offset of the first marker at or after the
// read position that ends the entropy-coded data (RSTn and stuffing excluded)
func (r *BitReader) MarkerOffset() int {
	i := r.pos
	for i+1 < len(r.data) {
		if r.data[i] != MarkerPrefix {
			i++
			continue
		}
		j := i + 1
		for j < len(r.data) && r.data[j] == MarkerPrefix {
			j++
		}
		if j >= len(r.data) {
			break
		}
		next := r.data[j]
		if next == CodeStuff || IsRST(uint16(0xFF00)|uint16(next)) {
			i = j + 1
			continue
		}
		return i
	}
	return len(r.data)
}
