package common

import "encoding/binary"

// Reader walks the marker segments of an in-memory JPEG stream
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new JPEG reader over data
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the current read position
func (r *Reader) Offset() int {
	return r.pos
}

// Seek moves the read position, clamped to the data
func (r *Reader) Seek(pos int) {
	switch {
	case pos < 0:
		r.pos = 0
	case pos > len(r.data):
		r.pos = len(r.data)
	default:
		r.pos = pos
	}
}

// Remaining returns the unread bytes
func (r *Reader) Remaining() []byte {
	return r.data[r.pos:]
}

// ReadByte reads a single byte
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadUint16 reads a 16-bit big-endian value
func (r *Reader) ReadUint16() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, ErrUnexpectedEOF
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadMarker reads the next JPEG marker, skipping fill bytes
func (r *Reader) ReadMarker() (uint16, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	if b != MarkerPrefix {
		return 0, ErrInvalidMarker
	}

	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != MarkerPrefix {
			break
		}
	}

	// 0x00 is a stuffed byte (escaped 0xFF in data), not a marker
	if b == CodeStuff {
		return 0, ErrInvalidMarker
	}

	return uint16(0xFF00) | uint16(b), nil
}

// ReadSegment reads a segment with its length and returns its payload.
// The payload aliases the reader's data.
func (r *Reader) ReadSegment() ([]byte, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}

	// Length includes itself (2 bytes)
	if length < 2 {
		return nil, ErrInvalidData
	}
	n := int(length) - 2
	if r.pos+n > len(r.data) {
		return nil, ErrUnexpectedEOF
	}
	seg := r.data[r.pos : r.pos+n]
	r.pos += n
	return seg, nil
}
