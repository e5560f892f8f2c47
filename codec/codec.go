package codec

import "fmt"

// Kind identifies one of the block decompression engines.
// The set is closed: a segment is decoded by exactly one of these.
type Kind int

const (
	// None means the blocks are stored uncompressed
	None Kind = iota
	// VQ is vector quantization without transparency (IC=C4)
	VQ
	// VQTransparent is vector quantization with a transparent kernel (IC=M4)
	VQTransparent
	// ColorTable expands one 8-bit index per pixel through a color lookup table
	ColorTable
	// JPEG is block-wise sequential DCT JPEG, 8 or 12 bits (IC=C3/M3)
	JPEG
)

// String returns a human-readable name
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case VQ:
		return "vq"
	case VQTransparent:
		return "vq-transparent"
	case ColorTable:
		return "color-table"
	case JPEG:
		return "jpeg"
	default:
		return "unknown"
	}
}

// Compressed reports whether raw block bytes must go through a decoder
func (k Kind) Compressed() bool {
	return k != None
}

// IsVQ reports whether the kind is one of the vector quantization variants
func (k Kind) IsVQ() bool {
	return k == VQ || k == VQTransparent
}

// SampleBytes returns the size in bytes of one decoded sample produced by
// the kind for data of the given bits per pixel per band
func SampleBytes(k Kind, bitsPerPixel int) (int, error) {
	switch k {
	case None:
		switch {
		case bitsPerPixel >= 1 && bitsPerPixel <= 8:
			return 1, nil
		case bitsPerPixel > 8 && bitsPerPixel <= 16:
			return 2, nil
		case bitsPerPixel > 16 && bitsPerPixel <= 32:
			return 4, nil
		}
	case ColorTable:
		if bitsPerPixel == 8 {
			return 1, nil
		}
	case VQ, VQTransparent:
		// Output samples are color table entries or table indices
		return 1, nil
	case JPEG:
		switch bitsPerPixel {
		case 8:
			return 1, nil
		case 12:
			return 2, nil
		}
	}
	return 0, fmt.Errorf("%w: %d bits per pixel for %s", ErrInvalidParameter, bitsPerPixel, k)
}
