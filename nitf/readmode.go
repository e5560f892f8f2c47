package nitf

import (
	"strings"

	"github.com/cocosip/go-nitf-codec/codec"
)

// ReadMode says how blocks and bands are laid out in the file. It is
// derived once per segment and dispatched on by every later stage.
type ReadMode int

const (
	// ReadModeUnknown is never valid for an open segment
	ReadModeUnknown ReadMode = iota
	// ReadBIBBlock reads each band of each block separately (IMODE=B)
	ReadBIBBlock
	// ReadBIPBlock reads all bands of a pixel interleaved block at once (IMODE=P)
	ReadBIPBlock
	// ReadBIRBlock reads all bands of a row interleaved block at once (IMODE=R)
	ReadBIRBlock
	// ReadBSQBlock reads blocks of whole band planes (IMODE=S)
	ReadBSQBlock
	// ReadBIB is ReadBIBBlock for a single block image
	ReadBIB
	// ReadBIP is ReadBIPBlock for a single block image
	ReadBIP
	// ReadBIR is ReadBIRBlock for a single block image
	ReadBIR
	// ReadJPEGBlock reads one JPEG stream per block
	ReadJPEGBlock
)

// String returns the name of the mode
func (m ReadMode) String() string {
	switch m {
	case ReadBIBBlock:
		return "bib-block"
	case ReadBIPBlock:
		return "bip-block"
	case ReadBIRBlock:
		return "bir-block"
	case ReadBSQBlock:
		return "bsq-block"
	case ReadBIB:
		return "bib"
	case ReadBIP:
		return "bip"
	case ReadBIR:
		return "bir"
	case ReadJPEGBlock:
		return "jpeg-block"
	default:
		return "unknown"
	}
}

// singleBlock reports whether the whole image is one block
func (m ReadMode) singleBlock() bool {
	return m == ReadBIB || m == ReadBIP || m == ReadBIR
}

// bandsTogether reports whether one read returns every band
func (m ReadMode) bandsTogether() bool {
	switch m {
	case ReadBIPBlock, ReadBIRBlock, ReadBIP, ReadBIR, ReadJPEGBlock:
		return true
	}
	return false
}

// interleave returns the sample layout of blocks read in this mode
func (m ReadMode) interleave() Interleave {
	switch m {
	case ReadBIPBlock, ReadBIP:
		return PixelInterleaved
	case ReadBIRBlock, ReadBIR:
		return RowInterleaved
	}
	return BandSequential
}

// Classify derives the read mode from the decoder kind, the IMODE code and
// the number of blocks in the grid.
//
// IMODE=S maps to ReadBSQBlock even for a single block; the block
// arithmetic for single-block band sequential images relies on it.
func Classify(kind codec.Kind, interleave string, blockCount int) ReadMode {
	mode := strings.ToUpper(strings.TrimSpace(interleave))

	if kind == codec.JPEG {
		if mode == "B" || mode == "P" {
			return ReadJPEGBlock
		}
		// JPEG blocks are never band sequential or row interleaved
		return ReadModeUnknown
	}

	if blockCount > 1 {
		switch mode {
		case "B":
			return ReadBIBBlock
		case "P":
			return ReadBIPBlock
		case "R":
			return ReadBIRBlock
		case "S":
			return ReadBSQBlock
		}
		return ReadModeUnknown
	}

	if blockCount == 1 {
		switch mode {
		case "B":
			return ReadBIB
		case "P":
			return ReadBIP
		case "R":
			return ReadBIR
		case "S":
			return ReadBSQBlock
		}
	}
	return ReadModeUnknown
}

// Layout is the immutable classification of an open segment
type Layout struct {
	Mode  ReadMode
	Codec codec.Kind
}
