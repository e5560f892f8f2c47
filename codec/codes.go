package codec

import (
	"fmt"
	"sort"
	"strings"
)

// Info describes one NITF image compression (IC) code
type Info struct {
	Code      string // IC field value
	Name      string // Human-readable name
	Kind      Kind   // Decoder that handles it
	Masked    bool   // Blocks are addressed through a block mask table
	Supported bool   // Whether a decoder exists in this module
}

var codes = map[string]Info{
	"NC": {Code: "NC", Name: "uncompressed", Kind: None, Supported: true},
	"NM": {Code: "NM", Name: "uncompressed masked", Kind: None, Masked: true, Supported: true},
	"C3": {Code: "C3", Name: "jpeg", Kind: JPEG, Supported: true},
	"M3": {Code: "M3", Name: "jpeg masked", Kind: JPEG, Masked: true, Supported: true},
	"C4": {Code: "C4", Name: "vector quantization", Kind: VQ, Supported: true},
	"M4": {Code: "M4", Name: "vector quantization masked", Kind: VQTransparent, Masked: true, Supported: true},

	"C1": {Code: "C1", Name: "bi-level"},
	"C5": {Code: "C5", Name: "lossless jpeg"},
	"C6": {Code: "C6", Name: "reserved"},
	"C7": {Code: "C7", Name: "complex sar"},
	"C8": {Code: "C8", Name: "jpeg 2000"},
	"I1": {Code: "I1", Name: "downsampled jpeg"},
	"M1": {Code: "M1", Name: "bi-level masked", Masked: true},
	"M5": {Code: "M5", Name: "lossless jpeg masked", Masked: true},
	"M6": {Code: "M6", Name: "reserved masked", Masked: true},
	"M7": {Code: "M7", Name: "complex sar masked", Masked: true},
	"M8": {Code: "M8", Name: "jpeg 2000 masked", Masked: true},
}

// Get retrieves the description of a compression code
func Get(code string) (Info, error) {
	info, ok := codes[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrCodecNotFound, code)
	}
	return info, nil
}

// Resolve maps a compression code to the decoder that handles it.
// Uncompressed data with a color lookup table is expanded by the
// ColorTable decoder; vector quantization keeps its own kind and uses
// the table as its output lookup.
func Resolve(code string, hasColorTable bool) (Info, error) {
	info, err := Get(code)
	if err != nil {
		return Info{}, err
	}
	if !info.Supported {
		return Info{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, info.Code, info.Name)
	}
	if info.Kind == None && hasColorTable {
		info.Kind = ColorTable
	}
	return info, nil
}

// List returns all known compression codes sorted by code
func List() []Info {
	out := make([]Info, 0, len(codes))
	for _, info := range codes {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
