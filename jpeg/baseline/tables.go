package baseline

import "github.com/cocosip/go-nitf-codec/jpeg/common"

// Tables holds quantization (natural order) and Huffman tables indexed by
// table selector. Nil entries are left for the stream to define.
type Tables struct {
	Quant [4]*[64]int32
	DC    [4]*common.HuffmanTable
	AC    [4]*common.HuffmanTable
}

// DefaultTables returns the standard Huffman tables for the precision and,
// when level is a valid default quantization level (1..5), the matching
// luminance and chrominance quantization tables in slots 0 and 1.
func DefaultTables(level, precision int) *Tables {
	t := &Tables{}
	dc, ac := common.DefaultHuffmanTables(precision)
	t.DC[0], t.DC[1] = dc[0], dc[1]
	t.AC[0], t.AC[1] = ac[0], ac[1]

	if lum, chrom, ok := common.DefaultQuantTables(level, precision); ok {
		t.Quant[0], t.Quant[1] = &lum, &chrom
	}
	return t
}
