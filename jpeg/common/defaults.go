package common

// Default tables for streams that rely on tables defined outside the
// JPEG bitstream. A container may carry one rate code for a whole image
// and omit DQT/DHT from every block.

// MaxQualityLevel is the highest default quantization level (Q1..Q5)
const MaxQualityLevel = 5

// approxQualityForLevel maps default quantization levels Q1..Q5 to scaling
// factors of the standard Annex K tables. Q5 keeps the most detail. This
// approximates the Q1..Q5 tables of MIL-STD-188-198A, which are not
// reproduced here; blocks that omit DQT may dequantize differently from
// the producer.
var approxQualityForLevel = [MaxQualityLevel + 1]int{0, 50, 60, 70, 80, 90}

// DefaultQuantTables returns the luminance and chrominance tables for a
// default quantization level, in natural order. 12-bit tables are the
// 8-bit ones scaled by 16 to follow the wider coefficient range.
func DefaultQuantTables(level, precision int) (lum, chrom [64]int32, ok bool) {
	if level < 1 || level > MaxQualityLevel {
		return lum, chrom, false
	}
	q := approxQualityForLevel[level]
	lum = ScaleQuantTable(DefaultLuminanceQuantTable, q, 255)
	chrom = ScaleQuantTable(DefaultChrominanceQuantTable, q, 255)
	if precision == 12 {
		for i := range lum {
			lum[i] *= 16
			chrom[i] *= 16
		}
	}
	return lum, chrom, true
}

// DefaultHuffmanTables returns DC and AC tables for table slots 0
// (luminance) and 1 (chrominance). 12-bit data gets the extended DC tables.
func DefaultHuffmanTables(precision int) (dc, ac [2]*HuffmanTable) {
	if precision == 12 {
		dc[0] = BuildStandardHuffmanTable(ExtendedDCLuminanceBits, ExtendedDCLuminanceValues)
		dc[1] = BuildStandardHuffmanTable(ExtendedDCChrominanceBits, ExtendedDCChrominanceValues)
	} else {
		dc[0] = BuildStandardHuffmanTable(StandardDCLuminanceBits, StandardDCLuminanceValues)
		dc[1] = BuildStandardHuffmanTable(StandardDCChrominanceBits, StandardDCChrominanceValues)
	}
	ac[0] = BuildStandardHuffmanTable(StandardACLuminanceBits, StandardACLuminanceValues)
	ac[1] = BuildStandardHuffmanTable(StandardACChrominanceBits, StandardACChrominanceValues)
	return dc, ac
}
