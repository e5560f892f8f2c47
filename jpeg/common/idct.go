package common

// Constants for the integer IDCT (scaled by 2048)
const (
	w1 = 2841 // 2048*sqrt(2)*cos(1*pi/16)
	w2 = 2676 // 2048*sqrt(2)*cos(2*pi/16)
	w3 = 2408 // 2048*sqrt(2)*cos(3*pi/16)
	w5 = 1609 // 2048*sqrt(2)*cos(5*pi/16)
	w6 = 1108 // 2048*sqrt(2)*cos(6*pi/16)
	w7 = 565  // 2048*sqrt(2)*cos(7*pi/16)

	r2 = 181 // 256/sqrt(2)
)

// IDCT performs the Inverse Discrete Cosine Transform on an 8x8 block of
// dequantized coefficients in natural order and writes level-shifted
// samples clamped to the precision (8 or 12 bits) into out.
func IDCT(coef *[64]int32, out []uint16, stride int, precision int) {
	var blk [64]int
	for i, c := range coef {
		blk[i] = int(c)
	}

	for y := 0; y < 8; y++ {
		idctRow(blk[y*8 : y*8+8])
	}
	for x := 0; x < 8; x++ {
		idctCol(&blk, x)
	}

	shift := 1 << uint(precision-1)
	maxVal := 1<<uint(precision) - 1
	for y := 0; y < 8; y++ {
		row := out[y*stride : y*stride+8]
		for x := range row {
			row[x] = uint16(Clamp(blk[y*8+x]+shift, 0, maxVal))
		}
	}
}

func idctRow(b []int) {
	x1 := b[4] << 11
	x2 := b[6]
	x3 := b[2]
	x4 := b[1]
	x5 := b[7]
	x6 := b[5]
	x7 := b[3]

	// Only DC present
	if x1|x2|x3|x4|x5|x6|x7 == 0 {
		dc := b[0] << 3
		for i := 0; i < 8; i++ {
			b[i] = dc
		}
		return
	}

	x0 := b[0]<<11 + 128

	// First stage
	x8 := w7 * (x4 + x5)
	x4 = x8 + (w1-w7)*x4
	x5 = x8 - (w1+w7)*x5
	x8 = w3 * (x6 + x7)
	x6 = x8 - (w3-w5)*x6
	x7 = x8 - (w3+w5)*x7

	// Second stage
	x8 = x0 + x1
	x0 -= x1
	x1 = w6 * (x3 + x2)
	x2 = x1 - (w2+w6)*x2
	x3 = x1 + (w2-w6)*x3
	x1 = x4 + x6
	x4 -= x6
	x6 = x5 + x7
	x5 -= x7

	// Third stage
	x7 = x8 + x3
	x8 -= x3
	x3 = x0 + x2
	x0 -= x2
	x2 = (r2*(x4+x5) + 128) >> 8
	x4 = (r2*(x4-x5) + 128) >> 8

	b[0] = (x7 + x1) >> 8
	b[1] = (x3 + x2) >> 8
	b[2] = (x0 + x4) >> 8
	b[3] = (x8 + x6) >> 8
	b[4] = (x8 - x6) >> 8
	b[5] = (x0 - x4) >> 8
	b[6] = (x3 - x2) >> 8
	b[7] = (x7 - x1) >> 8
}

func idctCol(b *[64]int, x int) {
	x1 := b[8*4+x] << 8
	x2 := b[8*6+x]
	x3 := b[8*2+x]
	x4 := b[8*1+x]
	x5 := b[8*7+x]
	x6 := b[8*5+x]
	x7 := b[8*3+x]

	if x1|x2|x3|x4|x5|x6|x7 == 0 {
		dc := (b[x] + 32) >> 6
		for y := 0; y < 8; y++ {
			b[8*y+x] = dc
		}
		return
	}

	x0 := b[x]<<8 + 8192

	// First stage
	x8 := w7*(x4+x5) + 4
	x4 = (x8 + (w1-w7)*x4) >> 3
	x5 = (x8 - (w1+w7)*x5) >> 3
	x8 = w3*(x6+x7) + 4
	x6 = (x8 - (w3-w5)*x6) >> 3
	x7 = (x8 - (w3+w5)*x7) >> 3

	// Second stage
	x8 = x0 + x1
	x0 -= x1
	x1 = w6*(x3+x2) + 4
	x2 = (x1 - (w2+w6)*x2) >> 3
	x3 = (x1 + (w2-w6)*x3) >> 3
	x1 = x4 + x6
	x4 -= x6
	x6 = x5 + x7
	x5 -= x7

	// Third stage
	x7 = x8 + x3
	x8 -= x3
	x3 = x0 + x2
	x0 -= x2
	x2 = (r2*(x4+x5) + 128) >> 8
	x4 = (r2*(x4-x5) + 128) >> 8

	b[8*0+x] = (x7 + x1) >> 14
	b[8*1+x] = (x3 + x2) >> 14
	b[8*2+x] = (x0 + x4) >> 14
	b[8*3+x] = (x8 + x6) >> 14
	b[8*4+x] = (x8 - x6) >> 14
	b[8*5+x] = (x0 - x4) >> 14
	b[8*6+x] = (x3 - x2) >> 14
	b[8*7+x] = (x7 - x1) >> 14
}

// Clamp limits v to [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DivCeil returns a/b rounded up for positive operands
func DivCeil(a, b int) int {
	return (a + b - 1) / b
}
