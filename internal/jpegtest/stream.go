// Package jpegtest builds small sequential-DCT JPEG streams for tests.
package jpegtest

import (
	"github.com/cocosip/go-nitf-codec/jpeg/common"
)

// Options controls the optional segments of an encoded stream
type Options struct {
	Precision int          // 8 (SOF0) or 12 (SOF1), default 8
	Quant     []*[64]int32 // natural order tables emitted as DQT; nil omits DQT
	Huffman   bool         // emit DHT with the default tables
	Restart   int          // restart interval in MCUs, 0 for none
	IDs       []byte       // component ids, default 1..n
	Fill      int          // fill bytes before EOI

	// APP14 emits an Adobe segment carrying Transform (0 RGB, 1 YCbCr)
	APP14     bool
	Transform byte

	// SeparateScans writes one non-interleaved scan per component
	SeparateScans bool
}

// Encode builds a stream of flat 8x8 blocks with 1x1 sampling. dc[c][b]
// is the quantized DC coefficient of block b (raster order) of component c.
// Component 0 uses table slot 0, the others slot 1.
func Encode(width, height int, dc [][]int32, opts Options) []byte {
	precision := opts.Precision
	if precision == 0 {
		precision = 8
	}
	n := len(dc)
	ids := opts.IDs
	if ids == nil {
		ids = make([]byte, n)
		for i := range ids {
			ids[i] = byte(i + 1)
		}
	}
	dcTables, acTables := common.DefaultHuffmanTables(precision)

	out := []byte{0xFF, 0xD8}

	for i, q := range opts.Quant {
		seg := []byte{byte(i)}
		for k := 0; k < 64; k++ {
			seg = append(seg, byte(q[common.ZigZag[k]]))
		}
		out = appendSegment(out, common.MarkerDQT, seg)
	}

	sof := uint16(common.MarkerSOF0)
	if precision != 8 {
		sof = common.MarkerSOF1
	}
	seg := []byte{byte(precision), byte(height >> 8), byte(height), byte(width >> 8), byte(width), byte(n)}
	for i := 0; i < n; i++ {
		seg = append(seg, ids[i], 0x11, byte(slot(i)))
	}
	out = appendSegment(out, sof, seg)

	if opts.Huffman {
		for class, tables := range [2][2]*common.HuffmanTable{dcTables, acTables} {
			for s, t := range tables {
				seg := []byte{byte(class<<4 | s)}
				for _, b := range t.Bits {
					seg = append(seg, byte(b))
				}
				seg = append(seg, t.Values...)
				out = appendSegment(out, common.MarkerDHT, seg)
			}
		}
	}

	if opts.Restart > 0 {
		out = appendSegment(out, common.MarkerDRI, []byte{byte(opts.Restart >> 8), byte(opts.Restart)})
	}

	if opts.APP14 {
		app := append([]byte("Adobe"), 0x00, 0x64, 0, 0, 0, 0, opts.Transform)
		out = appendSegment(out, common.MarkerAPP14, app)
	}

	e := scanEncoder{
		dc:      [2]map[byte]code{codes(dcTables[0]), codes(dcTables[1])},
		ac:      [2]map[byte]code{codes(acTables[0]), codes(acTables[1])},
		blocks:  common.DivCeil(width, 8) * common.DivCeil(height, 8),
		restart: opts.Restart,
	}
	if opts.SeparateScans {
		for c := 0; c < n; c++ {
			out = e.scan(out, dc, ids, []int{c})
		}
	} else {
		all := make([]int, n)
		for c := range all {
			all[c] = c
		}
		out = e.scan(out, dc, ids, all)
	}

	for i := 0; i < opts.Fill; i++ {
		out = append(out, 0xFF)
	}
	return append(out, 0xFF, 0xD9)
}

type scanEncoder struct {
	dc, ac  [2]map[byte]code
	blocks  int
	restart int
}

// scan appends an SOS segment and the entropy-coded data of comps
func (e *scanEncoder) scan(out []byte, dc [][]int32, ids []byte, comps []int) []byte {
	seg := []byte{byte(len(comps))}
	for _, c := range comps {
		seg = append(seg, ids[c], byte(slot(c)<<4|slot(c)))
	}
	seg = append(seg, 0, 63, 0)
	out = appendSegment(out, common.MarkerSOS, seg)

	w := &bitWriter{out: out}
	pred := make([]int32, len(dc))
	rst := 0
	for b := 0; b < e.blocks; b++ {
		if e.restart > 0 && b > 0 && b%e.restart == 0 {
			w.flush()
			w.out = append(w.out, 0xFF, byte(0xD0+rst%8))
			rst++
			for i := range pred {
				pred[i] = 0
			}
		}
		for _, c := range comps {
			diff := dc[c][b] - pred[c]
			pred[c] = dc[c][b]
			cat, bits := category(diff)
			w.write(e.dc[slot(c)][byte(cat)])
			w.write(code{bits: uint32(bits), length: cat})
			w.write(e.ac[slot(c)][0x00])
		}
	}
	w.flush()
	return w.out
}

func slot(component int) int {
	if component == 0 {
		return 0
	}
	return 1
}

func appendSegment(out []byte, marker uint16, payload []byte) []byte {
	length := len(payload) + 2
	out = append(out, byte(marker>>8), byte(marker), byte(length>>8), byte(length))
	return append(out, payload...)
}

func category(v int32) (int, int32) {
	mag := v
	if mag < 0 {
		mag = -mag
	}
	cat := 0
	for mag > 0 {
		cat++
		mag >>= 1
	}
	if v < 0 {
		v += 1<<uint(cat) - 1
	}
	return cat, v
}

type code struct {
	bits   uint32
	length int
}

func codes(t *common.HuffmanTable) map[byte]code {
	m := make(map[byte]code, len(t.Values))
	c := uint32(0)
	k := 0
	for l := 0; l < 16; l++ {
		for i := 0; i < t.Bits[l]; i++ {
			m[t.Values[k]] = code{bits: c, length: l + 1}
			c++
			k++
		}
		c <<= 1
	}
	return m
}

type bitWriter struct {
	out   []byte
	acc   uint32
	nBits int
}

func (w *bitWriter) write(c code) {
	for i := c.length - 1; i >= 0; i-- {
		w.acc = w.acc<<1 | (c.bits>>uint(i))&1
		w.nBits++
		if w.nBits == 8 {
			w.emit()
		}
	}
}

func (w *bitWriter) emit() {
	b := byte(w.acc)
	w.out = append(w.out, b)
	if b == 0xFF {
		w.out = append(w.out, 0x00)
	}
	w.acc, w.nBits = 0, 0
}

// flush pads the last byte with one bits
func (w *bitWriter) flush() {
	if w.nBits == 0 {
		return
	}
	for w.nBits < 8 {
		w.acc = w.acc<<1 | 1
		w.nBits++
	}
	w.emit()
}
