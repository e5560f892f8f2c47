package baseline

import (
	"fmt"

	"github.com/cocosip/go-nitf-codec/jpeg/common"
)

// Component represents a color component in the image
type Component struct {
	ID     byte     // Component identifier
	H      int      // Horizontal sampling factor
	V      int      // Vertical sampling factor
	Tq     int      // Quantization table selector
	td     int      // DC Huffman table selector
	ta     int      // AC Huffman table selector
	dcPred int      // DC prediction value
	bw     int      // Allocated width in blocks
	bh     int      // Allocated height in blocks
	data   []uint16 // Decoded samples, stride bw*8
}

// Decoder represents a sequential Huffman DCT decoder (SOF0 and SOF1)
type Decoder struct {
	width      int
	height     int
	precision  int
	components []*Component
	qtables    [4][64]int32 // Zigzag order, as transmitted
	qdefined   [4]bool
	dcTables   [4]*common.HuffmanTable
	acTables   [4]*common.HuffmanTable
	maxH       int
	maxV       int
	mcusX      int
	mcusY      int
	restartInt int
	adobe      int // Adobe APP14 transform flag, -1 when absent
}

// Frame is a decoded image with pixel-interleaved samples
type Frame struct {
	Width      int
	Height     int
	Components int
	Precision  int      // 8 or 12
	Pix        []uint16 // Width*Height*Components samples
}

// Decode decodes one JPEG stream. Tables in preset are installed before
// parsing and are replaced by any DQT/DHT the stream carries, so they only
// take effect for tables the stream omits. preset may be nil.
func Decode(data []byte, preset *Tables) (*Frame, error) {
	reader := common.NewReader(data)
	d := &Decoder{adobe: -1}
	d.install(preset)

	marker, err := reader.ReadMarker()
	if err != nil {
		return nil, err
	}
	if marker != common.MarkerSOI {
		return nil, common.ErrInvalidSOI
	}

	scans := 0
	for {
		marker, err := reader.ReadMarker()
		if err != nil {
			if scans > 0 {
				// Tolerate a missing EOI after complete scan data
				return d.frame(), nil
			}
			return nil, err
		}

		switch {
		case marker == common.MarkerSOF0 || marker == common.MarkerSOF1:
			if err := d.parseSOF(reader, marker); err != nil {
				return nil, err
			}

		case common.IsSOF(marker):
			return nil, fmt.Errorf("%w: SOF marker 0x%04X", common.ErrUnsupportedFormat, marker)

		case marker == common.MarkerDQT:
			if err := d.parseDQT(reader); err != nil {
				return nil, err
			}

		case marker == common.MarkerDHT:
			if err := d.parseDHT(reader); err != nil {
				return nil, err
			}

		case marker == common.MarkerDRI:
			if err := d.parseDRI(reader); err != nil {
				return nil, err
			}

		case marker == common.MarkerAPP14:
			seg, err := reader.ReadSegment()
			if err != nil {
				return nil, err
			}
			if len(seg) >= 12 && string(seg[:5]) == "Adobe" {
				d.adobe = int(seg[11])
			}

		case marker == common.MarkerSOS:
			if d.components == nil {
				return nil, common.ErrInvalidSOF
			}
			scan, err := d.parseSOS(reader)
			if err != nil {
				return nil, err
			}
			if err := d.decodeScan(reader, scan); err != nil {
				return nil, err
			}
			scans++

		case marker == common.MarkerEOI:
			if scans == 0 {
				return nil, common.ErrInvalidData
			}
			return d.frame(), nil

		default:
			// Skip unknown markers
			if common.HasLength(marker) {
				if _, err := reader.ReadSegment(); err != nil {
					return nil, err
				}
			}
		}
	}
}

func (d *Decoder) install(t *Tables) {
	if t == nil {
		return
	}
	for i := 0; i < 4; i++ {
		if t.Quant[i] != nil {
			for k := 0; k < 64; k++ {
				d.qtables[i][k] = t.Quant[i][common.ZigZag[k]]
			}
			d.qdefined[i] = true
		}
		d.dcTables[i] = t.DC[i]
		d.acTables[i] = t.AC[i]
	}
}

// parseSOF parses Start of Frame marker
func (d *Decoder) parseSOF(reader *common.Reader, marker uint16) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}

	if len(data) < 6 {
		return common.ErrInvalidSOF
	}

	d.precision = int(data[0])
	switch {
	case d.precision == 8:
	case d.precision == 12 && marker == common.MarkerSOF1:
	default:
		return fmt.Errorf("%w: %d-bit samples in SOF 0x%04X", common.ErrInvalidPrecision, d.precision, marker)
	}

	d.height = int(data[1])<<8 | int(data[2])
	d.width = int(data[3])<<8 | int(data[4])
	numComponents := int(data[5])

	if d.width <= 0 || d.height <= 0 {
		return common.ErrInvalidDimensions
	}
	if numComponents < 1 || numComponents > 4 {
		return common.ErrInvalidComponents
	}
	if len(data) < 6+numComponents*3 {
		return common.ErrInvalidSOF
	}

	d.maxH, d.maxV = 1, 1
	d.components = make([]*Component, numComponents)
	for i := 0; i < numComponents; i++ {
		offset := 6 + i*3
		comp := &Component{
			ID: data[offset],
			H:  int(data[offset+1] >> 4),
			V:  int(data[offset+1] & 0x0F),
			Tq: int(data[offset+2]),
		}
		if comp.H <= 0 || comp.H > 4 || comp.V <= 0 || comp.V > 4 || comp.Tq > 3 {
			return common.ErrInvalidSOF
		}
		if comp.H > d.maxH {
			d.maxH = comp.H
		}
		if comp.V > d.maxV {
			d.maxV = comp.V
		}
		d.components[i] = comp
	}

	d.mcusX = common.DivCeil(d.width, d.maxH*8)
	d.mcusY = common.DivCeil(d.height, d.maxV*8)
	for _, comp := range d.components {
		comp.bw = d.mcusX * comp.H
		comp.bh = d.mcusY * comp.V
		comp.data = make([]uint16, comp.bw*comp.bh*64)
	}

	return nil
}

// parseDQT parses Define Quantization Table marker
func (d *Decoder) parseDQT(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}

	offset := 0
	for offset < len(data) {
		pq := data[offset] >> 4   // Precision (0=8-bit, 1=16-bit)
		tq := data[offset] & 0x0F // Table ID
		if tq > 3 || pq > 1 {
			return common.ErrInvalidDQT
		}
		offset++

		if pq == 0 {
			if offset+64 > len(data) {
				return common.ErrInvalidDQT
			}
			for i := 0; i < 64; i++ {
				d.qtables[tq][i] = int32(data[offset+i])
			}
			offset += 64
		} else {
			if offset+128 > len(data) {
				return common.ErrInvalidDQT
			}
			for i := 0; i < 64; i++ {
				d.qtables[tq][i] = int32(data[offset+i*2])<<8 | int32(data[offset+i*2+1])
			}
			offset += 128
		}
		d.qdefined[tq] = true
	}

	return nil
}

// parseDHT parses Define Huffman Table marker
func (d *Decoder) parseDHT(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}

	offset := 0
	for offset < len(data) {
		tc := data[offset] >> 4   // Table class (0=DC, 1=AC)
		th := data[offset] & 0x0F // Table ID
		if th > 3 || tc > 1 {
			return common.ErrInvalidDHT
		}
		offset++

		if offset+16 > len(data) {
			return common.ErrInvalidDHT
		}
		table := &common.HuffmanTable{}
		totalCodes := 0
		for i := 0; i < 16; i++ {
			table.Bits[i] = int(data[offset+i])
			totalCodes += table.Bits[i]
		}
		offset += 16

		if offset+totalCodes > len(data) {
			return common.ErrInvalidDHT
		}
		table.Values = make([]byte, totalCodes)
		copy(table.Values, data[offset:offset+totalCodes])
		offset += totalCodes

		if err := table.Build(); err != nil {
			return err
		}

		if tc == 0 {
			d.dcTables[th] = table
		} else {
			d.acTables[th] = table
		}
	}

	return nil
}

// parseDRI parses Define Restart Interval marker
func (d *Decoder) parseDRI(reader *common.Reader) error {
	data, err := reader.ReadSegment()
	if err != nil {
		return err
	}
	if len(data) != 2 {
		return common.ErrInvalidData
	}
	d.restartInt = int(data[0])<<8 | int(data[1])
	return nil
}

// parseSOS parses Start of Scan marker and returns the scan's components
func (d *Decoder) parseSOS(reader *common.Reader) ([]*Component, error) {
	data, err := reader.ReadSegment()
	if err != nil {
		return nil, err
	}
	if len(data) < 1 {
		return nil, common.ErrInvalidSOS
	}

	ns := int(data[0])
	if ns < 1 || ns > len(d.components) || len(data) < 1+ns*2+3 {
		return nil, common.ErrInvalidSOS
	}

	scan := make([]*Component, 0, ns)
	for i := 0; i < ns; i++ {
		cs := data[1+i*2]
		tdTa := data[1+i*2+1]

		var comp *Component
		for _, c := range d.components {
			if c.ID == cs {
				comp = c
				break
			}
		}
		if comp == nil {
			return nil, common.ErrInvalidSOS
		}
		comp.td = int(tdTa >> 4)
		comp.ta = int(tdTa & 0x0F)
		if comp.td > 3 || comp.ta > 3 {
			return nil, common.ErrInvalidSOS
		}
		scan = append(scan, comp)
	}

	// Spectral selection and successive approximation are fixed for
	// sequential DCT and ignored.
	return scan, nil
}

// decodeScan decodes the entropy-coded data following SOS and leaves the
// reader at the marker that ends it
func (d *Decoder) decodeScan(reader *common.Reader, scan []*Component) error {
	for _, comp := range scan {
		if !d.qdefined[comp.Tq] {
			return fmt.Errorf("%w: quantization table %d", common.ErrMissingTable, comp.Tq)
		}
		if d.dcTables[comp.td] == nil || d.acTables[comp.ta] == nil {
			return fmt.Errorf("%w: Huffman tables %d/%d", common.ErrMissingTable, comp.td, comp.ta)
		}
		comp.dcPred = 0
	}

	start := reader.Offset()
	bits := common.NewBitReader(reader.Remaining())

	units := 0
	restart := func() error {
		if d.restartInt > 0 && units > 0 && units%d.restartInt == 0 {
			if err := bits.Restart(); err != nil {
				return err
			}
			for _, comp := range scan {
				comp.dcPred = 0
			}
		}
		units++
		return nil
	}

	if len(scan) == 1 {
		// Non-interleaved: one block per unit, covering only the component
		comp := scan[0]
		cols := common.DivCeil(common.DivCeil(d.width*comp.H, d.maxH), 8)
		rows := common.DivCeil(common.DivCeil(d.height*comp.V, d.maxV), 8)
		for by := 0; by < rows; by++ {
			for bx := 0; bx < cols; bx++ {
				if err := restart(); err != nil {
					return err
				}
				if err := d.decodeBlock(bits, comp, bx, by); err != nil {
					return err
				}
			}
		}
	} else {
		for mcuY := 0; mcuY < d.mcusY; mcuY++ {
			for mcuX := 0; mcuX < d.mcusX; mcuX++ {
				if err := restart(); err != nil {
					return err
				}
				for _, comp := range scan {
					for v := 0; v < comp.V; v++ {
						for h := 0; h < comp.H; h++ {
							if err := d.decodeBlock(bits, comp, mcuX*comp.H+h, mcuY*comp.V+v); err != nil {
								return err
							}
						}
					}
				}
			}
		}
	}

	reader.Seek(start + bits.MarkerOffset())
	return nil
}

// decodeBlock decodes a single 8x8 block
func (d *Decoder) decodeBlock(bits *common.BitReader, comp *Component, blockX, blockY int) error {
	var coef [64]int32
	q := &d.qtables[comp.Tq]

	s, err := bits.Decode(d.dcTables[comp.td])
	if err != nil {
		return err
	}
	if s > 16 {
		return common.ErrInvalidData
	}
	comp.dcPred += bits.ReceiveExtend(int(s))
	coef[0] = int32(comp.dcPred) * q[0]

	acTable := d.acTables[comp.ta]
	for k := 1; k < 64; {
		rs, err := bits.Decode(acTable)
		if err != nil {
			return err
		}
		r := int(rs >> 4)   // Run length of zeros
		s := int(rs & 0x0F) // Coefficient size

		if s == 0 {
			if r != 15 {
				break // EOB
			}
			k += 16 // ZRL
			continue
		}

		k += r
		if k > 63 {
			return common.ErrInvalidData
		}
		coef[common.ZigZag[k]] = int32(bits.ReceiveExtend(s)) * q[k]
		k++
	}

	stride := comp.bw * 8
	common.IDCT(&coef, comp.data[blockY*8*stride+blockX*8:], stride, d.precision)
	return nil
}

// frame converts component data to interleaved pixel data
func (d *Decoder) frame() *Frame {
	n := len(d.components)
	f := &Frame{
		Width:      d.width,
		Height:     d.height,
		Components: n,
		Precision:  d.precision,
		Pix:        make([]uint16, d.width*d.height*n),
	}

	for i, comp := range d.components {
		stride := comp.bw * 8
		for y := 0; y < d.height; y++ {
			sy := y * comp.V / d.maxV
			for x := 0; x < d.width; x++ {
				sx := x * comp.H / d.maxH
				f.Pix[(y*d.width+x)*n+i] = comp.data[sy*stride+sx]
			}
		}
	}

	if n == 3 && d.transformed() {
		ycbcrToRGB(f.Pix, d.precision)
	}
	return f
}

// transformed reports whether three-component data is YCbCr
func (d *Decoder) transformed() bool {
	if d.adobe >= 0 {
		return d.adobe != 0
	}
	c := d.components
	return !(c[0].ID == 'R' && c[1].ID == 'G' && c[2].ID == 'B')
}

// ycbcrToRGB converts interleaved YCbCr samples to RGB in place
func ycbcrToRGB(pix []uint16, precision int) {
	center := 1 << uint(precision-1)
	maxVal := 1<<uint(precision) - 1
	for i := 0; i+2 < len(pix); i += 3 {
		y := int(pix[i])
		cb := int(pix[i+1]) - center
		cr := int(pix[i+2]) - center

		r := y + (91881*cr)>>16
		g := y - (22554*cb+46802*cr)>>16
		b := y + (116130*cb)>>16

		pix[i] = uint16(common.Clamp(r, 0, maxVal))
		pix[i+1] = uint16(common.Clamp(g, 0, maxVal))
		pix[i+2] = uint16(common.Clamp(b, 0, maxVal))
	}
}
