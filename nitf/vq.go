package nitf

// decodeVQ expands the codewords in src into b. Codewords are read in
// raster order over the kernel grid; each becomes a Rows x Cols kernel of
// table indices translated through lut, or copied as is without one.
// With transparent set, the reserved maximum codeword whose kernel is
// entirely NullIndex is written as null.
func decodeVQ(b *CacheBlock, src []byte, t *CompressionTable, lut *ColorTable, transparent bool) {
	gw, gh := b.Width/t.Cols, b.Height/t.Rows
	r := bitReader{data: src}
	reserved := t.transparentCode()

	for gy := 0; gy < gh; gy++ {
		for gx := 0; gx < gw; gx++ {
			code, ok := r.read(t.CodeBits)
			if !ok {
				return
			}
			base := int(code) * t.Cols
			null := transparent && code == reserved && t.nullKernel(base)

			for kr := 0; kr < t.Rows; kr++ {
				y := gy*t.Rows + kr
				for kc, idx := range t.Lookup[kr][base : base+t.Cols] {
					x := gx*t.Cols + kc
					for band := 0; band < b.Bands; band++ {
						v := byte(b.Nulls[band])
						switch {
						case null:
						case lut == nil:
							v = idx
						case int(idx) < len(lut.Entries[band]):
							v = lut.Entries[band][idx]
						}
						b.Pix[b.offset(band, x, y)] = v
					}
				}
			}
		}
	}
}

// nullKernel reports whether every index of the kernel at base is NullIndex
func (t *CompressionTable) nullKernel(base int) bool {
	for _, row := range t.Lookup {
		for _, idx := range row[base : base+t.Cols] {
			if idx != t.NullIndex {
				return false
			}
		}
	}
	return true
}

// vqPlaneBytes returns the stored size of one block of codewords
func vqPlaneBytes(t *CompressionTable, width, height int) int64 {
	codes := (width / t.Cols) * (height / t.Rows)
	return int64(codes*t.CodeBits+7) / 8
}
