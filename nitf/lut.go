package nitf

// expandColorTable maps each index byte of src through the color table
// into the band planes of b. Pixels past the end of src keep their null.
func expandColorTable(b *CacheBlock, src []byte, lut *ColorTable) {
	n := min(len(src), b.Width*b.Height)
	for band, entries := range lut.Entries {
		plane := b.plane(band)
		null := byte(b.Nulls[band])
		for i, idx := range src[:n] {
			if int(idx) < len(entries) {
				plane[i] = entries[idx]
			} else {
				plane[i] = null
			}
		}
	}
}
