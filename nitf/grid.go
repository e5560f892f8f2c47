package nitf

import (
	"image"

	"github.com/cocosip/go-nitf-codec/jpeg/common"
)

// blockGrid is the layout of cache blocks over the image
type blockGrid struct {
	bounds    image.Rectangle // Valid image rectangle
	blockSize image.Point     // Extent of one cache block
	perRow    int
	perCol    int
}

// count returns the number of blocks in the grid
func (g *blockGrid) count() int {
	return g.perRow * g.perCol
}

// index returns the row-major serial number of a block
func (g *blockGrid) index(bx, by int) int {
	return by*g.perRow + bx
}

// origin returns the image coordinates of a block's top-left pixel
func (g *blockGrid) origin(bx, by int) image.Point {
	return image.Pt(bx*g.blockSize.X, by*g.blockSize.Y)
}

// span returns the block columns [x0, x1) and rows [y0, y1) covering r,
// which must lie inside the image
func (g *blockGrid) span(r image.Rectangle) (x0, y0, x1, y1 int) {
	x0 = r.Min.X / g.blockSize.X
	y0 = r.Min.Y / g.blockSize.Y
	x1 = min(common.DivCeil(r.Max.X, g.blockSize.X), g.perRow)
	y1 = min(common.DivCeil(r.Max.Y, g.blockSize.Y), g.perCol)
	return
}

// validRows returns how many rows of block row by lie inside the image
func (g *blockGrid) validRows(by int) int {
	rows := g.bounds.Max.Y - by*g.blockSize.Y
	return max(0, min(rows, g.blockSize.Y))
}
