package main

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/cocosip/go-nitf-codec/nitf"
)

// descriptorFile is the JSON form of a parsed image subheader. Table
// entries are base64 strings.
type descriptorFile struct {
	Rows            int      `json:"rows"`
	Cols            int      `json:"cols"`
	BlocksPerRow    int      `json:"blocksPerRow"`
	BlocksPerColumn int      `json:"blocksPerColumn"`
	BlockWidth      int      `json:"blockWidth"`
	BlockHeight     int      `json:"blockHeight"`
	BitsPerPixel    int      `json:"bitsPerPixel"`
	Bands           int      `json:"bands"`
	Compression     string   `json:"compression"`
	Interleave      string   `json:"interleave"`
	CompressionRate string   `json:"compressionRate"`
	DataOffset      int64    `json:"dataOffset"`
	ByteOrder       string   `json:"byteOrder"` // "big" (default) or "little"
	NullValues      []uint32 `json:"nullValues"`

	Mask *struct {
		BlockOffsets [][]uint32 `json:"blockOffsets"`
		PadOffsets   [][]uint32 `json:"padOffsets"`
		PadValue     *uint32    `json:"padValue"`
	} `json:"mask"`

	ColorTable [][]byte `json:"colorTable"`

	VQTable *struct {
		Rows      int      `json:"rows"`
		Cols      int      `json:"cols"`
		CodeBits  int      `json:"codeBits"`
		Lookup    [][]byte `json:"lookup"`
		NullIndex byte     `json:"nullIndex"`
	} `json:"vqTable"`
}

func loadDescriptor(path string) (*nitf.Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f descriptorFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return f.descriptor()
}

func (f *descriptorFile) descriptor() (*nitf.Descriptor, error) {
	d := &nitf.Descriptor{
		Rows:            f.Rows,
		Cols:            f.Cols,
		BlocksPerRow:    f.BlocksPerRow,
		BlocksPerColumn: f.BlocksPerColumn,
		BlockWidth:      f.BlockWidth,
		BlockHeight:     f.BlockHeight,
		BitsPerPixel:    f.BitsPerPixel,
		Bands:           f.Bands,
		Compression:     f.Compression,
		Interleave:      f.Interleave,
		CompressionRate: f.CompressionRate,
		DataOffset:      f.DataOffset,
		NullValues:      f.NullValues,
	}

	switch strings.ToLower(f.ByteOrder) {
	case "", "big":
		d.ByteOrder = binary.BigEndian
	case "little":
		d.ByteOrder = binary.LittleEndian
	default:
		return nil, fmt.Errorf("unknown byte order %q", f.ByteOrder)
	}

	if m := f.Mask; m != nil {
		d.Mask = &nitf.MaskTable{BlockOffsets: m.BlockOffsets, PadOffsets: m.PadOffsets}
		if m.PadValue != nil {
			d.Mask.HasPadValue = true
			d.Mask.PadValue = *m.PadValue
		}
	}
	if len(f.ColorTable) > 0 {
		d.ColorTable = &nitf.ColorTable{Entries: f.ColorTable}
	}
	if t := f.VQTable; t != nil {
		d.VQTable = &nitf.CompressionTable{
			Rows:      t.Rows,
			Cols:      t.Cols,
			CodeBits:  t.CodeBits,
			Lookup:    t.Lookup,
			NullIndex: t.NullIndex,
		}
	}
	return d, nil
}

// parseRect parses "x0,y0,x1,y1"
func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("rect %q: want x0,y0,x1,y1", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("rect %q: %w", s, err)
		}
		v[i] = n
	}
	r := image.Rect(v[0], v[1], v[2], v[3])
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("rect %q is empty", s)
	}
	return r, nil
}
