// Command nitftile decodes one tile of a NITF image segment and writes it
// as a TIFF file.
//
// The segment's image subheader is given as a JSON descriptor:
//
//	nitftile -file scene.ntf -desc scene.json -rect 0,0,512,512 -out tile.tif
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"

	"golang.org/x/image/tiff"

	"github.com/cocosip/go-nitf-codec/nitf"
	"github.com/cocosip/go-nitf-codec/tilecache"
)

func main() {
	file := flag.String("file", "", "NITF file holding the segment")
	desc := flag.String("desc", "", "JSON descriptor of the image segment")
	rect := flag.String("rect", "", "tile rectangle x0,y0,x1,y1 (default: whole image)")
	out := flag.String("out", "tile.tif", "output TIFF file")
	strips := flag.Int("strips", 0, "read single block images in strips of this many rows")
	verbose := flag.Bool("v", false, "log debug records")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *file == "" || *desc == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(logger, *file, *desc, *rect, *out, *strips); err != nil {
		logger.Error("nitftile failed", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, file, descPath, rectSpec, out string, strips int) error {
	d, err := loadDescriptor(descPath)
	if err != nil {
		return err
	}

	cache, err := tilecache.New[*nitf.CacheBlock](256)
	if err != nil {
		return err
	}
	s, err := nitf.OpenFile(file, d, &nitf.Options{Cache: cache, Logger: logger, StripRows: strips})
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Close()
	}()

	r := s.Bounds()
	if rectSpec != "" {
		if r, err = parseRect(rectSpec); err != nil {
			return err
		}
	}

	tile, err := s.GetTile(r, 0)
	if err != nil {
		return err
	}
	st := s.Stats()
	logger.Info("tile decoded", "rect", r, "status", tile.Status,
		"decodes", st.Decodes, "reads", st.Reads, "absent", st.AbsentBlocks)

	return saveTIFF(tile, out)
}

// toImage converts a tile for display. Three or more byte bands become
// RGB; anything else shows band 0 as gray, windowed to its min/max when
// samples are wider than a byte.
func toImage(t *nitf.Tile) image.Image {
	r := t.Rect
	if t.SampleBytes == 1 && t.Bands >= 3 {
		img := image.NewRGBA(r)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetRGBA(x, y, color.RGBA{
					R: uint8(t.At(0, x, y)),
					G: uint8(t.At(1, x, y)),
					B: uint8(t.At(2, x, y)),
					A: 0xFF,
				})
			}
		}
		return img
	}

	img := image.NewGray(r)
	if t.SampleBytes == 1 {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.SetGray(x, y, color.Gray{Y: uint8(t.At(0, x, y))})
			}
		}
		return img
	}

	// auto window: use min/max
	minv, maxv := uint32(1<<32-1), uint32(0)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			v := t.At(0, x, y)
			minv = min(minv, v)
			maxv = max(maxv, v)
		}
	}
	if maxv <= minv {
		maxv = minv + 1
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			l := float64(t.At(0, x, y)-minv) / float64(maxv-minv)
			img.SetGray(x, y, color.Gray{Y: uint8(l*255 + 0.5)})
		}
	}
	return img
}

func saveTIFF(t *nitf.Tile, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	if err := tiff.Encode(f, toImage(t), &tiff.Options{Compression: tiff.Deflate}); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", out, err)
	}
	return f.Close()
}
