package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"

	"github.com/gen2brain/go-fitz"
	"github.com/tsawler/tabula/reader"
	"golang.org/x/image/draw"
)

// Rasterizer renders each page of a PDF to a PNG image. A nil entry means
// the page produced no image.
type Rasterizer interface {
	Rasterize(data []byte) ([][]byte, error)
}

// DefaultScale is the linear scale applied to rendered pages.
const DefaultScale = 2

// FitzRasterizer renders pages with MuPDF.
type FitzRasterizer struct {
	// DPI for rendering. 72 DPI is the PDF's native size, so 144 is 2x.
	DPI float64
}

// NewFitzRasterizer renders at DefaultScale.
func NewFitzRasterizer() *FitzRasterizer {
	return &FitzRasterizer{DPI: 72 * DefaultScale}
}

func (f *FitzRasterizer) Rasterize(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	defer doc.Close()

	out := make([][]byte, doc.NumPage())
	for i := range out {
		img, err := doc.ImagePNG(i, f.DPI)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrRasterizeFailed, i+1, err)
		}
		out[i] = img
	}
	return out, nil
}

// ImageRasterizer uses the largest embedded image on each page, scaled up.
type ImageRasterizer struct {
	Scale int
}

// NewImageRasterizer upscales at DefaultScale.
func NewImageRasterizer() *ImageRasterizer {
	return &ImageRasterizer{Scale: DefaultScale}
}

func (ir *ImageRasterizer) Rasterize(data []byte) ([][]byte, error) {
	path, cleanup, err := spool(data)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	out := make([][]byte, count)
	found := false
	for i := 0; i < count; i++ {
		page, err := r.GetPage(i)
		if err != nil {
			continue
		}
		images, err := r.ExtractPageImages(page)
		if err != nil || len(images) == 0 {
			continue
		}
		largest := images[0]
		for _, img := range images[1:] {
			if img.Width*img.Height > largest.Width*largest.Height {
				largest = img
			}
		}
		encoded, err := largest.ToPNG()
		if err != nil {
			continue
		}
		scaled, err := upscale(encoded, ir.Scale)
		if err != nil {
			continue
		}
		out[i] = scaled
		found = true
	}
	if !found {
		return nil, fmt.Errorf("%w: no page images", ErrRasterizeFailed)
	}
	return out, nil
}

// upscale decodes a PNG, scales it by factor and re-encodes it.
func upscale(encoded []byte, factor int) ([]byte, error) {
	if factor <= 1 {
		return encoded, nil
	}
	src, err := png.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Chain tries each rasterizer in order and returns the first success.
type Chain []Rasterizer

func (c Chain) Rasterize(data []byte) ([][]byte, error) {
	var errs []error
	for _, r := range c {
		pages, err := r.Rasterize(data)
		if err == nil {
			return pages, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrRasterizeFailed
	}
	return nil, errors.Join(errs...)
}
