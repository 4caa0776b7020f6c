package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/retroenv/gsextract/internal/gs"
	"github.com/retroenv/gsextract/internal/palette"
)

var (
	errNotIndexed    = errors.New("image is not indexed")
	errIndexedColors = errors.New("indexed image needs a palette")
)

// Image is the raw pixel data uploaded to one destination address. Bytes
// holds Height rows of RowBytes each.
type Image struct {
	Address      uint32
	Width        uint32
	Height       uint32
	BitsPerPixel int
	PixelFormat  gs.PixelFormat
	Bytes        []byte

	NormalizeAlpha bool // map the 0x80 alpha of 32 bit pixels to 255

	PaletteAddress uint32
	HasPalette     bool

	Order int // upload order within the decode session
}

// RowBytes returns the size of one pixel row in bytes.
func (img *Image) RowBytes() int {
	return rowBytes(img.Width, img.BitsPerPixel)
}

// Indexed returns whether the pixels are CLUT indices.
func (img *Image) Indexed() bool {
	return img.BitsPerPixel <= 8
}

// Pixels returns the number of pixels.
func (img *Image) Pixels() int {
	return int(img.Width) * int(img.Height)
}

func (img *Image) String() string {
	return fmt.Sprintf("0x%04x %dx%d %dbpp", img.Address, img.Width, img.Height, img.BitsPerPixel)
}

// Indices returns the CLUT indices of an indexed image in row order.
func (img *Image) Indices() ([]uint8, error) {
	if !img.Indexed() {
		return nil, errNotIndexed
	}

	stride := img.RowBytes()
	out := make([]uint8, 0, img.Pixels())
	for y := range int(img.Height) {
		row := img.Bytes[y*stride : (y+1)*stride]
		for x := range int(img.Width) {
			if img.BitsPerPixel == 8 {
				out = append(out, row[x])
				continue
			}
			out = append(out, Indices4(row[x/2])[x%2])
		}
	}
	return out, nil
}

// Colors returns the pixels of a direct colour image in row order.
func (img *Image) Colors() ([]color.NRGBA, error) {
	if img.Indexed() {
		return nil, fmt.Errorf("image %s: %w", img, errIndexedColors)
	}

	stride := img.RowBytes()
	size := img.BitsPerPixel / 8
	out := make([]color.NRGBA, 0, img.Pixels())
	for y := range int(img.Height) {
		row := img.Bytes[y*stride : (y+1)*stride]
		for x := range int(img.Width) {
			c, err := pixelColor(row[x*size:], img.BitsPerPixel, img.NormalizeAlpha)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// Render returns the image in display colours. Indexed images are looked up
// in pal, an empty palette renders the indices as grey levels.
func (img *Image) Render(pal palette.Palette) (*image.NRGBA, error) {
	out := image.NewNRGBA(image.Rect(0, 0, int(img.Width), int(img.Height)))

	if !img.Indexed() {
		colors, err := img.Colors()
		if err != nil {
			return nil, err
		}
		for i, c := range colors {
			out.SetNRGBA(i%int(img.Width), i/int(img.Width), c)
		}
		return out, nil
	}

	indices, err := img.Indices()
	if err != nil {
		return nil, err
	}
	scale := 255 / (1<<img.BitsPerPixel - 1)
	for i, index := range indices {
		c := color.NRGBA{A: 255}
		if pal.Len() > 0 {
			c = pal.Color(int(index))
		} else {
			c.R = uint8(int(index) * scale)
			c.G, c.B = c.R, c.R
		}
		out.SetNRGBA(i%int(img.Width), i/int(img.Width), c)
	}
	return out, nil
}

// RGBA returns the rendered pixels as a flat RGBA byte buffer.
func (img *Image) RGBA(pal palette.Palette) ([]byte, error) {
	rendered, err := img.Render(pal)
	if err != nil {
		return nil, err
	}
	return rendered.Pix, nil
}

// grow extends the image to at least width x height, keeping the pixels.
func (img *Image) grow(width, height uint32) {
	if width <= img.Width && height <= img.Height {
		return
	}
	width = max(width, img.Width)
	height = max(height, img.Height)

	oldStride := img.RowBytes()
	newStride := rowBytes(width, img.BitsPerPixel)
	buf := make([]byte, newStride*int(height))
	for y := range int(img.Height) {
		copy(buf[y*newStride:], img.Bytes[y*oldStride:(y+1)*oldStride])
	}

	img.Width = width
	img.Height = height
	img.Bytes = buf
}

func rowBytes(width uint32, bpp int) int {
	return (int(width)*bpp + 7) / 8
}
