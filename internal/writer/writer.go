// Package writer implements image file writing of decoded textures.
package writer

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
)

// image file formats.
const (
	PNG = "png"
	BMP = "bmp"
)

// Options of the writer.
type Options struct {
	Format string // png or bmp
	Scale  int    // integer upscale factor, values below 2 keep the size
}

// Writer writes images into an output directory.
type Writer struct {
	dir     string
	options Options
}

// New creates a new writer for the given output directory.
func New(dir string, options Options) *Writer {
	if options.Format == "" {
		options.Format = PNG
	}
	return &Writer{
		dir:     dir,
		options: options,
	}
}

// Filename returns the name of the image file for the image at destination
// address of the sub-asset at offset of the input file.
func Filename(input string, offset int64, address uint32, format string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%06x_%04x.%s", base, offset, address, format)
}

// WriteImage scales and encodes the image into the file name inside of the
// output directory and returns the path of the written file.
func (w *Writer) WriteImage(name string, img image.Image) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", w.dir, err)
	}

	path := filepath.Join(w.dir, name)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating output file %s: %w", path, err)
	}

	if err := Encode(file, Scale(img, w.options.Scale), w.options.Format); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("closing output file %s: %w", path, err)
	}
	return path, nil
}

// Encode writes the image in the given file format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case PNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding png: %w", err)
		}
	case BMP:
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("encoding bmp: %w", err)
		}
	default:
		return fmt.Errorf("unsupported image format '%s'", format)
	}
	return nil
}

// Scale returns the image enlarged by an integer factor. Pixels are
// repeated so that texel edges stay sharp.
func Scale(img image.Image, factor int) image.Image {
	if factor < 2 {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx()*factor, bounds.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}
