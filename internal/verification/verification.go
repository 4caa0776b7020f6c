// Package verification compares decoded images against raw reference dumps.
package verification

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

// ReferenceExtension is the file extension of raw 8-bit RGBA reference dumps.
const ReferenceExtension = ".rgba"

var errNoReference = errors.New("no reference directory given")

// ReferenceFile returns the path of the reference dump for an image file name.
func ReferenceFile(dir, imageName string) string {
	base := strings.TrimSuffix(imageName, filepath.Ext(imageName))
	return filepath.Join(dir, base+ReferenceExtension)
}

// VerifyImage verifies that the decoded image matches the reference dump
// byte for byte. The dump holds the rows without padding, 4 bytes per pixel.
func VerifyImage(logger *log.Logger, dir, imageName string, img *image.NRGBA) error {
	if dir == "" {
		return errNoReference
	}

	name := ReferenceFile(dir, imageName)
	expected, err := os.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading reference file for comparison: %w", err)
	}

	if err := checkBufferEqual(logger, expected, pixelBytes(img)); err != nil {
		return fmt.Errorf("comparing %s: %w", name, err)
	}
	return nil
}

// pixelBytes returns the pixels of the image as tightly packed rows.
func pixelBytes(img *image.NRGBA) []byte {
	bounds := img.Bounds()
	rowSize := bounds.Dx() * 4
	if img.Stride == rowSize {
		return img.Pix[:rowSize*bounds.Dy()]
	}

	buf := make([]byte, 0, rowSize*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		start := img.PixOffset(bounds.Min.X, y)
		buf = append(buf, img.Pix[start:start+rowSize]...)
	}
	return buf
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs < 10 {
			logger.Error("Pixel byte mismatch",
				log.Hex("offset", i),
				log.Int("pixel", i/4),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d byte mismatches", diffs)
}
