package texture

import (
	"encoding/binary"
	"fmt"
	"image/color"
)

// opaqueAlpha is the alpha value the source data uses for fully opaque pixels.
const opaqueAlpha = 0x80

// expand5 maps a 5 bit channel to 8 bits in steps of 8.
var expand5 = func() [32]uint8 {
	var t [32]uint8
	for i := range t {
		t[i] = uint8(i * 8)
	}
	return t
}()

// Color16 decodes a little-endian 5551 pixel. A set alpha bit means
// transparent.
func Color16(v uint16) color.NRGBA {
	c := color.NRGBA{
		R: expand5[v&0x1f],
		G: expand5[(v>>5)&0x1f],
		B: expand5[(v>>10)&0x1f],
		A: 255,
	}
	if v&0x8000 != 0 {
		c.A = 0
	}
	return c
}

// Color24 decodes a 3 byte RGB pixel.
func Color24(b []byte) color.NRGBA {
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: 255}
}

// Color32 decodes a 4 byte RGBA pixel. With normalizeAlpha the source
// opaque value 0x80 is mapped to 255.
func Color32(b []byte, normalizeAlpha bool) color.NRGBA {
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: b[3]}
	if normalizeAlpha && c.A == opaqueAlpha {
		c.A = 255
	}
	return c
}

// Indices4 returns the two indices of a 4 bit pixel pair, low nibble first.
func Indices4(b byte) [2]uint8 {
	return [2]uint8{b & 0xf, b >> 4}
}

// pixelColor decodes the pixel starting at b.
func pixelColor(b []byte, bpp int, normalizeAlpha bool) (color.NRGBA, error) {
	switch bpp {
	case 32:
		return Color32(b, normalizeAlpha), nil
	case 24:
		return Color24(b), nil
	case 16:
		return Color16(binary.LittleEndian.Uint16(b)), nil
	default:
		return color.NRGBA{}, fmt.Errorf("%d bits per pixel is not a direct colour format", bpp)
	}
}
