package gs

import (
	"fmt"

	"github.com/retroenv/gsextract/internal/errs"
)

// PixelFormat is a pixel storage mode (PSM) field value.
type PixelFormat uint8

// pixel storage modes.
const (
	PSMCT32  PixelFormat = 0x00
	PSMCT24  PixelFormat = 0x01
	PSMCT16  PixelFormat = 0x02
	PSMCT16S PixelFormat = 0x0a
	PSMT8    PixelFormat = 0x13
	PSMT4    PixelFormat = 0x14
	PSMT8H   PixelFormat = 0x1b
	PSMT4HL  PixelFormat = 0x24
	PSMT4HH  PixelFormat = 0x2c
	PSMZ32   PixelFormat = 0x30
	PSMZ24   PixelFormat = 0x31
	PSMZ16   PixelFormat = 0x32
	PSMZ16S  PixelFormat = 0x3a
)

var pixelFormats = map[PixelFormat]struct {
	name string
	bpp  int
}{
	PSMCT32:  {"PSMCT32", 32},
	PSMCT24:  {"PSMCT24", 24},
	PSMCT16:  {"PSMCT16", 16},
	PSMCT16S: {"PSMCT16S", 16},
	PSMT8:    {"PSMT8", 8},
	PSMT4:    {"PSMT4", 4},
	PSMT8H:   {"PSMT8H", 8},
	PSMT4HL:  {"PSMT4HL", 4},
	PSMT4HH:  {"PSMT4HH", 4},
	PSMZ32:   {"PSMZ32", 32},
	PSMZ24:   {"PSMZ24", 24},
	PSMZ16:   {"PSMZ16", 16},
	PSMZ16S:  {"PSMZ16S", 16},
}

// BitsPerPixel returns the transfer bit depth of the pixel format.
func (p PixelFormat) BitsPerPixel() (int, error) {
	info, ok := pixelFormats[p]
	if !ok {
		return 0, &errs.UnknownPixelFormatError{PSM: uint8(p)}
	}
	return info.bpp, nil
}

func (p PixelFormat) String() string {
	if info, ok := pixelFormats[p]; ok {
		return info.name
	}
	return fmt.Sprintf("PSM_0x%02x", uint8(p))
}
