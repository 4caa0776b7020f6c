package gif

import (
	"github.com/retroenv/gsextract/internal/gs"
)

// Upload is a span of raw image bytes of a host to local transfer.
type Upload struct {
	Transfer     int    // sequence number of the transfer the span belongs to
	Address      uint32 // destination base pointer
	BufferWidth  uint8  // destination buffer width in 64 pixel units
	X, Y         uint16 // origin of the transfer rectangle
	Width        uint32 // width including the X origin
	Height       uint32 // height including the Y origin
	BitsPerPixel int
	PixelFormat  gs.PixelFormat
	Data         []byte
}

// RectWidth returns the width of the transfer rectangle.
func (u Upload) RectWidth() uint32 {
	return u.Width - uint32(u.X)
}

// RectHeight returns the height of the transfer rectangle.
func (u Upload) RectHeight() uint32 {
	return u.Height - uint32(u.Y)
}

// Sink receives raw image bytes of transfers.
type Sink interface {
	Upload(u Upload) error
}

// TextureBinder is implemented by sinks that want to know about textures
// selected for drawing, which links indexed textures to their CLUT.
type TextureBinder interface {
	BindTexture(tex gs.Tex0)
}
