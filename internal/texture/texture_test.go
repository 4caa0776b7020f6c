package texture

import (
	"image/color"
	"testing"

	"github.com/retroenv/gsextract/internal/gif"
	"github.com/retroenv/gsextract/internal/gs"
	"github.com/retroenv/gsextract/internal/palette"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestColor16(t *testing.T) {
	tests := []struct {
		name     string
		value    uint16
		expected color.NRGBA
	}{
		{name: "alpha bit set", value: 0x8421, expected: color.NRGBA{R: 8, G: 8, B: 8, A: 0}},
		{name: "alpha bit clear", value: 0x0421, expected: color.NRGBA{R: 8, G: 8, B: 8, A: 255}},
		{name: "channels", value: 0x7c1f, expected: color.NRGBA{R: 248, G: 0, B: 248, A: 255}},
		{name: "green", value: 0x03e0, expected: color.NRGBA{G: 248, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Color16(tt.value))
		})
	}
}

func TestColor32(t *testing.T) {
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, Color32([]byte{1, 2, 3, 0x80}, true))
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 0x80}, Color32([]byte{1, 2, 3, 0x80}, false))
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 0x40}, Color32([]byte{1, 2, 3, 0x40}, true))
	assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, Color24([]byte{1, 2, 3}))
}

func TestIndices4(t *testing.T) {
	assert.Equal(t, [2]uint8{1, 2}, Indices4(0x21))
}

func upload(address uint32, bpp int, width, height uint32, data []byte) gif.Upload {
	return gif.Upload{
		Transfer:     1,
		Address:      address,
		Width:        width,
		Height:       height,
		BitsPerPixel: bpp,
		Data:         data,
	}
}

func TestUploadAcrossSpans(t *testing.T) {
	e := NewExtractor(log.NewTestLogger(t), true)

	data := make([]byte, 4*2*4)
	for i := range data {
		data[i] = byte(i)
	}
	assert.NoError(t, e.Upload(upload(0x10, 32, 4, 2, data[:12])))
	assert.NoError(t, e.Upload(upload(0x10, 32, 4, 2, data[12:])))

	img := e.Images()[0x10]
	assert.NotNil(t, img)
	assert.Equal(t, uint32(4), img.Width)
	assert.Equal(t, uint32(2), img.Height)
	assert.Equal(t, data, img.Bytes)
	assert.Equal(t, 0, e.Dropped())
}

func TestUploadPlacesRectangle(t *testing.T) {
	e := NewExtractor(log.NewTestLogger(t), true)

	assert.NoError(t, e.Upload(upload(0x20, 8, 4, 2, []byte{1, 2, 3, 4, 5, 6, 7, 8})))

	u := upload(0x20, 8, 6, 3, []byte{9, 10, 11, 12, 13, 14, 15, 16})
	u.Transfer = 2
	u.X, u.Y = 2, 1
	assert.NoError(t, e.Upload(u))

	img := e.Images()[0x20]
	assert.Equal(t, uint32(6), img.Width)
	assert.Equal(t, uint32(3), img.Height)
	assert.Equal(t, []byte{
		1, 2, 3, 4, 0, 0,
		5, 6, 9, 10, 11, 12,
		0, 0, 13, 14, 15, 16,
	}, img.Bytes)
}

func TestUploadDropsPadding(t *testing.T) {
	e := NewExtractor(log.NewTestLogger(t), true)

	assert.NoError(t, e.Upload(upload(0, 8, 2, 2, make([]byte, 16))))
	assert.Equal(t, 12, e.Dropped())
	assert.Len(t, e.Images()[0].Bytes, 4)
}

func TestUpload4Bit(t *testing.T) {
	e := NewExtractor(log.NewTestLogger(t), true)

	u := upload(0x30, 4, 4, 2, []byte{0x21, 0x43})
	u.Y = 1
	assert.NoError(t, e.Upload(u))

	img := e.Images()[0x30]
	indices, err := img.Indices()
	assert.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 0, 1, 2, 3, 4}, indices)

	_, err = img.Colors()
	assert.Error(t, err)
}

func clutUpload(address uint32, entries int) gif.Upload {
	data := make([]byte, entries*4)
	for i := range entries {
		data[i*4] = byte(i)
		data[i*4+3] = 0x80
	}
	width := uint32(min(entries, 16))
	return upload(address, 32, width, uint32(entries)/width, data)
}

func TestLinkPalettesByUploadOrder(t *testing.T) {
	e := NewExtractor(log.NewTestLogger(t), true)

	assert.NoError(t, e.Upload(upload(0x100, 8, 4, 1, []byte{0, 8, 16, 255})))
	assert.NoError(t, e.Upload(clutUpload(0x200, 256)))
	assert.NoError(t, e.Upload(clutUpload(0x300, 16)))
	assert.NoError(t, e.Upload(upload(0x400, 4, 2, 1, []byte{0x21})))

	palettes, err := e.LinkPalettes()
	assert.NoError(t, err)
	assert.Len(t, palettes, 2)

	img := e.Images()[0x100]
	assert.True(t, img.HasPalette)
	assert.Equal(t, uint32(0x200), img.PaletteAddress)

	pal := palettes[0x200]
	assert.False(t, pal.Swizzled)
	assert.Equal(t, 256, pal.Len())
	assert.Equal(t, color.NRGBA{R: 16, A: 255}, pal.Color(8))
	assert.Equal(t, color.NRGBA{R: 8, A: 255}, pal.Color(16))

	// 4 bit image uploaded last uses the table before it
	small := e.Images()[0x400]
	assert.Equal(t, uint32(0x300), small.PaletteAddress)
	assert.Equal(t, color.NRGBA{R: 8, A: 255}, palettes[0x300].Color(8))

	rendered, err := img.Render(pal)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 255, 16, 0, 0, 255, 8, 0, 0, 255, 255, 0, 0, 255}, rendered.Pix)
}

func TestLinkPalettesByTextureSetup(t *testing.T) {
	e := NewExtractor(log.NewTestLogger(t), true)

	assert.NoError(t, e.Upload(clutUpload(0x200, 256)))
	assert.NoError(t, e.Upload(upload(0x100, 8, 2, 1, []byte{8, 9})))
	assert.NoError(t, e.Upload(clutUpload(0x280, 256)))
	e.BindTexture(gs.Tex0{TBP0: 0x100, CBP: 0x200, CSM: true})

	palettes, err := e.LinkPalettes()
	assert.NoError(t, err)
	assert.Len(t, palettes, 1)
	assert.Equal(t, uint32(0x200), e.Images()[0x100].PaletteAddress)

	// linear table is kept in storage order
	pal := palettes[0x200]
	assert.False(t, pal.Swizzled)
	assert.Equal(t, color.NRGBA{R: 8, A: 255}, pal.Color(8))
}

func TestRenderWithoutPalette(t *testing.T) {
	e := NewExtractor(log.NewTestLogger(t), true)
	assert.NoError(t, e.Upload(upload(0, 4, 2, 1, []byte{0xf0})))

	rendered, err := e.Images()[0].Render(palette.Palette{})
	assert.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 255, 255, 255, 255, 255}, rendered.Pix)
}

func TestRenderDirectColour(t *testing.T) {
	e := NewExtractor(log.NewTestLogger(t), false)
	assert.NoError(t, e.Upload(upload(0, 16, 2, 1, []byte{0x21, 0x84, 0x21, 0x04})))

	pix, err := e.Images()[0].RGBA(palette.Palette{})
	assert.NoError(t, err)
	assert.Equal(t, []byte{8, 8, 8, 0, 8, 8, 8, 255}, pix)
}
