// Package texture reassembles raw image transfers into images per
// destination address and links indexed images to their colour tables.
package texture

import (
	"fmt"

	"github.com/retroenv/gsextract/internal/gif"
	"github.com/retroenv/gsextract/internal/gs"
	"github.com/retroenv/gsextract/internal/palette"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// maxClutEntries is the largest colour table an indexed image can use.
const maxClutEntries = 256

// Extractor collects image transfers of one decode session. It implements
// gif.Sink and gif.TextureBinder.
type Extractor struct {
	logger         *log.Logger
	normalizeAlpha bool

	images     map[uint32]*Image
	placements map[uint32]*placement
	links      map[uint32]gs.Tex0 // texture base pointer to the texture setup drawing it
	order      int
	dropped    int
}

// placement tracks the progress of one transfer into its image.
type placement struct {
	transfer int
	cursor   int // bytes of the transfer rectangle written
}

var _ gif.Sink = (*Extractor)(nil)
var _ gif.TextureBinder = (*Extractor)(nil)

// NewExtractor returns an extractor. With normalizeAlpha set the 0x80 alpha
// value of 32 bit pixels is decoded as fully opaque.
func NewExtractor(logger *log.Logger, normalizeAlpha bool) *Extractor {
	return &Extractor{
		logger:         logger,
		normalizeAlpha: normalizeAlpha,
		images:         map[uint32]*Image{},
		placements:     map[uint32]*placement{},
		links:          map[uint32]gs.Tex0{},
	}
}

// Upload places a span of transfer data into the image at the destination address.
func (e *Extractor) Upload(u gif.Upload) error {
	if u.BitsPerPixel%8 != 0 && u.BitsPerPixel != 4 {
		return fmt.Errorf("unsupported pixel size %d", u.BitsPerPixel)
	}

	img, ok := e.images[u.Address]
	if !ok || img.BitsPerPixel != u.BitsPerPixel {
		if ok {
			e.logger.Warn("Destination reused with a different pixel format",
				log.Hex("address", u.Address),
				log.Int("old_bpp", img.BitsPerPixel),
				log.Int("new_bpp", u.BitsPerPixel))
		}
		img = &Image{
			Address:        u.Address,
			BitsPerPixel:   u.BitsPerPixel,
			PixelFormat:    u.PixelFormat,
			NormalizeAlpha: e.normalizeAlpha,
			Order:          e.order,
		}
		e.order++
		e.images[u.Address] = img
		delete(e.placements, u.Address)
	}

	p := e.placements[u.Address]
	if p == nil || p.transfer != u.Transfer {
		p = &placement{transfer: u.Transfer}
		e.placements[u.Address] = p
	}

	img.grow(u.Width, u.Height)
	e.place(img, p, u)
	return nil
}

// BindTexture records which colour table an indexed texture is drawn with.
func (e *Extractor) BindTexture(tex gs.Tex0) {
	e.links[uint32(tex.TBP0)] = tex
}

// Images returns the images keyed by destination address.
func (e *Extractor) Images() map[uint32]*Image {
	return e.images
}

// Dropped returns the number of transfer bytes that fell outside of their
// transfer rectangle.
func (e *Extractor) Dropped() int {
	return e.dropped
}

// place writes transfer bytes at the position of the transfer cursor.
func (e *Extractor) place(img *Image, p *placement, u gif.Upload) {
	rectWidth := int(u.RectWidth())
	rectPixels := rectWidth * int(u.RectHeight())
	stride := img.RowBytes()

	for _, b := range u.Data {
		if img.BitsPerPixel == 4 {
			for half, index := range Indices4(b) {
				pixel := p.cursor*2 + half
				if pixel >= rectPixels {
					e.dropped++
					break
				}
				x := int(u.X) + pixel%rectWidth
				y := int(u.Y) + pixel/rectWidth
				setNibble(img.Bytes[y*stride+x/2:], x%2, index)
			}
			p.cursor++
			continue
		}

		size := img.BitsPerPixel / 8
		pixel := p.cursor / size
		if pixel >= rectPixels {
			e.dropped++
			p.cursor++
			continue
		}
		x := int(u.X) + pixel%rectWidth
		y := int(u.Y) + pixel/rectWidth
		img.Bytes[y*stride+x*size+p.cursor%size] = b
		p.cursor++
	}
}

func setNibble(b []byte, half int, v uint8) {
	if half == 0 {
		b[0] = b[0]&0xf0 | v
		return
	}
	b[0] = b[0]&0x0f | v<<4
}

// LinkPalettes attaches colour tables to the indexed images and returns the
// tables in display order keyed by their address. A table named by a texture
// setup of the session is used first, otherwise the closest direct colour
// image in upload order that can hold the colours of the indexed image.
func (e *Extractor) LinkPalettes() (map[uint32]palette.Palette, error) {
	ordered := e.ordered()
	palettes := map[uint32]palette.Palette{}

	for i, img := range ordered {
		if !img.Indexed() {
			continue
		}

		clut, swizzled, ok := e.boundClut(img)
		if !ok {
			clut, ok = nearestClut(ordered, i)
			swizzled = true
		}
		if !ok {
			e.logger.Debug("No colour table for indexed image", log.Stringer("image", img))
			continue
		}

		img.PaletteAddress = clut.Address
		img.HasPalette = true
		if _, ok := palettes[clut.Address]; ok {
			continue
		}

		entries, err := clut.Colors()
		if err != nil {
			return nil, fmt.Errorf("decoding colour table %s: %w", clut, err)
		}
		pal := palette.New(entries)
		if swizzled {
			pal = pal.Unswizzled()
		} else {
			pal.Swizzled = false
		}
		palettes[clut.Address] = pal

		e.logger.Debug("Linked colour table",
			log.Stringer("image", img),
			log.Stringer("clut", clut))
	}
	return palettes, nil
}

// ordered returns the images in upload order.
func (e *Extractor) ordered() []*Image {
	addresses := maps.Keys(e.images)
	slices.SortFunc(addresses, func(a, b uint32) bool {
		return e.images[a].Order < e.images[b].Order
	})

	images := make([]*Image, len(addresses))
	for i, address := range addresses {
		images[i] = e.images[address]
	}
	return images
}

// boundClut returns the colour table named by the texture setup that draws img.
func (e *Extractor) boundClut(img *Image) (*Image, bool, bool) {
	tex, ok := e.links[img.Address]
	if !ok {
		return nil, false, false
	}
	clut, ok := e.images[uint32(tex.CBP)]
	if !ok || !canServe(clut, img) {
		return nil, false, false
	}
	// CSM1 tables are stored interleaved
	return clut, !tex.CSM, true
}

// nearestClut returns the first table fitting the image at index pos that
// was uploaded after it, or the last one uploaded before it.
func nearestClut(ordered []*Image, pos int) (*Image, bool) {
	img := ordered[pos]
	for _, candidate := range ordered[pos+1:] {
		if canServe(candidate, img) {
			return candidate, true
		}
	}
	for i := pos - 1; i >= 0; i-- {
		if canServe(ordered[i], img) {
			return ordered[i], true
		}
	}
	return nil, false
}

func canServe(clut, img *Image) bool {
	entries := clut.Pixels()
	return !clut.Indexed() &&
		entries <= maxClutEntries &&
		entries >= 1<<img.BitsPerPixel
}
