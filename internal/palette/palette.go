// Package palette holds colour lookup tables and undoes the storage
// interleave the graphics synthesizer applies to them.
package palette

import (
	"image/color"
)

// partSize is the number of entries covered by one interleave pattern.
const partSize = 32

// Palette is a colour lookup table.
type Palette struct {
	Entries  []color.NRGBA
	Swizzled bool // entries are still in storage order
}

// New returns a palette in storage order.
func New(entries []color.NRGBA) Palette {
	return Palette{
		Entries:  entries,
		Swizzled: true,
	}
}

// Len returns the number of entries.
func (p Palette) Len() int {
	return len(p.Entries)
}

// Unswizzled returns the palette in display order. The receiver is not modified.
func (p Palette) Unswizzled() Palette {
	if !p.Swizzled {
		return p
	}
	return Palette{
		Entries:  Unswizzle(p.Entries, len(p.Entries)),
		Swizzled: false,
	}
}

// Color returns the entry at index i, transparent black if the index is
// outside of the table.
func (p Palette) Color(i int) color.NRGBA {
	if i < 0 || i >= len(p.Entries) {
		return color.NRGBA{}
	}
	return p.Entries[i]
}

// ColorPalette returns the entries as a standard library palette.
func (p Palette) ColorPalette() color.Palette {
	pal := make(color.Palette, len(p.Entries))
	for i, c := range p.Entries {
		pal[i] = c
	}
	return pal
}

// Unswizzle returns a copy of entries with the first size entries reordered
// from storage to display order. Every full part of 32 entries is read as
// 2 blocks of 2 stripes of 8 colours, the stripes of a block being 16
// entries apart in storage. Entries after the last full part are copied
// unchanged.
func Unswizzle[E any](entries []E, size int) []E {
	size = min(size, len(entries))
	out := make([]E, len(entries))
	copy(out, entries)

	var dst int
	for part := range size / partSize {
		for block := range 2 {
			for stripe := range 2 {
				for colour := range 8 {
					src := part*partSize + block*8 + stripe*16 + colour
					out[dst] = entries[src]
					dst++
				}
			}
		}
	}
	return out
}

// Swizzle is the inverse of Unswizzle, it reorders display order entries
// into storage order.
func Swizzle[E any](entries []E, size int) []E {
	size = min(size, len(entries))
	out := make([]E, len(entries))
	copy(out, entries)

	var src int
	for part := range size / partSize {
		for block := range 2 {
			for stripe := range 2 {
				for colour := range 8 {
					dst := part*partSize + block*8 + stripe*16 + colour
					out[dst] = entries[src]
					src++
				}
			}
		}
	}
	return out
}
