// Package gif interprets command blocks of the graphics interface: packed
// register writes and raw image transfers that drive the register state and
// forward pixel data to an upload sink.
package gif

import (
	"fmt"

	bf "github.com/retroenv/gsextract/internal/bitfield"
)

// TagSize is the size of a command block tag in bytes.
const TagSize = bf.Size128

// Mode defines how the data following a tag is interpreted.
type Mode uint8

// data formats.
const (
	Packed Mode = iota
	RegList
	Image
	Disabled // behaves like Image
)

var modeNames = [...]string{
	Packed:   "packed",
	RegList:  "reglist",
	Image:    "image",
	Disabled: "disabled",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Tag is a decoded command block header.
type Tag struct {
	NLoop uint16 // 15 bit loop count
	EOP   bool   // end of packet
	PRE   bool   // write Prim into the PRIM register
	Prim  uint16 // 11 bit PRIM register value
	Mode  Mode
	NReg  uint8     // register descriptor count, 1 to 16
	Regs  [16]uint8 // 4 bit register descriptors
}

// ParseTag decodes a command block tag from the first 16 bytes of b.
func ParseTag(b []byte) (Tag, error) {
	v, err := bf.Uint128FromBytes(b)
	if err != nil {
		return Tag{}, fmt.Errorf("reading command tag: %w", err)
	}

	tag := Tag{
		NLoop: uint16(v.Field(0, 15)),
		EOP:   v.Flag(15),
		PRE:   v.Flag(46),
		Prim:  uint16(v.Field(47, 11)),
		Mode:  Mode(v.Field(58, 2)),
		NReg:  uint8(v.Field(60, 4)),
	}
	if tag.NReg == 0 {
		tag.NReg = 16
	}
	for i := range tag.Regs {
		tag.Regs[i] = uint8(v.Field(64+uint(i)*4, 4))
	}
	return tag, nil
}

// Encode returns the 16 byte representation of the tag.
func (t Tag) Encode() []byte {
	lo := uint64(t.NLoop&0x7fff) |
		uint64(t.Prim&0x7ff)<<47 |
		uint64(t.Mode&0x3)<<58 |
		uint64(t.NReg&0xf)<<60
	if t.EOP {
		lo |= 1 << 15
	}
	if t.PRE {
		lo |= 1 << 46
	}

	var hi uint64
	for i, reg := range t.Regs {
		hi |= uint64(reg&0xf) << (uint(i) * 4)
	}
	return bf.Uint128{Lo: lo, Hi: hi}.Bytes()
}

// DataSize returns the size in bytes of the data following the tag.
func (t Tag) DataSize() int {
	switch t.Mode {
	case Packed:
		return int(t.NLoop) * int(t.NReg) * bf.Size128
	case RegList:
		regs := int(t.NLoop) * int(t.NReg)
		return (regs + regs%2) * 8
	default:
		return int(t.NLoop) * bf.Size128
	}
}

func (t Tag) String() string {
	return fmt.Sprintf("%s nloop=%d nreg=%d eop=%t", t.Mode, t.NLoop, t.NReg, t.EOP)
}
