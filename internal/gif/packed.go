package gif

import (
	"math"

	bf "github.com/retroenv/gsextract/internal/bitfield"
	"github.com/retroenv/gsextract/internal/errs"
	"github.com/retroenv/gsextract/internal/gs"
)

// packed mode register descriptors.
const (
	descPrim    = 0x0
	descRGBAQ   = 0x1
	descST      = 0x2
	descUV      = 0x3
	descXYZF2   = 0x4
	descXYZ2    = 0x5
	descTex0_1  = 0x6
	descTex0_2  = 0x7
	descClamp_1 = 0x8
	descClamp_2 = 0x9
	descFog     = 0xa
	descXYZF3   = 0xc
	descXYZ3    = 0xd
	descAD      = 0xe
	descNop     = 0xf
)

// writePacked converts a 128 bit packed value to the 64 bit register layout
// of the register named by the descriptor and writes it.
func (it *Interpreter) writePacked(desc uint8, v bf.Uint128) error {
	switch desc {
	case descPrim:
		return it.writeRegister(gs.PRIM, v.Field(0, 11))

	case descRGBAQ:
		raw := v.Field(0, 8) |
			v.Field(32, 8)<<8 |
			v.Field(64, 8)<<16 |
			v.Field(96, 8)<<24 |
			uint64(math.Float32bits(it.state.Q()))<<32
		return it.writeRegister(gs.RGBAQ, raw)

	case descST:
		it.state.SetQ(bf.Float32(v.Field(64, 32)))
		return it.writeRegister(gs.ST, v.Lo)

	case descUV:
		return it.writeRegister(gs.UV, v.Field(0, 14)|v.Field(32, 14)<<16)

	case descXYZF2, descXYZF3:
		reg := gs.XYZF2
		if desc == descXYZF3 || v.Flag(111) {
			reg = gs.XYZF3
		}
		raw := v.Field(0, 16) |
			v.Field(32, 16)<<16 |
			v.Field(68, 24)<<32 |
			v.Field(100, 8)<<56
		return it.writeRegister(reg, raw)

	case descXYZ2, descXYZ3:
		reg := gs.XYZ2
		if desc == descXYZ3 || v.Flag(111) {
			reg = gs.XYZ3
		}
		raw := v.Field(0, 16) |
			v.Field(32, 16)<<16 |
			v.Field(64, 32)<<32
		return it.writeRegister(reg, raw)

	case descTex0_1:
		return it.writeRegister(gs.TEX0_1, v.Lo)
	case descTex0_2:
		return it.writeRegister(gs.TEX0_2, v.Lo)
	case descClamp_1:
		return it.writeRegister(gs.CLAMP_1, v.Lo)
	case descClamp_2:
		return it.writeRegister(gs.CLAMP_2, v.Lo)

	case descFog:
		return it.writeRegister(gs.FOG, v.Field(100, 8)<<56)

	case descAD:
		return it.writeRegister(gs.Register(v.Field(64, 8)), v.Lo)

	case descNop:
		return nil

	default:
		return &errs.UnknownRegisterError{ID: desc, Packed: true}
	}
}
