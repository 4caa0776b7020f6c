// Package gs models the register bank of the graphics synthesizer: register
// ids, one decode function per register and the per-session register state.
package gs

import "fmt"

// Register is a graphics synthesizer register address as used by A+D writes.
type Register uint8

// general purpose registers.
const (
	PRIM       Register = 0x00
	RGBAQ      Register = 0x01
	ST         Register = 0x02
	UV         Register = 0x03
	XYZF2      Register = 0x04
	XYZ2       Register = 0x05
	TEX0_1     Register = 0x06
	TEX0_2     Register = 0x07
	CLAMP_1    Register = 0x08
	CLAMP_2    Register = 0x09
	FOG        Register = 0x0a
	XYZF3      Register = 0x0c
	XYZ3       Register = 0x0d
	TEX1_1     Register = 0x14
	TEX1_2     Register = 0x15
	TEX2_1     Register = 0x16
	TEX2_2     Register = 0x17
	XYOFFSET_1 Register = 0x18
	XYOFFSET_2 Register = 0x19
	PRMODECONT Register = 0x1a
	PRMODE     Register = 0x1b
	TEXCLUT    Register = 0x1c
	SCANMSK    Register = 0x22
	MIPTBP1_1  Register = 0x34
	MIPTBP1_2  Register = 0x35
	MIPTBP2_1  Register = 0x36
	MIPTBP2_2  Register = 0x37
	TEXA       Register = 0x3b
	FOGCOL     Register = 0x3d
	TEXFLUSH   Register = 0x3f
	SCISSOR_1  Register = 0x40
	SCISSOR_2  Register = 0x41
	ALPHA_1    Register = 0x42
	ALPHA_2    Register = 0x43
	DIMX       Register = 0x44
	DTHE       Register = 0x45
	COLCLAMP   Register = 0x46
	TEST_1     Register = 0x47
	TEST_2     Register = 0x48
	PABE       Register = 0x49
	FBA_1      Register = 0x4a
	FBA_2      Register = 0x4b
	FRAME_1    Register = 0x4c
	FRAME_2    Register = 0x4d
	ZBUF_1     Register = 0x4e
	ZBUF_2     Register = 0x4f
	BITBLTBUF  Register = 0x50
	TRXPOS     Register = 0x51
	TRXREG     Register = 0x52
	TRXDIR     Register = 0x53
	HWREG      Register = 0x54
	SIGNAL     Register = 0x60
	FINISH     Register = 0x61
	LABEL      Register = 0x62
)

var registerNames = map[Register]string{
	PRIM:       "PRIM",
	RGBAQ:      "RGBAQ",
	ST:         "ST",
	UV:         "UV",
	XYZF2:      "XYZF2",
	XYZ2:       "XYZ2",
	TEX0_1:     "TEX0_1",
	TEX0_2:     "TEX0_2",
	CLAMP_1:    "CLAMP_1",
	CLAMP_2:    "CLAMP_2",
	FOG:        "FOG",
	XYZF3:      "XYZF3",
	XYZ3:       "XYZ3",
	TEX1_1:     "TEX1_1",
	TEX1_2:     "TEX1_2",
	TEX2_1:     "TEX2_1",
	TEX2_2:     "TEX2_2",
	XYOFFSET_1: "XYOFFSET_1",
	XYOFFSET_2: "XYOFFSET_2",
	PRMODECONT: "PRMODECONT",
	PRMODE:     "PRMODE",
	TEXCLUT:    "TEXCLUT",
	SCANMSK:    "SCANMSK",
	MIPTBP1_1:  "MIPTBP1_1",
	MIPTBP1_2:  "MIPTBP1_2",
	MIPTBP2_1:  "MIPTBP2_1",
	MIPTBP2_2:  "MIPTBP2_2",
	TEXA:       "TEXA",
	FOGCOL:     "FOGCOL",
	TEXFLUSH:   "TEXFLUSH",
	SCISSOR_1:  "SCISSOR_1",
	SCISSOR_2:  "SCISSOR_2",
	ALPHA_1:    "ALPHA_1",
	ALPHA_2:    "ALPHA_2",
	DIMX:       "DIMX",
	DTHE:       "DTHE",
	COLCLAMP:   "COLCLAMP",
	TEST_1:     "TEST_1",
	TEST_2:     "TEST_2",
	PABE:       "PABE",
	FBA_1:      "FBA_1",
	FBA_2:      "FBA_2",
	FRAME_1:    "FRAME_1",
	FRAME_2:    "FRAME_2",
	ZBUF_1:     "ZBUF_1",
	ZBUF_2:     "ZBUF_2",
	BITBLTBUF:  "BITBLTBUF",
	TRXPOS:     "TRXPOS",
	TRXREG:     "TRXREG",
	TRXDIR:     "TRXDIR",
	HWREG:      "HWREG",
	SIGNAL:     "SIGNAL",
	FINISH:     "FINISH",
	LABEL:      "LABEL",
}

func (r Register) String() string {
	if name, ok := registerNames[r]; ok {
		return name
	}
	return fmt.Sprintf("REG_0x%02x", uint8(r))
}

// Known returns whether the register has a decoder.
func (r Register) Known() bool {
	_, ok := decoders[r]
	return ok
}
