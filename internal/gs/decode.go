package gs

import (
	bf "github.com/retroenv/gsextract/internal/bitfield"
)

// Prim selects the primitive type and drawing attributes.
// PRMODE decodes to the same struct with Type left zero.
type Prim struct {
	Type uint8 // point, line, line strip, triangle, strip, fan, sprite
	IIP  bool  // gouraud shading
	TME  bool  // texture mapping
	FGE  bool  // fogging
	ABE  bool  // alpha blending
	AA1  bool  // antialiasing
	FST  bool  // UV instead of STQ texture coordinates
	CTXT bool  // use the second drawing context
	FIX  bool  // fragment value control
}

// RGBAQReg holds the vertex colour and the Q texture coordinate divisor.
type RGBAQReg struct {
	R, G, B, A uint8
	Q          float32
}

// STReg holds perspective texture coordinates.
type STReg struct {
	S, T float32
}

// UVReg holds 14 bit fixed point texel coordinates with 4 fractional bits.
type UVReg struct {
	U, V uint16
}

// Texel returns the coordinates in texel units.
func (uv UVReg) Texel() (float32, float32) {
	return bf.Fixed4(uint64(uv.U)), bf.Fixed4(uint64(uv.V))
}

// XYZF is a vertex position with fog coefficient.
type XYZF struct {
	X, Y uint16 // 12.4 fixed point
	Z    uint32 // 24 bit
	F    uint8
}

// XYZ is a vertex position with 32 bit depth.
type XYZ struct {
	X, Y uint16
	Z    uint32
}

// Tex0 describes the texture and CLUT used for drawing.
type Tex0 struct {
	TBP0 uint16 // texture base pointer in 64 word units
	TBW  uint8  // texture buffer width in 64 texel units
	PSM  uint8
	TW   uint8 // log2 width
	TH   uint8 // log2 height
	TCC  bool
	TFX  uint8
	CBP  uint16 // CLUT base pointer in 64 word units
	CPSM uint8
	CSM  bool
	CSA  uint8
	CLD  uint8
}

// Width returns the texture width in texels.
func (t Tex0) Width() int {
	return 1 << t.TW
}

// Height returns the texture height in texels.
func (t Tex0) Height() int {
	return 1 << t.TH
}

// Tex1 holds the texture filtering and mipmap parameters.
type Tex1 struct {
	LCM  bool
	MXL  uint8
	MMAG bool
	MMIN uint8
	MTBA bool
	L    uint8
	K    uint16
}

// Tex2 is the CLUT subset of TEX0.
type Tex2 struct {
	PSM  uint8
	CBP  uint16
	CPSM uint8
	CSM  bool
	CSA  uint8
	CLD  uint8
}

// Clamp sets the texture wrap modes.
type Clamp struct {
	WMS, WMT   uint8
	MinU, MaxU uint16
	MinV, MaxV uint16
}

// Fog holds the vertex fog coefficient.
type Fog struct {
	F uint8
}

// XYOffset is the primitive to window coordinate offset.
type XYOffset struct {
	OFX, OFY uint16
}

// PrModeCont selects whether PRIM or PRMODE controls the attributes.
type PrModeCont struct {
	AC bool
}

// TexClut places a CSM2 mode CLUT.
type TexClut struct {
	CBW uint8
	COU uint8
	COV uint16
}

// ScanMsk controls raster line masking.
type ScanMsk struct {
	MSK uint8
}

// MipTbp holds three mipmap level base pointers and widths.
type MipTbp struct {
	TBP [3]uint16
	TBW [3]uint8
}

// TexA sets the alpha expansion of 24 and 16 bit textures.
type TexA struct {
	TA0 uint8
	AEM bool
	TA1 uint8
}

// FogCol is the distant fog colour.
type FogCol struct {
	R, G, B uint8
}

// TexFlush carries no data, writing it flushes the texture cache.
type TexFlush struct{}

// Scissor is the drawing clip rectangle.
type Scissor struct {
	X0, X1 uint16
	Y0, Y1 uint16
}

// Alpha selects the alpha blending equation (A-B)*C+D.
type Alpha struct {
	A, B, C, D uint8
	FIX        uint8
}

// Dimx is the 4x4 signed dither matrix.
type Dimx struct {
	Matrix [4][4]int8
}

// Toggle is used by single bit registers like DTHE, COLCLAMP, PABE and FBA.
type Toggle struct {
	Enabled bool
}

// Test controls the alpha, destination alpha and depth tests.
type Test struct {
	ATE   bool
	ATST  uint8
	AREF  uint8
	AFAIL uint8
	DATE  bool
	DATM  bool
	ZTE   bool
	ZTST  uint8
}

// Frame describes the frame buffer.
type Frame struct {
	FBP   uint16
	FBW   uint8
	PSM   uint8
	FBMSK uint32
}

// ZBuf describes the depth buffer.
type ZBuf struct {
	ZBP  uint16
	PSM  uint8
	ZMSK bool
}

// BitBltBuf sets the source and destination buffers of a local transfer.
type BitBltBuf struct {
	SBP  uint16
	SBW  uint8
	SPSM uint8
	DBP  uint16 // destination base pointer in 64 word units
	DBW  uint8  // destination buffer width in 64 pixel units
	DPSM uint8
}

// TrxPos sets the transfer origins and pixel order.
type TrxPos struct {
	SSAX, SSAY uint16
	DSAX, DSAY uint16
	DIR        uint8
}

// TrxReg sets the transfer rectangle size in pixels.
type TrxReg struct {
	RRW, RRH uint16
}

// Transfer directions of TRXDIR.
const (
	HostToLocal  = 0
	LocalToHost  = 1
	LocalToLocal = 2
	Deactivated  = 3
)

// TrxDir activates a transfer in the given direction.
type TrxDir struct {
	XDIR uint8
}

// HwReg is raw transfer data written directly.
type HwReg struct {
	Data uint64
}

// Signal is used by SIGNAL and LABEL.
type Signal struct {
	ID    uint32
	IDMSK uint32
}

// Finish carries no data.
type Finish struct{}

type decodeFunc func(v uint64) any

var decoders = map[Register]decodeFunc{
	PRIM:       decodePrim,
	RGBAQ:      decodeRGBAQ,
	ST:         decodeST,
	UV:         decodeUV,
	XYZF2:      decodeXYZF,
	XYZ2:       decodeXYZ,
	TEX0_1:     decodeTex0,
	TEX0_2:     decodeTex0,
	CLAMP_1:    decodeClamp,
	CLAMP_2:    decodeClamp,
	FOG:        func(v uint64) any { return Fog{F: uint8(bf.Field(v, 56, 8))} },
	XYZF3:      decodeXYZF,
	XYZ3:       decodeXYZ,
	TEX1_1:     decodeTex1,
	TEX1_2:     decodeTex1,
	TEX2_1:     decodeTex2,
	TEX2_2:     decodeTex2,
	XYOFFSET_1: decodeXYOffset,
	XYOFFSET_2: decodeXYOffset,
	PRMODECONT: func(v uint64) any { return PrModeCont{AC: bf.Flag(v, 0)} },
	PRMODE:     decodePrMode,
	TEXCLUT:    decodeTexClut,
	SCANMSK:    func(v uint64) any { return ScanMsk{MSK: uint8(bf.Field(v, 0, 2))} },
	MIPTBP1_1:  decodeMipTbp,
	MIPTBP1_2:  decodeMipTbp,
	MIPTBP2_1:  decodeMipTbp,
	MIPTBP2_2:  decodeMipTbp,
	TEXA:       decodeTexA,
	FOGCOL:     decodeFogCol,
	TEXFLUSH:   func(uint64) any { return TexFlush{} },
	SCISSOR_1:  decodeScissor,
	SCISSOR_2:  decodeScissor,
	ALPHA_1:    decodeAlpha,
	ALPHA_2:    decodeAlpha,
	DIMX:       decodeDimx,
	DTHE:       decodeToggle,
	COLCLAMP:   decodeToggle,
	TEST_1:     decodeTest,
	TEST_2:     decodeTest,
	PABE:       decodeToggle,
	FBA_1:      decodeToggle,
	FBA_2:      decodeToggle,
	FRAME_1:    decodeFrame,
	FRAME_2:    decodeFrame,
	ZBUF_1:     decodeZBuf,
	ZBUF_2:     decodeZBuf,
	BITBLTBUF:  decodeBitBltBuf,
	TRXPOS:     decodeTrxPos,
	TRXREG:     decodeTrxReg,
	TRXDIR:     func(v uint64) any { return TrxDir{XDIR: uint8(bf.Field(v, 0, 2))} },
	HWREG:      func(v uint64) any { return HwReg{Data: v} },
	SIGNAL:     decodeSignal,
	FINISH:     func(uint64) any { return Finish{} },
	LABEL:      decodeSignal,
}

func decodePrim(v uint64) any {
	p := decodePrModeBits(v)
	p.Type = uint8(bf.Field(v, 0, 3))
	return p
}

func decodePrMode(v uint64) any {
	return decodePrModeBits(v)
}

func decodePrModeBits(v uint64) Prim {
	return Prim{
		IIP:  bf.Flag(v, 3),
		TME:  bf.Flag(v, 4),
		FGE:  bf.Flag(v, 5),
		ABE:  bf.Flag(v, 6),
		AA1:  bf.Flag(v, 7),
		FST:  bf.Flag(v, 8),
		CTXT: bf.Flag(v, 9),
		FIX:  bf.Flag(v, 10),
	}
}

func decodeRGBAQ(v uint64) any {
	return RGBAQReg{
		R: uint8(bf.Field(v, 0, 8)),
		G: uint8(bf.Field(v, 8, 8)),
		B: uint8(bf.Field(v, 16, 8)),
		A: uint8(bf.Field(v, 24, 8)),
		Q: bf.Float32(bf.Field(v, 32, 32)),
	}
}

func decodeST(v uint64) any {
	return STReg{
		S: bf.Float32(bf.Field(v, 0, 32)),
		T: bf.Float32(bf.Field(v, 32, 32)),
	}
}

func decodeUV(v uint64) any {
	return UVReg{
		U: uint16(bf.Field(v, 0, 14)),
		V: uint16(bf.Field(v, 16, 14)),
	}
}

func decodeXYZF(v uint64) any {
	return XYZF{
		X: uint16(bf.Field(v, 0, 16)),
		Y: uint16(bf.Field(v, 16, 16)),
		Z: uint32(bf.Field(v, 32, 24)),
		F: uint8(bf.Field(v, 56, 8)),
	}
}

func decodeXYZ(v uint64) any {
	return XYZ{
		X: uint16(bf.Field(v, 0, 16)),
		Y: uint16(bf.Field(v, 16, 16)),
		Z: uint32(bf.Field(v, 32, 32)),
	}
}

func decodeTex0(v uint64) any {
	return Tex0{
		TBP0: uint16(bf.Field(v, 0, 14)),
		TBW:  uint8(bf.Field(v, 14, 6)),
		PSM:  uint8(bf.Field(v, 20, 6)),
		TW:   uint8(bf.Field(v, 26, 4)),
		TH:   uint8(bf.Field(v, 30, 4)),
		TCC:  bf.Flag(v, 34),
		TFX:  uint8(bf.Field(v, 35, 2)),
		CBP:  uint16(bf.Field(v, 37, 14)),
		CPSM: uint8(bf.Field(v, 51, 4)),
		CSM:  bf.Flag(v, 55),
		CSA:  uint8(bf.Field(v, 56, 5)),
		CLD:  uint8(bf.Field(v, 61, 3)),
	}
}

func decodeTex1(v uint64) any {
	return Tex1{
		LCM:  bf.Flag(v, 0),
		MXL:  uint8(bf.Field(v, 2, 3)),
		MMAG: bf.Flag(v, 5),
		MMIN: uint8(bf.Field(v, 6, 3)),
		MTBA: bf.Flag(v, 9),
		L:    uint8(bf.Field(v, 19, 2)),
		K:    uint16(bf.Field(v, 32, 12)),
	}
}

func decodeTex2(v uint64) any {
	return Tex2{
		PSM:  uint8(bf.Field(v, 20, 6)),
		CBP:  uint16(bf.Field(v, 37, 14)),
		CPSM: uint8(bf.Field(v, 51, 4)),
		CSM:  bf.Flag(v, 55),
		CSA:  uint8(bf.Field(v, 56, 5)),
		CLD:  uint8(bf.Field(v, 61, 3)),
	}
}

func decodeClamp(v uint64) any {
	return Clamp{
		WMS:  uint8(bf.Field(v, 0, 2)),
		WMT:  uint8(bf.Field(v, 2, 2)),
		MinU: uint16(bf.Field(v, 4, 10)),
		MaxU: uint16(bf.Field(v, 14, 10)),
		MinV: uint16(bf.Field(v, 24, 10)),
		MaxV: uint16(bf.Field(v, 34, 10)),
	}
}

func decodeXYOffset(v uint64) any {
	return XYOffset{
		OFX: uint16(bf.Field(v, 0, 16)),
		OFY: uint16(bf.Field(v, 32, 16)),
	}
}

func decodeTexClut(v uint64) any {
	return TexClut{
		CBW: uint8(bf.Field(v, 0, 6)),
		COU: uint8(bf.Field(v, 6, 6)),
		COV: uint16(bf.Field(v, 12, 10)),
	}
}

func decodeMipTbp(v uint64) any {
	var m MipTbp
	for i := range m.TBP {
		shift := uint(i) * 20
		m.TBP[i] = uint16(bf.Field(v, shift, 14))
		m.TBW[i] = uint8(bf.Field(v, shift+14, 6))
	}
	return m
}

func decodeTexA(v uint64) any {
	return TexA{
		TA0: uint8(bf.Field(v, 0, 8)),
		AEM: bf.Flag(v, 15),
		TA1: uint8(bf.Field(v, 32, 8)),
	}
}

func decodeFogCol(v uint64) any {
	return FogCol{
		R: uint8(bf.Field(v, 0, 8)),
		G: uint8(bf.Field(v, 8, 8)),
		B: uint8(bf.Field(v, 16, 8)),
	}
}

func decodeScissor(v uint64) any {
	return Scissor{
		X0: uint16(bf.Field(v, 0, 11)),
		X1: uint16(bf.Field(v, 16, 11)),
		Y0: uint16(bf.Field(v, 32, 11)),
		Y1: uint16(bf.Field(v, 48, 11)),
	}
}

func decodeAlpha(v uint64) any {
	return Alpha{
		A:   uint8(bf.Field(v, 0, 2)),
		B:   uint8(bf.Field(v, 2, 2)),
		C:   uint8(bf.Field(v, 4, 2)),
		D:   uint8(bf.Field(v, 6, 2)),
		FIX: uint8(bf.Field(v, 32, 8)),
	}
}

// decodeDimx sign extends the 3 bit matrix entries, each stored in a nibble.
func decodeDimx(v uint64) any {
	var d Dimx
	for row := range d.Matrix {
		for col := range d.Matrix[row] {
			raw := int8(bf.Field(v, uint(row*16+col*4), 3))
			if raw&0x4 != 0 {
				raw -= 8
			}
			d.Matrix[row][col] = raw
		}
	}
	return d
}

func decodeToggle(v uint64) any {
	return Toggle{Enabled: bf.Flag(v, 0)}
}

func decodeTest(v uint64) any {
	return Test{
		ATE:   bf.Flag(v, 0),
		ATST:  uint8(bf.Field(v, 1, 3)),
		AREF:  uint8(bf.Field(v, 4, 8)),
		AFAIL: uint8(bf.Field(v, 12, 2)),
		DATE:  bf.Flag(v, 14),
		DATM:  bf.Flag(v, 15),
		ZTE:   bf.Flag(v, 16),
		ZTST:  uint8(bf.Field(v, 17, 2)),
	}
}

func decodeFrame(v uint64) any {
	return Frame{
		FBP:   uint16(bf.Field(v, 0, 9)),
		FBW:   uint8(bf.Field(v, 16, 6)),
		PSM:   uint8(bf.Field(v, 24, 6)),
		FBMSK: uint32(bf.Field(v, 32, 32)),
	}
}

func decodeZBuf(v uint64) any {
	return ZBuf{
		ZBP:  uint16(bf.Field(v, 0, 9)),
		PSM:  uint8(bf.Field(v, 24, 4)),
		ZMSK: bf.Flag(v, 32),
	}
}

func decodeBitBltBuf(v uint64) any {
	return BitBltBuf{
		SBP:  uint16(bf.Field(v, 0, 14)),
		SBW:  uint8(bf.Field(v, 16, 6)),
		SPSM: uint8(bf.Field(v, 24, 6)),
		DBP:  uint16(bf.Field(v, 32, 14)),
		DBW:  uint8(bf.Field(v, 48, 6)),
		DPSM: uint8(bf.Field(v, 56, 6)),
	}
}

func decodeTrxPos(v uint64) any {
	return TrxPos{
		SSAX: uint16(bf.Field(v, 0, 11)),
		SSAY: uint16(bf.Field(v, 16, 11)),
		DSAX: uint16(bf.Field(v, 32, 11)),
		DSAY: uint16(bf.Field(v, 48, 11)),
		DIR:  uint8(bf.Field(v, 59, 2)),
	}
}

func decodeTrxReg(v uint64) any {
	return TrxReg{
		RRW: uint16(bf.Field(v, 0, 12)),
		RRH: uint16(bf.Field(v, 32, 12)),
	}
}

func decodeSignal(v uint64) any {
	return Signal{
		ID:    uint32(bf.Field(v, 0, 32)),
		IDMSK: uint32(bf.Field(v, 32, 32)),
	}
}
