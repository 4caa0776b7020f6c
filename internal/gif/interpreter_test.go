package gif

import (
	"errors"
	"math"
	"testing"

	bf "github.com/retroenv/gsextract/internal/bitfield"
	"github.com/retroenv/gsextract/internal/errs"
	"github.com/retroenv/gsextract/internal/gs"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

type recordingSink struct {
	uploads  []Upload
	textures []gs.Tex0
}

func (s *recordingSink) Upload(u Upload) error {
	s.uploads = append(s.uploads, u)
	return nil
}

func (s *recordingSink) BindTexture(tex gs.Tex0) {
	s.textures = append(s.textures, tex)
}

func (s *recordingSink) totalBytes() int {
	var n int
	for _, u := range s.uploads {
		n += len(u.Data)
	}
	return n
}

// adWrite returns a packed A+D value writing value to reg.
func adWrite(reg gs.Register, value uint64) []byte {
	return bf.Uint128{Lo: value, Hi: uint64(reg)}.Bytes()
}

func adBlock(writes ...[]byte) []byte {
	tag := Tag{NLoop: uint16(len(writes)), NReg: 1, Mode: Packed}
	tag.Regs[0] = descAD
	data := tag.Encode()
	for _, w := range writes {
		data = append(data, w...)
	}
	return data
}

func imageTag(qwords uint16) []byte {
	return Tag{NLoop: qwords, Mode: Image, EOP: true, NReg: 1}.Encode()
}

func transferSetup(dbp uint16, psm gs.PixelFormat, width, height uint16, dsax, dsay uint16) []byte {
	return adBlock(
		adWrite(gs.BITBLTBUF, uint64(dbp)<<32|uint64(1)<<48|uint64(psm)<<56),
		adWrite(gs.TRXPOS, uint64(dsax)<<32|uint64(dsay)<<48),
		adWrite(gs.TRXREG, uint64(width)|uint64(height)<<32),
		adWrite(gs.TRXDIR, 0),
	)
}

func newTestInterpreter(t *testing.T) (*Interpreter, *gs.State, *recordingSink) {
	t.Helper()
	state := gs.NewState()
	sink := &recordingSink{}
	return New(log.NewTestLogger(t), state, sink), state, sink
}

func TestParseTag(t *testing.T) {
	in := Tag{NLoop: 0x7fff, EOP: true, PRE: true, Prim: 0x5a5, Mode: Image, NReg: 3}
	in.Regs[0] = 0xe
	in.Regs[15] = 0x1

	tag, err := ParseTag(in.Encode())
	assert.NoError(t, err)
	assert.Equal(t, in, tag)

	// a register count of 0 encodes 16
	tag, err = ParseTag(Tag{NLoop: 1, NReg: 16}.Encode())
	assert.NoError(t, err)
	assert.Equal(t, uint8(16), tag.NReg)
	assert.Equal(t, 16*16, tag.DataSize())
}

func TestImageBlockForwardsLoopCountQwords(t *testing.T) {
	it, _, sink := newTestInterpreter(t)

	data := transferSetup(0x100, gs.PSMT8, 16, 8, 0, 0)
	data = append(data, imageTag(8)...)
	data = append(data, make([]byte, 8*16)...)

	assert.NoError(t, it.Execute(data))
	assert.NoError(t, it.Finish())
	assert.Equal(t, 128, sink.totalBytes())
	assert.Equal(t, 128, it.Uploaded())
	assert.Equal(t, 2, it.Blocks())

	u := sink.uploads[0]
	assert.Equal(t, uint32(0x100), u.Address)
	assert.Equal(t, uint32(16), u.Width)
	assert.Equal(t, uint32(8), u.Height)
	assert.Equal(t, 8, u.BitsPerPixel)
	assert.Equal(t, gs.PSMT8, u.PixelFormat)
	assert.Equal(t, 1, u.Transfer)
}

func TestImageBlockAcrossPayloadWindows(t *testing.T) {
	it, _, sink := newTestInterpreter(t)

	head := transferSetup(0x40, gs.PSMCT32, 4, 4, 0, 0)
	head = append(head, imageTag(4)...)
	assert.NoError(t, it.Execute(head))
	// block waits for its data
	assert.Error(t, it.Finish())

	assert.NoError(t, it.Execute(make([]byte, 32)))
	assert.NoError(t, it.Execute(make([]byte, 32)))
	assert.NoError(t, it.Finish())

	assert.Len(t, sink.uploads, 2)
	assert.Equal(t, 64, sink.totalBytes())
	assert.Equal(t, sink.uploads[0].Transfer, sink.uploads[1].Transfer)
}

func TestTransferSpansImageBlocks(t *testing.T) {
	it, _, sink := newTestInterpreter(t)

	// 8x4 at 8 bits is sent as two blocks of one qword each
	data := transferSetup(0x20, gs.PSMT8, 8, 4, 0, 0)
	for range 2 {
		data = append(data, imageTag(1)...)
		data = append(data, make([]byte, 16)...)
	}
	// a new transfer direction write starts the next transfer
	data = append(data, transferSetup(0x40, gs.PSMT8, 4, 4, 0, 0)...)
	data = append(data, imageTag(1)...)
	data = append(data, make([]byte, 16)...)

	assert.NoError(t, it.Execute(data))
	assert.NoError(t, it.Finish())
	assert.Len(t, sink.uploads, 3)
	assert.Equal(t, 48, it.Uploaded())
	assert.Equal(t, 1, sink.uploads[1].Transfer)
	assert.Equal(t, 2, sink.uploads[2].Transfer)
}

func TestTransferPositionExtendsSize(t *testing.T) {
	it, _, sink := newTestInterpreter(t)

	data := transferSetup(0x80, gs.PSMCT16, 8, 2, 8, 4)
	data = append(data, imageTag(2)...)
	data = append(data, make([]byte, 32)...)

	assert.NoError(t, it.Execute(data))
	u := sink.uploads[0]
	assert.Equal(t, uint16(8), u.X)
	assert.Equal(t, uint16(4), u.Y)
	assert.Equal(t, uint32(16), u.Width)
	assert.Equal(t, uint32(6), u.Height)
	assert.Equal(t, uint32(8), u.RectWidth())
	assert.Equal(t, uint32(2), u.RectHeight())
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		name  string
		data  func() []byte
		check func(t *testing.T, err error)
	}{
		{
			name: "register list mode",
			data: func() []byte {
				return Tag{NLoop: 1, NReg: 1, Mode: RegList}.Encode()
			},
			check: func(t *testing.T, err error) {
				var modeErr *errs.UnsupportedModeError
				assert.True(t, errors.As(err, &modeErr))
				assert.Equal(t, "REGLIST", modeErr.Mode)
			},
		},
		{
			name: "rotated transfer",
			data: func() []byte {
				data := adBlock(
					adWrite(gs.BITBLTBUF, uint64(gs.PSMCT32)<<56),
					adWrite(gs.TRXPOS, uint64(2)<<59),
					adWrite(gs.TRXREG, 4|4<<32),
					adWrite(gs.TRXDIR, gs.HostToLocal),
				)
				return append(data, imageTag(1)...)
			},
			check: func(t *testing.T, err error) {
				var modeErr *errs.UnsupportedModeError
				assert.True(t, errors.As(err, &modeErr))
				assert.Equal(t, "TRXPOS", modeErr.Mode)
			},
		},
		{
			name: "local to host transfer",
			data: func() []byte {
				return adBlock(adWrite(gs.TRXDIR, gs.LocalToHost))
			},
			check: func(t *testing.T, err error) {
				var modeErr *errs.UnsupportedModeError
				assert.True(t, errors.As(err, &modeErr))
			},
		},
		{
			name: "reserved packed descriptor",
			data: func() []byte {
				tag := Tag{NLoop: 1, NReg: 1, Mode: Packed}
				tag.Regs[0] = 0xb
				return append(tag.Encode(), make([]byte, 16)...)
			},
			check: func(t *testing.T, err error) {
				var regErr *errs.UnknownRegisterError
				assert.True(t, errors.As(err, &regErr))
				assert.True(t, regErr.Packed)
				assert.Equal(t, uint8(0xb), regErr.ID)
			},
		},
		{
			name: "unknown A+D target",
			data: func() []byte {
				return adBlock(adWrite(gs.Register(0x70), 0))
			},
			check: func(t *testing.T, err error) {
				var regErr *errs.UnknownRegisterError
				assert.True(t, errors.As(err, &regErr))
				assert.Equal(t, uint8(0x70), regErr.ID)
			},
		},
		{
			name: "unknown pixel format",
			data: func() []byte {
				data := transferSetup(0, gs.PixelFormat(0x05), 4, 4, 0, 0)
				return append(data, imageTag(1)...)
			},
			check: func(t *testing.T, err error) {
				var psmErr *errs.UnknownPixelFormatError
				assert.True(t, errors.As(err, &psmErr))
			},
		},
		{
			name: "image without transfer setup",
			data: func() []byte {
				return imageTag(1)
			},
			check: func(t *testing.T, err error) {
				var chainErr *errs.MalformedChainError
				assert.True(t, errors.As(err, &chainErr))
				assert.Equal(t, reasonNoTransferSetup, chainErr.Reason)
			},
		},
		{
			name: "image without transfer direction",
			data: func() []byte {
				data := adBlock(
					adWrite(gs.BITBLTBUF, uint64(gs.PSMCT32)<<56),
					adWrite(gs.TRXPOS, 0),
					adWrite(gs.TRXREG, 4|4<<32),
				)
				return append(data, imageTag(1)...)
			},
			check: func(t *testing.T, err error) {
				var chainErr *errs.MalformedChainError
				assert.True(t, errors.As(err, &chainErr))
				assert.Equal(t, reasonNoActiveTransfer, chainErr.Reason)
			},
		},
		{
			name: "image after deactivated transfer",
			data: func() []byte {
				data := transferSetup(0, gs.PSMCT32, 4, 4, 0, 0)
				data = append(data, adBlock(adWrite(gs.TRXDIR, gs.Deactivated))...)
				return append(data, imageTag(1)...)
			},
			check: func(t *testing.T, err error) {
				var chainErr *errs.MalformedChainError
				assert.True(t, errors.As(err, &chainErr))
				assert.Equal(t, reasonNoActiveTransfer, chainErr.Reason)
			},
		},
		{
			name: "image after completed rectangle",
			data: func() []byte {
				data := transferSetup(0, gs.PSMCT32, 2, 2, 0, 0)
				data = append(data, imageTag(1)...)
				data = append(data, make([]byte, 16)...)
				return append(data, imageTag(1)...)
			},
			check: func(t *testing.T, err error) {
				var chainErr *errs.MalformedChainError
				assert.True(t, errors.As(err, &chainErr))
				assert.Equal(t, reasonNoActiveTransfer, chainErr.Reason)
			},
		},
		{
			name: "command tag split across windows",
			data: func() []byte {
				return make([]byte, 8)
			},
			check: func(t *testing.T, err error) {
				var chainErr *errs.MalformedChainError
				assert.True(t, errors.As(err, &chainErr))
				assert.Equal(t, reasonPartialTag, chainErr.Reason)
			},
		},
		{
			name: "packed value split across windows",
			data: func() []byte {
				return append(adBlock(adWrite(gs.PRIM, 0))[:TagSize], make([]byte, 8)...)
			},
			check: func(t *testing.T, err error) {
				var chainErr *errs.MalformedChainError
				assert.True(t, errors.As(err, &chainErr))
				assert.Equal(t, reasonPartialQword, chainErr.Reason)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, _, _ := newTestInterpreter(t)
			err := it.Execute(tt.data())
			assert.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestPackedRegisterDecoding(t *testing.T) {
	it, state, sink := newTestInterpreter(t)

	tag := Tag{NLoop: 1, NReg: 6, Mode: Packed, PRE: true, Prim: 0x14}
	tag.Regs = [16]uint8{descST, descRGBAQ, descUV, descXYZF2, descTex0_1, descNop}
	data := tag.Encode()

	// ST with Q 0.5
	data = append(data, bf.Uint128{
		Lo: uint64(math.Float32bits(0.25)) | uint64(math.Float32bits(0.75))<<32,
		Hi: uint64(math.Float32bits(0.5)),
	}.Bytes()...)
	// RGBAQ channels spread over the four words
	data = append(data, bf.Uint128{Lo: 0x10 | 0x20<<32, Hi: 0x30 | 0x80<<32}.Bytes()...)
	// UV 2.5, 1.0
	data = append(data, bf.Uint128{Lo: 40 | 16<<32}.Bytes()...)
	// XYZF2 with ADC set, written to XYZF3
	data = append(data, bf.Uint128{Lo: 0x100 | 0x200<<32, Hi: 0x123<<4 | 0x7<<36 | 1<<47}.Bytes()...)
	// TEX0_1 TBP0 0x200 PSMT8 CBP 0x300
	data = append(data, bf.Uint128{Lo: 0x200 | uint64(gs.PSMT8)<<20 | 0x300<<37}.Bytes()...)
	data = append(data, make([]byte, 16)...)

	assert.NoError(t, it.Execute(data))
	assert.NoError(t, it.Finish())

	prim, ok := state.Prim()
	assert.True(t, ok)
	assert.Equal(t, uint8(4), prim.Type)
	assert.True(t, prim.TME)

	assert.Equal(t, float32(0.5), state.Q())
	c, ok := state.RGBAQ()
	assert.True(t, ok)
	assert.Equal(t, gs.RGBAQReg{R: 0x10, G: 0x20, B: 0x30, A: 0x80, Q: 0.5}, c)

	v, ok := state.Value(gs.UV)
	assert.True(t, ok)
	u, vv := v.(gs.UVReg).Texel()
	assert.Equal(t, float32(2.5), u)
	assert.Equal(t, float32(1.0), vv)

	_, ok = state.Value(gs.XYZF2)
	assert.False(t, ok)
	v, ok = state.Value(gs.XYZF3)
	assert.True(t, ok)
	assert.Equal(t, gs.XYZF{X: 0x100, Y: 0x200, Z: 0x123, F: 0x7}, v.(gs.XYZF))

	assert.Len(t, sink.textures, 1)
	assert.Equal(t, uint16(0x200), sink.textures[0].TBP0)
	assert.Equal(t, uint16(0x300), sink.textures[0].CBP)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "packed", Packed.String())
	assert.Equal(t, "image", Image.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}
