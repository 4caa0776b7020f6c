// Package chainbuilder assembles transfer chains of command blocks, used to
// build decoder input in tests.
package chainbuilder

import (
	bf "github.com/retroenv/gsextract/internal/bitfield"
	"github.com/retroenv/gsextract/internal/dma"
	"github.com/retroenv/gsextract/internal/gif"
	"github.com/retroenv/gsextract/internal/gs"
	"github.com/retroenv/gsextract/internal/vif"
)

// Write is a register write sent through the A+D descriptor.
type Write struct {
	Register gs.Register
	Value    uint64
}

// Builder collects the command data of chain packets.
type Builder struct {
	packets [][]byte
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// Packet appends a chain packet carrying the concatenated command data.
func (b *Builder) Packet(data ...[]byte) *Builder {
	var payload []byte
	for _, d := range data {
		payload = append(payload, d...)
	}
	b.packets = append(b.packets, payload)
	return b
}

// GIF returns a chain of cnt tags with command block payloads, terminated
// by an end tag.
func (b *Builder) GIF() []byte {
	var chain []byte
	for _, payload := range b.packets {
		tag := dma.Tag{QWC: uint16(len(payload) / dma.QwordSize), ID: dma.Cnt}
		chain = append(chain, tag.Encode()...)
		chain = append(chain, payload...)
	}
	return append(chain, dma.Tag{ID: dma.End}.Encode()...)
}

// VIF returns a chain whose tags carry a DIRECT code for their payload.
func (b *Builder) VIF() []byte {
	var chain []byte
	for _, payload := range b.packets {
		qwords := len(payload) / dma.QwordSize
		direct := uint64(vif.CmdDIRECT)<<24 | uint64(qwords&0xffff)
		tag := dma.Tag{QWC: uint16(qwords), ID: dma.Cnt, Data: direct << 32}
		chain = append(chain, tag.Encode()...)
		chain = append(chain, payload...)
	}
	return append(chain, dma.Tag{ID: dma.End}.Encode()...)
}

// ADBlock returns a packed command block of A+D register writes.
func ADBlock(writes ...Write) []byte {
	tag := gif.Tag{NLoop: uint16(len(writes)), NReg: 1, Mode: gif.Packed}
	tag.Regs[0] = 0xe
	data := tag.Encode()
	for _, w := range writes {
		data = append(data, bf.Uint128{Lo: w.Value, Hi: uint64(w.Register)}.Bytes()...)
	}
	return data
}

// TransferSetup returns the register writes of a host to local transfer of
// a width x height rectangle to address dbp.
func TransferSetup(dbp uint16, psm gs.PixelFormat, width, height uint16) []byte {
	return ADBlock(
		Write{gs.BITBLTBUF, uint64(dbp)<<32 | uint64(psm)<<56},
		Write{gs.TRXPOS, 0},
		Write{gs.TRXREG, uint64(width) | uint64(height)<<32},
		Write{gs.TRXDIR, gs.HostToLocal},
	)
}

// ImageBlock returns an image command block carrying data, padded to full qwords.
func ImageBlock(data []byte) []byte {
	qwords := (len(data) + bf.Size128 - 1) / bf.Size128
	block := gif.Tag{NLoop: uint16(qwords), EOP: true, NReg: 1, Mode: gif.Image}.Encode()
	block = append(block, data...)
	return append(block, make([]byte, qwords*bf.Size128-len(data))...)
}

// Upload returns the command data transferring a complete image.
func Upload(dbp uint16, psm gs.PixelFormat, width, height uint16, data []byte) []byte {
	return append(TransferSetup(dbp, psm, width, height), ImageBlock(data)...)
}
