// Package dma implements the source chain walker that follows transfer
// descriptor tags across a buffer.
package dma

import (
	"fmt"

	bf "github.com/retroenv/gsextract/internal/bitfield"
)

// TagSize is the size of a transfer tag in bytes.
const TagSize = bf.Size128

// QwordSize is the transfer unit size in bytes.
const QwordSize = 16

// TagID defines how the walker continues after a tag.
type TagID uint8

// tag ids.
const (
	Refe TagID = iota
	Cnt
	Next
	Ref
	Refs
	Call
	Ret
	End
)

var tagNames = [...]string{
	Refe: "refe",
	Cnt:  "cnt",
	Next: "next",
	Ref:  "ref",
	Refs: "refs",
	Call: "call",
	Ret:  "ret",
	End:  "end",
}

func (id TagID) String() string {
	if int(id) < len(tagNames) {
		return tagNames[id]
	}
	return fmt.Sprintf("tag(%d)", uint8(id))
}

// Tag is a decoded transfer descriptor tag.
type Tag struct {
	QWC  uint16 // payload size in quadwords
	PCE  uint8  // priority control
	ID   TagID
	IRQ  bool
	Addr uint32 // 31 bit address
	SPR  bool   // memory select, address refers to scratchpad
	Data uint64 // opaque upper quadword half, usually two VIF codes
}

// ParseTag decodes a tag from the first 16 bytes of b.
func ParseTag(b []byte) (Tag, error) {
	v, err := bf.Uint128FromBytes(b)
	if err != nil {
		return Tag{}, fmt.Errorf("reading tag: %w", err)
	}

	return Tag{
		QWC:  uint16(v.Field(0, 16)),
		PCE:  uint8(v.Field(26, 2)),
		ID:   TagID(v.Field(28, 3)),
		IRQ:  v.Flag(31),
		Addr: uint32(v.Field(32, 31)),
		SPR:  v.Flag(63),
		Data: v.Hi,
	}, nil
}

// PayloadSize returns the payload size in bytes.
func (t Tag) PayloadSize() int {
	return int(t.QWC) * QwordSize
}

// Encode returns the 16 byte representation of the tag.
func (t Tag) Encode() []byte {
	lo := uint64(t.QWC) |
		uint64(t.PCE&0x3)<<26 |
		uint64(t.ID&0x7)<<28 |
		uint64(t.Addr&0x7fffffff)<<32
	if t.IRQ {
		lo |= 1 << 31
	}
	if t.SPR {
		lo |= 1 << 63
	}
	return bf.Uint128{Lo: lo, Hi: t.Data}.Bytes()
}

func (t Tag) String() string {
	return fmt.Sprintf("%s qwc=%d addr=0x%x", t.ID, t.QWC, t.Addr)
}
