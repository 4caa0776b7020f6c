package dma

import (
	"errors"
	"testing"

	"github.com/retroenv/gsextract/internal/errs"
	"github.com/retroenv/retrogolib/assert"
)

// chainBuilder places tags with payloads at fixed buffer offsets.
type chainBuilder struct {
	buf []byte
}

func newChainBuilder(size int) *chainBuilder {
	return &chainBuilder{buf: make([]byte, size)}
}

// put writes a tag at offset followed by qwc quadwords filled with fill.
func (b *chainBuilder) put(offset int, id TagID, qwc uint16, addr uint32, fill byte) {
	tag := Tag{ID: id, QWC: qwc, Addr: addr}
	copy(b.buf[offset:], tag.Encode())
	payload := b.buf[offset+TagSize : offset+TagSize+int(qwc)*QwordSize]
	for i := range payload {
		payload[i] = fill
	}
}

func tagIDs(packets []Packet) []TagID {
	ids := make([]TagID, 0, len(packets))
	for _, p := range packets {
		ids = append(ids, p.Tag.ID)
	}
	return ids
}

func tagOffsets(packets []Packet) []int {
	offsets := make([]int, 0, len(packets))
	for _, p := range packets {
		offsets = append(offsets, p.TagOffset)
	}
	return offsets
}

func TestParseTag(t *testing.T) {
	in := Tag{QWC: 0x1234, PCE: 2, ID: Call, IRQ: true, Addr: 0x7654320, SPR: true, Data: 0x5000000a_00000000}

	tag, err := ParseTag(in.Encode())
	assert.NoError(t, err)
	assert.Equal(t, in, tag)
	assert.Equal(t, 0x1234*16, tag.PayloadSize())
	assert.Equal(t, "call qwc=4660 addr=0x7654320", tag.String())

	_, err = ParseTag(make([]byte, 8))
	assert.Error(t, err)
}

func TestWalkCntEnd(t *testing.T) {
	b := newChainBuilder(0x80)
	b.put(0x00, Cnt, 1, 0, 0xaa)
	b.put(0x20, Cnt, 2, 0, 0xbb)
	b.put(0x50, End, 1, 0, 0xcc)

	packets, err := Walk(b.buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, []TagID{Cnt, Cnt, End}, tagIDs(packets))
	assert.Equal(t, []int{0x00, 0x20, 0x50}, tagOffsets(packets))

	assert.Len(t, packets[1].Payload, 32)
	assert.Equal(t, byte(0xbb), packets[1].Payload[0])
	assert.Equal(t, 0x30, packets[1].PayloadOffset())
	// the final End tag still has its payload read
	assert.Len(t, packets[2].Payload, 16)
	assert.Equal(t, byte(0xcc), packets[2].Payload[15])
}

func TestWalkNextAndRef(t *testing.T) {
	b := newChainBuilder(0x100)
	b.put(0x00, Next, 1, 0x80, 0x01)
	b.put(0x80, Ref, 0, 0x40, 0)
	b.put(0x40, Refs, 1, 0xc0, 0x02)
	b.put(0xc0, Refe, 2, 0x10, 0x03)

	packets, err := Walk(b.buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, []TagID{Next, Ref, Refs, Refe}, tagIDs(packets))
	assert.Equal(t, []int{0x00, 0x80, 0x40, 0xc0}, tagOffsets(packets))
	assert.Len(t, packets[3].Payload, 32)
}

func TestWalkCallRet(t *testing.T) {
	b := newChainBuilder(0x100)
	b.put(0x00, Call, 1, 0x80, 0) // returns to 0x20
	b.put(0x20, End, 0, 0, 0)     // final tag
	b.put(0x80, Call, 0, 0xc0, 0) // returns to 0x90
	b.put(0x90, Ret, 1, 0, 0)     // back to 0x20
	b.put(0xc0, Ret, 0, 0, 0)     // back to 0x90

	packets, err := Walk(b.buf, 0)
	assert.NoError(t, err)
	assert.Equal(t, []TagID{Call, Call, Ret, Ret, End}, tagIDs(packets))
	assert.Equal(t, []int{0x00, 0x80, 0xc0, 0x90, 0x20}, tagOffsets(packets))
}

func TestWalkBase(t *testing.T) {
	b := newChainBuilder(0x200)
	b.put(0x100, Next, 0, 0x40, 0)
	b.put(0x140, End, 0, 0, 0)

	// addresses default to being relative to the start offset
	packets, err := Walk(b.buf, 0x100)
	assert.NoError(t, err)
	assert.Equal(t, []int{0x100, 0x140}, tagOffsets(packets))

	b.put(0x40, End, 0, 0, 0)
	packets, err = Walk(b.buf, 0x100, WithBase(0))
	assert.NoError(t, err)
	assert.Equal(t, []int{0x100, 0x40}, tagOffsets(packets))
}

func TestWalkMalformed(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *chainBuilder)
		size  int
		opts  []Option
	}{
		{
			name: "tag outside buffer",
			size: 0x20,
			setup: func(b *chainBuilder) {
				b.put(0x00, Next, 0, 0x18, 0)
			},
		},
		{
			name: "payload exceeds buffer",
			size: 0x20,
			setup: func(b *chainBuilder) {
				copy(b.buf, Tag{ID: Cnt, QWC: 2}.Encode())
			},
		},
		{
			name: "return with empty stack",
			size: 0x20,
			setup: func(b *chainBuilder) {
				b.put(0x00, Ret, 0, 0, 0)
			},
		},
		{
			name: "call stack overflow",
			size: 0x40,
			setup: func(b *chainBuilder) {
				b.put(0x00, Call, 0, 0x10, 0)
				b.put(0x10, Call, 0, 0x20, 0)
				b.put(0x20, Call, 0, 0x30, 0)
				b.put(0x30, End, 0, 0, 0)
			},
		},
		{
			name: "infinite loop",
			size: 0x20,
			setup: func(b *chainBuilder) {
				b.put(0x00, Next, 0, 0x10, 0)
				b.put(0x10, Next, 0, 0x00, 0)
			},
		},
		{
			name: "tag limit",
			size: 0x40,
			opts: []Option{WithMaxTags(2)},
			setup: func(b *chainBuilder) {
				b.put(0x00, Cnt, 0, 0, 0)
				b.put(0x10, Cnt, 0, 0, 0)
				b.put(0x20, End, 0, 0, 0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newChainBuilder(tt.size)
			tt.setup(b)

			_, err := Walk(b.buf, 0, tt.opts...)
			assert.Error(t, err)

			var chainErr *errs.MalformedChainError
			assert.True(t, errors.As(err, &chainErr))
		})
	}
}

func TestWalkInvalidTagID(t *testing.T) {
	w := &walker{}
	_, _, err := w.advance(Packet{Tag: Tag{ID: TagID(9)}})

	var chainErr *errs.MalformedChainError
	assert.True(t, errors.As(err, &chainErr))
	assert.ErrorContains(t, err, "invalid tag id 9")
}

func TestTagIDString(t *testing.T) {
	assert.Equal(t, "refe", Refe.String())
	assert.Equal(t, "end", End.String())
	assert.Equal(t, "tag(8)", TagID(8).String())
}
