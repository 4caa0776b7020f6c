package dma

import (
	"fmt"

	"github.com/retroenv/gsextract/internal/errs"
	"github.com/retroenv/retrogolib/set"
)

const (
	callStackDepth = 2
	// DefaultMaxTags limits the number of tags of a single chain.
	DefaultMaxTags = 1 << 16
)

// Packet is a tag together with the payload window that follows it.
type Packet struct {
	Tag       Tag
	TagOffset int    // buffer offset of the tag
	Payload   []byte // QWC*16 bytes starting right after the tag
}

// PayloadOffset returns the buffer offset of the payload.
func (p Packet) PayloadOffset() int {
	return p.TagOffset + TagSize
}

// Option configures a chain walk.
type Option func(*walker)

// WithBase sets the buffer offset that tag addresses are relative to.
// By default addresses are relative to the start offset of the walk.
func WithBase(base int) Option {
	return func(w *walker) {
		w.base = base
		w.baseSet = true
	}
}

// WithMaxTags limits the number of tags that are followed.
func WithMaxTags(n int) Option {
	return func(w *walker) {
		w.maxTags = n
	}
}

type walker struct {
	buf     []byte
	base    int
	baseSet bool
	maxTags int

	stack [callStackDepth]int
	depth int
}

// visit identifies a tag position together with the return stack,
// revisiting one means the chain never terminates.
type visit struct {
	offset int
	depth  int
	stack  [callStackDepth]int
}

// Walk follows the transfer chain starting at offset start and returns all
// tags with their payload windows in traversal order.
func Walk(buf []byte, start int, opts ...Option) ([]Packet, error) {
	w := &walker{
		buf:     buf,
		maxTags: DefaultMaxTags,
	}
	for _, opt := range opts {
		opt(w)
	}
	if !w.baseSet {
		w.base = start
	}
	return w.walk(start)
}

func (w *walker) walk(start int) ([]Packet, error) {
	visited := set.New[visit]()
	var packets []Packet

	offset := start
	for {
		if len(packets) >= w.maxTags {
			return nil, &errs.MalformedChainError{
				Offset: offset,
				Reason: fmt.Sprintf("chain exceeds %d tags", w.maxTags),
			}
		}

		key := visit{offset: offset, depth: w.depth, stack: w.stack}
		if visited.Contains(key) {
			return nil, &errs.MalformedChainError{Offset: offset, Reason: "chain loops back to a visited tag"}
		}
		visited.Add(key)

		packet, err := w.read(offset)
		if err != nil {
			return nil, err
		}
		packets = append(packets, packet)

		next, done, err := w.advance(packet)
		if err != nil {
			return nil, err
		}
		if done {
			return packets, nil
		}
		offset = next
	}
}

// read decodes the tag at offset and slices its payload window.
func (w *walker) read(offset int) (Packet, error) {
	if offset < 0 || offset > len(w.buf)-TagSize {
		return Packet{}, &errs.MalformedChainError{
			Offset: offset,
			Reason: fmt.Sprintf("tag outside of buffer of size %d", len(w.buf)),
		}
	}

	tag, err := ParseTag(w.buf[offset:])
	if err != nil {
		return Packet{}, &errs.MalformedChainError{Offset: offset, Reason: err.Error()}
	}

	payloadStart := offset + TagSize
	payloadEnd := payloadStart + tag.PayloadSize()
	if payloadEnd > len(w.buf) {
		return Packet{}, &errs.MalformedChainError{
			Offset: offset,
			Reason: fmt.Sprintf("payload of %d bytes exceeds buffer of size %d", tag.PayloadSize(), len(w.buf)),
		}
	}

	return Packet{
		Tag:       tag,
		TagOffset: offset,
		Payload:   w.buf[payloadStart:payloadEnd:payloadEnd],
	}, nil
}

// advance returns the offset of the next tag or whether the chain ended.
func (w *walker) advance(p Packet) (int, bool, error) {
	afterPayload := p.PayloadOffset() + len(p.Payload)
	target := w.base + int(p.Tag.Addr)

	switch p.Tag.ID {
	case Refe, End:
		return 0, true, nil

	case Ref, Refs, Next:
		return target, false, nil

	case Cnt:
		return afterPayload, false, nil

	case Call:
		if w.depth == callStackDepth {
			return 0, false, &errs.MalformedChainError{Offset: p.TagOffset, Reason: "call stack overflow"}
		}
		w.stack[w.depth] = afterPayload
		w.depth++
		return target, false, nil

	case Ret:
		if w.depth == 0 {
			return 0, false, &errs.MalformedChainError{Offset: p.TagOffset, Reason: "return with empty call stack"}
		}
		w.depth--
		next := w.stack[w.depth]
		w.stack[w.depth] = 0
		return next, false, nil

	default:
		return 0, false, &errs.MalformedChainError{
			Offset: p.TagOffset,
			Reason: fmt.Sprintf("invalid tag id %d", uint8(p.Tag.ID)),
		}
	}
}
