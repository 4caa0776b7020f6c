package gs

import (
	"github.com/retroenv/gsextract/internal/errs"
)

// State is the register bank of one decode session. It must not be shared
// between sessions or goroutines.
type State struct {
	regs   map[Register]any
	raw    map[Register]uint64
	q      float32
	writes int
}

// NewState returns an empty register bank with Q initialized to 1.0.
func NewState() *State {
	return &State{
		regs: make(map[Register]any),
		raw:  make(map[Register]uint64),
		q:    1.0,
	}
}

// Write decodes the 64 bit value for the given register and stores the result.
func (s *State) Write(reg Register, value uint64) error {
	decode, ok := decoders[reg]
	if !ok {
		return &errs.UnknownRegisterError{ID: uint8(reg)}
	}

	s.regs[reg] = decode(value)
	s.raw[reg] = value
	s.writes++
	return nil
}

// Value returns the decoded value of a register and whether it was written.
func (s *State) Value(reg Register) (any, bool) {
	v, ok := s.regs[reg]
	return v, ok
}

// Raw returns the last raw 64 bit value written to a register.
func (s *State) Raw(reg Register) (uint64, bool) {
	v, ok := s.raw[reg]
	return v, ok
}

// Writes returns the number of register writes of the session.
func (s *State) Writes() int {
	return s.writes
}

// Q returns the internal texture coordinate divisor set by packed ST writes.
func (s *State) Q() float32 {
	return s.q
}

// SetQ sets the internal Q value that packed RGBAQ writes pick up.
func (s *State) SetQ(q float32) {
	s.q = q
}

// BitBltBuf returns the transfer buffer register.
func (s *State) BitBltBuf() (BitBltBuf, bool) {
	return lookup[BitBltBuf](s, BITBLTBUF)
}

// TrxPos returns the transfer position register.
func (s *State) TrxPos() (TrxPos, bool) {
	return lookup[TrxPos](s, TRXPOS)
}

// TrxReg returns the transfer region register.
func (s *State) TrxReg() (TrxReg, bool) {
	return lookup[TrxReg](s, TRXREG)
}

// TrxDir returns the transfer direction register.
func (s *State) TrxDir() (TrxDir, bool) {
	return lookup[TrxDir](s, TRXDIR)
}

// Prim returns the primitive register.
func (s *State) Prim() (Prim, bool) {
	return lookup[Prim](s, PRIM)
}

// RGBAQ returns the vertex colour register.
func (s *State) RGBAQ() (RGBAQReg, bool) {
	return lookup[RGBAQReg](s, RGBAQ)
}

// Tex0 returns the texture register of drawing context 1 or 2.
func (s *State) Tex0(context int) (Tex0, bool) {
	if context == 2 {
		return lookup[Tex0](s, TEX0_2)
	}
	return lookup[Tex0](s, TEX0_1)
}

func lookup[T any](s *State, reg Register) (T, bool) {
	v, ok := s.regs[reg].(T)
	return v, ok
}
