// Package bitfield decodes fixed-width sub-fields from 64 and 128 bit raw
// register values.
package bitfield

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Size128 is the size in bytes of a 128 bit value.
const Size128 = 16

// Field returns width bits of v starting at bit shift.
func Field(v uint64, shift, width uint) uint64 {
	if width >= 64 {
		return v >> shift
	}
	return (v >> shift) & (1<<width - 1)
}

// Flag returns whether bit shift of v is set.
func Flag(v uint64, shift uint) bool {
	return (v>>shift)&1 != 0
}

// Float32 interprets the low 32 bits of v as an IEEE 754 single.
func Float32(v uint64) float32 {
	return math.Float32frombits(uint32(v))
}

// Fixed4 converts an unsigned fixed point value with 4 fractional bits.
func Fixed4(v uint64) float32 {
	return float32(v) / 16
}

// Uint128 is a little-endian 128 bit value split in two halves.
type Uint128 struct {
	Lo uint64
	Hi uint64
}

// Uint128FromBytes reads a little-endian 128 bit value from the first 16 bytes of b.
func Uint128FromBytes(b []byte) (Uint128, error) {
	if len(b) < Size128 {
		return Uint128{}, fmt.Errorf("need %d bytes for a 128 bit value, got %d", Size128, len(b))
	}
	return Uint128{
		Lo: binary.LittleEndian.Uint64(b[0:8]),
		Hi: binary.LittleEndian.Uint64(b[8:16]),
	}, nil
}

// Field returns width bits starting at bit shift, the field may span both halves.
// Width must not exceed 64.
func (u Uint128) Field(shift, width uint) uint64 {
	switch {
	case shift >= 64:
		return Field(u.Hi, shift-64, width)
	case shift+width <= 64:
		return Field(u.Lo, shift, width)
	}

	lowBits := 64 - shift
	low := u.Lo >> shift
	high := Field(u.Hi, 0, width-lowBits)
	return low | high<<lowBits
}

// Flag returns whether bit shift is set.
func (u Uint128) Flag(shift uint) bool {
	return u.Field(shift, 1) != 0
}

// Bytes returns the little-endian representation of the value.
func (u Uint128) Bytes() []byte {
	b := make([]byte, Size128)
	binary.LittleEndian.PutUint64(b[0:8], u.Lo)
	binary.LittleEndian.PutUint64(b[8:16], u.Hi)
	return b
}

func (u Uint128) String() string {
	return fmt.Sprintf("0x%016x%016x", u.Hi, u.Lo)
}
