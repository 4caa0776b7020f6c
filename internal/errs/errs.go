// Package errs contains the typed errors returned by the decode pipeline.
// Callers match them with errors.As to decide whether a sub-asset should be
// skipped or the whole run aborted.
package errs

import "fmt"

// MalformedChainError reports a bounds or format violation in the transfer chain.
type MalformedChainError struct {
	Offset int    // buffer offset of the offending tag
	Reason string // short description of the violation
}

func (e *MalformedChainError) Error() string {
	return fmt.Sprintf("malformed transfer chain at offset 0x%x: %s", e.Offset, e.Reason)
}

// UnsupportedModeError reports a hardware mode that is not implemented because
// its layout is undocumented or was never observed in sample data.
type UnsupportedModeError struct {
	Mode   string
	Detail string
}

func (e *UnsupportedModeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unsupported mode %s", e.Mode)
	}
	return fmt.Sprintf("unsupported mode %s: %s", e.Mode, e.Detail)
}

// UnknownRegisterError reports a write to a register id that has no decoder.
type UnknownRegisterError struct {
	ID     uint8
	Packed bool // the id came from a packed mode register descriptor
}

func (e *UnknownRegisterError) Error() string {
	if e.Packed {
		return fmt.Sprintf("unknown packed register descriptor 0x%x", e.ID)
	}
	return fmt.Sprintf("unknown register 0x%02x", e.ID)
}

// UnknownPixelFormatError reports a pixel storage mode without a known bit depth.
type UnknownPixelFormatError struct {
	PSM uint8
}

func (e *UnknownPixelFormatError) Error() string {
	return fmt.Sprintf("unknown pixel storage mode 0x%02x", e.PSM)
}
