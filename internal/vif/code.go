// Package vif splits vector interface code streams into the graphics
// interface packets they carry.
package vif

import "fmt"

// Code is a 32 bit VIF code.
type Code uint32

// CodeSize is the size of a VIF code in bytes.
const CodeSize = 4

// VIF commands.
const (
	CmdNOP      = 0x00
	CmdSTCYCL   = 0x01
	CmdOFFSET   = 0x02
	CmdBASE     = 0x03
	CmdITOP     = 0x04
	CmdSTMOD    = 0x05
	CmdMSKPATH3 = 0x06
	CmdMARK     = 0x07
	CmdFLUSHE   = 0x10
	CmdFLUSH    = 0x11
	CmdFLUSHA   = 0x13
	CmdMSCAL    = 0x14
	CmdMSCALF   = 0x15
	CmdMSCNT    = 0x17
	CmdSTMASK   = 0x20
	CmdSTROW    = 0x30
	CmdSTCOL    = 0x31
	CmdMPG      = 0x4a
	CmdDIRECT   = 0x50
	CmdDIRECTHL = 0x51
	CmdUNPACK   = 0x60 // 0x60 to 0x7f
)

var commandNames = map[uint8]string{
	CmdNOP:      "NOP",
	CmdSTCYCL:   "STCYCL",
	CmdOFFSET:   "OFFSET",
	CmdBASE:     "BASE",
	CmdITOP:     "ITOP",
	CmdSTMOD:    "STMOD",
	CmdMSKPATH3: "MSKPATH3",
	CmdMARK:     "MARK",
	CmdFLUSHE:   "FLUSHE",
	CmdFLUSH:    "FLUSH",
	CmdFLUSHA:   "FLUSHA",
	CmdMSCAL:    "MSCAL",
	CmdMSCALF:   "MSCALF",
	CmdMSCNT:    "MSCNT",
	CmdSTMASK:   "STMASK",
	CmdSTROW:    "STROW",
	CmdSTCOL:    "STCOL",
	CmdMPG:      "MPG",
	CmdDIRECT:   "DIRECT",
	CmdDIRECTHL: "DIRECTHL",
}

// Cmd returns the command without the interrupt bit.
func (c Code) Cmd() uint8 {
	return uint8(c>>24) & 0x7f
}

// Num returns the NUM field.
func (c Code) Num() uint8 {
	return uint8(c >> 16)
}

// Imm returns the immediate field.
func (c Code) Imm() uint16 {
	return uint16(c)
}

// IRQ returns whether the interrupt bit is set.
func (c Code) IRQ() bool {
	return c>>31 != 0
}

// IsUnpack returns whether the code is an UNPACK command.
func (c Code) IsUnpack() bool {
	return c.Cmd()&CmdUNPACK == CmdUNPACK
}

// Name returns the mnemonic of the command.
func (c Code) Name() string {
	if c.IsUnpack() {
		return "UNPACK"
	}
	if name, ok := commandNames[c.Cmd()]; ok {
		return name
	}
	return fmt.Sprintf("CMD_0x%02x", c.Cmd())
}

// Known returns whether the command is a defined VIF command.
func (c Code) Known() bool {
	if c.IsUnpack() {
		return true
	}
	_, ok := commandNames[c.Cmd()]
	return ok
}

func (c Code) String() string {
	return fmt.Sprintf("%s num=%d imm=0x%04x", c.Name(), c.Num(), c.Imm())
}

// unpack format fields.
func (c Code) unpackVL() uint8 { return c.Cmd() & 0x3 }
func (c Code) unpackVN() uint8 { return (c.Cmd() >> 2) & 0x3 }
func (c Code) unsigned() bool  { return c.Imm()&(1<<14) != 0 }
