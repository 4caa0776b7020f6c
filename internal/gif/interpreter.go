package gif

import (
	"fmt"

	bf "github.com/retroenv/gsextract/internal/bitfield"
	"github.com/retroenv/gsextract/internal/errs"
	"github.com/retroenv/gsextract/internal/gs"
	"github.com/retroenv/retrogolib/log"
)

// reasons of the malformed data errors raised by the interpreter.
const (
	reasonNoTransferSetup  = "image data without BITBLTBUF and TRXREG setup"
	reasonNoActiveTransfer = "image data without an active host to local transfer"
	reasonPartialTag       = "command tag split across payload windows"
	reasonPartialQword     = "packed register value split across payload windows"
)

func malformed(reason string) error {
	return &errs.MalformedChainError{Reason: reason}
}

// Interpreter executes command blocks against the register state of one
// decode session. Blocks may continue across consecutive Execute calls.
type Interpreter struct {
	logger *log.Logger
	state  *gs.State
	sink   Sink

	current  *block
	transfer int  // sequence number of the latest transfer
	active   bool // a host to local transfer accepts image data
	pending  int  // rectangle bytes still expected, -1 until the first image block
	blocks   int
	uploaded int
}

// block is a command block whose data is being consumed.
type block struct {
	tag      Tag
	consumed int // consumed data bytes
	qwords   int // consumed packed register values
	upload   *Upload
}

func (b *block) remaining() int {
	return b.tag.DataSize() - b.consumed
}

// New returns an interpreter that writes into state and forwards image data to sink.
func New(logger *log.Logger, state *gs.State, sink Sink) *Interpreter {
	return &Interpreter{
		logger: logger,
		state:  state,
		sink:   sink,
	}
}

// Execute consumes a payload window of command blocks.
func (it *Interpreter) Execute(data []byte) error {
	for len(data) > 0 {
		if it.current == nil {
			if len(data) < TagSize {
				return malformed(reasonPartialTag)
			}
			if err := it.startBlock(data[:TagSize]); err != nil {
				return err
			}
			data = data[TagSize:]
			continue
		}

		n, err := it.consume(data)
		if err != nil {
			return err
		}
		data = data[n:]

		if it.current.remaining() == 0 {
			it.current = nil
		}
	}
	return nil
}

// Finish reports an error if the last command block did not receive all its data.
func (it *Interpreter) Finish() error {
	if it.current == nil {
		return nil
	}
	return &errs.MalformedChainError{
		Reason: fmt.Sprintf("command block %s truncated, %d bytes missing",
			it.current.tag, it.current.remaining()),
	}
}

// Blocks returns the number of command blocks started.
func (it *Interpreter) Blocks() int {
	return it.blocks
}

// Uploaded returns the number of image bytes forwarded to the sink.
func (it *Interpreter) Uploaded() int {
	return it.uploaded
}

func (it *Interpreter) startBlock(b []byte) error {
	tag, err := ParseTag(b)
	if err != nil {
		return err
	}
	it.blocks++

	it.logger.Debug("Command block",
		log.Stringer("mode", tag.Mode),
		log.Int("nloop", int(tag.NLoop)),
		log.Int("nreg", int(tag.NReg)))

	switch tag.Mode {
	case Packed:
		if tag.PRE {
			if err := it.writeRegister(gs.PRIM, uint64(tag.Prim)); err != nil {
				return err
			}
		}

	case RegList:
		return &errs.UnsupportedModeError{Mode: "REGLIST", Detail: "register list layout is not supported"}

	case Image, Disabled:
		if tag.NLoop > 0 {
			upload, err := it.resolveUpload()
			if err != nil {
				return err
			}
			it.current = &block{tag: tag, upload: &upload}
			return nil
		}
	}

	if tag.DataSize() > 0 {
		it.current = &block{tag: tag}
	}
	return nil
}

func (it *Interpreter) consume(data []byte) (int, error) {
	blk := it.current

	switch blk.tag.Mode {
	case Packed:
		return it.consumePacked(blk, data)

	case Image, Disabled:
		n := min(blk.remaining(), len(data))
		upload := *blk.upload
		upload.Data = data[:n:n]
		if err := it.sink.Upload(upload); err != nil {
			return 0, fmt.Errorf("uploading image data: %w", err)
		}
		blk.consumed += n
		it.uploaded += n

		// padding after the rectangle stays part of the block
		it.pending -= n
		if it.pending <= 0 {
			it.active = false
		}
		return n, nil

	default:
		return 0, &errs.UnsupportedModeError{Mode: blk.tag.Mode.String()}
	}
}

func (it *Interpreter) consumePacked(blk *block, data []byte) (int, error) {
	var n int
	for blk.remaining() > 0 && len(data)-n >= bf.Size128 {
		v, err := bf.Uint128FromBytes(data[n:])
		if err != nil {
			return n, err
		}

		desc := blk.tag.Regs[blk.qwords%int(blk.tag.NReg)]
		if err := it.writePacked(desc, v); err != nil {
			return n, err
		}

		blk.qwords++
		blk.consumed += bf.Size128
		n += bf.Size128
	}
	if n == 0 {
		return 0, malformed(reasonPartialQword)
	}
	return n, nil
}

// writeRegister writes a register and reacts to transfer and texture setup.
func (it *Interpreter) writeRegister(reg gs.Register, value uint64) error {
	if err := it.state.Write(reg, value); err != nil {
		return fmt.Errorf("writing register: %w", err)
	}

	it.logger.Debug("Register write",
		log.Stringer("register", reg),
		log.Hex("value", value))

	switch reg {
	case gs.TRXDIR:
		dir, _ := it.state.TrxDir()
		if dir.XDIR != gs.HostToLocal && dir.XDIR != gs.Deactivated {
			return &errs.UnsupportedModeError{
				Mode:   "TRXDIR",
				Detail: fmt.Sprintf("transfer direction %d", dir.XDIR),
			}
		}
		if dir.XDIR == gs.Deactivated {
			it.active = false
			break
		}
		it.transfer++
		it.active = true
		it.pending = -1

	case gs.TEX0_1, gs.TEX0_2:
		if binder, ok := it.sink.(TextureBinder); ok {
			ctx := 1
			if reg == gs.TEX0_2 {
				ctx = 2
			}
			tex, _ := it.state.Tex0(ctx)
			binder.BindTexture(tex)
		}
	}
	return nil
}

// resolveUpload computes the destination of image data from the transfer registers.
func (it *Interpreter) resolveUpload() (Upload, error) {
	buf, okBuf := it.state.BitBltBuf()
	reg, okReg := it.state.TrxReg()
	if !okBuf || !okReg {
		return Upload{}, malformed(reasonNoTransferSetup)
	}
	if !it.active {
		return Upload{}, malformed(reasonNoActiveTransfer)
	}
	pos, _ := it.state.TrxPos()

	if pos.DIR != 0 {
		return Upload{}, &errs.UnsupportedModeError{
			Mode:   "TRXPOS",
			Detail: fmt.Sprintf("pixel transmission order %d", pos.DIR),
		}
	}

	psm := gs.PixelFormat(buf.DPSM)
	bpp, err := psm.BitsPerPixel()
	if err != nil {
		return Upload{}, err
	}

	upload := Upload{
		Transfer:     it.transfer,
		Address:      uint32(buf.DBP),
		BufferWidth:  buf.DBW,
		Width:        uint32(reg.RRW),
		Height:       uint32(reg.RRH),
		BitsPerPixel: bpp,
		PixelFormat:  psm,
	}
	if it.pending < 0 {
		it.pending = (int(reg.RRW)*int(reg.RRH)*bpp + 7) / 8
	}
	if pos.DSAX != 0 || pos.DSAY != 0 {
		upload.X = pos.DSAX
		upload.Y = pos.DSAY
		upload.Width += uint32(pos.DSAX)
		upload.Height += uint32(pos.DSAY)
	}
	return upload, nil
}
