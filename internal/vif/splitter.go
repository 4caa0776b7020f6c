package vif

import (
	"encoding/binary"
	"fmt"

	"github.com/retroenv/gsextract/internal/errs"
	"github.com/retroenv/retrogolib/log"
)

const reasonPartialCode = "code split across chain packets"

// Splitter walks the code stream of consecutive chain packets and collects
// the graphics interface data of DIRECT transfers. Operands and transfers may
// continue across packets.
type Splitter struct {
	logger *log.Logger

	cl, wl int // write cycle set by STCYCL

	skip   int // operand bytes still to skip
	direct int // DIRECT bytes still to forward

	codes   int
	directs int
}

// New returns a splitter with the cycle registers in their reset state.
func New(logger *log.Logger) *Splitter {
	return &Splitter{
		logger: logger,
		cl:     1,
		wl:     1,
	}
}

// Feed consumes one chain packet, the two codes held in the opaque qword of
// its tag followed by its payload, and returns the graphics interface data
// it contains.
func (s *Splitter) Feed(tagData uint64, payload []byte) ([]byte, error) {
	var head [8]byte
	binary.LittleEndian.PutUint64(head[:], tagData)

	var out []byte
	// the tag codes are only executed between transfers
	if s.skip == 0 && s.direct == 0 {
		if err := s.consume(head[:], &out); err != nil {
			return nil, err
		}
	}
	if err := s.consume(payload, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Finish returns an error if the stream ended inside an operand or a DIRECT transfer.
func (s *Splitter) Finish() error {
	if s.skip == 0 && s.direct == 0 {
		return nil
	}
	return &errs.MalformedChainError{
		Reason: fmt.Sprintf("code stream truncated, %d operand and %d transfer bytes missing", s.skip, s.direct),
	}
}

// Codes returns the number of codes executed.
func (s *Splitter) Codes() int {
	return s.codes
}

// Directs returns the number of DIRECT transfers seen.
func (s *Splitter) Directs() int {
	return s.directs
}

func (s *Splitter) consume(data []byte, out *[]byte) error {
	for len(data) > 0 {
		switch {
		case s.direct > 0:
			n := min(s.direct, len(data))
			*out = append(*out, data[:n]...)
			s.direct -= n
			data = data[n:]

		case s.skip > 0:
			n := min(s.skip, len(data))
			s.skip -= n
			data = data[n:]

		default:
			if len(data) < CodeSize {
				return &errs.MalformedChainError{Reason: reasonPartialCode}
			}
			code := Code(binary.LittleEndian.Uint32(data))
			data = data[CodeSize:]
			if err := s.execute(code); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Splitter) execute(code Code) error {
	s.codes++

	switch cmd := code.Cmd(); {
	case code.IsUnpack():
		size, err := s.unpackSize(code)
		if err != nil {
			return err
		}
		s.skip = size

	case cmd == CmdDIRECT || cmd == CmdDIRECTHL:
		qwords := int(code.Imm())
		if qwords == 0 {
			qwords = 1 << 16
		}
		s.direct = qwords * 16
		s.directs++

	case cmd == CmdSTCYCL:
		s.cl = int(code.Imm() & 0xff)
		s.wl = int(code.Imm() >> 8)

	case cmd == CmdSTMASK:
		s.skip = 4

	case cmd == CmdSTROW || cmd == CmdSTCOL:
		s.skip = 16

	case cmd == CmdMPG:
		instructions := int(code.Num())
		if instructions == 0 {
			instructions = 256
		}
		s.skip = instructions * 8

	case code.Known():

	default:
		return &errs.UnsupportedModeError{
			Mode:   "VIF",
			Detail: fmt.Sprintf("unknown command 0x%02x", cmd),
		}
	}

	s.logger.Debug("VIF code",
		log.Stringer("code", code),
		log.Int("skip", s.skip),
		log.Int("direct", s.direct))
	return nil
}

// unpackSize returns the size in bytes of the data following an UNPACK code.
func (s *Splitter) unpackSize(code Code) (int, error) {
	vn, vl := code.unpackVN(), code.unpackVL()
	switch {
	case vl == 3 && vn == 3:
		return 0, &errs.UnsupportedModeError{Mode: "UNPACK", Detail: "V4-5 colour format"}
	case vl == 3:
		return 0, &errs.UnsupportedModeError{Mode: "UNPACK", Detail: fmt.Sprintf("invalid format vn=%d vl=%d", vn, vl)}
	case vl != 0 && !code.unsigned():
		return 0, &errs.UnsupportedModeError{Mode: "UNPACK", Detail: fmt.Sprintf("signed %d bit elements", 32>>vl)}
	}

	num := int(code.Num())
	if num == 0 {
		num = 256
	}
	// with a filling write only CL of every WL vectors come from the stream
	vectors := num
	if s.wl > s.cl {
		vectors = s.cl*(num/s.wl) + min(num%s.wl, s.cl)
	}

	bits := vectors * int(vn+1) * (32 >> vl)
	words := (bits + 31) / 32
	return words * CodeSize, nil
}

// Probe reports whether a chain packet parses as a code stream that carries
// graphics interface data.
func Probe(logger *log.Logger, tagData uint64, payload []byte) bool {
	s := New(logger)
	if _, err := s.Feed(tagData, payload); err != nil {
		return false
	}
	return s.directs > 0
}
