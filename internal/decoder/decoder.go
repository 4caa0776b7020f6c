// Package decoder runs one decode session: it walks the transfer chain of a
// sub-asset, interprets its command blocks and returns the reassembled
// images and colour tables.
package decoder

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/retroenv/gsextract/internal/dma"
	"github.com/retroenv/gsextract/internal/errs"
	"github.com/retroenv/gsextract/internal/gif"
	"github.com/retroenv/gsextract/internal/gs"
	"github.com/retroenv/gsextract/internal/palette"
	"github.com/retroenv/gsextract/internal/profile"
	"github.com/retroenv/gsextract/internal/texture"
	"github.com/retroenv/gsextract/internal/vif"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Result contains the records of a decode session. The caller owns them.
type Result struct {
	Images   map[uint32]*texture.Image   // keyed by destination address
	Palettes map[uint32]palette.Palette // display order tables keyed by address

	Packets   int // chain packets walked
	Blocks    int // command blocks executed
	Uploaded  int // image bytes transferred
	Registers int // register writes
}

// Addresses returns the image addresses in ascending order.
func (r *Result) Addresses() []uint32 {
	addresses := maps.Keys(r.Images)
	slices.Sort(addresses)
	return addresses
}

// Render returns the image at address in display colours, using its linked
// colour table if it has one.
func (r *Result) Render(address uint32) (*image.NRGBA, error) {
	img, ok := r.Images[address]
	if !ok {
		return nil, fmt.Errorf("no image at address 0x%04x", address)
	}
	var pal palette.Palette
	if img.HasPalette {
		pal = r.Palettes[img.PaletteAddress]
	}
	return img.Render(pal)
}

// Decode reads the source and decodes the sub-asset whose transfer chain
// starts at offset.
func Decode(logger *log.Logger, r io.ReadSeeker, offset int64, prof profile.Profile) (*Result, error) {
	data, start, err := readSource(r, offset, prof)
	if err != nil {
		return nil, err
	}

	logger.Debug("Decoding sub-asset",
		log.String("profile", prof.Name),
		log.Hex("offset", offset),
		log.String("size", humanize.IBytes(uint64(len(data)))))

	return DecodeBytes(logger, data, start, prof)
}

// DecodeBytes decodes the transfer chain starting at offset start of data.
func DecodeBytes(logger *log.Logger, data []byte, start int, prof profile.Profile) (*Result, error) {
	var opts []dma.Option
	if prof.AbsoluteAddresses {
		opts = append(opts, dma.WithBase(0))
	}
	packets, err := dma.Walk(data, start, opts...)
	if err != nil {
		return nil, fmt.Errorf("walking transfer chain: %w", err)
	}

	s := newSession(logger, prof)
	if err := s.run(packets); err != nil {
		return nil, err
	}

	images := s.extractor.Images()
	palettes, err := s.extractor.LinkPalettes()
	if err != nil {
		return nil, fmt.Errorf("linking colour tables: %w", err)
	}

	if dropped := s.extractor.Dropped(); dropped > 0 {
		logger.Debug("Transfer data outside of transfer rectangles",
			log.String("size", humanize.IBytes(uint64(dropped))))
	}

	return &Result{
		Images:    images,
		Palettes:  palettes,
		Packets:   len(packets),
		Blocks:    s.interpreter.Blocks(),
		Uploaded:  s.interpreter.Uploaded(),
		Registers: s.state.Writes(),
	}, nil
}

// readSource returns the bytes the chain is read from and the start offset
// within them.
func readSource(r io.ReadSeeker, offset int64, prof profile.Profile) ([]byte, int, error) {
	seekTo := offset
	if prof.AbsoluteAddresses {
		seekTo = 0
	}
	if _, err := r.Seek(seekTo, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seeking to offset 0x%x: %w", seekTo, err)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("reading source: %w", err)
	}

	start := int(offset - seekTo)
	if start > len(data) {
		return nil, 0, fmt.Errorf("offset 0x%x is outside of the source of %d bytes", offset, len(data))
	}
	return data, start, nil
}

// session holds the state of a single decode call.
type session struct {
	logger      *log.Logger
	state       *gs.State
	extractor   *texture.Extractor
	interpreter *gif.Interpreter
	splitter    *vif.Splitter // set for the vector interface path
}

func newSession(logger *log.Logger, prof profile.Profile) *session {
	state := gs.NewState()
	extractor := texture.NewExtractor(logger, prof.NormalizeAlpha)

	s := &session{
		logger:      logger,
		state:       state,
		extractor:   extractor,
		interpreter: gif.New(logger, state, extractor),
	}
	if prof.Path == profile.VIF {
		s.splitter = vif.New(logger)
	}
	return s
}

func (s *session) run(packets []dma.Packet) error {
	for _, p := range packets {
		s.logger.Debug("Chain packet",
			log.Stringer("tag", p.Tag),
			log.Hex("offset", p.TagOffset))

		data := p.Payload
		if s.splitter != nil {
			var err error
			data, err = s.splitter.Feed(p.Tag.Data, p.Payload)
			if err != nil {
				return fmt.Errorf("splitting packet: %w", withOffset(err, p.TagOffset))
			}
		}

		if err := s.interpreter.Execute(data); err != nil {
			return fmt.Errorf("executing packet: %w", withOffset(err, p.TagOffset))
		}
	}

	if s.splitter != nil {
		if err := s.splitter.Finish(); err != nil {
			return err
		}
	}
	return s.interpreter.Finish()
}

// withOffset sets the tag offset of a malformed data error raised while
// processing a packet payload, other errors are returned unchanged.
func withOffset(err error, offset int) error {
	var chainErr *errs.MalformedChainError
	if errors.As(err, &chainErr) && chainErr.Offset == 0 {
		chainErr.Offset = offset
	}
	return err
}
