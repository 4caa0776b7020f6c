// Package pipeline orchestrates the extraction workflow stages.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"
	"github.com/retroenv/gsextract/internal/decoder"
	"github.com/retroenv/gsextract/internal/detector"
	"github.com/retroenv/gsextract/internal/loader"
	"github.com/retroenv/gsextract/internal/options"
	"github.com/retroenv/gsextract/internal/verification"
	"github.com/retroenv/gsextract/internal/writer"
	"github.com/retroenv/retrogolib/log"
)

// Summary contains the counters of an extraction run.
type Summary struct {
	SubAssets int // sub-assets decoded successfully
	Failed    int // sub-assets that failed to decode or write
	Images    int // decoded images
	Written   int // image files written
	Verified  int // images that matched their reference dump
	Uploaded  int // image bytes transferred
}

// Pipeline orchestrates the complete extraction workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader

	mu      sync.Mutex
	summary Summary
}

// New creates a new extraction pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute decodes all sub-assets of the input file and writes their images.
// A failing sub-asset is logged and does not stop the others.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, extractOpts options.Extraction) (Summary, error) {
	data, err := p.loader.Load(opts)
	if err != nil {
		return Summary{}, fmt.Errorf("loading asset file: %w", err)
	}
	if err := p.loader.CheckOffsets(data, extractOpts.Offsets); err != nil {
		return Summary{}, fmt.Errorf("checking offsets: %w", err)
	}

	p.printInfo(opts, data, extractOpts)

	dir := opts.Output
	if dir == "" {
		dir = filepath.Dir(opts.Input)
	}
	w := writer.New(dir, writer.Options{
		Format: opts.Format,
		Scale:  opts.Scale,
	})

	p.summary = Summary{}
	workers := max(extractOpts.Workers, 1)
	wg := sizedwaitgroup.New(workers)

	for _, offset := range extractOpts.Offsets {
		if err := wg.AddWithContext(ctx); err != nil {
			break
		}

		go func(offset int64) {
			defer wg.Done()
			p.processSubAsset(opts, extractOpts, w, data, offset)
		}(offset)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return p.summary, fmt.Errorf("extracting: %w", err)
	}
	return p.summary, nil
}

// processSubAsset decodes the sub-asset at offset using a private reader
// over the shared file bytes and writes its images.
func (p *Pipeline) processSubAsset(opts options.Program, extractOpts options.Extraction,
	w *writer.Writer, data []byte, offset int64) {

	if err := p.extract(opts, extractOpts, w, data, offset); err != nil {
		p.logger.Error("Extracting sub-asset failed",
			log.String("file", opts.Input),
			log.Hex("offset", offset),
			log.Err(err))
		p.update(func(s *Summary) { s.Failed++ })
	}
}

func (p *Pipeline) extract(opts options.Program, extractOpts options.Extraction,
	w *writer.Writer, data []byte, offset int64) error {

	prof, err := p.detector.Detect(extractOpts.Profile, data, offset)
	if err != nil {
		return fmt.Errorf("detecting profile: %w", err)
	}

	result, err := decoder.Decode(p.logger, bytes.NewReader(data), offset, prof)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	p.logger.Info("Decoded sub-asset",
		log.Hex("offset", offset),
		log.String("profile", prof.Name),
		log.Int("packets", result.Packets),
		log.Int("blocks", result.Blocks),
		log.Int("images", len(result.Images)),
		log.Int("palettes", len(result.Palettes)),
		log.String("uploaded", humanize.IBytes(uint64(result.Uploaded))))

	written, verified, err := p.writeImages(opts, w, result, offset)
	p.update(func(s *Summary) {
		s.SubAssets++
		s.Images += len(result.Images)
		s.Uploaded += result.Uploaded
		s.Written += written
		s.Verified += verified
	})
	return err
}

// writeImages renders, writes and verifies the images of a decode result.
// It returns the number of written and verified images.
func (p *Pipeline) writeImages(opts options.Program, w *writer.Writer, result *decoder.Result,
	offset int64) (int, int, error) {

	var written, verified int
	for _, address := range result.Addresses() {
		img := result.Images[address]
		if _, isClut := result.Palettes[address]; isClut && opts.NoCluts {
			continue
		}

		if opts.Overview {
			p.logger.Info("Image",
				log.Hex("offset", offset),
				log.Stringer("image", img))
		}

		rendered, err := result.Render(address)
		if err != nil {
			return written, verified, fmt.Errorf("rendering image 0x%04x: %w", address, err)
		}

		name := writer.Filename(opts.Input, offset, address, opts.Format)
		if opts.Verify != "" {
			if err := verification.VerifyImage(p.logger, opts.Verify, name, rendered); err != nil {
				return written, verified, fmt.Errorf("verification failed: %w", err)
			}
			verified++
		}

		if opts.DryRun {
			continue
		}
		path, err := w.WriteImage(name, rendered)
		if err != nil {
			return written, verified, fmt.Errorf("writing image 0x%04x: %w", address, err)
		}
		written++
		p.logger.Debug("Wrote image", log.String("file", path))
	}
	return written, verified, nil
}

func (p *Pipeline) update(fn func(s *Summary)) {
	p.mu.Lock()
	fn(&p.summary)
	p.mu.Unlock()
}

// printInfo prints information about the asset file being processed.
func (p *Pipeline) printInfo(opts options.Program, data []byte, extractOpts options.Extraction) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing asset file",
		log.String("file", opts.Input),
		log.String("size", humanize.IBytes(uint64(len(data)))),
		log.Int("sub-assets", len(extractOpts.Offsets)),
		log.String("profile", extractOpts.Profile),
	)
}
