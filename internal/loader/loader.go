// Package loader handles asset file loading operations.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/gsextract/internal/dma"
	"github.com/retroenv/gsextract/internal/options"
)

var errEmptyFile = errors.New("file is empty")

// Loader handles loading asset files from disk.
type Loader struct{}

// New creates a new asset loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the complete input file. The returned bytes are shared
// read-only by all decodes of the file.
func (l *Loader) Load(opts options.Program) ([]byte, error) {
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", opts.Input, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("loading %s: %w", opts.Input, errEmptyFile)
	}
	return data, nil
}

// CheckOffsets returns an error for the first offset that can not hold a
// transfer tag inside of data.
func (l *Loader) CheckOffsets(data []byte, offsets []int64) error {
	for _, offset := range offsets {
		if offset+dma.TagSize > int64(len(data)) {
			return fmt.Errorf("offset 0x%x is outside of the file of %d bytes", offset, len(data))
		}
	}
	return nil
}
