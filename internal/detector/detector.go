// Package detector handles format profile detection.
package detector

import (
	"github.com/retroenv/gsextract/internal/dma"
	"github.com/retroenv/gsextract/internal/profile"
	"github.com/retroenv/gsextract/internal/vif"
	"github.com/retroenv/retrogolib/log"
)

// Detector handles format profile detection from options or the chain data.
type Detector struct {
	logger *log.Logger
}

// New creates a new profile detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect returns the named profile, or for the auto setting the profile
// matching the first chain packet of the sub-asset at offset.
func (d *Detector) Detect(name string, data []byte, offset int64) (profile.Profile, error) {
	if name != profile.Auto {
		return profile.Get(name)
	}

	p, err := profile.Get(string(d.detectFromChain(data, offset)))
	if err != nil {
		return profile.Profile{}, err
	}
	d.logger.Debug("Auto-detected profile",
		log.String("profile", p.Name),
		log.Hex("offset", offset))
	return p, nil
}

// detectFromChain returns the vector interface path when the first tag
// carries a code stream with DIRECT transfers, the command block path otherwise.
func (d *Detector) detectFromChain(data []byte, offset int64) profile.Path {
	if offset < 0 || offset+dma.TagSize > int64(len(data)) {
		return profile.GIF
	}

	tag, err := dma.ParseTag(data[offset:])
	if err != nil {
		return profile.GIF
	}

	payloadStart := int(offset) + dma.TagSize
	payloadEnd := min(payloadStart+tag.PayloadSize(), len(data))
	if vif.Probe(d.logger, tag.Data, data[payloadStart:payloadEnd]) {
		return profile.VIF
	}
	return profile.GIF
}
