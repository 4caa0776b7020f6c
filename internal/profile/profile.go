// Package profile defines the texture container formats that share the
// decode pipeline.
package profile

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Path is the way chain payloads reach the graphics interface.
type Path string

// payload paths.
const (
	GIF Path = "gif" // payloads are command blocks
	VIF Path = "vif" // payloads are vector interface code streams
)

// Auto selects the profile by inspecting the data.
const Auto = "auto"

// Profile supplies the format specific settings of a decode.
type Profile struct {
	Name           string
	Description    string
	Path           Path
	NormalizeAlpha bool // 32 bit alpha 0x80 means opaque
	// AbsoluteAddresses makes chain addresses relative to the start of the
	// source instead of the sub-asset offset.
	AbsoluteAddresses bool
}

var profiles = map[string]Profile{
	"gif": {
		Name:           "gif",
		Description:    "transfer chain of command blocks",
		Path:           GIF,
		NormalizeAlpha: true,
	},
	"vif": {
		Name:           "vif",
		Description:    "transfer chain of vector interface packets",
		Path:           VIF,
		NormalizeAlpha: true,
	},
	"dump": {
		Name:              "dump",
		Description:       "memory dump with absolute chain addresses and raw alpha",
		Path:              GIF,
		AbsoluteAddresses: true,
	},
}

// Get returns the profile with the given name.
func Get(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Profile{}, fmt.Errorf("unsupported profile '%s', valid profiles: %s",
			name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Names returns the sorted names of all profiles.
func Names() []string {
	names := maps.Keys(profiles)
	slices.Sort(names)
	return names
}
