// Package options contains the program options.
package options

// Positional contains positional arguments.
type Positional struct {
	File string `arg:"positional" usage:"file to extract textures from"`
}

// Parameters contains file path options.
type Parameters struct {
	Input  string `flag:"i" usage:"input asset file"`
	Output string `flag:"o" usage:"output directory (default: <input name>_textures)"`
	Verify string `flag:"verify" usage:"directory of reference .rgba files to compare the decoded images against"`
	Batch  string `flag:"batch" usage:"batch process files matching pattern (e.g. *.tex)"`
}

// Flags contains behavior options.
type Flags struct {
	Offsets string `flag:"offset" usage:"comma separated sub-asset offsets, hex with 0x prefix or decimal" default:"0"`
	Profile string `flag:"profile" usage:"format profile: auto, dump, gif, vif" default:"auto"`
	Workers int    `flag:"workers" usage:"number of sub-assets decoded concurrently" default:"4"`
	Debug   bool   `flag:"debug" usage:"enable debug logging"`
	Quiet   bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains output formatting options.
type OutputFlags struct {
	Format   string `flag:"format" usage:"image file format: png, bmp" default:"png"`
	Scale    int    `flag:"scale" usage:"integer upscale factor of written images" default:"1"`
	NoCluts  bool   `flag:"noclut" usage:"do not write images that serve as colour tables"`
	DryRun   bool   `flag:"n" usage:"decode only, do not write image files"`
	Overview bool   `flag:"overview" usage:"log a line per decoded image"`
}

// Program options of the extractor.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Extraction defines options to control a decode run of one file.
type Extraction struct {
	Offsets []int64 // sub-asset start offsets
	Profile string  // profile name or auto
	Workers int     // concurrently decoded sub-assets
}

// NewExtraction returns extraction options with default settings.
func NewExtraction(profile string) Extraction {
	return Extraction{
		Offsets: []int64{0},
		Profile: profile,
		Workers: 1,
	}
}
