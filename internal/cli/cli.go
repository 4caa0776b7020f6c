// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/gsextract/internal/options"
	"github.com/retroenv/gsextract/internal/profile"
	"github.com/retroenv/gsextract/internal/writer"
)

// ParseFlags parses command line flags and returns program and extraction options
func ParseFlags() (options.Program, options.Extraction, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "" && opts.Input == "") {
		return opts, options.Extraction{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Extraction{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Extraction{}, err
	}

	if opts.Batch == "" && len(args) > 0 {
		opts.Input = args[0]
	}

	extractOptions, err := createExtractOptions(opts)
	if err != nil {
		return opts, options.Extraction{}, err
	}
	return opts, extractOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

// ShowUsage prints the usage and the flag defaults.
func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: gsextract [options] <file to extract textures from>\n\n")
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after file to extract, please pass the file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Format = strings.ToLower(opts.Format)
	if opts.Format == "jpg" || opts.Format == "jpeg" {
		return fmt.Errorf("unsupported image format: %s, textures with alpha need a lossless format", opts.Format)
	}
	validFormats := []string{writer.PNG, writer.BMP}
	var valid bool
	for _, format := range validFormats {
		if opts.Format == format {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("unsupported image format: %s. Valid options: %s",
			opts.Format, strings.Join(validFormats, ", "))
	}

	opts.Profile = strings.ToLower(opts.Profile)
	if opts.Profile != profile.Auto {
		if _, err := profile.Get(opts.Profile); err != nil {
			return err
		}
	}

	if opts.Scale < 1 {
		return fmt.Errorf("invalid scale factor %d, must be at least 1", opts.Scale)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return nil
}

// createExtractOptions creates extraction options based on program options
func createExtractOptions(opts options.Program) (options.Extraction, error) {
	extractOptions := options.NewExtraction(opts.Profile)
	extractOptions.Workers = opts.Workers

	offsets, err := ParseOffsets(opts.Offsets)
	if err != nil {
		return options.Extraction{}, err
	}
	extractOptions.Offsets = offsets
	return extractOptions, nil
}

// ParseOffsets parses a comma separated list of offsets. Values with a 0x
// prefix are hexadecimal, others decimal.
func ParseOffsets(s string) ([]int64, error) {
	var offsets []int64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		var (
			offset int64
			err    error
		)
		if hex, ok := strings.CutPrefix(strings.ToLower(field), "0x"); ok {
			offset, err = strconv.ParseInt(hex, 16, 64)
		} else {
			offset, err = strconv.ParseInt(field, 10, 64)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing offset '%s': %w", field, err)
		}
		if offset < 0 {
			return nil, fmt.Errorf("offset '%s' is negative", field)
		}
		offsets = append(offsets, offset)
	}

	if len(offsets) == 0 {
		return nil, fmt.Errorf("no offset given in '%s'", s)
	}
	return offsets, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input asset file")
	flags.StringVar(&opts.Output, "o", "", "name of the output directory, <input name>_textures is used if no name given")
	flags.StringVar(&opts.Verify, "verify", "", "directory of reference .rgba files named like the output images to compare the decoded pixels against")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask, for example *.tex")
	flags.StringVar(&opts.Offsets, "offset", "0", "comma separated list of sub-asset offsets of the transfer chains, hex with 0x prefix or decimal")
	flags.StringVar(&opts.Profile, "profile", profile.Auto, "format profile ("+strings.Join(profile.Names(), "/")+") or auto to detect it")
	flags.IntVar(&opts.Workers, "workers", 4, "number of sub-assets decoded concurrently")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.StringVar(&opts.Format, "format", "png", "file format of the written images (png/bmp)")
	flags.IntVar(&opts.Scale, "scale", 1, "integer upscale factor of the written images")
	flags.BoolVar(&opts.NoCluts, "noclut", false, "do not write images that serve as colour tables")
	flags.BoolVar(&opts.DryRun, "n", false, "decode only, do not write any image files")
	flags.BoolVar(&opts.Overview, "overview", false, "log a line for every decoded image")
}
