// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/retroenv/gsextract/internal/options"
	"github.com/retroenv/gsextract/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// outputDirSuffix is appended to the input file name to create the default output directory.
const outputDirSuffix = "_textures"

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, extractOpts options.Extraction) error {
	p := pipeline.New(logger)
	summary, err := p.Execute(ctx, opts, extractOpts)
	if err != nil {
		return fmt.Errorf("executing pipeline: %w", err)
	}

	if !opts.Quiet {
		logger.Info("Extraction finished",
			log.String("file", opts.Input),
			log.Int("sub-assets", summary.SubAssets),
			log.Int("images", summary.Images),
			log.Int("written", summary.Written),
			log.String("uploaded", humanize.IBytes(uint64(summary.Uploaded))))
	}
	if opts.Verify != "" && summary.Failed == 0 {
		logger.Info("Verification successful", log.Int("images", summary.Verified))
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d sub-assets failed", summary.Failed, summary.Failed+summary.SubAssets)
	}
	return nil
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputDirectory generates the output directory name for a given input file
func GenerateOutputDirectory(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + outputDirSuffix
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	if len(commit) > 7 {
		commit = commit[:7]
	}
	if strings.Contains(date, "unknown") {
		date = ""
	}

	logger.Info("gsextract", log.String("version", buildinfo.Version(version, commit, date)))
}
