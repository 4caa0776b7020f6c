// Package config sets up the logging of the extractor.
package config

import (
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger returns the logger of a run. Debug enables the chain and
// register traces, quiet limits the output to errors.
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	switch {
	case debug:
		cfg.Level = log.DebugLevel
	case quiet:
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
