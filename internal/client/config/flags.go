package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/quickflip/internal/flagx"
)

var ownFlags = []string{"-b", "-d", "-t", "-l", "-f"}

// parseFlags populates Config fields from command-line flags:
//
//	-b string     backend API base URL
//	-d string     local database path
//	-t duration   request timeout (e.g. 15s)
//	-l string     log level
//	-f string     log format: text, json or console
//
// Only these flags are picked out of args, so other loaders can share the
// same command line.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("quickflip", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "backend API base URL")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	return nil
}
