// Package logging builds the root hclog logger used by the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the root logger
type Options struct {
	// Level is an hclog level name; empty means warn
	Level string

	// File enables JSON logging to a rotating file instead of stderr
	File string

	// Output overrides stderr when File is empty
	Output io.Writer
}

// New returns the root logger. The returned closer releases the log file
// and is safe to call when no file is used.
func New(opts Options) (hclog.Logger, io.Closer, error) {
	level := hclog.Warn
	if opts.Level != "" {
		level = hclog.LevelFromString(opts.Level)
		if level == hclog.NoLevel {
			return nil, nil, fmt.Errorf("invalid log level: %s", opts.Level)
		}
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	var closer io.Closer = nopCloser{}
	jsonFormat := false

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = lj
		closer = lj
		jsonFormat = true
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "taxrules",
		Level:      level,
		Output:     out,
		JSONFormat: jsonFormat,
	})
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
