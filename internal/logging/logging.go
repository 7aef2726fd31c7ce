// Package logging builds the zerolog logger shared by the command and the
// server. Logs always go to a stream other than stdout, which carries the
// preview and MCP traffic.
package logging

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "FUNDUS_VESSELS_LOG_LEVEL"

// Options selects the level and the output format.
type Options struct {
	// Level is a zerolog level name: trace, debug, info, warn, error, disabled.
	Level string `yaml:"level"`

	// JSON switches from the human readable console format to one JSON object
	// per line.
	JSON bool `yaml:"json"`
}

// DefaultOptions logs warnings and errors in console format.
func DefaultOptions() Options {
	return Options{Level: "warn"}
}

// ParseLevel accepts zerolog level names in any case. The empty string is info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
}

// New creates a timestamped logger writing to w.
func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if !opts.JSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: true}
	}
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Logger(), nil
}
