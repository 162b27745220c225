// Package config defines the structures to configure a path tracker and the ability to read
// them from a file.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"go.viam.com/purepursuit/logging"
	"go.viam.com/purepursuit/tracker"
	"go.viam.com/purepursuit/utils"
)

// Config is the top level configuration of a tracker process.
type Config struct {
	Tracker tracker.Config `json:"tracker"`
	Logging LoggingConfig  `json:"logging,omitempty"`

	// ConfigFilePath is the file the config was read from, if any.
	ConfigFilePath string `json:"-"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level logging.Level `json:"level,omitempty"`
	// File, when set, also writes logs to a size rotated file.
	File string `json:"file,omitempty"`
}

// Validate returns an error describing every invalid field.
func (cfg *Config) Validate() error {
	return cfg.Tracker.Validate("tracker")
}

// NewLogger builds the logger described by the logging section.
func (cfg *Config) NewLogger(name string) logging.Logger {
	var logger logging.Logger
	if cfg.Logging.File != "" {
		logger = logging.NewFileLogger(name, cfg.Logging.File)
	} else {
		logger = logging.NewLogger(name)
	}
	logger.SetLevel(cfg.Logging.Level)
	return logger
}

// String renders the effective configuration as a table.
func (cfg Config) String() string {
	tc := cfg.Tracker.WithDefaults()
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Setting", "Value"})
	if cfg.ConfigFilePath != "" {
		t.AppendRow(table.Row{"file", cfg.ConfigFilePath})
	}
	t.AppendRows([]table.Row{
		{"lookahead radius", tc.LookaheadRadius},
		{"geometry epsilon", tc.GeometryEpsilon},
		{"control frequency", fmt.Sprintf("%g Hz (%v)", tc.ControlFrequencyHz, tc.ControlPeriod())},
		{"min segment length", tc.Preprocessor.MinSegmentLength},
		{"max segment length", segmentLimit(tc.Preprocessor.MaxSegmentLength)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"heading", tc.Heading.Type},
		{"heading attributes", attributes(tc.Heading.Attributes)},
		{"velocity", tc.Velocity.Type},
		{"velocity attributes", attributes(tc.Velocity.Attributes)},
		{"progress", progressType(tc.Progress.Type)},
		{"progress attributes", attributes(tc.Progress.Attributes)},
	})
	t.AppendSeparator()
	t.AppendRow(table.Row{"log level", cfg.Logging.Level})
	if cfg.Logging.File != "" {
		t.AppendRow(table.Row{"log file", cfg.Logging.File})
	}
	return t.Render()
}

func segmentLimit(v float64) interface{} {
	if v == 0 {
		return "unlimited"
	}
	return v
}

func progressType(typ string) string {
	if typ == "" {
		return "disabled"
	}
	return typ
}

// attributes renders one key=value pair per line, sorted by key.
func attributes(am utils.AttributeMap) string {
	keys := lo.Keys(am)
	sort.Strings(keys)
	return strings.Join(lo.Map(keys, func(k string, _ int) string {
		return fmt.Sprintf("%s=%v", k, am[k])
	}), "\n")
}
