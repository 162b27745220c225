package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"

	"go.viam.com/purepursuit/logging"
)

// Read reads a config from the given file. Environment variables referenced as ${VAR} are
// expanded before decoding.
func Read(
	ctx context.Context,
	filePath string,
	logger logging.Logger,
) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", filePath)
	}

	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(
	ctx context.Context,
	originalPath string,
	r io.Reader,
	logger logging.Logger,
) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unprocessedConfig := Config{
		ConfigFilePath: originalPath,
	}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&unprocessedConfig); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	return processConfig(&unprocessedConfig, logger)
}

// processConfig returns a copy of the config with defaults applied. Returns an error if the
// config is not valid.
func processConfig(unprocessedConfig *Config, logger logging.Logger) (*Config, error) {
	if err := unprocessedConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	cfg := *unprocessedConfig
	cfg.Tracker = cfg.Tracker.WithDefaults()
	if cfg.Tracker.Progress.Type == "" {
		logger.Warn("no progress validator configured, stalls will not be detected")
	}
	logger.Debugw("config processed", "file", cfg.ConfigFilePath)
	return &cfg, nil
}
