// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern
type ConfigOption func(*Config)

// Config holds all configuration options for the extraction process.
//
// The configuration options can be adjusted using the option pattern style.
// The default configuration reproduces the archive without any limits: every
// entry is extracted, later entries overwrite earlier ones and only entry
// names escaping the target directory are refused.
type Config struct {
	// bufferSize is the chunk size used to copy entry content to its destination
	bufferSize int

	// continueOnUnsupportedFiles offers the option to skip entries that are
	// neither directories nor regular files
	continueOnUnsupportedFiles bool

	// createDirMode is the file mode for the target directory and for directories
	// that are implied by entry names (respecting umask)
	createDirMode fs.FileMode

	// fileMode is the file mode for extracted files, if the mode of the archive
	// is not preserved (respecting umask)
	fileMode fs.FileMode

	// logger stream for extraction
	logger Logger

	// maxExtractionSize is the maximum size over all extracted files.
	// Set a negative value to disable the check.
	maxExtractionSize int64

	// maxFiles is the maximum of entries (files and directories) in an archive.
	// Set a negative value to disable the check.
	maxFiles int64

	// maxInputSize is the maximum size of the input before decompression.
	// Set a negative value to disable the check.
	maxInputSize int64

	// preserveMode applies the permission bits stored in the archive
	preserveMode bool

	// telemetryHook is a function to consume telemetry data after finished extraction
	// Important: do not adjust this value after extraction started
	telemetryHook TelemetryHook
}

// BufferSize returns the chunk size in bytes that is used to copy the
// content of an entry to its destination.
func (c *Config) BufferSize() int {
	return c.bufferSize
}

// CheckMaxFiles checks if counter exceeds the configured maximum. If the maximum is exceeded,
// a [ErrMaxFilesExceeded] error is returned.
func (c *Config) CheckMaxFiles(counter int64) error {

	// check if disabled
	if c.MaxFiles() < 0 {
		return nil
	}

	// check value
	if counter > c.MaxFiles() {
		return ErrMaxFilesExceeded
	}
	return nil
}

// CheckExtractionSize checks if fileSize exceeds configured maximum. If the maximum is exceeded,
// a [ErrMaxExtractionSizeExceeded] error is returned.
func (c *Config) CheckExtractionSize(fileSize int64) error {

	// check if disabled
	if c.MaxExtractionSize() < 0 {
		return nil
	}

	// check value
	if fileSize > c.MaxExtractionSize() {
		return ErrMaxExtractionSizeExceeded
	}
	return nil
}

// ContinueOnUnsupportedFiles returns true if entries that are neither a directory
// nor a regular file, e.g., symlinks, FIFO, block or character devices, should
// be skipped instead of failing the extraction.
func (c *Config) ContinueOnUnsupportedFiles() bool {
	return c.continueOnUnsupportedFiles
}

// CreateDirMode returns the file mode for the target directory and for
// directories that are not defined in the archive. (respecting umask)
func (c *Config) CreateDirMode() fs.FileMode {
	return c.createDirMode
}

// FileMode returns the file mode for extracted files if the mode of
// the archive is not preserved. (respecting umask)
func (c *Config) FileMode() fs.FileMode {
	return c.fileMode
}

// Logger returns the logger.
func (c *Config) Logger() Logger {
	return c.logger
}

// MaxExtractionSize returns the maximum size over all extracted files.
func (c *Config) MaxExtractionSize() int64 {
	return c.maxExtractionSize
}

// MaxFiles returns the maximum of entries in an archive.
func (c *Config) MaxFiles() int64 {
	return c.maxFiles
}

// MaxInputSize returns the maximum size of the input.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// PreserveMode returns true if the permission bits of the archive entries
// are applied to the extracted files and directories.
func (c *Config) PreserveMode() bool {
	return c.preserveMode
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return defaultTelemetryHook
	}
	return c.telemetryHook
}

const (
	defaultBufferSize                 = 4096 // copy chunk size
	defaultContinueOnUnsupportedFiles = false
	defaultCreateDirMode              = 0755 // rwxr-xr-x
	defaultFileMode                   = 0644 // rw-r--r--
	defaultMaxExtractionSize          = -1   // no limit
	defaultMaxFiles                   = -1   // no limit
	defaultMaxInputSize               = -1   // no limit
	defaultPreserveMode               = false
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	// no operation telemetry hook
	defaultTelemetryHook = func(ctx context.Context, d *TelemetryData) {
		// noop
	}
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {

	// setup default values
	config := &Config{
		bufferSize:                 defaultBufferSize,
		continueOnUnsupportedFiles: defaultContinueOnUnsupportedFiles,
		createDirMode:              defaultCreateDirMode,
		fileMode:                   defaultFileMode,
		logger:                     defaultLogger,
		maxExtractionSize:          defaultMaxExtractionSize,
		maxFiles:                   defaultMaxFiles,
		maxInputSize:               defaultMaxInputSize,
		preserveMode:               defaultPreserveMode,
		telemetryHook:              defaultTelemetryHook,
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithBufferSize options pattern function to set the chunk size in bytes that is used
// to copy entry content. Values smaller than 1 are ignored.
func WithBufferSize(size int) ConfigOption {
	return func(c *Config) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// WithContinueOnUnsupportedFiles options pattern function to enable/disable skipping
// entries that are neither directories nor regular files.
func WithContinueOnUnsupportedFiles(skip bool) ConfigOption {
	return func(c *Config) {
		c.continueOnUnsupportedFiles = skip
	}
}

// WithCreateDirMode options pattern function to set the file mode for the target
// directory and for directories that are not defined in the archive. (respecting umask)
func WithCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.createDirMode = mode
	}
}

// WithFileMode options pattern function to set the file mode for extracted files,
// if the mode of the archive is not preserved. (respecting umask)
func WithFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.fileMode = mode
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger Logger) ConfigOption {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxExtractionSize options pattern function to set maximum size over all
// extracted files. (negative to disable check)
func WithMaxExtractionSize(maxExtractionSize int64) ConfigOption {
	return func(c *Config) {
		c.maxExtractionSize = maxExtractionSize
	}
}

// WithMaxFiles options pattern function to set maximum number of extracted files
// and directories. (negative to disable check)
func WithMaxFiles(maxFiles int64) ConfigOption {
	return func(c *Config) {
		c.maxFiles = maxFiles
	}
}

// WithMaxInputSize options pattern function to set the maximum size of the input
// before decompression. (negative to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithPreserveMode options pattern function to apply the permission bits of the
// archive entries. The owner always keeps write access, so that later entries
// with the same name can overwrite earlier ones.
func WithPreserveMode(preserve bool) ConfigOption {
	return func(c *Config) {
		c.preserveMode = preserve
	}
}

// WithTelemetryHook options pattern function to set a [TelemetryHook], which is called after extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
