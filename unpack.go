// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// UnpackTar extracts the plain tar archive at pathToTar into targetDir. The
// target directory and all its parents are created if they do not exist. A
// nil cfg extracts with the defaults of [NewConfig].
//
// An archive path that does not exist, is not a regular file or is not
// readable fails with an [*ArchivePathError] before targetDir is created.
func UnpackTar(ctx context.Context, pathToTar string, targetDir string, cfg *Config) error {
	return UnpackFile(ctx, pathToTar, targetDir, CompressionNone, cfg)
}

// UnpackTarGz extracts the gzip compressed tar archive at pathToTarGz into targetDir.
// See [UnpackTar].
func UnpackTarGz(ctx context.Context, pathToTarGz string, targetDir string, cfg *Config) error {
	return UnpackFile(ctx, pathToTarGz, targetDir, CompressionGzip, cfg)
}

// UnpackTarFromStream extracts the plain tar archive read from r into targetDir.
// r is not closed.
func UnpackTarFromStream(ctx context.Context, r io.Reader, targetDir string, cfg *Config) error {
	return UnpackStream(ctx, r, targetDir, CompressionNone, cfg)
}

// UnpackTarGzFromStream extracts the gzip compressed tar archive read from r into
// targetDir. r is not closed.
func UnpackTarGzFromStream(ctx context.Context, r io.Reader, targetDir string, cfg *Config) error {
	return UnpackStream(ctx, r, targetDir, CompressionGzip, cfg)
}

// UnpackFile extracts the tar archive at path, compressed with c, into targetDir.
func UnpackFile(ctx context.Context, path string, targetDir string, c Compression, cfg *Config) error {
	return UnpackFileTo(ctx, NewTargetDisk(), path, targetDir, c, cfg)
}

// UnpackFileTo extracts the tar archive at path, compressed with c, into
// targetDir of the target t.
func UnpackFileTo(ctx context.Context, t Target, path string, targetDir string, c Compression, cfg *Config) error {
	cfg = orDefault(cfg)
	return unpack(ctx, t, targetDir, c, cfg, func() (streamFunc, error) {
		if t == nil {
			return nil, fmt.Errorf("%w: nil target", ErrInvalidArgument)
		}
		abs, err := checkArchivePath(path)
		if err != nil {
			return nil, err
		}
		return fromFile(abs), nil
	})
}

// UnpackStream extracts the tar archive read from r, compressed with c, into
// targetDir. r is not closed.
func UnpackStream(ctx context.Context, r io.Reader, targetDir string, c Compression, cfg *Config) error {
	return UnpackStreamTo(ctx, NewTargetDisk(), r, targetDir, c, cfg)
}

// UnpackStreamTo extracts the tar archive read from r, compressed with c, into
// targetDir of the target t. r is not closed.
func UnpackStreamTo(ctx context.Context, t Target, r io.Reader, targetDir string, c Compression, cfg *Config) error {
	cfg = orDefault(cfg)
	return unpack(ctx, t, targetDir, c, cfg, func() (streamFunc, error) {
		if r == nil {
			return nil, fmt.Errorf("%w: nil reader", ErrInvalidArgument)
		}
		if t == nil {
			return nil, fmt.Errorf("%w: nil target", ErrInvalidArgument)
		}
		return fromReader(r), nil
	})
}

// sourceFunc validates the archive source and returns the byte source stage
type sourceFunc func() (streamFunc, error)

// unpack validates the source, creates dst and extracts the archive.
func unpack(ctx context.Context, t Target, dst string, c Compression, cfg *Config, source sourceFunc) (err error) {
	// prepare telemetry capturing
	td := &TelemetryData{ExtractedType: fileExtensionTar}
	defer func() { cfg.TelemetryHook()(ctx, td) }()
	defer captureExtractionDuration(td, now())

	if _, ok := compressionNames[c]; !ok {
		return handleError(cfg, td, "invalid compression", fmt.Errorf("%w: %s", ErrUnknownCompression, c))
	}

	// validate before anything is created
	open, err := source()
	if err != nil {
		return handleError(cfg, td, "invalid archive source", err)
	}

	// create the target directory
	if len(dst) == 0 {
		dst = "."
	}
	if err := t.CreateDir(dst, cfg.CreateDirMode()); err != nil {
		return handleError(cfg, td, "cannot create destination", err)
	}

	// open the stream pipeline
	stream, err := newPipeline(c, cfg, td, open).Acquire()
	if err != nil {
		return handleError(cfg, td, "cannot open archive", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(stream))

	return extract(ctx, t, dst, newTarWalker(stream), cfg, td)
}

// orDefault returns cfg or the default configuration if cfg is nil.
func orDefault(cfg *Config) *Config {
	if cfg == nil {
		return NewConfig()
	}
	return cfg
}
