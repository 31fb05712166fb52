// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/mknecht/jtar"
	"github.com/mknecht/jtar/telemetry"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// stdinArchive is the archive name that reads the archive from STDIN
const stdinArchive = "-"

// CLI are the cli parameters for the jtar binary
type CLI struct {
	Archives              []string         `arg:"" name:"archive" help:"Path to tar archive. (\"-\" for STDIN)"`
	BufferSize            int              `optional:"" default:"4096" help:"Chunk size in bytes to copy file content."`
	Compression           string           `optional:"" default:"auto" help:"Compression of the archive (auto, none, gzip, bzip2, xz, lzma, zstd, lz4, brotli, snappy, zlib, lzip)."`
	ContinueOnUnsupported bool             `short:"U" help:"Skip entries that are neither directories nor regular files."`
	Destination           string           `short:"d" default:"." help:"Output directory."`
	EventsBus             string           `optional:"" name:"events-bus" help:"Publish telemetry data to this EventBridge event bus."`
	Gzip                  bool             `short:"z" help:"Archive is gzip compressed (same as --compression=gzip)."`
	MaxExtractionSize     int64            `optional:"" default:"-1" help:"Maximum extraction size that allowed is (in bytes). (disable check: -1)"`
	MaxFiles              int64            `optional:"" default:"-1" help:"Maximum files that are extracted before stop. (disable check: -1)"`
	MaxInputSize          int64            `optional:"" default:"-1" help:"Maximum input size that allowed is (in bytes). (disable check: -1)"`
	Metrics               bool             `short:"M" optional:"" default:"false" help:"Print telemetry data to log after extraction."`
	Parallel              int              `short:"P" optional:"" default:"1" help:"Number of archives that are extracted at the same time."`
	Verbose               bool             `short:"v" optional:"" help:"Verbose logging."`
	Verify                bool             `optional:"" help:"Read and validate the archives without writing any file."`
	Version               kong.VersionFlag `short:"V" optional:"" help:"Print release version information."`
}

// Run the entrypoint into jtar as a cli tool
func Run(version, commit, date string) {
	var cli CLI
	kong.Parse(&cli,
		kong.Description("Extract tar archives, optionally compressed."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("%s (%s), commit %s, built at %s", filepath.Base(os.Args[0]), version, commit, date),
		},
	)

	logger := newLogger(os.Stderr, cli.Verbose)
	if err := cli.Execute(context.Background(), os.Stdin, logger); err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}
}

// newLogger returns a text logger on w, Debug level if verbose, Error level otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelError
	if verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// Execute extracts all archives of the cli parameters. Archive "-" is read from stdin.
func (c *CLI) Execute(ctx context.Context, stdin io.Reader, logger *slog.Logger) error {
	if err := c.validate(); err != nil {
		return err
	}

	cfg, err := c.config(ctx, logger)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Parallel)
	for _, archive := range c.Archives {
		archive := archive
		g.Go(func() error {
			return c.unpack(gctx, archive, stdin, cfg)
		})
	}
	return g.Wait()
}

// validate checks the parameters that kong cannot check
func (c *CLI) validate() error {
	if c.Parallel < 1 {
		return errors.Errorf("invalid parallel extractions: %d", c.Parallel)
	}
	if _, err := jtar.ParseCompression(c.Compression); err != nil {
		return errors.Wrap(err, "invalid compression")
	}
	var stdinCount int
	for _, archive := range c.Archives {
		if archive == stdinArchive {
			stdinCount++
		}
	}
	if stdinCount > 1 {
		return errors.New("stdin can only be extracted once")
	}
	return nil
}

// config builds the extraction config of the cli parameters
func (c *CLI) config(ctx context.Context, logger *slog.Logger) (*jtar.Config, error) {
	var hooks []jtar.TelemetryHook
	if c.Metrics {
		hooks = append(hooks, telemetry.LogHook(slog.New(slog.NewTextHandler(os.Stderr, nil))))
	}
	if len(c.EventsBus) > 0 {
		events, err := telemetry.NewEventsHookFromConfig(ctx, c.EventsBus, telemetry.WithEventsLogger(logger))
		if err != nil {
			return nil, errors.Wrap(err, "cannot setup telemetry publishing")
		}
		hooks = append(hooks, events.Hook)
	}

	return jtar.NewConfig(
		jtar.WithBufferSize(c.BufferSize),
		jtar.WithContinueOnUnsupportedFiles(c.ContinueOnUnsupported),
		jtar.WithLogger(logger),
		jtar.WithMaxExtractionSize(c.MaxExtractionSize),
		jtar.WithMaxFiles(c.MaxFiles),
		jtar.WithMaxInputSize(c.MaxInputSize),
		jtar.WithTelemetryHook(telemetry.Chain(hooks...)),
	), nil
}

// compression returns the compression for archive
func (c *CLI) compression(archive string) jtar.Compression {
	if c.Gzip {
		return jtar.CompressionGzip
	}
	comp, _ := jtar.ParseCompression(c.Compression)

	// names help for compressions without magic bytes
	if comp == jtar.CompressionAuto && archive != stdinArchive {
		return jtar.CompressionFromName(archive)
	}
	return comp
}

// target returns the target of the extractions
func (c *CLI) target() jtar.Target {
	if c.Verify {
		return jtar.NewTargetNoop()
	}
	return jtar.NewTargetDisk()
}

// unpack extracts a single archive
func (c *CLI) unpack(ctx context.Context, archive string, stdin io.Reader, cfg *jtar.Config) error {
	comp := c.compression(archive)
	if archive == stdinArchive {
		if err := jtar.UnpackStreamTo(ctx, c.target(), bufio.NewReader(stdin), c.Destination, comp, cfg); err != nil {
			return errors.Wrap(err, "cannot extract stdin")
		}
		return nil
	}
	if err := jtar.UnpackFileTo(ctx, c.target(), archive, c.Destination, comp, cfg); err != nil {
		return errors.Wrapf(err, "cannot extract %s", archive)
	}
	return nil
}
