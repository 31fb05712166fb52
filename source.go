// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
)

// readAheadSize is the size of the read-ahead buffer in front of the tar decoder
const readAheadSize = 32 * 1024

// streamFunc opens one stage of the stream pipeline. Closing the returned
// reader closes the stage and every stage beneath it.
type streamFunc func() (io.ReadCloser, error)

// fromFile opens the archive at path when the pipeline is acquired.
func fromFile(path string) streamFunc {
	return func() (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open archive: %w", err)
		}
		return f, nil
	}
}

// fromReader uses r verbatim. r is owned by the caller and is not closed.
func fromReader(r io.Reader) streamFunc {
	return func() (io.ReadCloser, error) {
		return &noopReaderCloser{r}, nil
	}
}

// limitingInput fails reads with ErrMaxInputSizeExceeded once next delivered
// more than maxSize bytes (negative disables the limit). The number of read bytes
// is stored in td when the stage is closed.
func limitingInput(maxSize int64, td *TelemetryData, next streamFunc) streamFunc {
	return func() (io.ReadCloser, error) {
		src, err := next()
		if err != nil {
			return nil, err
		}
		lr := newLimitErrorReader(src, maxSize)
		return &layer{
			Reader: lr,
			own: closerFunc(func() error {
				td.InputSize = lr.ReadBytes()
				return nil
			}),
			inner: src,
		}, nil
	}
}

// decompressing inserts the decompression stage for c on top of next.
// CompressionNone inserts nothing. CompressionAuto peeks the first bytes
// of next and inserts the matching stage, or nothing for plain tar.
func decompressing(c Compression, td *TelemetryData, next streamFunc) streamFunc {
	return func() (io.ReadCloser, error) {
		src, err := next()
		if err != nil {
			return nil, err
		}

		var r io.Reader = src
		d, found := findDecompressor(c)
		if c == CompressionAuto {
			hr, err := newHeaderReader(src, maxHeaderLength)
			if err != nil {
				return nil, multierr.Append(err, src.Close())
			}
			r = hr
			d, found = detectDecompressor(hr.PeekHeader())
		}

		// plain tar
		if !found {
			td.ExtractedType = fileExtensionTar
			return &layer{Reader: r, inner: src}, nil
		}

		dr, err := d.Open(r)
		if err != nil {
			err = fmt.Errorf("cannot start %s decompression: %w", d.Compression, err)
			return nil, multierr.Append(err, src.Close())
		}
		td.ExtractedType = fmt.Sprintf("%s.%s", fileExtensionTar, d.Extensions[0])
		return &layer{Reader: dr, own: dr, inner: src}, nil
	}
}

// buffering puts a read-ahead buffer of readAheadSize bytes on top of next.
func buffering(next streamFunc) streamFunc {
	return func() (io.ReadCloser, error) {
		src, err := next()
		if err != nil {
			return nil, err
		}
		return &layer{Reader: bufio.NewReaderSize(src, readAheadSize), inner: src}, nil
	}
}

// layer is a pipeline stage. Close releases the stage itself before the
// stage beneath it and reports the errors of both.
type layer struct {
	io.Reader
	own   io.Closer
	inner io.Closer
}

// Close closes the stage and the nested stage.
func (l *layer) Close() (err error) {
	if l.own != nil {
		err = l.own.Close()
	}
	return multierr.Append(err, l.inner.Close())
}

// pipeline is a composed stream that can be acquired exactly once.
type pipeline struct {
	open     streamFunc
	acquired bool
}

// newPipeline composes source, input limit, decompression and read-ahead
// buffer, in this order.
func newPipeline(c Compression, cfg *Config, td *TelemetryData, source streamFunc) *pipeline {
	return &pipeline{
		open: buffering(decompressing(c, td, limitingInput(cfg.MaxInputSize(), td, source))),
	}
}

// Acquire opens all stages. The caller closes the returned reader.
func (p *pipeline) Acquire() (io.ReadCloser, error) {
	if p.acquired {
		return nil, ErrPipelineAcquired
	}
	p.acquired = true
	return p.open()
}
