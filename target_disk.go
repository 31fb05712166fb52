// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"

	"go.uber.org/multierr"
)

// TargetDisk is the struct type that holds all information for interacting with the filesystem
type TargetDisk struct{}

// NewTargetDisk creates a new TargetDisk
func NewTargetDisk() *TargetDisk {
	return &TargetDisk{}
}

// CreateDir creates a directory at the specified path with the specified mode. If the directory already
// exists, nothing is done.
func (d *TargetDisk) CreateDir(path string, mode fs.FileMode) error {
	if err := os.MkdirAll(path, mode.Perm()); err != nil {
		return fmt.Errorf("failed to create directory (%w)", err)
	}
	return nil
}

// CreateFile creates or truncates the file at path and copies src into it through a
// buffered writer of bufferSize bytes. The file is flushed and closed on every path;
// errors of both are returned. If maxSize >= 0, writing more than maxSize bytes fails
// with ErrMaxExtractionSizeExceeded.
func (d *TargetDisk) CreateFile(path string, src io.Reader, mode fs.FileMode, maxSize int64, bufferSize int) (n int64, err error) {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	// create dst file, last write wins
	dstFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(dstFile))

	// write data to file
	w := bufio.NewWriterSize(limitWriter(dstFile, maxSize), bufferSize)
	n, err = copyChunks(w, src, make([]byte, bufferSize))
	if err != nil {
		return n, err
	}
	if err := w.Flush(); err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	return n, nil
}

// Lstat returns the FileInfo structure describing the named file.
// If there is an error, it will be of type *PathError.
func (d *TargetDisk) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// Readlink returns the destination of the named symbolic link.
// If there is an error, it will be of type *PathError.
func (d *TargetDisk) Readlink(name string) (string, error) {
	return os.Readlink(name)
}

// copyChunks copies src to dst with reads of at most len(buf) bytes. It
// returns the number of bytes written. Errors of src are reported as failed
// entry reads, errors of dst as failed file writes.
func copyChunks(dst io.Writer, src io.Reader, buf []byte) (int64, error) {
	var written int64
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, fmt.Errorf("failed to write file: %w", werr)
			}
			if nw != nr {
				return written, fmt.Errorf("failed to write file: %w", io.ErrShortWrite)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("failed to read entry: %w", rerr)
		}
	}
}
