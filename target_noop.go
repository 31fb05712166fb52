// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"
	"io/fs"
)

// TargetNoop is a [Target] that writes nothing. The content of every file is
// read and discarded, so an extraction into it decodes and validates the
// complete archive, including all limits of the [Config].
type TargetNoop struct{}

// NewTargetNoop returns a new TargetNoop.
func NewTargetNoop() *TargetNoop {
	return &TargetNoop{}
}

// CreateDir does nothing.
func (n *TargetNoop) CreateDir(path string, mode fs.FileMode) error {
	return nil
}

// CreateFile reads src to the end and returns the number of bytes.
func (n *TargetNoop) CreateFile(path string, src io.Reader, mode fs.FileMode, maxSize int64, bufferSize int) (int64, error) {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}
	return copyChunks(limitWriter(io.Discard, maxSize), src, make([]byte, bufferSize))
}

// Lstat reports every path as missing.
func (n *TargetNoop) Lstat(path string) (fs.FileInfo, error) {
	return nil, &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
}

// Readlink reports every path as missing.
func (n *TargetNoop) Readlink(path string) (string, error) {
	return "", &fs.PathError{Op: "readlink", Path: path, Err: fs.ErrNotExist}
}
