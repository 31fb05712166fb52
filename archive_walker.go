// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"
	"io/fs"
)

// archiveWalker is an interface that represents a forward-only iterator over the
// entries of an archive. Next returns io.EOF at the end of the archive.
type archiveWalker interface {
	Type() string
	Next() (archiveEntry, error)
}

// archiveEntry is an interface that represents a file in an archive. The reader
// returned by Open must not be used after the next call of Next.
type archiveEntry interface {
	IsRegular() bool
	IsDir() bool
	Mode() fs.FileMode
	Name() string
	Open() (io.ReadCloser, error)
	Size() int64
	Typeflag() byte
}
