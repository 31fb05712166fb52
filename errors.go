// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is matched by all errors caused by an unusable
	// archive path or source, see [ArchivePathError].
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrArchiveNotExist is returned if the archive path does not exist.
	ErrArchiveNotExist = errors.New("tar does not exist and cannot be unpacked")

	// ErrArchiveNotRegular is returned if the archive path is not a regular file.
	ErrArchiveNotRegular = errors.New("can only unpack files")

	// ErrArchiveNotReadable is returned if the archive cannot be read by the
	// current process.
	ErrArchiveNotReadable = errors.New("cannot read tar for unpacking")

	// ErrPathTraversal is returned if an entry name would resolve outside
	// of the target directory.
	ErrPathTraversal = errors.New("path traversal detected")

	// ErrUnsupportedFile is returned for entries that are neither a
	// directory nor a regular file.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrShortCopy is returned if the content of an entry was not copied
	// completely to its destination.
	ErrShortCopy = errors.New("entry content copied partially")

	// ErrEntryInvalidated is returned when reading the content of an entry
	// after the next entry has been requested from the archive.
	ErrEntryInvalidated = errors.New("entry content read after next entry was requested")

	// ErrPipelineAcquired is returned if a stream pipeline is acquired twice.
	ErrPipelineAcquired = errors.New("stream pipeline already acquired")

	// ErrUnknownCompression is returned for compression names that cannot be mapped.
	ErrUnknownCompression = errors.New("unknown compression")

	// ErrMaxFilesExceeded is returned if the number of entries exceeds the
	// configured maximum.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded is returned if the extracted content exceeds
	// the configured maximum.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrMaxInputSizeExceeded is returned if the input exceeds the configured maximum.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")
)

// ArchivePathError records an archive path that failed validation before
// any stream was opened.
type ArchivePathError struct {
	// Path is the absolute path of the archive.
	Path string

	// Err is one of ErrArchiveNotExist, ErrArchiveNotRegular or ErrArchiveNotReadable.
	Err error
}

func (e *ArchivePathError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err, e.Path)
}

func (e *ArchivePathError) Unwrap() error {
	return e.Err
}

// Is reports ErrInvalidArgument as a match, in addition to the wrapped error.
func (e *ArchivePathError) Is(target error) bool {
	return target == ErrInvalidArgument
}
