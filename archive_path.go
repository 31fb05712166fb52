// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// checkArchivePath validates the archive at path before any stream is opened.
// It returns the absolute path of the archive or an *ArchivePathError.
func checkArchivePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	stat, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", &ArchivePathError{Path: abs, Err: ErrArchiveNotExist}
	case err != nil:
		return "", &ArchivePathError{Path: abs, Err: ErrArchiveNotReadable}
	case !stat.Mode().IsRegular():
		return "", &ArchivePathError{Path: abs, Err: ErrArchiveNotRegular}
	case !isReadable(abs):
		return "", &ArchivePathError{Path: abs, Err: ErrArchiveNotReadable}
	}
	return abs, nil
}
