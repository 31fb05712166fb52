// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"io/fs"
)

// handleError increases the error counter, sets the latest error and returns it.
func handleError(c *Config, td *TelemetryData, msg string, err error) error {
	td.ExtractionErrors++
	td.LastExtractionError = fmt.Errorf("%s: %w", msg, err)
	c.Logger().Debug(msg, "error", err)
	return td.LastExtractionError
}

// extract checks ctx for cancellation, while it reads the entries from src and
// extracts them to dst. The first error ends the extraction; entries extracted
// before stay in place.
func extract(ctx context.Context, t Target, dst string, src archiveWalker, c *Config, td *TelemetryData) error {
	c.Logger().Info("start extraction", "type", src.Type(), "destination", dst)
	var objectCounter int64
	var extractedBytes int64

	for {
		// check if context is canceled
		if err := ctx.Err(); err != nil {
			return handleError(c, td, "context error", err)
		}

		// get next entry
		ae, err := src.Next()
		switch {

		// if no more entries are found exit loop
		case err == io.EOF:
			c.Logger().Info("extraction finished", "files", td.ExtractedFiles, "dirs", td.ExtractedDirs)
			return nil

		// return any other error
		case err != nil:
			return handleError(c, td, "error reading", err)
		}

		// tar specific: git writes a comment file `pax_global_header`, skip it
		if ae.Typeflag() == tar.TypeXGlobalHeader {
			continue
		}

		// check for to many objects in archive
		objectCounter++
		if err := c.CheckMaxFiles(objectCounter); err != nil {
			return handleError(c, td, "max objects check failed", err)
		}

		c.Logger().Debug("extract", "name", ae.Name())
		switch {

		// create the directory and all parents, there is no content to read
		case ae.IsDir():
			if err := createDir(t, dst, ae.Name(), dirMode(c, ae.Mode()), c); err != nil {
				return handleError(c, td, "failed to create directory", err)
			}
			td.ExtractedDirs++

		// create the file and copy the content of the entry
		case ae.IsRegular():
			if err := c.CheckExtractionSize(extractedBytes + ae.Size()); err != nil {
				return handleError(c, td, "max extraction size exceeded", err)
			}

			n, err := extractFile(t, dst, ae, remainingSize(c, extractedBytes), c)
			extractedBytes += n
			td.ExtractionSize = extractedBytes
			if err != nil {
				return handleError(c, td, "failed to create file", err)
			}
			td.ExtractedFiles++

		// symlinks, hard links, devices, FIFOs, sparse files...
		default:
			if c.ContinueOnUnsupportedFiles() {
				c.Logger().Info("skip unsupported file", "name", ae.Name(), "type", string(ae.Typeflag()))
				td.UnsupportedFiles++
				td.LastUnsupportedFile = ae.Name()
				continue
			}
			err := fmt.Errorf("%w: %s (type %q)", ErrUnsupportedFile, ae.Name(), ae.Typeflag())
			return handleError(c, td, "cannot extract file", err)
		}
	}
}

// extractFile writes the content of the regular entry ae below dst and verifies
// that the declared size has been copied.
func extractFile(t Target, dst string, ae archiveEntry, maxSize int64, c *Config) (int64, error) {
	fin, err := ae.Open()
	if err != nil {
		return 0, fmt.Errorf("failed to open entry: %w", err)
	}
	defer fin.Close()

	n, err := createFile(t, dst, ae.Name(), fin, fileMode(c, ae.Mode()), maxSize, c)
	if err != nil {
		return n, err
	}
	if n != ae.Size() {
		return n, fmt.Errorf("%w: %s (%d of %d bytes)", ErrShortCopy, ae.Name(), n, ae.Size())
	}
	return n, nil
}

// remainingSize returns how many bytes may still be extracted, -1 if unlimited.
func remainingSize(c *Config, extractedBytes int64) int64 {
	if c.MaxExtractionSize() < 0 {
		return -1
	}
	return c.MaxExtractionSize() - extractedBytes
}

// fileMode returns the mode for a file entry with the archived mode m.
func fileMode(c *Config, m fs.FileMode) fs.FileMode {
	if !c.PreserveMode() {
		return c.FileMode()
	}
	return m.Perm() | 0600
}

// dirMode returns the mode for a directory entry with the archived mode m.
func dirMode(c *Config, m fs.FileMode) fs.FileMode {
	if !c.PreserveMode() {
		return c.CreateDirMode()
	}
	return m.Perm() | 0700
}
