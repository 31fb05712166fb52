// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"

	"github.com/andybalholm/brotli"
)

// fileExtensionBrotli is the file extension for brotli files. Brotli streams
// carry no magic bytes, so they are only selected by name.
const fileExtensionBrotli = "br"

func decompressBrotliStream(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(src)), nil
}
