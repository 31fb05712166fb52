// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

const (
	// fileExtensionGZip is the file extension for gzip files.
	fileExtensionGZip = "gz"

	// fileExtensionTarGZip is the file extension for tgz files, which are tar archives compressed with gzip.
	fileExtensionTarGZip = "tgz"
)

// magicBytesGZip are the magic bytes for gzip compressed files.
var magicBytesGZip = [][]byte{
	{0x1f, 0x8b},
}

// decompressGZipStream returns a reader that decompresses src with the gzip
// algorithm. Streams without a gzip header fail with gzip.ErrHeader.
func decompressGZipStream(src io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(src)
}
