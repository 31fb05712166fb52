// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// fileExtensionBzip2 is the file extension for bzip2 files
const fileExtensionBzip2 = "bz2"

// magicBytesBzip2 are the magic bytes for bzip2 compressed files
// reference: https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
var magicBytesBzip2 = [][]byte{
	[]byte("BZh1"),
	[]byte("BZh2"),
	[]byte("BZh3"),
	[]byte("BZh4"),
	[]byte("BZh5"),
	[]byte("BZh6"),
	[]byte("BZh7"),
	[]byte("BZh8"),
	[]byte("BZh9"),
}

func decompressBzip2Stream(src io.Reader) (io.ReadCloser, error) {
	return bzip2.NewReader(src, &bzip2.ReaderConfig{})
}
