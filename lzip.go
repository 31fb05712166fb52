// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"

	"github.com/mholt/archives"
)

// fileExtensionLzip is the file extension for lzip files
const fileExtensionLzip = "lz"

// magicBytesLzip are the magic bytes for lzip files ("LZIP")
var magicBytesLzip = [][]byte{
	{0x4C, 0x5A, 0x49, 0x50},
}

// decompressLzipStream returns a reader that decompresses src with the lzip algorithm
func decompressLzipStream(src io.Reader) (io.ReadCloser, error) {
	return archives.Lzip{}.OpenReader(src)
}
