// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// fileExtensionLzma is the file extension for lzma files
const fileExtensionLzma = "lzma"

// magicBytesLzma are the first bytes of an lzma stream that has been written
// with the default properties (lc=3, lp=0, pb=2)
var magicBytesLzma = [][]byte{
	{0x5D, 0x00, 0x00},
}

// decompressLzmaStream returns a reader that decompresses src with the lzma algorithm
func decompressLzmaStream(src io.Reader) (io.ReadCloser, error) {
	r, err := lzma.NewReader(src)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(r), nil
}
