// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"

	"github.com/ulikunitz/xz"
)

// fileExtensionXz is the file extension for xz files
const fileExtensionXz = "xz"

// magicBytesXz are the magic bytes for xz compressed files
// reference: https://tukaani.org/xz/xz-file-format-1.0.4.txt
var magicBytesXz = [][]byte{
	{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00},
}

// decompressXzStream returns a reader that decompresses src with the xz algorithm
func decompressXzStream(src io.Reader) (io.ReadCloser, error) {
	r, err := xz.NewReader(src)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(r), nil
}
