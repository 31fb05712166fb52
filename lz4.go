// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

// fileExtensionLZ4 is the file extension for lz4 files
const fileExtensionLZ4 = "lz4"

// magicBytesLZ4 are the magic bytes of the lz4 frame format
// reference: https://github.com/lz4/lz4/blob/dev/doc/lz4_Frame_format.md
var magicBytesLZ4 = [][]byte{
	{0x04, 0x22, 0x4D, 0x18},
}

func decompressLZ4Stream(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(src)), nil
}
