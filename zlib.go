// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// fileExtensionZlib is the file extension for zlib files
const fileExtensionZlib = "zz"

// magicBytesZlib are the valid CMF/FLG combinations of a zlib header with
// a 32k window
var magicBytesZlib = [][]byte{
	{0x78, 0x01},
	{0x78, 0x5e},
	{0x78, 0x9c},
	{0x78, 0xda},
}

func decompressZlibStream(src io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(src)
}
