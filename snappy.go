// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"

	"github.com/klauspost/compress/snappy"
)

// fileExtensionSnappy is the file extension for snappy files
const fileExtensionSnappy = "sz"

// magicBytesSnappy is the stream identifier chunk of the snappy framing format
// reference: https://github.com/google/snappy/blob/main/framing_format.txt
var magicBytesSnappy = [][]byte{
	append([]byte{0xff, 0x06, 0x00, 0x00}, []byte("sNaPpY")...),
}

// decompressSnappyStream returns a reader that decompresses the framed snappy stream src
func decompressSnappyStream(src io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(snappy.NewReader(src)), nil
}
