// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Compression selects the decompression stage that is inserted between the
// byte source and the tar decoder.
type Compression int

const (
	// CompressionNone reads the archive as plain tar.
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXz
	CompressionLzma
	CompressionZstd
	CompressionLZ4
	CompressionBrotli
	CompressionSnappy
	CompressionZlib
	CompressionLzip

	// CompressionAuto identifies the compression from the magic bytes of the
	// stream. Streams without known magic bytes are read as plain tar.
	// Only ustar and GNU headers are recognized as tar before the magic bytes
	// are matched. A pre-POSIX (v7) tar whose first name starts with "]\x00\x00"
	// or "x^" is taken for lzma or zlib; name the compression explicitly for
	// such archives.
	CompressionAuto
)

// compressionNames maps every [Compression] to its canonical name.
var compressionNames = map[Compression]string{
	CompressionNone:   "none",
	CompressionGzip:   "gzip",
	CompressionBzip2:  "bzip2",
	CompressionXz:     "xz",
	CompressionLzma:   "lzma",
	CompressionZstd:   "zstd",
	CompressionLZ4:    "lz4",
	CompressionBrotli: "brotli",
	CompressionSnappy: "snappy",
	CompressionZlib:   "zlib",
	CompressionLzip:   "lzip",
	CompressionAuto:   "auto",
}

// String returns the canonical name of c.
func (c Compression) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Compression(%d)", int(c))
}

// ParseCompression maps a compression name or a file extension, e.g. "gzip",
// "gz" or "tgz", to a [Compression]. Names are case-insensitive and may carry
// a leading dot. Unknown names return [ErrUnknownCompression].
func ParseCompression(name string) (Compression, error) {
	n := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")

	// canonical names
	for c, cn := range compressionNames {
		if n == cn {
			return c, nil
		}
	}

	// plain tar
	if n == fileExtensionTar || n == "" {
		return CompressionNone, nil
	}

	// file extensions
	for _, d := range availableDecompressors {
		for _, ext := range d.Extensions {
			if n == ext {
				return d.Compression, nil
			}
		}
	}

	return CompressionNone, fmt.Errorf("%w: %q", ErrUnknownCompression, name)
}

// CompressionFromName derives the [Compression] from the suffix of a file name,
// e.g. "release.tar.gz" or "release.tzst". Names ending with ".tar" are plain
// tar archives. Any other name returns [CompressionAuto].
func CompressionFromName(name string) Compression {
	n := strings.ToLower(filepath.Base(name))
	if strings.HasSuffix(n, "."+fileExtensionTar) {
		return CompressionNone
	}

	// longest suffix match
	var longest int
	result := CompressionAuto
	for _, d := range availableDecompressors {
		for _, ext := range d.Extensions {
			suffix := "." + ext
			if strings.HasSuffix(n, suffix) && len(suffix) > longest {
				longest = len(suffix)
				result = d.Compression
			}
		}
	}
	return result
}

// decompressionFunc returns a reader that decompresses src. Closing the
// returned reader releases the decoder only, src stays open.
type decompressionFunc func(src io.Reader) (io.ReadCloser, error)

// decompressor describes a supported decompression stage.
type decompressor struct {
	// Compression is the mode the decompressor is selected by
	Compression Compression

	// Extensions are the file extensions without the leading dot; the first
	// one is used for the archive type in the telemetry data
	Extensions []string

	// MagicBytes identify the compressed stream, if empty the stream
	// cannot be identified by its content
	MagicBytes [][]byte

	// Offset of the magic bytes
	Offset int

	// Open starts the decompression
	Open decompressionFunc
}

// availableDecompressors is the collection of supported decompression stages,
// in the order they are probed during auto-detection.
var availableDecompressors = []decompressor{
	{
		Compression: CompressionGzip,
		Extensions:  []string{fileExtensionGZip, fileExtensionTarGZip, "gzip"},
		MagicBytes:  magicBytesGZip,
		Open:        decompressGZipStream,
	},
	{
		Compression: CompressionBzip2,
		Extensions:  []string{fileExtensionBzip2, "tbz2", "tbz"},
		MagicBytes:  magicBytesBzip2,
		Open:        decompressBzip2Stream,
	},
	{
		Compression: CompressionXz,
		Extensions:  []string{fileExtensionXz, "txz"},
		MagicBytes:  magicBytesXz,
		Open:        decompressXzStream,
	},
	{
		Compression: CompressionZstd,
		Extensions:  []string{fileExtensionZstd, "tzst", "zstd"},
		MagicBytes:  magicBytesZstd,
		Open:        decompressZstdStream,
	},
	{
		Compression: CompressionLZ4,
		Extensions:  []string{fileExtensionLZ4},
		MagicBytes:  magicBytesLZ4,
		Open:        decompressLZ4Stream,
	},
	{
		Compression: CompressionSnappy,
		Extensions:  []string{fileExtensionSnappy},
		MagicBytes:  magicBytesSnappy,
		Open:        decompressSnappyStream,
	},
	{
		Compression: CompressionLzip,
		Extensions:  []string{fileExtensionLzip},
		MagicBytes:  magicBytesLzip,
		Open:        decompressLzipStream,
	},
	{
		Compression: CompressionZlib,
		Extensions:  []string{fileExtensionZlib},
		MagicBytes:  magicBytesZlib,
		Open:        decompressZlibStream,
	},
	{
		Compression: CompressionLzma,
		Extensions:  []string{fileExtensionLzma, "tlzma"},
		MagicBytes:  magicBytesLzma,
		Open:        decompressLzmaStream,
	},
	{
		Compression: CompressionBrotli,
		Extensions:  []string{fileExtensionBrotli},
		Open:        decompressBrotliStream,
	},
}

// maxHeaderLength is the number of bytes needed to identify any supported stream
var maxHeaderLength int

// init calculates the maximum header length
func init() {
	maxHeaderLength = offsetTar
	for _, mb := range magicBytesTar {
		if offsetTar+len(mb) > maxHeaderLength {
			maxHeaderLength = offsetTar + len(mb)
		}
	}
	for _, d := range availableDecompressors {
		for _, mb := range d.MagicBytes {
			if len(mb)+d.Offset > maxHeaderLength {
				maxHeaderLength = len(mb) + d.Offset
			}
		}
	}
}

// findDecompressor returns the decompressor for c.
func findDecompressor(c Compression) (decompressor, bool) {
	for _, d := range availableDecompressors {
		if d.Compression == c {
			return d, true
		}
	}
	return decompressor{}, false
}

// detectDecompressor identifies the decompressor from the first bytes of a stream.
// A tar header is never mistaken for compressed content.
func detectDecompressor(header []byte) (decompressor, bool) {
	if isTar(header) {
		return decompressor{}, false
	}
	for _, d := range availableDecompressors {
		if len(d.MagicBytes) > 0 && matchesMagicBytes(header, d.Offset, d.MagicBytes) {
			return d, true
		}
	}
	return decompressor{}, false
}
