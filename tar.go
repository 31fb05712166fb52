// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"archive/tar"
	"io"
	"io/fs"
	"strings"
)

// fileExtensionTar is the file extension for tar files
const fileExtensionTar = "tar"

// offsetTar is the offset where the magic bytes are located in the file
const offsetTar = 257

// magicBytesTar are the magic bytes for tar files
var magicBytesTar = [][]byte{
	[]byte("ustar\x00tar\x00"),
	[]byte("ustar\x00"),
	[]byte("ustar  \x00"),
}

// isTar checks if the header matches the magic bytes for tar files
func isTar(data []byte) bool {
	return matchesMagicBytes(data, offsetTar, magicBytesTar)
}

// tarWalker is a walker for tar archives. Every call of Next starts a new
// generation; content readers of older generations are invalidated.
type tarWalker struct {
	tr  *tar.Reader
	gen uint64
}

// newTarWalker returns a walker that decodes the tar stream r.
func newTarWalker(r io.Reader) *tarWalker {
	return &tarWalker{tr: tar.NewReader(r)}
}

// Type returns the file extension for tar files
func (t *tarWalker) Type() string {
	return fileExtensionTar
}

// Next returns the next entry in the tar archive. A malformed header fails
// with tar.ErrHeader and a truncated stream with io.ErrUnexpectedEOF.
func (t *tarWalker) Next() (archiveEntry, error) {
	t.gen++
	hdr, err := t.tr.Next()
	if err != nil {
		return nil, err
	}
	return &tarEntry{hdr: hdr, walker: t, gen: t.gen}, nil
}

// tarEntry is an entry in a tar archive
type tarEntry struct {
	hdr    *tar.Header
	walker *tarWalker
	gen    uint64
}

// Name returns the name of the entry
func (t *tarEntry) Name() string {
	return t.hdr.Name
}

// Size returns the size of the entry
func (t *tarEntry) Size() int64 {
	return t.hdr.Size
}

// Mode returns the mode of the entry
func (t *tarEntry) Mode() fs.FileMode {
	return t.hdr.FileInfo().Mode()
}

// IsRegular returns true if the entry is a regular file
func (t *tarEntry) IsRegular() bool {
	return isRegularTypeflag(t.hdr.Typeflag) && !strings.HasSuffix(t.hdr.Name, "/")
}

// IsDir returns true if the entry is a directory. Old archives mark
// directories as regular files with a trailing slash in the name.
func (t *tarEntry) IsDir() bool {
	if t.hdr.Typeflag == tar.TypeDir {
		return true
	}
	return isRegularTypeflag(t.hdr.Typeflag) && strings.HasSuffix(t.hdr.Name, "/")
}

// Typeflag returns the raw type of the entry
func (t *tarEntry) Typeflag() byte {
	return t.hdr.Typeflag
}

// Open returns a reader for the content of the entry. The reader ends at the
// declared size of the entry.
func (t *tarEntry) Open() (io.ReadCloser, error) {
	return &noopReaderCloser{&tarEntryReader{entry: t}}, nil
}

// isRegularTypeflag reports if typeflag describes a regular file
func isRegularTypeflag(typeflag byte) bool {
	return typeflag == tar.TypeReg || typeflag == '\x00'
}

// tarEntryReader reads the content of a single entry
type tarEntryReader struct {
	entry *tarEntry
}

// Read fails with ErrEntryInvalidated after the walker moved on.
func (r *tarEntryReader) Read(p []byte) (int, error) {
	if r.entry.gen != r.entry.walker.gen {
		return 0, ErrEntryInvalidated
	}
	return r.entry.walker.tr.Read(p)
}
