// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import "io"

// noopReaderCloser wraps a reader the library does not own. Close leaves
// the underlying reader untouched.
type noopReaderCloser struct {
	io.Reader
}

// Close is a no-op method that satisfies the io.Closer interface.
func (n *noopReaderCloser) Close() error {
	return nil
}

// closerFunc adapts a function to the io.Closer interface.
type closerFunc func() error

// Close calls f.
func (f closerFunc) Close() error {
	return f()
}
