// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package jtar

import (
	"io"
)

// limitErrorReader is a reader that returns ErrMaxInputSizeExceeded if the
// underlying reader delivers more than L bytes. Input that ends exactly at
// the limit is read completely.
// If the limit is negative, all data from the original reader is read.
type limitErrorReader struct {
	R io.Reader // underlying reader
	L int64     // limit
	N int64     // number of bytes read
}

// Read reads from the underlying reader and fills up p.
func (l *limitErrorReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	// determine how many bytes to read
	m := l.L - l.N
	if l.L < 0 || m > int64(len(p)) {
		m = int64(len(p))
	}

	// limit reached, probe for further input
	if m == 0 {
		var probe [1]byte
		if n, err := io.ReadFull(l.R, probe[:]); n == 0 {
			return 0, err
		}
		return 0, ErrMaxInputSizeExceeded
	}

	// read from underlying reader and preserve error type
	n, err := l.R.Read(p[:m])
	l.N += int64(n)
	return n, err
}

// ReadBytes returns how many bytes have been read from the underlying reader
func (l *limitErrorReader) ReadBytes() int64 {
	return l.N
}

// newLimitErrorReader returns a new limitErrorReader that reads from r
func newLimitErrorReader(r io.Reader, limit int64) *limitErrorReader {
	return &limitErrorReader{R: r, L: limit, N: 0}
}
