// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package jtar

import "golang.org/x/sys/unix"

// isReadable checks the read permission of the current process for path.
func isReadable(path string) bool {
	return unix.Access(path, unix.R_OK) == nil
}
