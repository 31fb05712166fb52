// Copyright IBM Corp. 2023, 2025

package main

import "github.com/mknecht/jtar/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main start the jtar cli
func main() {
	cmd.Run(version, commit, date)
}
