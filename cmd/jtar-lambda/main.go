// Copyright IBM Corp. 2023, 2025

package main

import "github.com/mknecht/jtar/cmd"

// main start the jtar lambda function
func main() {
	cmd.StartLambda()
}
