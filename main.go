// Package main provides the entry point for the farm-submit CLI.
package main

import (
	"yqhp/farm-submit/cmd"
)

func main() {
	cmd.Execute()
}
