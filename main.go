// Package main is the entry point for the wintracker CLI, which records
// per-opponent win/loss tallies and renders shareable report images.
package main

import "github.com/pable/wintracker/cmd"

func main() {
	cmd.Execute()
}
