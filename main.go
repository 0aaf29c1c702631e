// ABOUTME: Entry point for the collabvoice CLI
// ABOUTME: Terminal client for the CollabVoice collaborative-coding service

package main

import (
	"fmt"
	"os"

	"github.com/collabvoice/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
