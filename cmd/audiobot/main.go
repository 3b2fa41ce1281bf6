// Package main is the entry point for the audiobot CLI.
//
// Usage:
//
//	audiobot [flags] <command>
//
// Commands:
//
//	run       - Start a realtime session with the conversational agent
//	voices    - List available voices
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/jarod-johnson-23/audiobot/cmd/audiobot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
