//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

const (
	// path and path list separators
	forbiddenNameChars = "/:"
	// no hidden files
	leadingNameChars = "."
)

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
