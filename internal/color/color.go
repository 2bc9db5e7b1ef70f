// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/term"
)

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	prefix    = "\033["
	suffix    = "m"
	reset     = "\033[0m"
	sbPadding = 16
)

// Code is an SGR parameter.
type Code int

// Text attributes.
const (
	Reset Code = 0
	Bold  Code = 1
	Faint Code = 2
)

// Foreground colours.
const (
	FgRed     Code = 31
	FgGreen   Code = 32
	FgYellow  Code = 33
	FgBlue    Code = 34
	FgMagenta Code = 35
	FgCyan    Code = 36
	FgWhite   Code = 37

	FgHiRed     Code = 91
	FgHiMagenta Code = 95
	FgHiWhite   Code = 97
)

var enabled atomic.Bool

func init() {
	enabled.Store(isColorCapable(os.Stdout))
}

// Enabled reports whether colour output is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled overrides terminal detection, e.g. for a --no-color flag.
func SetEnabled(v bool) {
	enabled.Store(v)
}

// EnabledFor reports whether colour should be used when writing to f.
func EnabledFor(f *os.File) bool {
	return isColorCapable(f)
}

// ControlString returns the escape sequence for the codes, regardless of whether colour is enabled.
func ControlString(c ...Code) string {
	sb := strings.Builder{}
	sb.Grow(len(prefix) + len(suffix) + sbPadding)
	writeCodes(&sb, c)

	return sb.String()
}

// Colorize wraps str in the escape sequence for the codes followed by a reset.
// It returns str unchanged when colour is disabled.
func Colorize(str string, c ...Code) string {
	if !Enabled() {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(prefix) + len(suffix) + len(reset) + sbPadding)
	writeCodes(&sb, c)
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

func writeCodes(sb *strings.Builder, c []Code) {
	sb.WriteString(prefix)

	for i, code := range c {
		if i > 0 {
			sb.WriteString(";")
		}

		sb.WriteString(strconv.Itoa(int(code)))
	}

	sb.WriteString(suffix)
}

func isColorCapable(f *os.File) bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	if f == nil {
		return false
	}

	return term.IsTerminal(int(f.Fd()))
}
